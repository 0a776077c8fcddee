// Package textnorm canonicalizes Portuguese procurement text before
// vectorization. Normalization is deterministic and idempotent.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes text in a fixed order: lowercase, strip
// diacritics, expand technical abbreviations, strip punctuation, drop
// purely numeric tokens, drop stopwords and tokens shorter than three
// characters, collapse whitespace. Empty input yields empty output.
func Normalize(text string) string {
	return strings.Join(Tokens(text), " ")
}

// Tokens returns the normalized token list for text. It applies the same
// steps as Normalize without the final rejoin, so callers comparing token
// overlap share the exact canonical vocabulary.
func Tokens(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = strings.ToLower(text)
	text = stripDiacritics(text)

	// Abbreviations expand before punctuation stripping so forms like
	// "t.i." still match their alphanumeric-stripped key.
	expanded := make([]string, 0, 16)
	for _, word := range strings.Fields(text) {
		if full, ok := abbreviations[alnumOnly(word)]; ok {
			expanded = append(expanded, full)
			continue
		}
		expanded = append(expanded, word)
	}
	text = strings.Join(expanded, " ")

	text = punctToSpace(text)

	tokens := make([]string, 0, 16)
	for _, word := range strings.Fields(text) {
		if isNumeric(word) {
			continue
		}
		if len([]rune(word)) < 3 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

func stripDiacritics(s string) string {
	out, _, err := transform.String(deaccent, s)
	if err != nil {
		return s
	}
	return out
}

func punctToSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
}

func alnumOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
