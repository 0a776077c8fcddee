// Package similarity scores two embeddings against each other and explains
// the result. The justification is a first-class output consumed by
// auditors, not a debug artifact.
package similarity

import (
	"fmt"
	"math"
	"strings"

	"github.com/Pedro004-dot/alicit/internal/textnorm"
)

const (
	wordBonusStep = 0.05
	wordBonusCap  = 0.20
	techBonusStep = 0.03
	techBonusCap  = 0.10

	maxListedWords = 3
)

// techTerms is the fixed acronym vocabulary eligible for the technical
// overlap bonus. Matched as standalone tokens against the raw texts, since
// normalization expands these acronyms away.
var techTerms = []string{
	"ti", "tic", "cpu", "gps", "led", "usb", "wifi", "cftv", "api", "erp",
	"crm", "ssd", "ram", "lan", "voip", "dvr", "sql",
}

// Cosine returns the cosine similarity of a and b. Zero vectors and
// mismatched lengths yield 0: cross-backend vectors must never produce a
// false positive, so the scorer degrades instead of erroring.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Score combines the cosine similarity of the two vectors with bounded
// bonuses for exact word overlap and shared technical acronyms, both
// derived from the source texts when provided. The returned score is
// clamped to [0,1]; the justification reports the base cosine value and
// every bonus factor that fired.
func Score(vecA, vecB []float32, textA, textB string) (float64, string) {
	base := Cosine(vecA, vecB)
	score := base

	var factors []string

	if textA != "" && textB != "" {
		if common := commonTokens(textnorm.Tokens(textA), textnorm.Tokens(textB)); len(common) > 0 {
			score += math.Min(float64(len(common))*wordBonusStep, wordBonusCap)
			factors = append(factors, "shared words: "+preview(common))
		}

		if tech := commonTechTerms(textA, textB); len(tech) > 0 {
			score += math.Min(float64(len(tech))*techBonusStep, techBonusCap)
			factors = append(factors, "shared technical terms: "+strings.Join(tech, ", "))
		}
	}

	score = clamp01(score)

	justification := fmt.Sprintf("cosine similarity: %.3f", base)
	if len(factors) > 0 {
		justification += fmt.Sprintf(" + bonuses (%s)", strings.Join(factors, "; "))
	}

	return score, justification
}

// commonTokens returns the normalized tokens present in both lists,
// deduplicated, in order of first appearance in a. The order matters:
// justification text must be reproducible across runs.
func commonTokens(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, token := range b {
		inB[token] = struct{}{}
	}

	seen := make(map[string]struct{}, len(a))
	var common []string
	for _, token := range a {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		if _, ok := inB[token]; ok {
			common = append(common, token)
		}
	}
	return common
}

func commonTechTerms(textA, textB string) []string {
	tokensA := rawTokenSet(textA)
	tokensB := rawTokenSet(textB)

	var common []string
	for _, term := range techTerms {
		if _, inA := tokensA[term]; !inA {
			continue
		}
		if _, inB := tokensB[term]; !inB {
			continue
		}
		common = append(common, term)
	}
	return common
}

// rawTokenSet tokenizes lowercased raw text on punctuation and whitespace
// without stopword or length filtering, so two-letter acronyms survive.
func rawTokenSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func preview(words []string) string {
	if len(words) > maxListedWords {
		words = words[:maxListedWords]
	}
	return strings.Join(words, ", ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
