package textnorm

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   \t\n ",
			want:  "",
		},
		{
			name:  "lowercase and diacritics",
			input: "Aquisição de COMPUTADORES",
			want:  "aquisicao computadores",
		},
		{
			name:  "abbreviation expansion",
			input: "serviços de ti",
			want:  "servicos tecnologia informacao",
		},
		{
			name:  "abbreviation with punctuation",
			input: "equipamentos de t.i. novos",
			want:  "equipamentos tecnologia informacao novos",
		},
		{
			name:  "numeric tokens removed",
			input: "500 cadeiras modelo x200",
			want:  "cadeiras modelo x200",
		},
		{
			name:  "stopwords and short tokens removed",
			input: "a compra de um item para o uso",
			want:  "compra item uso",
		},
		{
			name:  "punctuation collapsed",
			input: "impressoras, scanners; toners!",
			want:  "impressoras scanners toners",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.input)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Aquisição de computadores e notebooks para escritório",
		"Contratação de serviços de TI e manutenção de CFTV",
		"PREGÃO ELETRÔNICO Nº 42/2024 - fornecimento de 500 cadeiras",
		"rede wifi com roteadores, switches e cabeamento UTP cat-6",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("normalize is not idempotent for %q:\n first: %q\nsecond: %q", input, once, twice)
		}
	}
}

func TestNormalizeShortTokenBoundary(t *testing.T) {
	// Two-character tokens are dropped, three-character tokens survive.
	got := Normalize("xy abc")
	if got != "abc" {
		t.Fatalf("expected only the three-character token to survive, got %q", got)
	}
}

func TestTokensMatchNormalize(t *testing.T) {
	input := "Aquisição de equipamentos de informática"
	if joined := strings.Join(Tokens(input), " "); joined != Normalize(input) {
		t.Fatalf("Tokens and Normalize disagree: %q vs %q", joined, Normalize(input))
	}
}

func TestTokensEmptyInput(t *testing.T) {
	if tokens := Tokens(""); len(tokens) != 0 {
		t.Fatalf("expected no tokens for empty input, got %v", tokens)
	}
}
