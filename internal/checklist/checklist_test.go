package checklist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Pedro004-dot/alicit/internal/matching"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

const wellFormedResponse = `{
	"nome_orgao": "Prefeitura Municipal de Campinas",
	"numero_licitacao": "PE 042/2025",
	"modalidade": "Pregão Eletrônico",
	"resumo_executivo": "Aquisição de computadores para a rede municipal.",
	"pontos_principais": [
		{"item": "Amostra", "descricao": "Exigida amostra do item 1", "status": "obrigatorio"}
	],
	"prazos_importantes": [
		{"evento": "Abertura das propostas", "data": "15/09/2025", "horario": "09:00", "tipo": "abertura"}
	],
	"documentos_necessarios": ["Certidão negativa de débitos", "Atestado de capacidade técnica"],
	"observacoes_importantes": ["Participação exclusiva ME/EPP"],
	"score_adequacao": 8.5
}`

func testBid() matching.Bid {
	return matching.Bid{
		ID:          "ctrl-1",
		Description: "aquisição de computadores",
		Items:       []matching.Item{{Description: "notebook", Quantity: 10, Unit: "un"}},
	}
}

func TestBuildParsesModelResponse(t *testing.T) {
	stub := &stubGenerator{response: wellFormedResponse}
	builder := NewBuilder(stub, zap.NewNop())

	c, err := builder.Build(context.Background(), testBid(), "conteúdo do edital")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if c.Fallback {
		t.Fatalf("well-formed response must not degrade to the baseline")
	}
	if c.AgencyName != "Prefeitura Municipal de Campinas" {
		t.Fatalf("unexpected agency: %q", c.AgencyName)
	}
	if c.NoticeNumber != "PE 042/2025" || c.Modality != "Pregão Eletrônico" {
		t.Fatalf("notice identification not parsed: %+v", c)
	}
	if len(c.KeyPoints) != 1 || c.KeyPoints[0].Status != "obrigatorio" {
		t.Fatalf("key points not parsed: %+v", c.KeyPoints)
	}
	if len(c.Deadlines) != 1 || c.Deadlines[0].Kind != "abertura" {
		t.Fatalf("deadlines not parsed: %+v", c.Deadlines)
	}
	if len(c.RequiredDocument) != 2 {
		t.Fatalf("documents not parsed: %+v", c.RequiredDocument)
	}
	if c.AdequacyScore != 8.5 {
		t.Fatalf("score not parsed: %f", c.AdequacyScore)
	}

	if !strings.Contains(stub.lastPrompt, "aquisição de computadores") {
		t.Fatalf("prompt missing bid object: %q", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "conteúdo do edital") {
		t.Fatalf("prompt missing document context")
	}
}

func TestBuildParsesFencedResponse(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + wellFormedResponse + "\n```"}
	builder := NewBuilder(stub, zap.NewNop())

	c, err := builder.Build(context.Background(), testBid(), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.Fallback || c.AgencyName != "Prefeitura Municipal de Campinas" {
		t.Fatalf("fenced JSON not parsed: %+v", c)
	}
}

func TestBuildFallsBackOnGeneratorError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota exceeded")}
	builder := NewBuilder(stub, zap.NewNop())

	c, err := builder.Build(context.Background(), testBid(), "")
	if err != nil {
		t.Fatalf("generator failure must degrade, not error: %v", err)
	}
	if !c.Fallback {
		t.Fatalf("expected the baseline checklist")
	}
	if len(c.KeyPoints) == 0 || c.AdequacyScore != 5.0 {
		t.Fatalf("baseline checklist incomplete: %+v", c)
	}
}

func TestBuildFallsBackOnUnparseableResponse(t *testing.T) {
	stub := &stubGenerator{response: "Desculpe, não consigo ajudar com isso."}
	builder := NewBuilder(stub, zap.NewNop())

	c, err := builder.Build(context.Background(), testBid(), "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !c.Fallback {
		t.Fatalf("prose response must degrade to the baseline checklist")
	}
}

func TestBuildCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubGenerator{err: context.Canceled}
	builder := NewBuilder(stub, zap.NewNop())

	if _, err := builder.Build(ctx, testBid(), ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseResponseScoreCoercion(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{"numeric", `{"score_adequacao": 7.5}`, 7.5},
		{"string", `{"score_adequacao": "6.0"}`, 6.0},
		{"text garbage", `{"score_adequacao": "Não informado"}`, 0},
		{"missing", `{}`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := parseResponse(tc.raw)
			if err != nil {
				t.Fatalf("parseResponse: %v", err)
			}
			if c.AdequacyScore != tc.want {
				t.Fatalf("expected score %f, got %f", tc.want, c.AdequacyScore)
			}
		})
	}
}

func TestParseResponseNestedBasics(t *testing.T) {
	raw := `{"informacoes_basicas": {"nome_orgao": "Tribunal de Contas", "numero_licitacao": "CC 01/2025", "modalidade": "Concorrência"}}`

	c, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if c.AgencyName != "Tribunal de Contas" || c.NoticeNumber != "CC 01/2025" {
		t.Fatalf("nested basics not lifted: %+v", c)
	}
}
