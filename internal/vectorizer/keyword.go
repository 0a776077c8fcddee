package vectorizer

import (
	"context"
	"strings"

	"github.com/Pedro004-dot/alicit/internal/textnorm"
)

// keywordCategory pairs a procurement category with its keyword list. The
// slice order fixes the vector dimensions, so it must never be reordered.
// Keywords are stored in normalized form (lowercase, no diacritics, no
// stopwords) and matched by containment against the normalized text, which
// lets singular keywords cover plural forms.
type keywordCategory struct {
	name     string
	keywords []string
}

var keywordCategories = []keywordCategory{
	{"informatica", []string{
		"computador", "notebook", "servidor", "software", "hardware",
		"monitor", "impressora", "scanner", "mouse", "teclado",
		"processador", "desktop", "microcontrolador", "raspberry",
		"tecnologia", "informatica", "equipamento", "digital",
		"eletronico", "sistema", "dados", "programacao",
		"tecnologia informacao", "unidade central processamento",
		"disco rigido", "solid state drive", "memoria acesso aleatorio",
	}},
	{"impressao", []string{
		"impressora", "toner", "cartucho", "papel", "impressao",
		"multifuncional", "scanner", "copiadora", "xerox", "copia",
		"digitalizacao", "corporativa", "outsourcing", "servico",
		"manutencao",
	}},
	{"rede", []string{
		"rede", "switch", "roteador", "cabo", "cabeamento",
		"ethernet", "firewall", "modem", "internet", "conectividade",
		"infraestrutura", "telecomunicacao", "wireless", "fibra",
		"wireless fidelity", "rede local", "rede area ampla",
		"internet protocol", "voice over internet protocol",
	}},
	{"moveis", []string{
		"mesa", "cadeira", "armario", "estante", "arquivo",
		"mobiliario", "movel", "bancada", "gaveta", "prateleira",
	}},
	{"construcao", []string{
		"obra", "construcao", "reforma", "pintura", "eletrica",
		"hidraulica", "civil", "engenharia", "instalacao",
		"manutencao", "reparo",
	}},
	{"seguranca", []string{
		"camera", "seguranca", "monitoramento", "alarme",
		"controle acesso", "circuito fechado televisao",
		"digital video recorder", "network video recorder",
	}},
	{"veiculo", []string{
		"veiculo", "carro", "caminhao", "onibus", "motocicleta",
		"combustivel", "manutencao veicular",
		"sistema posicionamento global",
	}},
}

// Keyword is the deterministic, dependency-free fallback backend. Each
// vector dimension is the fraction of one category's keywords present in
// the normalized text, clamped to [0,1]. It is intentionally low-fidelity;
// it exists so the pipeline never has zero embedding capability.
type Keyword struct{}

// NewKeyword creates the keyword heuristic backend.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// Dimension reports the fixed vector length (one slot per category).
func (k *Keyword) Dimension() int {
	return len(keywordCategories)
}

func (k *Keyword) Vectorize(_ context.Context, text string) ([]float32, error) {
	clean := textnorm.Normalize(text)
	if clean == "" {
		return nil, ErrEmptyInput
	}
	return k.score(clean), nil
}

func (k *Keyword) BatchVectorize(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := k.Vectorize(ctx, text)
		if err != nil {
			// Blank entries keep their slot as a nil vector.
			continue
		}
		out[i] = vec
	}
	return out, nil
}

func (k *Keyword) score(clean string) []float32 {
	padded := " " + clean + " "
	vector := make([]float32, len(keywordCategories))
	for i, category := range keywordCategories {
		hits := 0
		for _, keyword := range category.keywords {
			if containsKeyword(padded, keyword) {
				hits++
			}
		}
		score := float32(hits) / float32(len(category.keywords))
		if score > 1 {
			score = 1
		}
		vector[i] = score
	}
	return vector
}

// containsKeyword matches at token start so "computador" covers
// "computadores" without matching inside unrelated words.
func containsKeyword(padded, keyword string) bool {
	return strings.Contains(padded, " "+keyword)
}
