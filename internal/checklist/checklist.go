// Package checklist turns a matched procurement notice into a structured
// participation checklist using a Gemini chat model. When the model response
// cannot be parsed, a deterministic baseline checklist takes its place so a
// match always carries actionable guidance.
package checklist

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const notInformed = "Não informado"

// Checklist is the participation guidance for one bid.
type Checklist struct {
	AgencyName       string     `json:"nome_orgao"`
	NoticeNumber     string     `json:"numero_licitacao"`
	Modality         string     `json:"modalidade"`
	Summary          string     `json:"resumo_executivo"`
	KeyPoints        []KeyPoint `json:"pontos_principais"`
	Deadlines        []Deadline `json:"prazos_importantes"`
	RequiredDocument []string   `json:"documentos_necessarios"`
	Notes            []string   `json:"observacoes_importantes"`

	// AdequacyScore grades how complete the notice documentation is,
	// from 0 to 10.
	AdequacyScore float64 `json:"score_adequacao"`

	// Fallback marks checklists produced without a usable model response.
	Fallback bool `json:"-"`
}

// KeyPoint is one attention point for participation.
type KeyPoint struct {
	Title       string `json:"item"`
	Description string `json:"descricao"`
	Status      string `json:"status"`
}

// Deadline is one dated event of the procurement process.
type Deadline struct {
	Event string `json:"evento"`
	Date  string `json:"data"`
	Time  string `json:"horario"`
	Kind  string `json:"tipo"`
}

// fallbackChecklist is the baseline returned when the model output is
// unusable. Content mirrors the minimum a bidder must always verify.
func fallbackChecklist() *Checklist {
	return &Checklist{
		AgencyName:   notInformed,
		NoticeNumber: notInformed,
		Modality:     notInformed,
		Summary:      "Licitação processada. Aguardando análise detalhada do edital.",
		KeyPoints: []KeyPoint{
			{
				Title:       "Documentação Básica",
				Description: "Verificar documentos obrigatórios para participação",
				Status:      "obrigatorio",
			},
		},
		RequiredDocument: []string{"A definir"},
		Notes:            []string{"Checklist gerado automaticamente"},
		AdequacyScore:    5.0,
		Fallback:         true,
	}
}

// parseResponse extracts the checklist JSON from a model response. Model
// output arrives wrapped in markdown fences or prose often enough that both
// are stripped before decoding.
func parseResponse(raw string) (*Checklist, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse checklist response: %w", err)
	}

	c := &Checklist{
		AgencyName:    coerceString(data["nome_orgao"]),
		NoticeNumber:  coerceString(data["numero_licitacao"]),
		Modality:      coerceString(data["modalidade"]),
		Summary:       coerceString(data["resumo_executivo"]),
		AdequacyScore: coerceFloat(data["score_adequacao"]),
	}

	if basics, ok := data["informacoes_basicas"].(map[string]any); ok {
		if c.AgencyName == "" {
			c.AgencyName = coerceString(basics["nome_orgao"])
		}
		if c.NoticeNumber == "" {
			c.NoticeNumber = coerceString(basics["numero_licitacao"])
		}
		if c.Modality == "" {
			c.Modality = coerceString(basics["modalidade"])
		}
	}

	if points, ok := data["pontos_principais"].([]any); ok {
		for _, p := range points {
			entry, ok := p.(map[string]any)
			if !ok {
				continue
			}
			c.KeyPoints = append(c.KeyPoints, KeyPoint{
				Title:       coerceString(entry["item"]),
				Description: coerceString(entry["descricao"]),
				Status:      coerceString(entry["status"]),
			})
		}
	}

	if deadlines, ok := data["prazos_importantes"].([]any); ok {
		for _, d := range deadlines {
			entry, ok := d.(map[string]any)
			if !ok {
				continue
			}
			c.Deadlines = append(c.Deadlines, Deadline{
				Event: coerceString(entry["evento"]),
				Date:  coerceString(entry["data"]),
				Time:  coerceString(entry["horario"]),
				Kind:  coerceString(entry["tipo"]),
			})
		}
	}

	c.RequiredDocument = coerceStrings(data["documentos_necessarios"])
	c.Notes = coerceStrings(data["observacoes_importantes"])

	if math.IsNaN(c.AdequacyScore) {
		c.AdequacyScore = 0
	}

	return c, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	// Keep only the outermost JSON object when the model adds prose.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}

	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, entry := range list {
		if s := coerceString(entry); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
