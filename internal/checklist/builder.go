package checklist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/Pedro004-dot/alicit/internal/logger"
	"github.com/Pedro004-dot/alicit/internal/matching"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200

	// maxContextRunes caps the notice context included in the prompt.
	maxContextRunes = 8000
)

// Builder produces participation checklists for matched bids.
type Builder struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewBuilder(generator contentGenerator, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		generator: generator,
		logger:    log,
		maxLogLen: defaultMaxLogLength,
	}
}

// Build generates a checklist for the bid, with docContext carrying any
// extracted notice-document text. Model failures degrade to the baseline
// checklist; only context cancellation is returned as an error.
func (b *Builder) Build(ctx context.Context, bid matching.Bid, docContext string) (*Checklist, error) {
	prompt, err := b.buildPrompt(bid, docContext)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("checklist generation request",
		zap.String("bid_id", bid.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, b.maxLogLen)),
	)

	raw, err := b.generator.GenerateContent(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		b.logger.Warn("checklist generation failed, using baseline checklist",
			zap.String("bid_id", bid.ID),
			zap.Error(err),
		)
		return fallbackChecklist(), nil
	}

	b.logger.Debug("checklist generation response",
		zap.String("bid_id", bid.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, b.maxLogLen)),
	)

	checklist, err := parseResponse(raw)
	if err != nil {
		b.logger.Warn("checklist response unparseable, using baseline checklist",
			zap.String("bid_id", bid.ID),
			zap.Error(err),
		)
		return fallbackChecklist(), nil
	}

	return checklist, nil
}

func (b *Builder) buildPrompt(bid matching.Bid, docContext string) (string, error) {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Objeto:\n{{OBJETO}}\n\nItens:\n{{ITENS_JSON}}\n\nEdital:\n{{CONTEXTO}}\n\nJSON:"
	}

	itemsJSON, err := json.MarshalIndent(bid.Items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal bid items: %w", err)
	}

	docContext = capRunes(docContext, maxContextRunes)

	prompt := strings.ReplaceAll(template, "{{OBJETO}}", bid.Description)
	prompt = strings.ReplaceAll(prompt, "{{ITENS_JSON}}", string(itemsJSON))
	prompt = strings.ReplaceAll(prompt, "{{CONTEXTO}}", docContext)
	return prompt, nil
}

func capRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
