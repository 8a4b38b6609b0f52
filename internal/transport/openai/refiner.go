package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/codemapper/codemap/internal/domain"
)

// Refiner asks a chat model to pick the single best candidate for a query.
// It degrades to the top-ranked candidate when the model call or its answer
// cannot be used, so refinement never makes a result set worse.
type Refiner struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// RefinerConfig holds the refiner settings.
type RefinerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewRefiner creates an LLM candidate refiner.
func NewRefiner(cfg *RefinerConfig) *Refiner {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Refiner{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// refineAnswer is the JSON shape the model is asked to return.
type refineAnswer struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Refine implements domain.Refiner.
func (r *Refiner) Refine(
	ctx context.Context, query string, candidates []domain.Candidate,
) (domain.Candidate, error) {
	if len(candidates) == 0 {
		return domain.Candidate{}, domain.ErrNoCandidates
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		MaxTokens:   150,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(query, candidates)},
		},
	})
	if err != nil {
		r.logger.Warn("refine call failed, keeping top candidate", zap.Error(err))
		return candidates[0], nil
	}
	if len(resp.Choices) == 0 {
		r.logger.Warn("refine returned no choices, keeping top candidate")
		return candidates[0], nil
	}

	var answer refineAnswer
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		r.logger.Warn("refine answer not parseable, keeping top candidate",
			zap.String("raw", raw), zap.Error(err))
		return candidates[0], nil
	}

	for _, c := range candidates {
		if c.Code == answer.Code {
			r.logger.Debug("refined best candidate",
				zap.String("code", c.Code), zap.String("reason", answer.Reason))
			return c, nil
		}
	}

	r.logger.Warn("refine chose an unknown code, keeping top candidate",
		zap.String("code", answer.Code))
	return candidates[0], nil
}

// buildPrompt formats the candidate list for the model.
func buildPrompt(query string, candidates []domain.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User symptoms:\n%q\n\nHere are terminology candidates:\n\n", query)
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, c.Code, c.Term)
	}
	b.WriteString("\nPick the SINGLE best diagnosis code that matches the symptoms.\n")
	b.WriteString(`Return ONLY JSON like: {"code": "...", "reason": "..."}`)
	return b.String()
}
