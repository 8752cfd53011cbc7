package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
)

const rankerSystemPrompt = `You rank Dutch court decisions by relevance to a legal research question.
Each document is an excerpt followed by metadata. Judge legal relevance, not word overlap.
Respond with JSON only, in this shape:
{"rankings":[{"index":0,"score":0.92,"rationale":"one sentence","metadata":{"legal_area":"...","procedure":"...","summary":"..."}}]}
List documents from most to least relevant. index is the document number shown in brackets.
score is between 0 and 1. metadata is optional; include only fields you can state with confidence.`

// Ranker reranks documents with a chat model on an OpenAI-compatible API.
type Ranker struct {
	client *openai.Client
	model  string
	apiKey string
	logger *zap.Logger
}

// NewRanker creates a chat-model reranker.
func NewRanker(cfg *Config) *Ranker {
	return &Ranker{
		client: newClient(cfg),
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		logger: cfg.Logger,
	}
}

// Name implements domain.Reranker.
func (r *Ranker) Name() string { return "llm" }

// Rerank asks the model for an ordering of documents.
// Missing credentials are a configuration error; unparseable output is malformed.
func (r *Ranker) Rerank(ctx context.Context, query string, documents []string) ([]domain.Ranking, error) {
	if strings.TrimSpace(r.apiKey) == "" {
		return nil, domain.NewConfigError("rerank.api_key", "required for the llm provider")
	}
	if len(documents) == 0 {
		return nil, nil
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rankerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(query, documents)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, parseAPIError("rerank", err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.NewMalformedResponse(r.Name(), "no choices in completion")
	}

	r.logger.Debug("LLM rerank completion",
		zap.String("model", r.model),
		zap.Int("documents", len(documents)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return parseRankings(r.Name(), resp.Choices[0].Message.Content)
}

// HealthCheck verifies API availability via ListModels.
func (r *Ranker) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func buildPrompt(query string, documents []string) string {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\n")
	for i, d := range documents {
		fmt.Fprintf(&sb, "[%d]\n%s\n\n", i, d)
	}
	return sb.String()
}

type llmResponse struct {
	Rankings []struct {
		Index     *int              `json:"index"`
		Score     float64           `json:"score"`
		Rationale string            `json:"rationale"`
		Metadata  *caselaw.Metadata `json:"metadata"`
	} `json:"rankings"`
}

// parseRankings decodes the model output, tolerating a surrounding code fence.
func parseRankings(provider, content string) ([]domain.Ranking, error) {
	content = stripCodeFence(content)
	if content == "" {
		return nil, domain.NewMalformedResponse(provider, "empty completion")
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, domain.NewMalformedResponse(provider, "invalid JSON: "+err.Error())
	}
	if len(parsed.Rankings) == 0 {
		return nil, domain.NewMalformedResponse(provider, "no rankings")
	}

	out := make([]domain.Ranking, 0, len(parsed.Rankings))
	for _, item := range parsed.Rankings {
		if item.Index == nil {
			return nil, domain.NewMalformedResponse(provider, "ranking without index")
		}
		rk := domain.Ranking{
			Index:     *item.Index,
			Score:     caselaw.Clamp(item.Score, 0, 1),
			Rationale: strings.TrimSpace(item.Rationale),
		}
		if item.Metadata != nil && !item.Metadata.IsEmpty() {
			rk.Metadata = item.Metadata
		}
		out = append(out, rk)
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx != -1 {
		start := idx + len("```json")
		if end := strings.Index(s[start:], "```"); end != -1 {
			return strings.TrimSpace(s[start : start+end])
		}
	} else if idx := strings.Index(s, "```"); idx != -1 {
		start := idx + 3
		if end := strings.Index(s[start:], "```"); end != -1 {
			return strings.TrimSpace(s[start : start+end])
		}
	}
	return s
}
