// Package crossencoder calls a cross-encoder rerank endpoint: Hugging Face
// TEI by default, or a Cohere-compatible /rerank API with WithCohereAPI.
package crossencoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/kailas-cloud/jurisrank/internal/domain"
)

// maxErrorBody caps how much of an error response is quoted back.
const maxErrorBody = 512

// Client implements domain.Reranker over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	cohere  bool
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends a Bearer token with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithModel sets the model field for endpoints that serve several models.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithCohereAPI sends Cohere-style requests ({"model","query","documents","top_n"})
// instead of the TEI shape ({"query","texts"}).
func WithCohereAPI() Option {
	return func(c *Client) { c.cohere = true }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a cross-encoder client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements domain.Reranker.
func (c *Client) Name() string { return "crossencoder" }

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
	Model string   `json:"model,omitempty"`
}

type cohereRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type scoredIndex struct {
	Index          *int     `json:"index"`
	Score          *float64 `json:"score"`
	RelevanceScore *float64 `json:"relevance_score"`
}

type cohereResponse struct {
	Results []scoredIndex `json:"results"`
}

// Rerank posts the documents and returns them ordered by descending score.
func (c *Client) Rerank(ctx context.Context, query string, documents []string) ([]domain.Ranking, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := c.requestBody(query, documents)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rerank response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank endpoint returned status %d: %s",
			resp.StatusCode, truncate(strings.TrimSpace(string(raw)), maxErrorBody))
	}

	return c.parse(raw)
}

func (c *Client) requestBody(query string, documents []string) ([]byte, error) {
	if c.cohere {
		return json.Marshal(cohereRequest{ //nolint:wrapcheck // wrapped by the caller
			Model: c.model, Query: query, Documents: documents, TopN: len(documents),
		})
	}
	return json.Marshal(rerankRequest{Query: query, Texts: documents, Model: c.model}) //nolint:wrapcheck // wrapped by the caller
}

// parse accepts the TEI array shape and the Cohere {"results":[...]} shape.
func (c *Client) parse(raw []byte) ([]domain.Ranking, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, domain.NewMalformedResponse(c.Name(), "empty body")
	}

	var items []scoredIndex
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, domain.NewMalformedResponse(c.Name(), "invalid JSON: "+err.Error())
		}
	case '{':
		var cr cohereResponse
		if err := json.Unmarshal(trimmed, &cr); err != nil {
			return nil, domain.NewMalformedResponse(c.Name(), "invalid JSON: "+err.Error())
		}
		items = cr.Results
	default:
		return nil, domain.NewMalformedResponse(c.Name(), "unexpected body")
	}
	if len(items) == 0 {
		return nil, domain.NewMalformedResponse(c.Name(), "no results")
	}

	out := make([]domain.Ranking, 0, len(items))
	for _, it := range items {
		if it.Index == nil {
			return nil, domain.NewMalformedResponse(c.Name(), "result without index")
		}
		score := it.Score
		if score == nil {
			score = it.RelevanceScore
		}
		if score == nil {
			return nil, domain.NewMalformedResponse(c.Name(), "result without score")
		}
		out = append(out, domain.Ranking{Index: *it.Index, Score: *score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// HealthCheck probes GET {base}/health.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rerank endpoint health returned status %d", resp.StatusCode)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
