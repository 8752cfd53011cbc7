package crossencoder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/jurisrank/internal/domain"
)

func rerankServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req rerankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Query == "" || len(req.Texts) == 0 {
			t.Errorf("unexpected request body %+v", req)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestRerank_TEIShape(t *testing.T) {
	server := rerankServer(t, http.StatusOK, `[{"index":0,"score":0.2},{"index":2,"score":0.9},{"index":1,"score":0.5}]`)
	defer server.Close()

	got, err := New(server.URL+"/").Rerank(context.Background(), "huurachterstand", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{2, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("got %d rankings", len(got))
	}
	for i, idx := range want {
		if got[i].Index != idx {
			t.Errorf("position %d: index %d, want %d", i, got[i].Index, idx)
		}
	}
}

func TestRerank_CohereShape(t *testing.T) {
	server := rerankServer(t, http.StatusOK,
		`{"results":[{"index":1,"relevance_score":0.7},{"index":0,"relevance_score":0.8}]}`)
	defer server.Close()

	got, err := New(server.URL).Rerank(context.Background(), "q", []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Index != 0 || got[0].Score != 0.8 {
		t.Errorf("first ranking = %+v", got[0])
	}
}

func TestRerank_SendsAuthAndModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var req rerankRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "bge-reranker-v2-m3" {
			t.Errorf("model = %q", req.Model)
		}
		_, _ = w.Write([]byte(`[{"index":0,"score":1}]`))
	}))
	defer server.Close()

	c := New(server.URL, WithAPIKey("secret"), WithModel("bge-reranker-v2-m3"))
	if _, err := c.Rerank(context.Background(), "q", []string{"a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRerank_RequestShape(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		wantKeys []string
		noKeys   []string
	}{
		{"tei", nil, []string{"query", "texts"}, []string{"documents", "top_n", "model"}},
		{"tei with model", []Option{WithModel("bge-reranker-v2-m3")}, []string{"query", "texts", "model"}, []string{"documents"}},
		{"cohere", []Option{WithCohereAPI(), WithModel("rerank-multilingual-v3.0")},
			[]string{"model", "query", "documents", "top_n"}, []string{"texts"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]json.RawMessage
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("decode request: %v", err)
				}
				_, _ = w.Write([]byte(`{"results":[{"index":1,"relevance_score":0.9},{"index":0,"relevance_score":0.1}]}`))
			}))
			defer server.Close()

			got, err := New(server.URL, tt.opts...).Rerank(context.Background(), "ontbinding huur", []string{"a", "b"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != 2 || got[0].Index != 1 {
				t.Errorf("unexpected rankings %+v", got)
			}
			for _, k := range tt.wantKeys {
				if _, ok := body[k]; !ok {
					t.Errorf("missing key %q in %v", k, body)
				}
			}
			for _, k := range tt.noKeys {
				if _, ok := body[k]; ok {
					t.Errorf("unexpected key %q in %v", k, body)
				}
			}
		})
	}
}

func TestRerank_CohereBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req cohereRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "rerank-multilingual-v3.0" || req.Query != "q" || req.TopN != 3 || len(req.Documents) != 3 {
			t.Errorf("unexpected request %+v", req)
		}
		_, _ = w.Write([]byte(`{"results":[{"index":2,"relevance_score":0.9}]}`))
	}))
	defer server.Close()

	c := New(server.URL, WithCohereAPI(), WithModel("rerank-multilingual-v3.0"))
	if _, err := c.Rerank(context.Background(), "q", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRerank_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		malformed bool
		contains  string
	}{
		{"server error", http.StatusInternalServerError, "model not loaded", false, "status 500: model not loaded"},
		{"invalid json", http.StatusOK, "[{", true, "invalid JSON"},
		{"empty array", http.StatusOK, "[]", true, "no results"},
		{"missing score", http.StatusOK, `[{"index":0}]`, true, "without score"},
		{"missing index", http.StatusOK, `[{"score":0.3}]`, true, "without index"},
		{"plain text", http.StatusOK, "ok", true, "unexpected body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := rerankServer(t, tt.status, tt.body)
			defer server.Close()

			_, err := New(server.URL).Rerank(context.Background(), "q", []string{"a"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, domain.ErrMalformedResponse); got != tt.malformed {
				t.Errorf("malformed = %v, want %v (%v)", got, tt.malformed, err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", err, tt.contains)
			}
		})
	}
}

func TestRerank_NoDocuments(t *testing.T) {
	got, err := New("http://unused").Rerank(context.Background(), "q", nil)
	if err != nil || got != nil {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestHealthCheck(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	healthy = false
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Error("expected error for unhealthy endpoint")
	}
}
