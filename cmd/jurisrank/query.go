package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/filter"
	"github.com/kailas-cloud/jurisrank/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/jurisrank/internal/logger"
)

type queryOptions struct {
	caseID    string
	topK      int
	threshold float64
	keywords  []string
	courts    []string
	legalArea string
	since     int
}

type queryOutput struct {
	CaseID          string                 `json:"case_id"`
	Items           []caselaw.ScoredResult `json:"items"`
	Total           int                    `json:"total"`
	EmbeddingTokens int                    `json:"embedding_tokens"`
	Rerank          string                 `json:"rerank"`
}

func newQueryCmd(root *rootOptions) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   `query "<text>"`,
		Short: "Rank prior decisions for a question and print them as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := buildQuery(args[0], opts)
			if err != nil {
				return err
			}

			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := logpkg.ContextWithLogger(cmd.Context(), logger)
			a, err := buildApp(ctx, &cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return runQuery(ctx, a.search, opts.caseID, &q, cmd.OutOrStdout(), logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.caseID, "case", "cli", "case identifier used for rerank caching")
	f.IntVar(&opts.topK, "top-k", 0, "candidates to retrieve (0 uses ranking.candidate_pool)")
	f.Float64Var(&opts.threshold, "threshold", 0, "minimum raw similarity in [0,1]")
	f.StringSliceVar(&opts.keywords, "keyword", nil, "keyword adding a bonus when present (repeatable)")
	f.StringSliceVar(&opts.courts, "court", nil, "restrict to a court name, any of several (repeatable)")
	f.StringVar(&opts.legalArea, "legal-area", "", "restrict to a legal area")
	f.IntVar(&opts.since, "since", 0, "restrict to decisions from this year onwards")
	return cmd
}

type caseSearcher interface {
	Search(ctx context.Context, caseID string, q *query.Query) ([]caselaw.ScoredResult, error)
}

func runQuery(
	ctx context.Context,
	s caseSearcher,
	caseID string,
	q *query.Query,
	out io.Writer,
	logger *zap.Logger,
) error {
	ctx, usage := domain.NewContextWithUsage(ctx)
	results, err := s.Search(ctx, caseID, q)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if results == nil {
		results = []caselaw.ScoredResult{}
	}

	logger.Debug("Query finished",
		zap.Int("results", len(results)),
		zap.String("rerank", usage.Rerank),
	)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(queryOutput{
		CaseID:          caseID,
		Items:           results,
		Total:           len(results),
		EmbeddingTokens: usage.EmbeddingTokens,
		Rerank:          usage.Rerank,
	}); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// buildQuery turns the flags into a validated query.
func buildQuery(text string, opts *queryOptions) (query.Query, error) {
	expr, err := filter.Restrict(opts.courts, opts.legalArea, opts.since)
	if err != nil {
		return query.Query{}, fmt.Errorf("filters: %w", err)
	}
	q, err := query.New(text, expr, opts.topK, opts.threshold, opts.keywords)
	if err != nil {
		return query.Query{}, fmt.Errorf("query: %w", err)
	}
	return q, nil
}
