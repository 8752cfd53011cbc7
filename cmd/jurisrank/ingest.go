package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jurisrank/internal/domain"
	dombatch "github.com/kailas-cloud/jurisrank/internal/domain/batch"
	"github.com/kailas-cloud/jurisrank/internal/domain/caselaw"
	logpkg "github.com/kailas-cloud/jurisrank/internal/logger"
)

// maxLineBytes bounds one JSON line; decisions carry full texts.
const maxLineBytes = 8 << 20

type ingestLine struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Metadata caselaw.Metadata `json:"metadata"`
}

type ingestFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type ingestSummary struct {
	Succeeded       int             `json:"succeeded"`
	Failed          int             `json:"failed"`
	EmbeddingTokens int             `json:"embedding_tokens"`
	Failures        []ingestFailure `json:"failures,omitempty"`
}

type batchUpserter interface {
	Upsert(ctx context.Context, items []caselaw.Decision) []dombatch.Result
	MaxBatchSize() int
}

func newIngestCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.jsonl|->",
		Short: "Embed and index decisions from a JSON Lines file",
		Long: `Each line is {"id": "...", "text": "...", "metadata": {...}}.
An empty metadata.ecli defaults to the id. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()

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

			summary, err := ingest(ctx, a.batch, in, logger)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d decisions failed", summary.Failed, summary.Failed+summary.Succeeded)
			}
			return nil
		},
	}
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// ingest reads decisions line by line and upserts them in batches.
// A malformed line aborts before anything of its batch is written.
func ingest(ctx context.Context, b batchUpserter, in io.Reader, logger *zap.Logger) (ingestSummary, error) {
	var summary ingestSummary
	ctx, usage := domain.NewContextWithUsage(ctx)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	pending := make([]caselaw.Decision, 0, b.MaxBatchSize())
	flush := func() {
		if len(pending) == 0 {
			return
		}
		results := b.Upsert(ctx, pending)
		ok, failed := dombatch.Count(results)
		summary.Succeeded += ok
		summary.Failed += failed
		for _, r := range results {
			if r.Err() != nil {
				summary.Failures = append(summary.Failures, ingestFailure{ID: r.ID(), Error: r.Err().Error()})
			}
		}
		logger.Info("Batch ingested", zap.Int("succeeded", ok), zap.Int("failed", failed))
		pending = pending[:0]
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var l ingestLine
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			return summary, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if l.Metadata.ECLI == "" {
			l.Metadata.ECLI = l.ID
		}
		pending = append(pending, caselaw.Decision{ID: l.ID, Text: l.Text, Metadata: l.Metadata})
		if len(pending) == b.MaxBatchSize() {
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("read input: %w", err)
	}
	flush()

	summary.EmbeddingTokens = usage.EmbeddingTokens
	return summary, nil
}
