// Package analysis orchestrates the pipeline over a single announcement:
// extract the attachment text, obtain the oracle's assessment, and run the
// scoring engine. Failures downstream of format detection never abort the
// pipeline; they degrade into reviewable reports.
package analysis

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/minsuklee/fundscope/internal/extraction"
	"github.com/minsuklee/fundscope/internal/oracle"
	"github.com/minsuklee/fundscope/internal/scoring"
)

// Document is one announcement submitted for analysis.
type Document struct {
	Title  string
	Agency string
	Budget string
	Raw    extraction.RawDocument
}

// Report is the pipeline's result for one document. OracleFailed is set when
// the verdict is degraded because no usable assessment could be obtained.
type Report struct {
	Extraction   extraction.ExtractedText `json:"extraction"`
	Verdict      scoring.Verdict          `json:"verdict"`
	OracleFailed bool                     `json:"oracle_failed"`
}

// Pipeline wires the extractor, the oracle, and the rubric into a reusable
// analysis run. Safe for concurrent use.
type Pipeline struct {
	extractor   *extraction.Extractor
	oracle      oracle.Oracle
	rubric      scoring.Rubric
	concurrency int
	logger      *slog.Logger
}

func New(extractor *extraction.Extractor, o oracle.Oracle, rubric scoring.Rubric, concurrency int, logger *slog.Logger) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		extractor:   extractor,
		oracle:      o,
		rubric:      rubric,
		concurrency: concurrency,
		logger:      logger.With("system", "analysis"),
	}
}

// Analyze runs the full pipeline for one document. The only returned error
// is extraction.ErrUnsupportedFormat; every later failure is absorbed into
// the report.
func (p *Pipeline) Analyze(ctx context.Context, doc Document) (*Report, error) {
	text, err := p.extractor.Extract(doc.Raw)
	if err != nil {
		return nil, err
	}

	report := &Report{Extraction: text}

	if text.Empty() {
		report.Verdict = scoring.Degraded("no extractable text")
		return report, nil
	}

	assessment, err := p.oracle.Assess(ctx, oracle.Request{
		Title:  doc.Title,
		Agency: doc.Agency,
		Budget: doc.Budget,
		Text:   text.Text(),
		Rubric: p.rubric,
	})
	if err != nil {
		p.logger.Error("oracle assessment failed",
			"title", doc.Title,
			"unavailable", errors.Is(err, oracle.ErrUnavailable),
			"error", err,
		)
		report.Verdict = scoring.Degraded(err.Error())
		report.OracleFailed = true
		return report, nil
	}

	report.Verdict = scoring.Evaluate(p.rubric, *assessment)

	p.logger.Info("document analyzed",
		"title", doc.Title,
		"score", report.Verdict.Score,
		"eligible", report.Verdict.Eligible,
		"target_entity", report.Verdict.TargetEntity,
	)
	return report, nil
}

// BatchResult pairs a document with its report, or with the error that kept
// it from being analyzed.
type BatchResult struct {
	Document Document
	Report   *Report
	Err      error
}

// AnalyzeBatch analyzes documents concurrently, bounded by the pipeline's
// oracle concurrency. One document's failure never stops the batch; results
// keep input order.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, docs []Document) []BatchResult {
	results := make([]BatchResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, doc := range docs {
		results[i].Document = doc
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i].Err = gctx.Err()
				return nil
			}
			results[i].Report, results[i].Err = p.Analyze(gctx, doc)
			return nil
		})
	}

	// goroutines report per-document failures through their slot
	_ = g.Wait()
	return results
}
