package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/minsuklee/fundscope/internal/analysis"
	"github.com/minsuklee/fundscope/internal/extraction"
	"github.com/minsuklee/fundscope/internal/scoring"
	"github.com/minsuklee/fundscope/pkg/pagination"
	"github.com/minsuklee/fundscope/pkg/query"
	"github.com/minsuklee/fundscope/pkg/repository"
)

type repo struct {
	db         *sql.DB
	pipeline   *analysis.Pipeline
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a project repository implementing the System interface.
func New(
	db *sql.DB,
	pipeline *analysis.Pipeline,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		pipeline:   pipeline,
		logger:     logger.With("system", "projects"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Project], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Agency", "Summary")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanProject)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Project, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProject)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Analyze(ctx context.Context, cmd AnalyzeCommand) (*Project, error) {
	report, status := r.run(ctx, cmd)

	fingerprint := Fingerprint(cmd.Title, cmd.Agency, cmd.EndDate)
	verdict := report.Verdict

	q := `
		INSERT INTO projects(
			id, title, agency, end_date, source_url, budget, filename, fingerprint, status,
			score, eligible, kill_reason, target_entity, strategy,
			domain_fit, role_fit, tech_fit, summary, extraction_warning, analyzed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, now())
		ON CONFLICT (fingerprint) DO UPDATE SET
			title = EXCLUDED.title,
			agency = EXCLUDED.agency,
			end_date = EXCLUDED.end_date,
			source_url = EXCLUDED.source_url,
			budget = EXCLUDED.budget,
			filename = EXCLUDED.filename,
			status = EXCLUDED.status,
			score = EXCLUDED.score,
			eligible = EXCLUDED.eligible,
			kill_reason = EXCLUDED.kill_reason,
			target_entity = EXCLUDED.target_entity,
			strategy = EXCLUDED.strategy,
			domain_fit = EXCLUDED.domain_fit,
			role_fit = EXCLUDED.role_fit,
			tech_fit = EXCLUDED.tech_fit,
			summary = EXCLUDED.summary,
			extraction_warning = EXCLUDED.extraction_warning,
			analyzed_at = EXCLUDED.analyzed_at,
			updated_at = now()
		RETURNING id, title, agency, end_date, source_url, budget, filename, fingerprint, status,
			score, eligible, kill_reason, target_entity, strategy,
			domain_fit, role_fit, tech_fit, summary, extraction_warning,
			analyzed_at, created_at, updated_at`

	insertArgs := []any{
		uuid.New(),
		cmd.Title,
		cmd.Agency,
		cmd.EndDate,
		cmd.SourceURL,
		cmd.Budget,
		cmd.Filename,
		fingerprint,
		status,
		verdict.Score,
		verdict.Eligible,
		enumValue(verdict.KillReason),
		string(verdict.TargetEntity),
		enumValue(verdict.Strategy),
		verdict.Breakdown.DomainFit,
		verdict.Breakdown.RoleFit,
		verdict.Breakdown.TechFit,
		verdict.Summary,
		string(report.Extraction.Warning),
	}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Project, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanProject)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("project analyzed",
		"id", p.ID,
		"fingerprint", p.Fingerprint,
		"status", p.Status,
		"score", p.Score,
	)
	return &p, nil
}

func (r *repo) Preview(ctx context.Context, cmd AnalyzeCommand) (*analysis.Report, error) {
	report, _ := r.run(ctx, cmd)
	return report, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM projects WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("project deleted", "id", id)
	return nil
}

// run executes the pipeline and derives the project status. Unsupported
// formats produce a not-parsed result rather than an error, so a batch of
// collected announcements never stops on one odd attachment.
func (r *repo) run(ctx context.Context, cmd AnalyzeCommand) (*analysis.Report, string) {
	doc := analysis.Document{
		Title:  cmd.Title,
		Agency: cmd.Agency,
		Budget: cmd.Budget,
		Raw: extraction.RawDocument{
			Data:      cmd.Data,
			Filename:  cmd.Filename,
			SourceURL: cmd.SourceURL,
		},
	}

	report, err := r.pipeline.Analyze(ctx, doc)
	if err != nil {
		if !errors.Is(err, extraction.ErrUnsupportedFormat) {
			r.logger.Error("pipeline failed", "title", cmd.Title, "error", err)
		}
		return &analysis.Report{
			Extraction: extraction.ExtractedText{Warning: extraction.WarningNone},
			Verdict:    scoring.Degraded("unsupported document format"),
		}, StatusNotParsed
	}

	return report, deriveStatus(report)
}

func deriveStatus(report *analysis.Report) string {
	switch {
	case report.Extraction.Empty():
		return StatusManualReview
	case report.OracleFailed:
		return StatusFailed
	default:
		return StatusAnalyzed
	}
}

func enumValue[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
