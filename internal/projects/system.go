package projects

import (
	"context"

	"github.com/google/uuid"

	"github.com/minsuklee/fundscope/internal/analysis"
	"github.com/minsuklee/fundscope/pkg/pagination"
)

// System defines the public contract for project domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Project], error)

	Find(ctx context.Context, id uuid.UUID) (*Project, error)

	// Analyze runs the pipeline over the attachment and upserts the project
	// keyed by its fingerprint. Re-analysis of a known announcement replaces
	// the stored verdict.
	Analyze(ctx context.Context, cmd AnalyzeCommand) (*Project, error)

	// Preview runs the pipeline without persisting anything.
	Preview(ctx context.Context, cmd AnalyzeCommand) (*analysis.Report, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
