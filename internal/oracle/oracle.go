// Package oracle defines the contract with the language-model judgment
// service and its go-agents client. The oracle answers bounded questions
// about announcement text; every combination rule over its answers lives in
// the scoring engine, never here.
package oracle

import (
	"context"

	"github.com/minsuklee/fundscope/internal/scoring"
)

// Request is one judgment request: the announcement's identifying fields,
// its extracted text, and the rubric the assessment must follow.
type Request struct {
	Title  string
	Agency string
	Budget string
	Text   string
	Rubric scoring.Rubric
}

// Oracle produces a structured assessment for an announcement. Assess
// returns ErrUnavailable when the service could not be reached after
// retries and ErrResponseInvalid when it answered with an unusable payload.
type Oracle interface {
	Assess(ctx context.Context, req Request) (*scoring.Assessment, error)
}
