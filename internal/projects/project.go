// Package projects implements the funding-project domain: persistence of
// announcement metadata and analysis verdicts, deduplication by fingerprint,
// and the HTTP surface for running and reviewing analyses.
package projects

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/minsuklee/fundscope/internal/scoring"
)

// Project lifecycle statuses.
const (
	// StatusPending marks a registered project whose analysis has not run.
	StatusPending = "pending"

	// StatusAnalyzed marks a project with a complete verdict.
	StatusAnalyzed = "analyzed"

	// StatusManualReview marks a project whose document yielded no usable
	// text (scanned images, undecodable files).
	StatusManualReview = "manual_review"

	// StatusFailed marks a project whose oracle assessment could not be
	// obtained; re-analysis may succeed later.
	StatusFailed = "failed"

	// StatusNotParsed marks a project whose document format matched no
	// decoder.
	StatusNotParsed = "not_parsed"
)

// Project is a registered funding announcement with its latest verdict.
// Nullable columns map to pointer fields.
type Project struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Agency      string     `json:"agency"`
	EndDate     *time.Time `json:"end_date"`
	SourceURL   string     `json:"source_url"`
	Budget      string     `json:"budget"`
	Filename    string     `json:"filename"`
	Fingerprint string     `json:"fingerprint"`
	Status      string     `json:"status"`

	Score             int            `json:"score"`
	Eligible          bool           `json:"eligible"`
	KillReason        *string        `json:"kill_reason"`
	TargetEntity      scoring.Entity `json:"target_entity"`
	Strategy          *string        `json:"strategy"`
	DomainFit         int            `json:"domain_fit"`
	RoleFit           int            `json:"role_fit"`
	TechFit           int            `json:"tech_fit"`
	Summary           string         `json:"summary"`
	ExtractionWarning string         `json:"extraction_warning"`

	AnalyzedAt *time.Time `json:"analyzed_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AnalyzeCommand carries an announcement attachment and its metadata through
// one analysis run. Data holds the raw file bytes; the buffer is discarded
// once extraction completes.
type AnalyzeCommand struct {
	Data      []byte
	Filename  string
	Title     string
	Agency    string
	Budget    string
	SourceURL string
	EndDate   *time.Time
}

// Fingerprint derives the announcement's stable dedup key: the SHA-256 hex
// digest of title, agency, and application end date joined with "|". A nil
// end date contributes an empty field, so the same announcement without a
// deadline still collides with itself.
func Fingerprint(title, agency string, endDate *time.Time) string {
	date := ""
	if endDate != nil {
		date = endDate.Format("2006-01-02")
	}
	sum := sha256.Sum256([]byte(title + "|" + agency + "|" + date))
	return hex.EncodeToString(sum[:])
}
