package projects

import (
	"net/url"
	"strconv"
	"time"

	"github.com/minsuklee/fundscope/pkg/query"
	"github.com/minsuklee/fundscope/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "projects", "p").
	Project("id", "ID").
	Project("title", "Title").
	Project("agency", "Agency").
	Project("end_date", "EndDate").
	Project("source_url", "SourceURL").
	Project("budget", "Budget").
	Project("filename", "Filename").
	Project("fingerprint", "Fingerprint").
	Project("status", "Status").
	Project("score", "Score").
	Project("eligible", "Eligible").
	Project("kill_reason", "KillReason").
	Project("target_entity", "TargetEntity").
	Project("strategy", "Strategy").
	Project("domain_fit", "DomainFit").
	Project("role_fit", "RoleFit").
	Project("tech_fit", "TechFit").
	Project("summary", "Summary").
	Project("extraction_warning", "ExtractionWarning").
	Project("analyzed_at", "AnalyzedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for project queries. Nil
// fields are ignored. Title and Agency use case-insensitive contains
// matching; the rest match exactly.
type Filters struct {
	Status       *string `json:"status,omitempty"`
	Title        *string `json:"title,omitempty"`
	Agency       *string `json:"agency,omitempty"`
	Eligible     *bool   `json:"eligible,omitempty"`
	TargetEntity *string `json:"target_entity,omitempty"`
	Strategy     *string `json:"strategy,omitempty"`
	MinScore     *int    `json:"min_score,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Title", f.Title).
		WhereContains("Agency", f.Agency).
		WhereEquals("Eligible", f.Eligible).
		WhereEquals("TargetEntity", f.TargetEntity).
		WhereEquals("Strategy", f.Strategy).
		WhereAtLeast("Score", f.MinScore)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	if a := values.Get("agency"); a != "" {
		f.Agency = &a
	}

	if e := values.Get("eligible"); e != "" {
		if v, err := strconv.ParseBool(e); err == nil {
			f.Eligible = &v
		}
	}

	if te := values.Get("target_entity"); te != "" {
		f.TargetEntity = &te
	}

	if st := values.Get("strategy"); st != "" {
		f.Strategy = &st
	}

	if ms := values.Get("min_score"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil {
			f.MinScore = &v
		}
	}

	return f
}

// ParseEndDate parses the announcement deadline from its form value.
func ParseEndDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanProject(s repository.Scanner) (Project, error) {
	var p Project
	err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Agency,
		&p.EndDate,
		&p.SourceURL,
		&p.Budget,
		&p.Filename,
		&p.Fingerprint,
		&p.Status,
		&p.Score,
		&p.Eligible,
		&p.KillReason,
		&p.TargetEntity,
		&p.Strategy,
		&p.DomainFit,
		&p.RoleFit,
		&p.TechFit,
		&p.Summary,
		&p.ExtractionWarning,
		&p.AnalyzedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
