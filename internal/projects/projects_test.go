package projects_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/minsuklee/fundscope/internal/extraction"
	"github.com/minsuklee/fundscope/internal/projects"
)

func TestFingerprintDeterministic(t *testing.T) {
	end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	a := projects.Fingerprint("AI 바우처", "NIPA", &end)
	b := projects.Fingerprint("AI 바우처", "NIPA", &end)
	if a != b {
		t.Errorf("same inputs produced %q and %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestFingerprintDiscriminates(t *testing.T) {
	end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	other := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	base := projects.Fingerprint("AI 바우처", "NIPA", &end)

	if projects.Fingerprint("AI 바우처 2차", "NIPA", &end) == base {
		t.Error("different titles collided")
	}
	if projects.Fingerprint("AI 바우처", "KISA", &end) == base {
		t.Error("different agencies collided")
	}
	if projects.Fingerprint("AI 바우처", "NIPA", &other) == base {
		t.Error("different end dates collided")
	}
	if projects.Fingerprint("AI 바우처", "NIPA", nil) == base {
		t.Error("nil end date collided with dated announcement")
	}
}

func TestFingerprintTimeOfDayIrrelevant(t *testing.T) {
	morning := time.Date(2026, 9, 30, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 9, 30, 21, 30, 0, 0, time.UTC)

	if projects.Fingerprint("공고", "기관", &morning) != projects.Fingerprint("공고", "기관", &evening) {
		t.Error("same calendar day produced different fingerprints")
	}
}

func TestParseEndDate(t *testing.T) {
	got, err := projects.ParseEndDate("2026-09-30")
	if err != nil {
		t.Fatalf("ParseEndDate() error = %v", err)
	}
	if got == nil || got.Format("2006-01-02") != "2026-09-30" {
		t.Errorf("ParseEndDate() = %v", got)
	}

	got, err = projects.ParseEndDate("")
	if err != nil || got != nil {
		t.Errorf("ParseEndDate(\"\") = %v, %v, want nil, nil", got, err)
	}

	if _, err := projects.ParseEndDate("2026/09/30"); err == nil {
		t.Error("ParseEndDate() accepted malformed date")
	}
}

func TestFiltersFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("status", projects.StatusAnalyzed)
	values.Set("agency", "중소벤처기업부")
	values.Set("eligible", "true")
	values.Set("target_entity", "ENTITY_B")
	values.Set("min_score", "60")
	values.Set("strategy", "")

	f := projects.FiltersFromQuery(values)

	if f.Status == nil || *f.Status != projects.StatusAnalyzed {
		t.Errorf("Status = %v", f.Status)
	}
	if f.Agency == nil || *f.Agency != "중소벤처기업부" {
		t.Errorf("Agency = %v", f.Agency)
	}
	if f.Eligible == nil || !*f.Eligible {
		t.Errorf("Eligible = %v", f.Eligible)
	}
	if f.TargetEntity == nil || *f.TargetEntity != "ENTITY_B" {
		t.Errorf("TargetEntity = %v", f.TargetEntity)
	}
	if f.MinScore == nil || *f.MinScore != 60 {
		t.Errorf("MinScore = %v", f.MinScore)
	}
	if f.Strategy != nil {
		t.Errorf("Strategy = %v, want nil for empty param", f.Strategy)
	}
	if f.Title != nil {
		t.Errorf("Title = %v, want nil for absent param", f.Title)
	}
}

func TestFiltersFromQueryIgnoresMalformed(t *testing.T) {
	values := url.Values{}
	values.Set("eligible", "maybe")
	values.Set("min_score", "high")

	f := projects.FiltersFromQuery(values)
	if f.Eligible != nil || f.MinScore != nil {
		t.Errorf("malformed values parsed: %+v", f)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{projects.ErrNotFound, http.StatusNotFound},
		{projects.ErrDuplicate, http.StatusConflict},
		{projects.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{projects.ErrInvalidInput, http.StatusBadRequest},
		{extraction.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{http.ErrBodyNotAllowed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := projects.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
