package scoring_test

import (
	"strings"
	"testing"

	"github.com/minsuklee/fundscope/internal/scoring"
)

func assessment() scoring.Assessment {
	return scoring.Assessment{
		Breakdown: scoring.Breakdown{DomainFit: 40, RoleFit: 25, TechFit: 15},
		Summary:   "중소기업 대상 SW 개발 지원사업",
	}
}

func TestEvaluateEligible(t *testing.T) {
	a := assessment()
	a.SoftwareHits = []string{"소프트웨어", "플랫폼"}

	v := scoring.Evaluate(scoring.DefaultRubric(), a)

	if !v.Eligible {
		t.Fatal("Eligible = false")
	}
	if v.Score != 80 {
		t.Errorf("Score = %d, want 80", v.Score)
	}
	if v.KillReason != nil {
		t.Errorf("KillReason = %v, want nil", *v.KillReason)
	}
	if v.TargetEntity != scoring.EntityA {
		t.Errorf("TargetEntity = %v, want ENTITY_A", v.TargetEntity)
	}
	if v.Strategy != nil {
		t.Errorf("Strategy = %v, want nil for ENTITY_A", *v.Strategy)
	}
	if v.Summary != a.Summary {
		t.Errorf("Summary = %q", v.Summary)
	}
}

func TestEvaluateKillSwitch(t *testing.T) {
	tests := []struct {
		name string
		kill scoring.KillSwitch
		want scoring.KillReason
	}{
		{
			name: "no cash labor",
			kill: scoring.KillSwitch{NoCashLabor: true, Reason: "인건비 현물만 가능"},
			want: scoring.KillReasonNoCashLabor,
		},
		{
			name: "restricted organizer",
			kill: scoring.KillSwitch{RestrictedOrganizer: true, Reason: "대학 및 연구기관만 신청 가능"},
			want: scoring.KillReasonRestrictedOrganizer,
		},
		{
			name: "no cash labor takes precedence",
			kill: scoring.KillSwitch{NoCashLabor: true, RestrictedOrganizer: true},
			want: scoring.KillReasonNoCashLabor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assessment()
			a.KillSwitch = tt.kill
			a.SoftwareHits = []string{"SW"}

			v := scoring.Evaluate(scoring.DefaultRubric(), a)

			if v.Eligible {
				t.Error("Eligible = true for killed announcement")
			}
			if v.Score != 0 {
				t.Errorf("Score = %d, want 0", v.Score)
			}
			if v.KillReason == nil || *v.KillReason != tt.want {
				t.Errorf("KillReason = %v, want %v", v.KillReason, tt.want)
			}
			if v.TargetEntity != scoring.EntityUndetermined {
				t.Errorf("TargetEntity = %v, want UNDETERMINED", v.TargetEntity)
			}
		})
	}
}

func TestEvaluateClampsSubScores(t *testing.T) {
	a := assessment()
	a.Breakdown = scoring.Breakdown{DomainFit: 90, RoleFit: -10, TechFit: 35}
	a.HardwareHits = []string{"센서"}

	v := scoring.Evaluate(scoring.DefaultRubric(), a)

	want := scoring.Breakdown{DomainFit: 50, RoleFit: 0, TechFit: 20}
	if v.Breakdown != want {
		t.Errorf("Breakdown = %+v, want %+v", v.Breakdown, want)
	}
	if v.Score != 70 {
		t.Errorf("Score = %d, want 70", v.Score)
	}
}

func TestEvaluateScoreBounds(t *testing.T) {
	rubric := scoring.DefaultRubric()

	for _, b := range []scoring.Breakdown{
		{DomainFit: -100, RoleFit: -100, TechFit: -100},
		{DomainFit: 1000, RoleFit: 1000, TechFit: 1000},
		{DomainFit: 50, RoleFit: 30, TechFit: 20},
	} {
		a := assessment()
		a.Breakdown = b
		v := scoring.Evaluate(rubric, a)
		if v.Score < 0 || v.Score > 100 {
			t.Errorf("Score = %d out of [0,100] for breakdown %+v", v.Score, b)
		}
	}
}

func TestEvaluateRouting(t *testing.T) {
	tests := []struct {
		name     string
		software []string
		hardware []string
		want     scoring.Entity
	}{
		{"no hits", nil, nil, scoring.EntityUndetermined},
		{"software only", []string{"SW", "플랫폼"}, nil, scoring.EntityA},
		{"hardware only", nil, []string{"시제품"}, scoring.EntityB},
		{"software majority", []string{"SW", "AI", "데이터"}, []string{"센서"}, scoring.EntityA},
		{"hardware majority", []string{"SW"}, []string{"센서", "소재"}, scoring.EntityB},
		{"tie routes to hardware entity", []string{"SW"}, []string{"센서"}, scoring.EntityB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assessment()
			a.SoftwareHits = tt.software
			a.HardwareHits = tt.hardware

			v := scoring.Evaluate(scoring.DefaultRubric(), a)
			if v.TargetEntity != tt.want {
				t.Errorf("TargetEntity = %v, want %v", v.TargetEntity, tt.want)
			}
		})
	}
}

func TestEvaluateStrategy(t *testing.T) {
	tests := []struct {
		name      string
		configure func(*scoring.Assessment)
		want      *scoring.Strategy
	}{
		{
			name: "certification outranks field test",
			configure: func(a *scoring.Assessment) {
				a.CertificationRequired = true
				a.FieldTestRequired = true
			},
			want: strategyPtr(scoring.StrategyAcademicPartner),
		},
		{
			name: "field test",
			configure: func(a *scoring.Assessment) {
				a.FieldTestRequired = true
			},
			want: strategyPtr(scoring.StrategyExternalDemand),
		},
		{
			name: "mixed deliverables",
			configure: func(a *scoring.Assessment) {
				a.SoftwareHits = []string{"SW"}
			},
			want: strategyPtr(scoring.StrategyInternalSynergy),
		},
		{
			name:      "no signals",
			configure: func(a *scoring.Assessment) {},
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assessment()
			a.HardwareHits = []string{"센서", "장비"}
			tt.configure(&a)

			v := scoring.Evaluate(scoring.DefaultRubric(), a)

			if v.TargetEntity != scoring.EntityB {
				t.Fatalf("TargetEntity = %v, want ENTITY_B", v.TargetEntity)
			}
			switch {
			case tt.want == nil && v.Strategy != nil:
				t.Errorf("Strategy = %v, want nil", *v.Strategy)
			case tt.want != nil && v.Strategy == nil:
				t.Errorf("Strategy = nil, want %v", *tt.want)
			case tt.want != nil && *v.Strategy != *tt.want:
				t.Errorf("Strategy = %v, want %v", *v.Strategy, *tt.want)
			}
		})
	}
}

func TestDegraded(t *testing.T) {
	v := scoring.Degraded("oracle unavailable")

	if v.Eligible {
		t.Error("Eligible = true for degraded verdict")
	}
	if v.Score != 0 {
		t.Errorf("Score = %d, want 0", v.Score)
	}
	if v.KillReason != nil {
		t.Errorf("KillReason = %v, want nil", *v.KillReason)
	}
	if v.TargetEntity != scoring.EntityUndetermined {
		t.Errorf("TargetEntity = %v, want UNDETERMINED", v.TargetEntity)
	}
	if !strings.HasPrefix(v.Summary, scoring.DegradedSummaryPrefix) {
		t.Errorf("Summary = %q, want %q prefix", v.Summary, scoring.DegradedSummaryPrefix)
	}
	if !strings.Contains(v.Summary, "oracle unavailable") {
		t.Errorf("Summary = %q, missing failure detail", v.Summary)
	}
}

func TestDefaultRubricValidates(t *testing.T) {
	if err := scoring.DefaultRubric().Validate(); err != nil {
		t.Errorf("DefaultRubric().Validate() = %v", err)
	}
}

func TestRubricValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*scoring.Rubric)
	}{
		{"zero ceiling", func(r *scoring.Rubric) { r.DomainFitMax = 0 }},
		{"total not 100", func(r *scoring.Rubric) { r.TechFitMax = 30 }},
		{"empty vocabulary", func(r *scoring.Rubric) { r.SoftwareKeywords = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := scoring.DefaultRubric()
			tt.mutate(&r)
			if err := r.Validate(); err == nil {
				t.Error("Validate() = nil for invalid rubric")
			}
		})
	}
}

func strategyPtr(s scoring.Strategy) *scoring.Strategy {
	return &s
}
