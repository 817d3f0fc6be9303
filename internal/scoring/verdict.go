// Package scoring implements the deterministic eligibility and scoring
// engine. All text-understanding judgments arrive pre-computed in an
// Assessment; this package owns only the combination rules, thresholds, and
// stage sequencing, which are reproducible bit-for-bit given identical
// assessments.
package scoring

// KillReason identifies which hard-disqualification predicate fired.
type KillReason string

const (
	// KillReasonNoCashLabor fires when no cash labor-cost category exists,
	// or the announcement restricts labor funding to in-kind contributions.
	KillReasonNoCashLabor KillReason = "NO_CASH_LABOR"

	// KillReasonRestrictedOrganizer fires when eligibility is limited to
	// organization types that exclude enterprises outright.
	KillReasonRestrictedOrganizer KillReason = "RESTRICTED_ORGANIZER"
)

// Entity identifies which operating entity a fundable opportunity routes to.
type Entity string

const (
	// EntityA executes software, platform, data, and service deliverables.
	EntityA Entity = "ENTITY_A"

	// EntityB executes hardware, device, sensor, material, and prototype
	// deliverables.
	EntityB Entity = "ENTITY_B"

	// EntityUndetermined is the routing outcome when no deliverable
	// category registers an explicit keyword hit.
	EntityUndetermined Entity = "UNDETERMINED"
)

// Strategy identifies the collaboration approach for an EntityB opportunity.
type Strategy string

const (
	StrategyInternalSynergy Strategy = "INTERNAL_SYNERGY"
	StrategyAcademicPartner Strategy = "ACADEMIC_PARTNER"
	StrategyExternalDemand  Strategy = "EXTERNAL_DEMAND"
)

// Breakdown carries the three integer sub-scores.
type Breakdown struct {
	DomainFit int `json:"domain_fit"`
	RoleFit   int `json:"role_fit"`
	TechFit   int `json:"tech_fit"`
}

// KillSwitch carries the two hard-disqualification predicates judged over
// the announcement text, plus the judged rationale.
type KillSwitch struct {
	NoCashLabor         bool   `json:"no_cash_labor"`
	RestrictedOrganizer bool   `json:"restricted_organizer"`
	Reason              string `json:"reason"`
}

// Assessment is the structured judgment payload the engine consumes: kill
// predicates, rubric sub-scores, deliverable-category keyword hits, detected
// requirement signals, and a prose summary.
type Assessment struct {
	KillSwitch            KillSwitch `json:"kill_switch"`
	Breakdown             Breakdown  `json:"score_breakdown"`
	SoftwareHits          []string   `json:"software_hits"`
	HardwareHits          []string   `json:"hardware_hits"`
	CertificationRequired bool       `json:"certification_required"`
	FieldTestRequired     bool       `json:"field_test_required"`
	Summary               string     `json:"summary"`
}

// Verdict is the engine's immutable structured result. Eligible=false always
// carries Score=0; Strategy is non-nil only when TargetEntity is EntityB.
// Re-analysis produces a new Verdict, never an in-place update.
type Verdict struct {
	Score        int         `json:"score"`
	Eligible     bool        `json:"eligible"`
	KillReason   *KillReason `json:"kill_reason,omitempty"`
	TargetEntity Entity      `json:"target_entity"`
	Strategy     *Strategy   `json:"strategy,omitempty"`
	Breakdown    Breakdown   `json:"breakdown"`
	Summary      string      `json:"summary"`
}
