package scoring

// DegradedSummaryPrefix marks verdicts produced without a usable assessment.
// Consumers distinguish "analysis failed" from "analyzed, ineligible" by this
// marker together with the absent kill reason.
const DegradedSummaryPrefix = "analysis failed"

// Evaluate runs the four engine stages over an assessment: kill switch,
// sub-score clamping, persona routing, and strategy selection. The result is
// a pure function of its inputs.
func Evaluate(rubric Rubric, a Assessment) Verdict {
	if reason, killed := killSwitch(a.KillSwitch); killed {
		return Verdict{
			Score:        0,
			Eligible:     false,
			KillReason:   &reason,
			TargetEntity: EntityUndetermined,
			Summary:      a.Summary,
		}
	}

	breakdown := Breakdown{
		DomainFit: clamp(a.Breakdown.DomainFit, 0, rubric.DomainFitMax),
		RoleFit:   clamp(a.Breakdown.RoleFit, 0, rubric.RoleFitMax),
		TechFit:   clamp(a.Breakdown.TechFit, 0, rubric.TechFitMax),
	}

	verdict := Verdict{
		Score:        clamp(breakdown.DomainFit+breakdown.RoleFit+breakdown.TechFit, 0, 100),
		Eligible:     true,
		TargetEntity: route(a),
		Breakdown:    breakdown,
		Summary:      a.Summary,
	}

	if verdict.TargetEntity == EntityB {
		verdict.Strategy = selectStrategy(a)
	}

	return verdict
}

// Degraded builds the verdict for an opportunity whose assessment could not
// be obtained. Score zero, no kill reason, routing undetermined.
func Degraded(detail string) Verdict {
	summary := DegradedSummaryPrefix
	if detail != "" {
		summary += ": " + detail
	}
	return Verdict{
		Score:        0,
		Eligible:     false,
		TargetEntity: EntityUndetermined,
		Summary:      summary,
	}
}

// killSwitch applies the hard-disqualification predicates in declaration
// order; the first firing predicate names the verdict's kill reason.
func killSwitch(k KillSwitch) (KillReason, bool) {
	switch {
	case k.NoCashLabor:
		return KillReasonNoCashLabor, true
	case k.RestrictedOrganizer:
		return KillReasonRestrictedOrganizer, true
	}
	return "", false
}

// route resolves the target entity from deliverable-category keyword hits.
// No hits in either category leaves routing undetermined. When both
// categories register, the larger hit count wins; ties route to EntityB.
func route(a Assessment) Entity {
	sw, hw := len(a.SoftwareHits), len(a.HardwareHits)
	switch {
	case sw == 0 && hw == 0:
		return EntityUndetermined
	case sw > hw:
		return EntityA
	default:
		return EntityB
	}
}

// selectStrategy picks the collaboration approach for an EntityB opportunity
// by fixed precedence: certification, then field test, then mixed deliverables.
func selectStrategy(a Assessment) *Strategy {
	var s Strategy
	switch {
	case a.CertificationRequired:
		s = StrategyAcademicPartner
	case a.FieldTestRequired:
		s = StrategyExternalDemand
	case len(a.SoftwareHits) > 0 && len(a.HardwareHits) > 0:
		s = StrategyInternalSynergy
	default:
		return nil
	}
	return &s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
