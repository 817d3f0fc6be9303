package scoring

import "fmt"

// Rubric parameterizes an evaluation: sub-score ceilings and the keyword
// vocabularies that define the deliverable categories and requirement
// signals. A Rubric is fixed for the duration of a pipeline run; changing it
// mid-run is not supported.
type Rubric struct {
	DomainFitMax int `json:"domain_fit_max" toml:"domain_fit_max"`
	RoleFitMax   int `json:"role_fit_max" toml:"role_fit_max"`
	TechFitMax   int `json:"tech_fit_max" toml:"tech_fit_max"`

	SoftwareKeywords      []string `json:"software_keywords" toml:"software_keywords"`
	HardwareKeywords      []string `json:"hardware_keywords" toml:"hardware_keywords"`
	CertificationKeywords []string `json:"certification_keywords" toml:"certification_keywords"`
	FieldTestKeywords     []string `json:"field_test_keywords" toml:"field_test_keywords"`
}

// DefaultRubric returns the built-in rubric: 50/30/20 sub-score ceilings and
// the Korean/English vocabulary for government funding announcements.
func DefaultRubric() Rubric {
	return Rubric{
		DomainFitMax: 50,
		RoleFitMax:   30,
		TechFitMax:   20,
		SoftwareKeywords: []string{
			"소프트웨어", "SW", "S/W", "플랫폼", "데이터", "AI", "인공지능",
			"서비스 개발", "앱", "애플리케이션", "클라우드", "빅데이터",
		},
		HardwareKeywords: []string{
			"하드웨어", "HW", "H/W", "장비", "디바이스", "센서", "소재",
			"부품", "시제품", "제조", "기구", "설비",
		},
		CertificationKeywords: []string{
			"인증", "KC 인증", "시험성적서", "공인시험",
		},
		FieldTestKeywords: []string{
			"실증", "현장 테스트", "테스트베드", "시범 적용",
		},
	}
}

// Validate checks that the ceilings form a 100-point scale and every
// category vocabulary is non-empty.
func (r Rubric) Validate() error {
	if r.DomainFitMax <= 0 || r.RoleFitMax <= 0 || r.TechFitMax <= 0 {
		return fmt.Errorf("rubric: sub-score ceilings must be positive (domain=%d role=%d tech=%d)",
			r.DomainFitMax, r.RoleFitMax, r.TechFitMax)
	}
	if total := r.DomainFitMax + r.RoleFitMax + r.TechFitMax; total != 100 {
		return fmt.Errorf("rubric: sub-score ceilings must total 100, got %d", total)
	}
	if len(r.SoftwareKeywords) == 0 || len(r.HardwareKeywords) == 0 {
		return fmt.Errorf("rubric: deliverable category vocabularies must be non-empty")
	}
	return nil
}
