package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/minsuklee/fundscope/internal/scoring"
)

const EnvRubricFile = "FUNDSCOPE_RUBRIC_FILE"

// RubricConfig resolves the scoring rubric: built-in defaults, optionally
// replaced by an external TOML file, with inline overrides on top. Once
// finalized the rubric does not change for the life of the process.
type RubricConfig struct {
	// File points at a TOML document holding a complete rubric.
	File string `toml:"file"`

	scoring.Rubric
}

// Finalize resolves the effective rubric and validates it.
func (c *RubricConfig) Finalize() error {
	if v := os.Getenv(EnvRubricFile); v != "" {
		c.File = v
	}

	base := scoring.DefaultRubric()

	if c.File != "" {
		loaded, err := loadRubricFile(c.File)
		if err != nil {
			return err
		}
		base = loaded
	}

	mergeRubric(&base, c.Rubric)
	c.Rubric = base

	return c.Rubric.Validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *RubricConfig) Merge(overlay *RubricConfig) {
	if overlay.File != "" {
		c.File = overlay.File
	}
	mergeRubric(&c.Rubric, overlay.Rubric)
}

func mergeRubric(base *scoring.Rubric, overlay scoring.Rubric) {
	if overlay.DomainFitMax != 0 {
		base.DomainFitMax = overlay.DomainFitMax
	}
	if overlay.RoleFitMax != 0 {
		base.RoleFitMax = overlay.RoleFitMax
	}
	if overlay.TechFitMax != 0 {
		base.TechFitMax = overlay.TechFitMax
	}
	if len(overlay.SoftwareKeywords) > 0 {
		base.SoftwareKeywords = overlay.SoftwareKeywords
	}
	if len(overlay.HardwareKeywords) > 0 {
		base.HardwareKeywords = overlay.HardwareKeywords
	}
	if len(overlay.CertificationKeywords) > 0 {
		base.CertificationKeywords = overlay.CertificationKeywords
	}
	if len(overlay.FieldTestKeywords) > 0 {
		base.FieldTestKeywords = overlay.FieldTestKeywords
	}
}

func loadRubricFile(path string) (scoring.Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scoring.Rubric{}, fmt.Errorf("read rubric file: %w", err)
	}

	var r scoring.Rubric
	if err := toml.Unmarshal(data, &r); err != nil {
		return scoring.Rubric{}, fmt.Errorf("parse rubric file %s: %w", path, err)
	}
	return r, nil
}
