// Package extraction implements the format dispatch layer of the analysis
// pipeline. It routes raw attachment bytes to the decoder matching their
// format and normalizes every outcome, including decoder failures, into a
// single ExtractedText representation.
package extraction

import (
	"errors"
	"strings"
)

// Warning qualifies the fidelity of an extraction result.
type Warning string

const (
	// WarningNone indicates a clean extraction.
	WarningNone Warning = "NONE"

	// WarningEmptyTextLayer indicates a document with no extractable text,
	// typically a scanned image requiring manual review.
	WarningEmptyTextLayer Warning = "EMPTY_TEXT_LAYER"

	// WarningPartialTableLoss indicates a truncated record stream; the text
	// recovered before the truncation point is retained.
	WarningPartialTableLoss Warning = "PARTIAL_TABLE_LOSS"

	// WarningDecodeFailed indicates the document could not be decoded at
	// all and the result carries no text.
	WarningDecodeFailed Warning = "DECODE_FAILED"
)

// ErrUnsupportedFormat indicates a document whose format matches no decoder.
// Unsupported documents never reach scoring; callers record them as not
// parsed instead of failing the run.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// RawDocument is an attachment as delivered by a collaborator: raw bytes
// plus the declared filename and origin. The buffer belongs to the pipeline
// invocation and is discarded after extraction.
type RawDocument struct {
	Data      []byte
	Filename  string
	SourceURL string
}

// ExtractedText is the normalized output of exactly one decoder run:
// a sequence of text segments, one per logical page or section, immutable
// once produced.
type ExtractedText struct {
	Segments  []string `json:"segments"`
	ImageOnly bool     `json:"image_only"`
	Warning   Warning  `json:"warning"`
}

// Text joins all segments into one body with blank-line separators.
func (e ExtractedText) Text() string {
	parts := make([]string, 0, len(e.Segments))
	for _, s := range e.Segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Empty reports whether no segment carries text.
func (e ExtractedText) Empty() bool {
	for _, s := range e.Segments {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// cleanSegments normalizes each segment: per-line trim, blank-line collapse,
// and outer trim. Empty segments are preserved so page positions survive.
func cleanSegments(segments []string) []string {
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = cleanText(s)
	}
	return out
}

func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}
