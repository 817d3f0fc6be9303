package extraction

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/minsuklee/fundscope/pkg/hwp"
	"github.com/minsuklee/fundscope/pkg/hwpx"
	"github.com/minsuklee/fundscope/pkg/pdftext"
)

// Format identifies a supported document format.
type Format string

const (
	FormatHWP  Format = "hwp"
	FormatHWPX Format = "hwpx"
	FormatPDF  Format = "pdf"
)

var zipSignature = []byte{'P', 'K', 0x03, 0x04}

// pdfExtract is a seam over the pdfcpu-backed extractor; tests substitute it
// rather than assembling binary PDF fixtures.
var pdfExtract = pdftext.Extract

// Extractor dispatches raw documents to format decoders. It is stateless
// apart from its logger and safe for concurrent use.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger.With("system", "extraction")}
}

// Detect resolves the document format from the declared extension, falling
// back to the content's magic signature when the extension is missing or
// disagrees with the bytes. Returns ErrUnsupportedFormat when neither
// identifies a supported format.
func Detect(filename string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hwp":
		if hwp.IsContainer(data) {
			return FormatHWP, nil
		}
		// Some distributors label HWPX downloads ".hwp"; the zip
		// signature disambiguates.
		if bytes.HasPrefix(data, zipSignature) {
			return FormatHWPX, nil
		}
	case ".hwpx":
		if bytes.HasPrefix(data, zipSignature) {
			return FormatHWPX, nil
		}
	case ".pdf":
		if pdftext.IsPDF(data) {
			return FormatPDF, nil
		}
	}

	switch {
	case hwp.IsContainer(data):
		return FormatHWP, nil
	case pdftext.IsPDF(data):
		return FormatPDF, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
}

// Extract routes the document to exactly one decoder and returns the
// normalized result. Decode failures never propagate as errors: they
// degrade to an empty ExtractedText with an explicit warning so the run can
// continue. The only returned error is ErrUnsupportedFormat.
func (e *Extractor) Extract(raw RawDocument) (ExtractedText, error) {
	format, err := Detect(raw.Filename, raw.Data)
	if err != nil {
		return ExtractedText{}, err
	}

	var result ExtractedText
	switch format {
	case FormatHWP:
		result = e.extractHWP(raw)
	case FormatHWPX:
		result = e.extractHWPX(raw)
	case FormatPDF:
		result = e.extractPDF(raw)
	}

	e.logger.Info("document extracted",
		"filename", raw.Filename,
		"format", format,
		"segments", len(result.Segments),
		"warning", result.Warning,
	)
	return result, nil
}

func (e *Extractor) extractHWP(raw RawDocument) ExtractedText {
	doc, err := hwp.Extract(raw.Data)
	if err != nil {
		e.logger.Warn("hwp decode failed", "filename", raw.Filename, "error", err)
		return decodeFailed()
	}

	result := ExtractedText{
		Segments: cleanSegments(doc.Sections),
		Warning:  WarningNone,
	}
	if doc.Truncated {
		result.Warning = WarningPartialTableLoss
	}
	return result
}

func (e *Extractor) extractHWPX(raw RawDocument) ExtractedText {
	sections, err := hwpx.Extract(raw.Data)
	if err != nil {
		e.logger.Warn("hwpx decode failed", "filename", raw.Filename, "error", err)
		return decodeFailed()
	}

	return ExtractedText{
		Segments: cleanSegments(sections),
		Warning:  WarningNone,
	}
}

func (e *Extractor) extractPDF(raw RawDocument) ExtractedText {
	result, err := pdfExtract(raw.Data)
	if err != nil {
		e.logger.Warn("pdf decode failed", "filename", raw.Filename, "error", err)
		return decodeFailed()
	}

	text := ExtractedText{
		Segments: cleanSegments(result.Pages),
		Warning:  WarningNone,
	}

	if text.Empty() {
		// A page-described document with no text layer is a scanned
		// image: a recognized terminal state, not a decode error.
		e.logger.Warn("pdf has no text layer",
			"filename", raw.Filename,
			"pages", len(result.Pages),
			"has_images", result.HasImages,
		)
		for i := range text.Segments {
			text.Segments[i] = ""
		}
		text.ImageOnly = true
		text.Warning = WarningEmptyTextLayer
	}

	return text
}

func decodeFailed() ExtractedText {
	return ExtractedText{Warning: WarningDecodeFailed}
}
