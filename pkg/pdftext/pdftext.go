// Package pdftext extracts per-page text from PDF documents using pdfcpu
// for container parsing and a small content-stream interpreter for text
// assembly. Runs are ordered by their text-space positions rather than raw
// content-stream order, so multi-column and out-of-order streams still read
// top-to-bottom, left-to-right.
package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Result holds per-page extraction output.
type Result struct {
	// Pages contains one text entry per document page, empty when the page
	// has no extractable text layer.
	Pages []string

	// HasImages reports whether any page references image XObjects, used to
	// distinguish scanned documents when every page is empty.
	HasImages bool
}

// Signature is the PDF file magic.
var Signature = []byte("%PDF-")

// IsPDF reports whether data begins with the PDF signature.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, Signature)
}

// Extract parses the document and returns one text entry per page. A
// document whose pages are all empty is a valid result, not an error; the
// caller decides whether that constitutes an image-only document.
func Extract(data []byte) (*Result, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	result := &Result{
		Pages:     make([]string, 0, ctx.PageCount),
		HasImages: detectImageStreams(ctx),
	}

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		result.Pages = append(result.Pages, extractPage(ctx, pageNr))
	}

	return result, nil
}

func extractPage(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}

	content, err := io.ReadAll(r)
	if err != nil || len(content) == 0 {
		return ""
	}

	return assembleText(content)
}

// detectImageStreams checks for image XObjects, first via the optimization
// catalog and then by scanning the xref table directly.
func detectImageStreams(ctx *model.Context) bool {
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				return true
			}
		}
	}

	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// normalizeSpace collapses runs of blanks while preserving line structure.
func normalizeSpace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
