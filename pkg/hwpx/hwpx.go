// Package hwpx extracts body text from HWPX documents, the zip-based XML
// successor to legacy HWP. Section content lives in Contents/section*.xml
// entries; text runs are namespaced t elements inside paragraph elements.
package hwpx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrArchiveCorrupt indicates the zip central directory is unreadable.
	ErrArchiveCorrupt = errors.New("hwpx archive corrupt")

	// ErrMalformedXML indicates a section entry does not parse as XML.
	ErrMalformedXML = errors.New("hwpx section xml malformed")
)

var sectionEntryRe = regexp.MustCompile(`^Contents/section(\d+)\.xml$`)

// Extract returns the text of each section entry, in section order.
// Paragraph boundaries within a section become newlines; formatting and
// control elements contribute no text.
func Extract(data []byte) ([]string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveCorrupt, err)
	}

	entries := sectionEntries(r)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no section entries", ErrArchiveCorrupt)
	}

	var sections []string
	for _, f := range entries {
		text, err := extractSection(f)
		if err != nil {
			return nil, err
		}
		if text != "" {
			sections = append(sections, text)
		}
	}

	return sections, nil
}

// sectionEntries locates Contents/section*.xml in numeric order, falling
// back to any Contents XML entry for producers that deviate from the
// canonical layout.
func sectionEntries(r *zip.Reader) []*zip.File {
	var numbered []*zip.File
	for _, f := range r.File {
		if sectionEntryRe.MatchString(f.Name) {
			numbered = append(numbered, f)
		}
	}

	if len(numbered) > 0 {
		sort.Slice(numbered, func(i, j int) bool {
			return sectionNumber(numbered[i].Name) < sectionNumber(numbered[j].Name)
		})
		return numbered
	}

	var fallback []*zip.File
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "Contents/") && strings.HasSuffix(f.Name, ".xml") {
			fallback = append(fallback, f)
		}
	}
	sort.Slice(fallback, func(i, j int) bool { return fallback[i].Name < fallback[j].Name })
	return fallback
}

func sectionNumber(name string) int {
	m := sectionEntryRe.FindStringSubmatch(name)
	n, _ := strconv.Atoi(m[1])
	return n
}

// extractSection streams one section's XML, appending the character data of
// every t run element in document order and inserting paragraph breaks when
// p elements close. Namespace URIs vary across producer versions, so runs
// are matched by local name.
func extractSection(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrArchiveCorrupt, f.Name, err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)

	var sb strings.Builder
	var paragraph strings.Builder
	inRun := 0

	flush := func() {
		text := strings.TrimSpace(paragraph.String())
		paragraph.Reset()
		if text == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrMalformedXML, f.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun++
			}
		case xml.CharData:
			if inRun > 0 {
				paragraph.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if inRun > 0 {
					inRun--
				}
			case "p":
				flush()
			}
		}
	}

	flush()
	return sb.String(), nil
}
