package hwp

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrStreamTruncated indicates a record declared more bytes than remain in
// its section stream. Text recovered before the truncation point is still
// returned alongside this condition.
var ErrStreamTruncated = errors.New("record stream truncated")

// Record tags are offsets from the data-record base tag. Paragraph text
// carries tag 67; table-cell paragraphs reuse the same tag at deeper record
// levels beneath table and list records, so walking every paragraph-text
// record in stream order yields body and cell text in document order.
const (
	tagBegin    = 0x10
	tagParaText = tagBegin + 51
)

const (
	fileHeaderStream    = "FileHeader"
	fileHeaderFlagByte  = 36
	compressionFlagMask = 0x01
	extendedSizeMarker  = 0xFFF
)

// Document holds the text extracted from one HWP file.
type Document struct {
	// Sections contains the decoded text of each body-text section, in
	// section order, paragraphs separated by newlines.
	Sections []string

	// Truncated reports that at least one section's record stream ended
	// before a record's declared length, or failed to inflate; the text in
	// Sections is everything recovered before that point.
	Truncated bool
}

// Extract decodes all body-text sections from an HWP compound container.
// It returns ErrContainerCorrupt when the container cannot be walked or no
// body-text stream exists. Truncated record streams degrade to a partial
// Document rather than an error.
func Extract(data []byte) (*Document, error) {
	c, err := OpenContainer(data)
	if err != nil {
		return nil, err
	}

	compressed, err := readCompressionFlag(c)
	if err != nil {
		return nil, err
	}

	sections := c.SectionStreams()
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no body-text sections", ErrContainerCorrupt)
	}

	doc := &Document{}
	for _, path := range sections {
		raw, err := c.Stream(path)
		if err != nil {
			return nil, err
		}

		if compressed {
			inflated, err := inflate(raw)
			if err != nil {
				doc.Truncated = true
				continue
			}
			raw = inflated
		}

		text, truncated := decodeRecords(raw)
		if truncated {
			doc.Truncated = true
		}
		if text != "" {
			doc.Sections = append(doc.Sections, text)
		}
	}

	return doc, nil
}

func readCompressionFlag(c *Container) (bool, error) {
	header, err := c.Stream(fileHeaderStream)
	if err != nil {
		return false, err
	}
	if len(header) <= fileHeaderFlagByte {
		return false, fmt.Errorf("%w: file header too short", ErrContainerCorrupt)
	}
	return header[fileHeaderFlagByte]&compressionFlagMask != 0, nil
}

// inflate decompresses a section stream. Sections use raw deflate with no
// zlib wrapper.
func inflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("inflate section: %w", err)
	}
	return out, nil
}

// decodeRecords walks the tagged records of one decompressed section and
// collects paragraph text in stream order. Unknown tags are skipped by their
// declared size, never by scanning, so one unknown record cannot
// desynchronize the rest of the stream. Returns the section text and whether
// the stream was truncated mid-record.
func decodeRecords(data []byte) (string, bool) {
	var paragraphs []string
	offset := 0

	for offset+4 <= len(data) {
		header := binary.LittleEndian.Uint32(data[offset:])
		offset += 4

		tag := int(header & 0x3FF)
		size := int(header >> 20 & 0xFFF)

		if size == extendedSizeMarker {
			if offset+4 > len(data) {
				return joinParagraphs(paragraphs), true
			}
			size = int(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
		}

		if size < 0 || offset+size > len(data) {
			return joinParagraphs(paragraphs), true
		}

		if tag == tagParaText {
			paragraphs = append(paragraphs, decodeParaText(data[offset:offset+size])...)
		}

		offset += size
	}

	return joinParagraphs(paragraphs), false
}

func joinParagraphs(paragraphs []string) string {
	var b bytes.Buffer
	for i, p := range paragraphs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p)
	}
	return b.String()
}
