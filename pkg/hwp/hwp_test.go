package hwp_test

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/minsuklee/fundscope/pkg/hwp"
)

const (
	sectorSize  = 512
	endOfChain  = 0xFFFFFFFE
	freeSector  = 0xFFFFFFFF
	fatSector   = 0xFFFFFFFD
	noStream    = 0xFFFFFFFF
	streamBytes = 4096
)

// cfbBuilder assembles a minimal compound file: one FAT sector, a directory
// chain, and regular stream chains. Streams are padded to the mini cutoff so
// the mini FAT is never involved.
type cfbBuilder struct {
	sectors [][]byte
	fat     []uint32
}

func newCFBBuilder() *cfbBuilder {
	b := &cfbBuilder{}
	// sector 0 reserved for the FAT
	b.sectors = append(b.sectors, make([]byte, sectorSize))
	b.fat = append(b.fat, fatSector)
	return b
}

func (b *cfbBuilder) addChain(data []byte) uint32 {
	start := uint32(len(b.sectors))
	for off := 0; off < len(data); off += sectorSize {
		sec := make([]byte, sectorSize)
		copy(sec, data[off:])
		b.sectors = append(b.sectors, sec)
		b.fat = append(b.fat, uint32(len(b.sectors)))
	}
	b.fat[len(b.fat)-1] = endOfChain
	return start
}

func (b *cfbBuilder) build(t *testing.T, firstDir uint32) []byte {
	t.Helper()
	if len(b.sectors) > sectorSize/4 {
		t.Fatalf("fixture needs %d sectors, FAT sector holds %d", len(b.sectors), sectorSize/4)
	}

	fat := b.sectors[0]
	for i := range sectorSize / 4 {
		v := uint32(freeSector)
		if i < len(b.fat) {
			v = b.fat[i]
		}
		binary.LittleEndian.PutUint32(fat[4*i:], v)
	}

	header := make([]byte, sectorSize)
	copy(header, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	binary.LittleEndian.PutUint16(header[24:], 0x3E)   // minor version
	binary.LittleEndian.PutUint16(header[26:], 3)      // major version
	binary.LittleEndian.PutUint16(header[28:], 0xFFFE) // byte order
	binary.LittleEndian.PutUint16(header[30:], 9)      // sector shift
	binary.LittleEndian.PutUint16(header[32:], 6)      // mini sector shift
	binary.LittleEndian.PutUint32(header[44:], 1)      // FAT sector count
	binary.LittleEndian.PutUint32(header[48:], firstDir)
	binary.LittleEndian.PutUint32(header[56:], streamBytes) // mini stream cutoff
	binary.LittleEndian.PutUint32(header[60:], endOfChain)  // first mini FAT sector
	binary.LittleEndian.PutUint32(header[64:], 0)           // mini FAT sector count
	binary.LittleEndian.PutUint32(header[68:], endOfChain)  // first DIFAT sector
	binary.LittleEndian.PutUint32(header[72:], 0)           // DIFAT sector count
	binary.LittleEndian.PutUint32(header[76:], 0)           // DIFAT[0] = FAT sector
	for i := 1; i < 109; i++ {
		binary.LittleEndian.PutUint32(header[76+4*i:], freeSector)
	}

	out := header
	for _, sec := range b.sectors {
		out = append(out, sec...)
	}
	return out
}

func dirEntry(name string, objType byte, left, right, child, start, size uint32) []byte {
	raw := make([]byte, 128)
	units := utf16.Encode([]rune(name))
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[2*i:], u)
	}
	binary.LittleEndian.PutUint16(raw[64:], uint16(2*len(units)+2))
	raw[66] = objType
	binary.LittleEndian.PutUint32(raw[68:], left)
	binary.LittleEndian.PutUint32(raw[72:], right)
	binary.LittleEndian.PutUint32(raw[76:], child)
	binary.LittleEndian.PutUint32(raw[116:], start)
	binary.LittleEndian.PutUint32(raw[120:], size)
	return raw
}

// buildHWP assembles an HWP container with a FileHeader stream and one
// BodyText section stream per element of sections.
func buildHWP(t *testing.T, compressed bool, sections ...[]byte) []byte {
	t.Helper()

	fileHeader := make([]byte, 256)
	copy(fileHeader, "HWP Document File")
	if compressed {
		fileHeader[36] = 0x01
	}

	b := newCFBBuilder()

	pad := func(data []byte) []byte {
		padded := make([]byte, streamBytes)
		if len(data) > streamBytes {
			t.Fatalf("stream of %d bytes exceeds fixture capacity", len(data))
		}
		copy(padded, data)
		return padded
	}

	fileHeaderStart := b.addChain(pad(fileHeader))

	sectionStarts := make([]uint32, len(sections))
	for i, data := range sections {
		sectionStarts[i] = b.addChain(pad(data))
	}

	// entries: 0 root, 1 FileHeader, 2 BodyText storage, 3.. sections
	var dir []byte
	dir = append(dir, dirEntry("Root Entry", 5, noStream, noStream, 1, endOfChain, 0)...)
	dir = append(dir, dirEntry("FileHeader", 2, noStream, 2, noStream, fileHeaderStart, streamBytes)...)
	dir = append(dir, dirEntry("BodyText", 1, noStream, noStream, 3, endOfChain, 0)...)
	for i, start := range sectionStarts {
		right := uint32(noStream)
		if i+1 < len(sections) {
			right = uint32(4 + i)
		}
		name := "Section" + string(rune('0'+i))
		dir = append(dir, dirEntry(name, 2, noStream, right, noStream, start, streamBytes)...)
	}

	firstDir := b.addChain(dir)
	return b.build(t, firstDir)
}

func record(tag, size int) []byte {
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, uint32(tag)|uint32(size)<<20)
	return raw
}

func paraTextPayload(text string) []byte {
	var out []byte
	for _, u := range utf16.Encode([]rune(text)) {
		out = binary.LittleEndian.AppendUint16(out, u)
	}
	return out
}

func paraTextRecord(text string) []byte {
	payload := paraTextPayload(text)
	return append(record(67, len(payload)), payload...)
}

func deflateBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("deflate write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("deflate close: %v", err)
	}
	return buf.Bytes()
}

func TestIsContainer(t *testing.T) {
	data := buildHWP(t, false, paraTextRecord("본문"))
	if !hwp.IsContainer(data) {
		t.Error("IsContainer() = false for valid container")
	}
	if hwp.IsContainer([]byte("%PDF-1.7")) {
		t.Error("IsContainer() = true for PDF bytes")
	}
}

func TestExtractUncompressed(t *testing.T) {
	var stream []byte
	stream = append(stream, record(66, 8)...)
	stream = append(stream, make([]byte, 8)...) // unknown record, skipped by size
	stream = append(stream, paraTextRecord("지원사업 공고")...)

	doc, err := hwp.Extract(buildHWP(t, false, stream))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if doc.Truncated {
		t.Error("Truncated = true for complete stream")
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(doc.Sections))
	}
	if doc.Sections[0] != "지원사업 공고" {
		t.Errorf("section text = %q", doc.Sections[0])
	}
}

func TestExtractCompressed(t *testing.T) {
	stream := paraTextRecord("압축된 본문입니다")

	doc, err := hwp.Extract(buildHWP(t, true, deflateBytes(t, stream)))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Sections) != 1 || doc.Sections[0] != "압축된 본문입니다" {
		t.Errorf("sections = %q", doc.Sections)
	}
}

func TestExtractMultipleSections(t *testing.T) {
	doc, err := hwp.Extract(buildHWP(t, false,
		paraTextRecord("첫째 구역"),
		paraTextRecord("둘째 구역"),
	))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(doc.Sections))
	}
	if doc.Sections[0] != "첫째 구역" || doc.Sections[1] != "둘째 구역" {
		t.Errorf("sections = %q", doc.Sections)
	}
}

func TestExtractControlCharacters(t *testing.T) {
	var payload []byte
	payload = append(payload, paraTextPayload("첫줄")...)
	payload = binary.LittleEndian.AppendUint16(payload, 0x0A) // line break
	payload = append(payload, paraTextPayload("둘째줄")...)
	payload = binary.LittleEndian.AppendUint16(payload, 0x0D) // paragraph break
	// inline control (code 4) consumes eight code units
	payload = binary.LittleEndian.AppendUint16(payload, 0x04)
	payload = append(payload, make([]byte, 14)...)
	payload = append(payload, paraTextPayload("다음 문단")...)

	stream := append(record(67, len(payload)), payload...)

	doc, err := hwp.Extract(buildHWP(t, false, stream))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "첫줄\n둘째줄\n다음 문단"
	if len(doc.Sections) != 1 || doc.Sections[0] != want {
		t.Errorf("section = %q, want %q", doc.Sections, want)
	}
}

func TestExtractTruncatedRecord(t *testing.T) {
	var stream []byte
	stream = append(stream, paraTextRecord("복구된 문단")...)
	// declares more payload than remains in the padded stream
	stream = append(stream, record(67, 0xFFE)...)

	doc, err := hwp.Extract(buildHWP(t, false, stream))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !doc.Truncated {
		t.Error("Truncated = false for cut-off record")
	}
	if len(doc.Sections) != 1 || doc.Sections[0] != "복구된 문단" {
		t.Errorf("recovered sections = %q", doc.Sections)
	}
}

func TestExtractExtendedSizeRecord(t *testing.T) {
	payload := paraTextPayload(strings.Repeat("가", 100))

	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw, 67|uint32(0xFFF)<<20)
	binary.LittleEndian.PutUint32(raw[4:], uint32(len(payload)))
	stream := append(raw, payload...)

	doc, err := hwp.Extract(buildHWP(t, false, stream))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(doc.Sections) != 1 || doc.Sections[0] != strings.Repeat("가", 100) {
		t.Errorf("extended-size record not decoded: %q", doc.Sections)
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	if _, err := hwp.Extract([]byte("not a compound file")); err == nil {
		t.Error("Extract() succeeded on garbage input")
	}
}

func TestOpenContainerListsStreams(t *testing.T) {
	c, err := hwp.OpenContainer(buildHWP(t, false, paraTextRecord("본문")))
	if err != nil {
		t.Fatalf("OpenContainer() error = %v", err)
	}

	paths := c.List()
	want := []string{"BodyText/Section0", "FileHeader"}
	if len(paths) != len(want) {
		t.Fatalf("List() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}
