// Package hwp extracts body text from legacy HWP documents. The format is a
// compound file binary (OLE) container holding zlib-compressed record streams;
// this package implements both the container walk and the record decoding
// without external dependencies, operating purely on the supplied bytes.
package hwp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ErrContainerCorrupt indicates the compound container's structures are
// inconsistent or a required stream is absent.
var ErrContainerCorrupt = errors.New("compound container corrupt")

// Signature is the 8-byte compound file magic.
var Signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

const (
	sectorEndOfChain = 0xFFFFFFFE
	sectorFree       = 0xFFFFFFFF
	sectorFAT        = 0xFFFFFFFD
	sectorDIFAT      = 0xFFFFFFFC

	dirEntrySize  = 128
	difatInHeader = 109

	typeStorage = 1
	typeStream  = 2
	typeRoot    = 5

	noStream = 0xFFFFFFFF
)

type dirEntry struct {
	name        string
	objectType  byte
	left        uint32
	right       uint32
	child       uint32
	startSector uint32
	size        uint32
}

// Container provides named stream access over a compound file held in memory.
type Container struct {
	data          []byte
	sectorSize    int
	miniSize      int
	miniCutoff    uint32
	fat           []uint32
	miniFAT       []uint32
	entries       []dirEntry
	paths         map[string]int
	miniStream    []byte
	miniStreamLen uint32
}

// IsContainer reports whether data begins with the compound file signature.
func IsContainer(data []byte) bool {
	return len(data) >= len(Signature) && bytes.Equal(data[:len(Signature)], Signature)
}

// OpenContainer parses the container's allocation and directory structures.
// It fails with ErrContainerCorrupt on any structural inconsistency.
func OpenContainer(data []byte) (*Container, error) {
	if !IsContainer(data) {
		return nil, fmt.Errorf("%w: bad signature", ErrContainerCorrupt)
	}
	if len(data) < 512 {
		return nil, fmt.Errorf("%w: header truncated", ErrContainerCorrupt)
	}

	sectorShift := binary.LittleEndian.Uint16(data[30:])
	miniShift := binary.LittleEndian.Uint16(data[32:])
	if sectorShift < 7 || sectorShift > 20 || miniShift >= sectorShift {
		return nil, fmt.Errorf("%w: invalid sector shift %d/%d", ErrContainerCorrupt, sectorShift, miniShift)
	}

	c := &Container{
		data:       data,
		sectorSize: 1 << sectorShift,
		miniSize:   1 << miniShift,
		miniCutoff: binary.LittleEndian.Uint32(data[56:]),
		paths:      make(map[string]int),
	}

	if err := c.readFAT(); err != nil {
		return nil, err
	}
	if err := c.readDirectory(binary.LittleEndian.Uint32(data[48:])); err != nil {
		return nil, err
	}
	if err := c.readMiniFAT(
		binary.LittleEndian.Uint32(data[60:]),
		binary.LittleEndian.Uint32(data[64:]),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// Stream returns the bytes of the stream at the given path, where nested
// streams use "/" separators (e.g. "BodyText/Section0").
func (c *Container) Stream(path string) ([]byte, error) {
	idx, ok := c.paths[path]
	if !ok {
		return nil, fmt.Errorf("%w: stream %q absent", ErrContainerCorrupt, path)
	}
	return c.readStream(&c.entries[idx])
}

// List returns the paths of all streams in the container, sorted.
func (c *Container) List() []string {
	paths := make([]string, 0, len(c.paths))
	for p := range c.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SectionStreams returns the body-text section stream paths in section order.
func (c *Container) SectionStreams() []string {
	var sections []string
	for p := range c.paths {
		if strings.HasPrefix(p, "BodyText/Section") {
			sections = append(sections, p)
		}
	}
	sort.Slice(sections, func(i, j int) bool {
		return sectionNumber(sections[i]) < sectionNumber(sections[j])
	})
	return sections
}

func sectionNumber(path string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(path, "BodyText/Section"))
	return n
}

func (c *Container) sectorCount() int {
	return (len(c.data) - c.sectorSize) / c.sectorSize
}

func (c *Container) sector(n uint32) ([]byte, error) {
	offset := c.sectorSize * (int(n) + 1)
	if n >= uint32(c.sectorCount()) || offset+c.sectorSize > len(c.data) {
		return nil, fmt.Errorf("%w: sector %d out of range", ErrContainerCorrupt, n)
	}
	return c.data[offset : offset+c.sectorSize], nil
}

func (c *Container) readFAT() error {
	header := c.data[:512]
	numFAT := binary.LittleEndian.Uint32(header[44:])
	firstDIFAT := binary.LittleEndian.Uint32(header[68:])
	numDIFAT := binary.LittleEndian.Uint32(header[72:])

	fatSectors := make([]uint32, 0, numFAT)
	for i := 0; i < difatInHeader; i++ {
		s := binary.LittleEndian.Uint32(header[76+4*i:])
		if s == sectorFree || s == sectorEndOfChain {
			break
		}
		fatSectors = append(fatSectors, s)
	}

	// DIFAT overflow sectors chain through their final entry.
	next := firstDIFAT
	for i := uint32(0); i < numDIFAT; i++ {
		if next == sectorEndOfChain || next == sectorFree {
			break
		}
		sec, err := c.sector(next)
		if err != nil {
			return err
		}
		perSector := c.sectorSize/4 - 1
		for j := 0; j < perSector; j++ {
			s := binary.LittleEndian.Uint32(sec[4*j:])
			if s == sectorFree || s == sectorEndOfChain {
				continue
			}
			fatSectors = append(fatSectors, s)
		}
		next = binary.LittleEndian.Uint32(sec[c.sectorSize-4:])
	}

	c.fat = make([]uint32, 0, len(fatSectors)*(c.sectorSize/4))
	for _, s := range fatSectors {
		sec, err := c.sector(s)
		if err != nil {
			return err
		}
		for j := 0; j < c.sectorSize/4; j++ {
			c.fat = append(c.fat, binary.LittleEndian.Uint32(sec[4*j:]))
		}
	}

	return nil
}

// chain follows a FAT chain from start, guarding against cycles by bounding
// the walk at the total sector count.
func (c *Container) chain(start uint32) ([]uint32, error) {
	var sectors []uint32
	limit := c.sectorCount() + 1
	for s := start; s != sectorEndOfChain && s != sectorFree; {
		if len(sectors) > limit {
			return nil, fmt.Errorf("%w: allocation chain cycle", ErrContainerCorrupt)
		}
		if int(s) >= len(c.fat) {
			return nil, fmt.Errorf("%w: chain sector %d beyond FAT", ErrContainerCorrupt, s)
		}
		sectors = append(sectors, s)
		s = c.fat[s]
	}
	return sectors, nil
}

func (c *Container) readChain(start uint32, size uint32) ([]byte, error) {
	sectors, err := c.chain(start)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(sectors)*c.sectorSize)
	for _, s := range sectors {
		sec, err := c.sector(s)
		if err != nil {
			return nil, err
		}
		buf = append(buf, sec...)
	}

	if uint32(len(buf)) < size {
		return nil, fmt.Errorf("%w: chain shorter than declared size", ErrContainerCorrupt)
	}
	return buf[:size], nil
}

func (c *Container) readDirectory(firstDirSector uint32) error {
	sectors, err := c.chain(firstDirSector)
	if err != nil {
		return err
	}

	for _, s := range sectors {
		sec, err := c.sector(s)
		if err != nil {
			return err
		}
		for off := 0; off+dirEntrySize <= len(sec); off += dirEntrySize {
			c.entries = append(c.entries, parseDirEntry(sec[off:off+dirEntrySize]))
		}
	}

	if len(c.entries) == 0 || c.entries[0].objectType != typeRoot {
		return fmt.Errorf("%w: missing root directory entry", ErrContainerCorrupt)
	}

	c.miniStreamLen = c.entries[0].size
	if err := c.walkTree(c.entries[0].child, "", 0); err != nil {
		return err
	}
	return nil
}

func parseDirEntry(raw []byte) dirEntry {
	nameLen := int(binary.LittleEndian.Uint16(raw[64:]))
	if nameLen > 64 {
		nameLen = 64
	}

	var name string
	if nameLen >= 2 {
		units := make([]uint16, 0, nameLen/2-1)
		for i := 0; i < nameLen-2; i += 2 {
			units = append(units, binary.LittleEndian.Uint16(raw[i:]))
		}
		name = string(utf16.Decode(units))
	}

	return dirEntry{
		name:        name,
		objectType:  raw[66],
		left:        binary.LittleEndian.Uint32(raw[68:]),
		right:       binary.LittleEndian.Uint32(raw[72:]),
		child:       binary.LittleEndian.Uint32(raw[76:]),
		startSector: binary.LittleEndian.Uint32(raw[116:]),
		size:        binary.LittleEndian.Uint32(raw[120:]),
	}
}

// walkTree traverses a storage's sibling tree, recording full stream paths
// and descending into nested storages. Depth is bounded to reject cyclic
// directory graphs.
func (c *Container) walkTree(id uint32, prefix string, depth int) error {
	if id == noStream {
		return nil
	}
	if depth > len(c.entries) {
		return fmt.Errorf("%w: directory tree cycle", ErrContainerCorrupt)
	}
	if int(id) >= len(c.entries) {
		return fmt.Errorf("%w: directory index %d out of range", ErrContainerCorrupt, id)
	}

	e := &c.entries[id]

	if err := c.walkTree(e.left, prefix, depth+1); err != nil {
		return err
	}
	if err := c.walkTree(e.right, prefix, depth+1); err != nil {
		return err
	}

	path := e.name
	if prefix != "" {
		path = prefix + "/" + e.name
	}

	switch e.objectType {
	case typeStream:
		c.paths[path] = int(id)
	case typeStorage:
		if err := c.walkTree(e.child, path, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) readMiniFAT(firstMiniFAT, numMiniFAT uint32) error {
	if numMiniFAT == 0 || firstMiniFAT == sectorEndOfChain {
		return nil
	}

	sectors, err := c.chain(firstMiniFAT)
	if err != nil {
		return err
	}
	for _, s := range sectors {
		sec, err := c.sector(s)
		if err != nil {
			return err
		}
		for j := 0; j < c.sectorSize/4; j++ {
			c.miniFAT = append(c.miniFAT, binary.LittleEndian.Uint32(sec[4*j:]))
		}
	}

	// The mini stream lives in the root entry's regular chain.
	c.miniStream, err = c.readChain(c.entries[0].startSector, c.miniStreamLen)
	return err
}

func (c *Container) readStream(e *dirEntry) ([]byte, error) {
	if e.size >= c.miniCutoff {
		return c.readChain(e.startSector, e.size)
	}

	// Small streams allocate from the mini stream via the mini FAT.
	var buf []byte
	limit := len(c.miniFAT) + 1
	count := 0
	for s := e.startSector; s != sectorEndOfChain && s != sectorFree; {
		if count > limit {
			return nil, fmt.Errorf("%w: mini chain cycle", ErrContainerCorrupt)
		}
		offset := int(s) * c.miniSize
		if offset+c.miniSize > len(c.miniStream) {
			return nil, fmt.Errorf("%w: mini sector %d out of range", ErrContainerCorrupt, s)
		}
		buf = append(buf, c.miniStream[offset:offset+c.miniSize]...)
		if int(s) >= len(c.miniFAT) {
			return nil, fmt.Errorf("%w: mini chain sector %d beyond mini FAT", ErrContainerCorrupt, s)
		}
		s = c.miniFAT[s]
		count++
	}

	if uint32(len(buf)) < e.size {
		return nil, fmt.Errorf("%w: mini chain shorter than declared size", ErrContainerCorrupt)
	}
	return buf[:e.size], nil
}
