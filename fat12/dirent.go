package fat12

import (
	"encoding/binary"
	"strings"
)

const (
	dirEntrySize = 32
	attrLFN      = 0x0F
	attrDir      = 0x10
	attrVolume   = 0x08
	attrArchive  = 0x20
	attrReadOnly = 0x01

	endMarker  = 0x00
	freeMarker = 0xE5
)

// DirEntry is one 32-byte FAT12 directory entry, parsed from its raw bytes.
type DirEntry struct {
	Name         [8]byte
	Ext          [3]byte
	Attr         byte
	StartCluster uint16
	Size         uint32

	offset int // byte offset of this entry within the root directory, for rewriting
}

// Tag classifies a raw directory slot before it is interpreted as an
// active entry.
type Tag int

const (
	TagActive Tag = iota
	TagEnd
	TagFree
	TagLFN
)

func classify(raw []byte) Tag {
	switch raw[0] {
	case endMarker:
		return TagEnd
	case freeMarker:
		return TagFree
	}
	if raw[11] == attrLFN {
		return TagLFN
	}
	return TagActive
}

func parseDirEntry(raw []byte, offset int) DirEntry {
	var e DirEntry
	copy(e.Name[:], raw[0:8])
	copy(e.Ext[:], raw[8:11])
	e.Attr = raw[11]
	e.StartCluster = binary.LittleEndian.Uint16(raw[26:28])
	e.Size = binary.LittleEndian.Uint32(raw[28:32])
	e.offset = offset
	return e
}

func (e *DirEntry) encode(raw []byte) {
	copy(raw[0:8], e.Name[:])
	copy(raw[8:11], e.Ext[:])
	raw[11] = e.Attr
	binary.LittleEndian.PutUint16(raw[26:28], e.StartCluster)
	binary.LittleEndian.PutUint32(raw[28:32], e.Size)
}

// IsDir reports whether the entry is a subdirectory (unsupported by this
// filesystem beyond the flat root, but distinguished so open() can reject
// it cleanly).
func (e *DirEntry) IsDir() bool { return e.Attr&attrDir != 0 }

// DisplayName renders the 8.3 name as "NAME.EXT" (or "NAME" with no
// extension), trimming trailing spaces.
func (e *DirEntry) DisplayName() string {
	name := strings.TrimRight(string(e.Name[:]), " ")
	ext := strings.TrimRight(string(e.Ext[:]), " ")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// split83 upper-cases and space-pads a "NAME.EXT" string into the raw 8+3
// byte fields used on disk.
func split83(filename string) (name [8]byte, ext [3]byte) {
	for i := range name {
		name[i] = ' '
	}
	for i := range ext {
		ext[i] = ' '
	}

	upper := strings.ToUpper(filename)
	base := upper
	extension := ""
	if dot := strings.LastIndexByte(upper, '.'); dot >= 0 {
		base = upper[:dot]
		extension = upper[dot+1:]
	}
	copy(name[:], base)
	copy(ext[:], extension)
	return
}

func matches83(e *DirEntry, filename string) bool {
	wantName, wantExt := split83(filename)
	return e.Name == wantName && e.Ext == wantExt
}
