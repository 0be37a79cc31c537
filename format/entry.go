package format

import (
	"bytes"

	"github.com/HOKORISAMA/Emon-engine-tools/endian"
)

// EntrySize is the fixed on-disk size of one index record.
const EntrySize = 0x60

// Field offsets within an entry record, per spec §3.
const (
	offName           = 0x00
	offLZSSFrameSize  = 0x40
	offLZSSInitPosRaw = 0x42
	offMagic          = 0x44
	offReserved1      = 0x46
	offSubType        = 0x48
	offPackedSize     = 0x4C
	offUnpackedSize   = 0x50
	offBodyOffset     = 0x54
	offReserved2      = 0x58

	nameFieldSize = 0x40
)

// SubType dispatches an entry body's shape.
type SubType uint32

const (
	SubTypeOpaque SubType = 0
	SubTypeScript SubType = 3
	SubTypeImage  SubType = 4
	SubTypeType5  SubType = 5
)

func (s SubType) String() string {
	switch s {
	case SubTypeScript:
		return "script"
	case SubTypeImage:
		return "image"
	case SubTypeType5:
		return "type5"
	default:
		return "opaque"
	}
}

// Entry is the decoded, in-memory form of one 0x60-byte index record.
// LZSSInitPos is stored in the in-memory convention (see RawInitPos /
// LiveInitPos); Reserved1/Reserved2 are preserved verbatim for round-trip
// fidelity even though this implementation never interprets them.
type Entry struct {
	Name           string
	LZSSFrameSize  uint16
	LZSSInitPos    uint16
	Magic          uint16
	Reserved1      uint16
	SubType        SubType
	PackedSize     uint32
	UnpackedSize   uint32
	BodyOffset     uint32
	Reserved2      uint64
}

// engine is always little-endian for this format; routed through
// endian.EndianEngine to keep byte-order decisions at one call site.
var engine endian.EndianEngine = endian.GetLittleEndianEngine()

// ParseEntry decodes one 0x60-byte record. b must be exactly EntrySize
// long and already decrypted.
func ParseEntry(b []byte) Entry {
	var e Entry

	nameBytes := b[offName : offName+nameFieldSize]
	if i := bytes.IndexByte(nameBytes, 0); i >= 0 {
		e.Name = string(nameBytes[:i])
	} else {
		e.Name = string(nameBytes)
	}

	e.LZSSFrameSize = engine.Uint16(b[offLZSSFrameSize:])
	rawInitPos := engine.Uint16(b[offLZSSInitPosRaw:])
	e.LZSSInitPos = LiveInitPos(rawInitPos, e.LZSSFrameSize)
	e.Magic = engine.Uint16(b[offMagic:])
	e.Reserved1 = engine.Uint16(b[offReserved1:])
	e.SubType = SubType(engine.Uint32(b[offSubType:]))
	e.PackedSize = engine.Uint32(b[offPackedSize:])
	e.UnpackedSize = engine.Uint32(b[offUnpackedSize:])
	e.BodyOffset = engine.Uint32(b[offBodyOffset:])
	e.Reserved2 = engine.Uint64(b[offReserved2:])

	return e
}

// AppendEntry serializes e into its on-disk 0x60-byte form, applying the
// inverse lzss_init_pos transform, and appends it to buf.
func AppendEntry(buf []byte, e Entry) []byte {
	var rec [EntrySize]byte

	copy(rec[offName:offName+nameFieldSize], e.Name)

	engine.PutUint16(rec[offLZSSFrameSize:], e.LZSSFrameSize)
	engine.PutUint16(rec[offLZSSInitPosRaw:], RawInitPos(e.LZSSInitPos, e.LZSSFrameSize))
	engine.PutUint16(rec[offMagic:], e.Magic)
	engine.PutUint16(rec[offReserved1:], e.Reserved1)
	engine.PutUint32(rec[offSubType:], uint32(e.SubType))
	engine.PutUint32(rec[offPackedSize:], e.PackedSize)
	engine.PutUint32(rec[offUnpackedSize:], e.UnpackedSize)
	engine.PutUint32(rec[offBodyOffset:], e.BodyOffset)
	engine.PutUint64(rec[offReserved2:], e.Reserved2)

	return append(buf, rec[:]...)
}

// LiveInitPos converts an on-disk lzss_init_pos_raw value to the
// in-memory convention: (frame_size - raw) mod frame_size. Returns raw
// unchanged when frameSize is 0 (compression disabled, the field is
// meaningless).
func LiveInitPos(raw, frameSize uint16) uint16 {
	if frameSize == 0 {
		return raw
	}

	fs := int(frameSize)
	v := (fs - int(raw)%fs) % fs

	return uint16(v)
}

// RawInitPos is the inverse of LiveInitPos, applied before serialization.
func RawInitPos(live, frameSize uint16) uint16 {
	if frameSize == 0 {
		return live
	}

	fs := int(frameSize)
	v := (fs - int(live)%fs) % fs

	return uint16(v)
}
