package format

// ScriptHeaderSize is the size of a sub_type-3 entry's encrypted header.
const ScriptHeaderSize = 12

// ScriptHeader is the decrypted 12-byte header preceding a script body.
type ScriptHeader struct {
	Part2PackedSize   uint32
	Part2UnpackedSize uint32
	Compressed        bool
}

// ParseScriptHeader decodes a decrypted 12-byte script header.
func ParseScriptHeader(b []byte) ScriptHeader {
	return ScriptHeader{
		Part2PackedSize:   engine.Uint32(b[0:4]),
		Part2UnpackedSize: engine.Uint32(b[4:8]),
		Compressed:        engine.Uint32(b[8:12]) != 0,
	}
}

// AppendScriptHeader serializes h to its 12-byte on-disk (pre-encryption) form.
func AppendScriptHeader(buf []byte, h ScriptHeader) []byte {
	var rec [ScriptHeaderSize]byte
	engine.PutUint32(rec[0:4], h.Part2PackedSize)
	engine.PutUint32(rec[4:8], h.Part2UnpackedSize)
	var flag uint32
	if h.Compressed {
		flag = 1
	}
	engine.PutUint32(rec[8:12], flag)

	return append(buf, rec[:]...)
}

// IsSplit reports whether a script body is stored as two on-disk LZSS
// streams (spec §4.3): the header declares a non-zero part2 length that's
// strictly less than the entry's total unpacked size.
func (h ScriptHeader) IsSplit(entryUnpackedSize uint32) bool {
	return h.Part2UnpackedSize != 0 && h.Part2UnpackedSize < entryUnpackedSize
}

// Part1PackedSize is the resolved length of the first on-disk LZSS stream
// in a split script body: entry.packed_size - 12 - packed2. This is the
// self-consistent formula; see the design ledger for the source's
// divergent alternatives.
func Part1PackedSize(entryPackedSize uint32, h ScriptHeader) uint32 {
	return entryPackedSize - ScriptHeaderSize - h.Part2PackedSize
}
