package format

// BitmapHeaderSize is the size of a sub_type-4 entry's encrypted header.
const BitmapHeaderSize = 32

// BitmapHeader is the decrypted 32-byte header preceding an image body.
type BitmapHeader struct {
	BPP      byte
	Width    uint16
	Height   uint16
	Colors   uint16
	Stride   int32
	OffsetX  int32
	OffsetY  int32
}

// ParseBitmapHeader decodes a decrypted 32-byte bitmap header.
func ParseBitmapHeader(b []byte) BitmapHeader {
	word0 := engine.Uint32(b[0:4])

	return BitmapHeader{
		BPP:     byte(word0 & 0xFF),
		Width:   engine.Uint16(b[2:4]),
		Height:  engine.Uint16(b[4:6]),
		Colors:  engine.Uint16(b[6:8]),
		Stride:  int32(engine.Uint32(b[8:12])),
		OffsetX: int32(engine.Uint32(b[12:16])),
		OffsetY: int32(engine.Uint32(b[16:20])),
	}
}

// AppendBitmapHeader appends h's on-disk 32-byte encoding to buf. word0's
// low byte holds BPP and its upper two bytes double as Width, mirroring
// ParseBitmapHeader's overlap.
func AppendBitmapHeader(buf []byte, h BitmapHeader) []byte {
	out := make([]byte, BitmapHeaderSize)

	word0 := uint32(h.BPP) | uint32(h.Width)<<16
	engine.PutUint32(out[0:4], word0)
	engine.PutUint16(out[4:6], h.Height)
	engine.PutUint16(out[6:8], h.Colors)
	engine.PutUint32(out[8:12], uint32(h.Stride))
	engine.PutUint32(out[12:16], uint32(h.OffsetX))
	engine.PutUint32(out[16:20], uint32(h.OffsetY))

	return append(buf, out...)
}
