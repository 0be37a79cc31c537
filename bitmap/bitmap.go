package bitmap

import (
	"github.com/HOKORISAMA/Emon-engine-tools/cipher"
	"github.com/HOKORISAMA/Emon-engine-tools/errs"
	"github.com/HOKORISAMA/Emon-engine-tools/format"
	"github.com/HOKORISAMA/Emon-engine-tools/lzss"
)

// Bitmap is a decoded sub_type-4 image: validated dimensions plus a raw
// pixel buffer in on-disk row order (top-down only after Image() applies
// the documented flip; Pix itself is never flipped).
type Bitmap struct {
	Width   int
	Height  int
	BPP     byte
	Stride  int
	Pix     []byte
	Palette []PaletteEntry
}

// PaletteEntry is one read_palette entry: a BGR triple, alpha dropped.
type PaletteEntry struct {
	R, G, B byte
}

// paletteCount is the on-disk palette entry count for a header declaring
// colors: always at least 3, matching read_palette's own max(colors, 3).
func paletteCount(colors uint16) int {
	if colors < 3 {
		return 3
	}
	return int(colors)
}

// Decode parses raw (the entry's 32-byte header followed by its packed
// body) under key, using frameSize/initPos from the owning entry record
// for the pixel block's LZSS parameters.
func Decode(raw []byte, key cipher.Routine, frameSize, initPos uint16) (Bitmap, error) {
	if len(raw) < format.BitmapHeaderSize {
		return Bitmap{}, errs.New(errs.KindBadPayload, "bitmap body shorter than header")
	}

	header := append([]byte(nil), raw[:format.BitmapHeaderSize]...)
	if err := cipher.Validate(key, format.BitmapHeaderSize); err != nil {
		return Bitmap{}, err
	}
	cipher.Decrypt(header, key)

	h := format.ParseBitmapHeader(header)
	switch h.BPP {
	case 7, 8, 24, 32:
	default:
		return Bitmap{}, errs.New(errs.KindUnsupportedImage, "unsupported bpp")
	}

	dataOffset := format.BitmapHeaderSize

	var palette []PaletteEntry
	if h.Colors != 0 {
		count := paletteCount(h.Colors)
		paletteBytes := count * 4
		if dataOffset+paletteBytes > len(raw) {
			return Bitmap{}, errs.New(errs.KindUnsupportedImage, "missing palette for indexed bitmap")
		}

		palette = make([]PaletteEntry, count)
		for i := 0; i < count; i++ {
			b := raw[dataOffset+i*4]
			g := raw[dataOffset+i*4+1]
			r := raw[dataOffset+i*4+2]
			palette[i] = PaletteEntry{R: r, G: g, B: b}
		}
		dataOffset += paletteBytes
	}

	stride := int(h.Stride)
	absStride := stride
	if absStride < 0 {
		absStride = -absStride
	}
	pixelSize := absStride * int(h.Height)

	body := raw[dataOffset:]
	var pix []byte
	if frameSize != 0 {
		params := lzss.Params{FrameSize: int(frameSize), InitPos: int(initPos)}
		decoded, err := lzss.Decompress(body, params, pixelSize)
		if err != nil {
			return Bitmap{}, err
		}
		pix = decoded
	} else {
		n := pixelSize
		if n > len(body) {
			n = len(body)
		}
		pix = make([]byte, pixelSize)
		copy(pix, body[:n])
	}

	return Bitmap{
		Width:   int(h.Width),
		Height:  int(h.Height),
		BPP:     h.BPP,
		Stride:  stride,
		Pix:     pix,
		Palette: palette,
	}, nil
}
