package bitmap

import (
	"github.com/HOKORISAMA/Emon-engine-tools/cipher"
	"github.com/HOKORISAMA/Emon-engine-tools/errs"
	"github.com/HOKORISAMA/Emon-engine-tools/format"
	"github.com/HOKORISAMA/Emon-engine-tools/lzss"
)

// Encode is the inverse of Decode: it serializes b into an entry body
// (header, optional palette, pixel block) and encrypts the header under
// key, ready to be placed at an entry's body_offset.
func Encode(b Bitmap, key cipher.Routine, frameSize, initPos uint16) ([]byte, error) {
	switch b.BPP {
	case 7, 8, 24, 32:
	default:
		return nil, errs.New(errs.KindUnsupportedImage, "unsupported bpp")
	}

	colors := uint16(len(b.Palette))

	header := format.AppendBitmapHeader(nil, format.BitmapHeader{
		BPP:    b.BPP,
		Width:  uint16(b.Width),
		Height: uint16(b.Height),
		Colors: colors,
		Stride: int32(b.Stride),
	})
	if err := cipher.Validate(key, format.BitmapHeaderSize); err != nil {
		return nil, err
	}
	cipher.Encrypt(header, key)

	out := header
	if colors != 0 {
		count := paletteCount(colors)
		for i := 0; i < count; i++ {
			var p PaletteEntry
			if i < len(b.Palette) {
				p = b.Palette[i]
			}
			out = append(out, p.B, p.G, p.R, 0xFF)
		}
	}

	if frameSize != 0 {
		params := lzss.Params{FrameSize: int(frameSize), InitPos: int(initPos)}
		compressed, err := lzss.Compress(b.Pix, params)
		if err != nil {
			return nil, err
		}
		out = append(out, compressed...)
	} else {
		out = append(out, b.Pix...)
	}

	return out, nil
}
