package archive

import (
	"github.com/HOKORISAMA/Emon-engine-tools/bitmap"
	"github.com/HOKORISAMA/Emon-engine-tools/cipher"
	"github.com/HOKORISAMA/Emon-engine-tools/errs"
	"github.com/HOKORISAMA/Emon-engine-tools/format"
	"github.com/HOKORISAMA/Emon-engine-tools/lzss"
)

// decodeScript implements spec.md §4.3's sub_type-3 shape: a 12-byte
// encrypted header followed by either a raw remainder or one or two LZSS
// streams.
func (a *Archive) decodeScript(e format.Entry) ([]byte, error) {
	header, err := a.readBody(e.BodyOffset, format.ScriptHeaderSize, &e)
	if err != nil {
		return nil, err
	}
	if err := cipher.Validate(a.key, format.ScriptHeaderSize); err != nil {
		return nil, err.(*errs.Error).WithEntry(e.Name)
	}
	cipher.Decrypt(header, a.key)
	h := format.ParseScriptHeader(header)

	bodyStart := e.BodyOffset + format.ScriptHeaderSize

	if e.LZSSFrameSize == 0 {
		remainderLen := e.PackedSize - format.ScriptHeaderSize
		raw, err := a.readBody(bodyStart, remainderLen, &e)
		if err != nil {
			return nil, err
		}

		return append(append([]byte(nil), header...), raw...), nil
	}

	params := lzss.Params{FrameSize: int(e.LZSSFrameSize), InitPos: int(e.LZSSInitPos)}

	if h.IsSplit(e.UnpackedSize) {
		part2Compressed, err := a.readBody(bodyStart, h.Part2PackedSize, &e)
		if err != nil {
			return nil, err
		}
		part1Size := format.Part1PackedSize(e.PackedSize, h)
		part1Compressed, err := a.readBody(bodyStart+h.Part2PackedSize, part1Size, &e)
		if err != nil {
			return nil, err
		}

		part1UnpackedSize := int(e.UnpackedSize - h.Part2UnpackedSize)
		part1, err := lzss.Decompress(part1Compressed, params, part1UnpackedSize)
		if err != nil {
			return nil, err
		}
		part2, err := lzss.Decompress(part2Compressed, params, int(h.Part2UnpackedSize))
		if err != nil {
			return nil, err
		}

		return append(part1, part2...), nil
	}

	compressedLen := e.PackedSize - format.ScriptHeaderSize
	compressed, err := a.readBody(bodyStart, compressedLen, &e)
	if err != nil {
		return nil, err
	}

	out, err := lzss.Decompress(compressed, params, int(e.UnpackedSize))
	if err != nil {
		return nil, err
	}
	if len(out) < int(e.UnpackedSize) {
		return nil, errs.New(errs.KindBadPayload, "decoded script shorter than declared size").WithEntry(e.Name)
	}

	return out, nil
}

// decodeType5 implements spec.md §4.3's sub_type-5 shape: only the first
// 4 bytes are encrypted.
func (a *Archive) decodeType5(e format.Entry) ([]byte, error) {
	if e.PackedSize <= 4 {
		return a.readBody(e.BodyOffset, e.PackedSize, &e)
	}

	if err := cipher.Validate(a.key, 4); err != nil {
		return nil, err.(*errs.Error).WithEntry(e.Name)
	}

	full, err := a.readBody(e.BodyOffset, e.PackedSize, &e)
	if err != nil {
		return nil, err
	}

	cipher.Decrypt(full[:4], a.key)

	return full, nil
}

// decodeImage implements spec.md §4.5, delegating to package bitmap and
// returning the decoded pixel buffer. Callers that want width/height/bpp
// alongside the pixels should use OpenImage instead.
func (a *Archive) decodeImage(e format.Entry) ([]byte, error) {
	raw, err := a.readBody(e.BodyOffset, e.PackedSize+format.BitmapHeaderSize, &e)
	if err != nil {
		return nil, err
	}

	bmp, err := bitmap.Decode(raw, a.key, e.LZSSFrameSize, e.LZSSInitPos)
	if err != nil {
		if be, ok := err.(*errs.Error); ok {
			return nil, be.WithEntry(e.Name)
		}
		return nil, err
	}

	return bmp.Pix, nil
}
