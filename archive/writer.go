package archive

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/HOKORISAMA/Emon-engine-tools/bitmap"
	"github.com/HOKORISAMA/Emon-engine-tools/cipher"
	"github.com/HOKORISAMA/Emon-engine-tools/errs"
	"github.com/HOKORISAMA/Emon-engine-tools/format"
	"github.com/HOKORISAMA/Emon-engine-tools/internal/pool"
	"github.com/HOKORISAMA/Emon-engine-tools/lzss"
)

// EntrySpec describes one file to be packed, per spec.md §4.4's sidecar
// input fields. LZSSInitPos is already in the in-memory convention.
//
// Image is only consulted for SubType == format.SubTypeImage: it supplies
// the width/height/bpp/palette the on-disk header needs, which a flat data
// buffer alone can't carry. AddEntry rejects an image entry with a nil
// Image.
type EntrySpec struct {
	Name          string
	SubType       format.SubType
	Magic         uint16
	LZSSFrameSize uint16
	LZSSInitPos   uint16
	UnpackedSize  uint32
	Image         *bitmap.Bitmap
}

// Writer accumulates entries and serializes them into a new archive.
// WriteTo is all-or-nothing: nothing is written to the destination until
// every staged entry has been assembled successfully.
type Writer struct {
	key    cipher.Routine
	specs  []EntrySpec
	bodies [][]byte
	failed error
}

// NewWriter creates a Writer that encrypts under key.
func NewWriter(key cipher.Routine) *Writer {
	return &Writer{key: key}
}

// AddEntry packs data per spec's sub_type rules and stages it. The first
// error from any AddEntry call is sticky and also returned by WriteTo.
func (w *Writer) AddEntry(spec EntrySpec, data []byte) error {
	if w.failed != nil {
		return w.failed
	}

	body, err := w.packBody(spec, data)
	if err != nil {
		w.failed = err
		return err
	}

	w.specs = append(w.specs, spec)
	w.bodies = append(w.bodies, body)

	return nil
}

func (w *Writer) packBody(spec EntrySpec, data []byte) ([]byte, error) {
	switch spec.SubType {
	case format.SubTypeScript:
		return w.packScript(spec, data)
	case format.SubTypeType5:
		if len(data) <= 4 {
			return data, nil
		}
		return w.packType5(spec.Name, data)
	case format.SubTypeImage:
		return w.packImage(spec)
	default:
		return data, nil
	}
}

func (w *Writer) packImage(spec EntrySpec) ([]byte, error) {
	if spec.Image == nil {
		return nil, errs.New(errs.KindUnsupportedImage, "image entry requires EntrySpec.Image").WithEntry(spec.Name)
	}

	body, err := bitmap.Encode(*spec.Image, w.key, spec.LZSSFrameSize, spec.LZSSInitPos)
	if err != nil {
		if be, ok := err.(*errs.Error); ok {
			return nil, be.WithEntry(spec.Name)
		}
		return nil, err
	}

	return body, nil
}

func (w *Writer) packScript(spec EntrySpec, data []byte) ([]byte, error) {
	var header format.ScriptHeader

	var body []byte
	if spec.LZSSFrameSize == 0 {
		header = format.ScriptHeader{Part2PackedSize: 0, Part2UnpackedSize: uint32(len(data)), Compressed: false}
		body = data
	} else {
		params := lzss.Params{FrameSize: int(spec.LZSSFrameSize), InitPos: int(spec.LZSSInitPos)}
		compressed, err := lzss.Compress(data, params)
		if err != nil {
			return nil, errs.Wrap(errs.KindBadPayload, err).WithEntry(spec.Name)
		}
		header = format.ScriptHeader{Part2PackedSize: uint32(len(compressed)), Part2UnpackedSize: 0, Compressed: true}
		body = compressed
	}

	headerBytes := format.AppendScriptHeader(nil, header)
	if err := cipher.Validate(w.key, format.ScriptHeaderSize); err != nil {
		return nil, err.(*errs.Error).WithEntry(spec.Name)
	}
	cipher.Encrypt(headerBytes, w.key)

	return append(headerBytes, body...), nil
}

func (w *Writer) packType5(name string, data []byte) ([]byte, error) {
	if err := cipher.Validate(w.key, 4); err != nil {
		return nil, err.(*errs.Error).WithEntry(name)
	}

	out := append([]byte(nil), data...)
	cipher.Encrypt(out[:4], w.key)

	return out, nil
}

// WriteTo assembles the staged entries into a complete archive and
// copies it to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	if w.failed != nil {
		return 0, w.failed
	}
	if err := cipher.Validate(w.key, format.EntrySize); err != nil {
		return 0, err
	}

	staging := pool.GetBodySetBuffer()
	defer pool.PutBodySetBuffer(staging)

	staging.MustWrite(format.Signature[:])

	offset := uint32(format.SignatureSize)
	records := make([]format.Entry, len(w.specs))
	for i, spec := range w.specs {
		body := w.bodies[i]
		staging.MustWrite(body)

		packedSize := uint32(len(body))
		if spec.SubType == format.SubTypeImage {
			// OpenImageAt reads packed_size+32 bytes, treating the header
			// separately from the field; see bitmap.Decode/Encode.
			packedSize -= format.BitmapHeaderSize
		}

		records[i] = format.Entry{
			Name:          spec.Name,
			LZSSFrameSize: spec.LZSSFrameSize,
			LZSSInitPos:   spec.LZSSInitPos,
			Magic:         spec.Magic,
			SubType:       spec.SubType,
			PackedSize:    packedSize,
			UnpackedSize:  spec.UnpackedSize,
			BodyOffset:    offset,
		}
		offset += uint32(len(body))
	}

	staging.MustWrite(w.key.Bytes())

	var indexBuf bytes.Buffer
	for _, rec := range records {
		recBytes := format.AppendEntry(nil, rec)
		cipher.Encrypt(recBytes, w.key)
		indexBuf.Write(recBytes)
	}
	staging.MustWrite(indexBuf.Bytes())

	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, uint32(len(records)))
	staging.MustWrite(countBuf)

	return staging.WriteTo(dst)
}
