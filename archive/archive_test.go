package archive

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HOKORISAMA/Emon-engine-tools/bitmap"
	"github.com/HOKORISAMA/Emon-engine-tools/cipher"
	"github.com/HOKORISAMA/Emon-engine-tools/format"
	"github.com/HOKORISAMA/Emon-engine-tools/lzss"
)

// buildMinimalArchive reproduces spec.md §8 scenario 5: signature + one
// body "HELLO" at offset 8, a pass-through (all-zero opcode) routine, one
// index entry, and a trailing count of 1.
func buildMinimalArchive(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(format.Signature[:])
	buf.WriteString("HELLO")

	var routine cipher.Routine // all-zero: pass-through
	buf.Write(routine.Bytes())

	rec := format.Entry{
		Name:         "a.bin",
		SubType:      format.SubTypeOpaque,
		PackedSize:   5,
		UnpackedSize: 5,
		BodyOffset:   8,
	}
	recBytes := format.AppendEntry(nil, rec)
	cipher.Encrypt(recBytes, routine) // no-op under an all-zero routine
	buf.Write(recBytes)

	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, 1)
	buf.Write(countBuf)

	return buf.Bytes()
}

func TestOpenMinimalArchive(t *testing.T) {
	raw := buildMinimalArchive(t)

	a, err := OpenReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	list := a.List()
	require.Len(t, list, 1)
	require.Equal(t, "a.bin", list[0].Name)

	data, err := a.OpenEntry("a.bin")
	require.NoError(t, err)
	require.Equal(t, []byte("HELLO"), data)
}

func TestOpenRejectsBadSignature(t *testing.T) {
	raw := buildMinimalArchive(t)
	raw[0] = 'X'

	_, err := OpenReader(bytes.NewReader(raw), int64(len(raw)))
	require.Error(t, err)
}

func TestOpenRejectsInsaneCount(t *testing.T) {
	raw := buildMinimalArchive(t)
	binary.LittleEndian.PutUint32(raw[len(raw)-4:], 0)

	_, err := OpenReader(bytes.NewReader(raw), int64(len(raw)))
	require.Error(t, err)
}

// TestWriterReaderScriptRoundTrip packs a single sub_type-3 entry whose
// body is a single (non-split) LZSS-compressed stream and reads it back,
// exercising the Writer/Archive round trip end-to-end.
func TestWriterReaderScriptRoundTrip(t *testing.T) {
	var routine cipher.Routine
	routine[0] = cipher.OpXOR
	copy(routine[8:12], []byte{0x11, 0x22, 0x33, 0x44})

	plain := bytes.Repeat([]byte("the quick brown fox "), 10)

	w := NewWriter(routine)
	spec := EntrySpec{
		Name:          "script.bin",
		SubType:       format.SubTypeScript,
		LZSSFrameSize: lzss.DefaultFrameSize,
		LZSSInitPos:   lzss.DefaultInitPos,
		UnpackedSize:  uint32(len(plain)),
	}
	require.NoError(t, w.AddEntry(spec, plain))

	var out bytes.Buffer
	_, err := w.WriteTo(&out)
	require.NoError(t, err)

	a, err := OpenReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)

	decoded, err := a.OpenEntry("script.bin")
	require.NoError(t, err)
	require.Equal(t, plain, decoded)
}

func TestWriterReaderOpaqueRoundTrip(t *testing.T) {
	var routine cipher.Routine
	routine[0] = cipher.OpXOR
	copy(routine[8:12], []byte{0xAA, 0xBB, 0xCC, 0xDD})

	w := NewWriter(routine)
	data := []byte("opaque payload bytes")
	require.NoError(t, w.AddEntry(EntrySpec{Name: "raw.dat", SubType: format.SubTypeOpaque, UnpackedSize: uint32(len(data))}, data))

	var out bytes.Buffer
	_, err := w.WriteTo(&out)
	require.NoError(t, err)

	a, err := OpenReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)

	decoded, err := a.OpenEntry("raw.dat")
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestWriterReaderType5RoundTrip(t *testing.T) {
	var routine cipher.Routine
	routine[0] = cipher.OpXOR
	copy(routine[8:12], []byte{0x01, 0x02, 0x03, 0x04})

	w := NewWriter(routine)
	data := []byte("HEADdata-follows-verbatim")
	require.NoError(t, w.AddEntry(EntrySpec{Name: "t5.bin", SubType: format.SubTypeType5, UnpackedSize: uint32(len(data))}, data))

	var out bytes.Buffer
	_, err := w.WriteTo(&out)
	require.NoError(t, err)

	a, err := OpenReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)

	decoded, err := a.OpenEntry("t5.bin")
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

// TestSplitScriptReassembly exercises spec.md §8 scenario 6: a script
// entry whose two on-disk LZSS streams are stored in reverse logical
// order (part2 then part1) and must be reassembled as part1 ++ part2.
func TestSplitScriptReassembly(t *testing.T) {
	var routine cipher.Routine
	routine[0] = cipher.OpXOR
	copy(routine[8:12], []byte{0x05, 0x06, 0x07, 0x08})

	params := lzss.DefaultParams()
	part1 := []byte("AAAA")
	part2 := []byte("BBBBBB")

	part1Compressed, err := lzss.Compress(part1, params)
	require.NoError(t, err)
	part2Compressed, err := lzss.Compress(part2, params)
	require.NoError(t, err)

	header := format.AppendScriptHeader(nil, format.ScriptHeader{
		Part2PackedSize:   uint32(len(part2Compressed)),
		Part2UnpackedSize: uint32(len(part2)),
		Compressed:        true,
	})
	cipher.Encrypt(header, routine)

	var buf bytes.Buffer
	buf.Write(format.Signature[:])
	bodyOffset := uint32(buf.Len())
	buf.Write(header)
	buf.Write(part2Compressed)
	buf.Write(part1Compressed)

	packedSize := uint32(len(header) + len(part2Compressed) + len(part1Compressed))

	buf.Write(routine.Bytes())

	rec := format.Entry{
		Name:          "script.s",
		SubType:       format.SubTypeScript,
		LZSSFrameSize: uint16(params.FrameSize),
		LZSSInitPos:   uint16(params.InitPos),
		PackedSize:    packedSize,
		UnpackedSize:  uint32(len(part1) + len(part2)),
		BodyOffset:    bodyOffset,
	}
	recBytes := format.AppendEntry(nil, rec)
	cipher.Encrypt(recBytes, routine)
	buf.Write(recBytes)

	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, 1)
	buf.Write(countBuf)

	a, err := OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	decoded, err := a.OpenEntry("script.s")
	require.NoError(t, err)
	require.Equal(t, append(append([]byte{}, part1...), part2...), decoded)
}

func TestWriterReaderImageRoundTrip(t *testing.T) {
	var routine cipher.Routine
	routine[0] = cipher.OpXOR
	copy(routine[8:12], []byte{0xEE, 0xDD, 0xCC, 0xBB})

	width, height := 3, 2
	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	img := bitmap.Bitmap{Width: width, Height: height, BPP: 24, Stride: width * 3, Pix: pix}

	w := NewWriter(routine)
	spec := EntrySpec{
		Name:          "pic.img",
		SubType:       format.SubTypeImage,
		LZSSFrameSize: lzss.DefaultFrameSize,
		LZSSInitPos:   lzss.DefaultInitPos,
		UnpackedSize:  uint32(len(pix)),
		Image:         &img,
	}
	require.NoError(t, w.AddEntry(spec, nil))

	var out bytes.Buffer
	_, err := w.WriteTo(&out)
	require.NoError(t, err)

	a, err := OpenReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)

	bmp, err := a.OpenImage("pic.img")
	require.NoError(t, err)
	require.Equal(t, width, bmp.Width)
	require.Equal(t, height, bmp.Height)
	require.Equal(t, pix, bmp.Pix)
}

func TestBuildAndVerifyMetadata(t *testing.T) {
	raw := buildMinimalArchive(t)
	a, err := OpenReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	m := a.BuildMetadata()
	require.Len(t, m.Entries, 1)
	require.Equal(t, "a.bin", m.Entries[0].Name)

	require.NoError(t, a.VerifyChecksums(&m))
	require.NotNil(t, m.Entries[0].ContentHash)

	var buf bytes.Buffer
	require.NoError(t, SaveMetadata(&buf, m))

	loaded, err := LoadMetadata(&buf)
	require.NoError(t, err)
	require.Equal(t, m.Key, loaded.Key)
	require.Len(t, loaded.Entries, 1)
}
