package bitmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HOKORISAMA/Emon-engine-tools/cipher"
	"github.com/HOKORISAMA/Emon-engine-tools/format"
)

func noopRoutine() cipher.Routine {
	var r cipher.Routine // all-zero opcodes: every step is a no-op, decrypt is identity
	return r
}

func buildHeader(bpp byte, width, height, colors uint16, stride int32) []byte {
	h := make([]byte, format.BitmapHeaderSize)
	h[0] = bpp
	h[2] = byte(width)
	h[3] = byte(width >> 8)
	h[4] = byte(height)
	h[5] = byte(height >> 8)
	h[6] = byte(colors)
	h[7] = byte(colors >> 8)
	h[8] = byte(stride)
	h[9] = byte(stride >> 8)
	h[10] = byte(stride >> 16)
	h[11] = byte(stride >> 24)

	return h
}

func TestDecodeGrayscaleUncompressed(t *testing.T) {
	width, height := 4, 2
	header := buildHeader(7, uint16(width), uint16(height), 0, int32(width))
	pixels := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	raw := append(header, pixels...)

	bmp, err := Decode(raw, noopRoutine(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, width, bmp.Width)
	require.Equal(t, height, bmp.Height)
	require.Equal(t, pixels, bmp.Pix)

	img := bmp.Image()
	require.Equal(t, width, img.Bounds().Dx())
	require.Equal(t, height, img.Bounds().Dy())
}

func TestDecodeRejectsShortInput(t *testing.T) {
	_, err := Decode(make([]byte, 10), noopRoutine(), 0, 0)
	require.Error(t, err)
}

func TestDecodeRejectsBadBPP(t *testing.T) {
	header := buildHeader(99, 1, 1, 0, 1)
	_, err := Decode(header, noopRoutine(), 0, 0)
	require.Error(t, err)
}

func TestDecodeBGR24Truncated(t *testing.T) {
	width, height := 2, 2
	header := buildHeader(24, uint16(width), uint16(height), 0, int32(width*3))
	// Supply fewer pixel bytes than stride*height; Decode must pad with
	// zeros rather than erroring.
	raw := append(header, []byte{1, 2, 3}...)

	bmp, err := Decode(raw, noopRoutine(), 0, 0)
	require.NoError(t, err)
	require.Len(t, bmp.Pix, width*3*height)

	img := bmp.Image()
	require.NotNil(t, img)
}

func TestEncodeDecodeRoundTripUncompressed(t *testing.T) {
	width, height := 4, 3
	bmp := Bitmap{
		Width:  width,
		Height: height,
		BPP:    24,
		Stride: width * 3,
		Pix:    []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, 36},
	}

	routine := noopRoutine()
	routine[0] = cipher.OpXOR
	routine[8] = 0x7A

	body, err := Encode(bmp, routine, 0, 0)
	require.NoError(t, err)

	decoded, err := Decode(body, routine, 0, 0)
	require.NoError(t, err)
	require.Equal(t, bmp.Width, decoded.Width)
	require.Equal(t, bmp.Height, decoded.Height)
	require.Equal(t, bmp.BPP, decoded.BPP)
	require.Equal(t, bmp.Pix, decoded.Pix)
}

func TestEncodeDecodeRoundTripCompressedPalette(t *testing.T) {
	width, height := 4, 4
	pix := make([]byte, width*height)
	for i := range pix {
		pix[i] = byte(i % 3)
	}

	bmp := Bitmap{
		Width:  width,
		Height: height,
		BPP:    8,
		Stride: width,
		Pix:    pix,
		Palette: []PaletteEntry{
			{R: 10, G: 20, B: 30},
			{R: 40, G: 50, B: 60},
			{R: 70, G: 80, B: 90},
		},
	}

	routine := noopRoutine()
	routine[0] = cipher.OpXOR
	routine[8] = 0x11

	body, err := Encode(bmp, routine, 0x40, 0x40-18)
	require.NoError(t, err)

	decoded, err := Decode(body, routine, 0x40, 0x40-18)
	require.NoError(t, err)
	require.Equal(t, bmp.Pix, decoded.Pix)
	require.Equal(t, bmp.Palette, decoded.Palette)
}
