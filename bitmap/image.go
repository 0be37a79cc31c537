package bitmap

import (
	"image"
	"image/color"
)

// Image converts Bitmap to a standard image.Image. Non-grayscale formats
// are vertically flipped here (the on-disk buffer is bottom-up); Pix
// itself is never modified.
func (b Bitmap) Image() image.Image {
	switch {
	case b.BPP == 7:
		return b.grayImage()
	case b.BPP == 32:
		return b.flip(b.bgra32Image())
	case b.BPP == 24:
		return b.flip(b.bgr24Image())
	case len(b.Palette) > 0:
		return b.flip(b.palettedImage())
	default:
		return b.flip(b.bgr24Image())
	}
}

func (b Bitmap) grayImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	stride := b.Width
	for y := 0; y < b.Height; y++ {
		srcOff := y * stride
		dstOff := y * img.Stride
		if srcOff+stride > len(b.Pix) {
			break
		}
		copy(img.Pix[dstOff:dstOff+stride], b.Pix[srcOff:srcOff+stride])
	}

	return img
}

func (b Bitmap) bgra32Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	rowBytes := b.Width * 4
	for y := 0; y < b.Height; y++ {
		srcOff := y * rowBytes
		if srcOff+rowBytes > len(b.Pix) {
			break
		}
		for x := 0; x < b.Width; x++ {
			si := srcOff + x*4
			bl, g, r, a := b.Pix[si], b.Pix[si+1], b.Pix[si+2], b.Pix[si+3]
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: bl, A: a})
		}
	}

	return img
}

func (b Bitmap) bgr24Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	rowBytes := b.Width * 3
	for y := 0; y < b.Height; y++ {
		srcOff := y * rowBytes
		if srcOff+rowBytes > len(b.Pix) {
			break
		}
		for x := 0; x < b.Width; x++ {
			si := srcOff + x*3
			bl, g, r := b.Pix[si], b.Pix[si+1], b.Pix[si+2]
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: bl, A: 255})
		}
	}

	return img
}

func (b Bitmap) palettedImage() *image.Paletted {
	pal := make(color.Palette, len(b.Palette))
	for i, p := range b.Palette {
		pal[i] = color.NRGBA{R: p.R, G: p.G, B: p.B, A: 255}
	}

	img := image.NewPaletted(image.Rect(0, 0, b.Width, b.Height), pal)
	stride := b.Width
	for y := 0; y < b.Height; y++ {
		srcOff := y * stride
		dstOff := y * img.Stride
		if srcOff+stride > len(b.Pix) {
			break
		}
		copy(img.Pix[dstOff:dstOff+stride], b.Pix[srcOff:srcOff+stride])
	}

	return img
}

// flip returns a vertically mirrored copy of img (row 0 <-> row Height-1).
func (b Bitmap) flip(img image.Image) image.Image {
	switch src := img.(type) {
	case *image.NRGBA:
		out := image.NewNRGBA(src.Rect)
		h := src.Rect.Dy()
		for y := 0; y < h; y++ {
			srcRow := src.Pix[y*src.Stride : y*src.Stride+src.Stride]
			dstRow := out.Pix[(h-1-y)*out.Stride : (h-1-y)*out.Stride+out.Stride]
			copy(dstRow, srcRow)
		}

		return out
	case *image.Paletted:
		out := image.NewPaletted(src.Rect, src.Palette)
		h := src.Rect.Dy()
		for y := 0; y < h; y++ {
			srcRow := src.Pix[y*src.Stride : y*src.Stride+src.Stride]
			dstRow := out.Pix[(h-1-y)*out.Stride : (h-1-y)*out.Stride+out.Stride]
			copy(dstRow, srcRow)
		}

		return out
	default:
		return img
	}
}
