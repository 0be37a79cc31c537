// Package bitmap implements the Emon Engine's sub_type-4 image decoder
// (spec.md §4.5): a 32-byte encrypted header, an optional BGRA palette,
// and an LZSS-or-raw pixel block.
//
// Decode stops at a validated Bitmap (width/height/bpp/pixels); converting
// to image.Image — including the vertical flip non-grayscale formats need
// — is Bitmap.Image, a separate, stdlib-only adapter.
package bitmap
