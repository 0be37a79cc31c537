package archive

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"

	"github.com/HOKORISAMA/Emon-engine-tools/bitmap"
	"github.com/HOKORISAMA/Emon-engine-tools/cipher"
	"github.com/HOKORISAMA/Emon-engine-tools/errs"
	"github.com/HOKORISAMA/Emon-engine-tools/format"
	"github.com/HOKORISAMA/Emon-engine-tools/internal/hash"
)

// EntryMetadata is one entry's sidecar record (spec.md §6). ContentHash is
// supplemental: an opt-in xxhash64 of the decoded payload, used only by
// VerifyChecksums, never part of the binary archive format. The Image*
// fields are only populated for sub_type-4 entries; a flat extracted pixel
// buffer alone can't carry width/height/bpp/palette back into a repack.
type EntryMetadata struct {
	Name          string                `json:"name"`
	Offset        uint32                `json:"offset"`
	PackedSize    uint32                `json:"packed_size"`
	UnpackedSize  uint32                `json:"unpacked_size"`
	LZSSFrameSize uint16                `json:"lzss_frame_size"`
	LZSSInitPos   uint16                `json:"lzss_init_pos"`
	SubType       uint32                `json:"sub_type"`
	Magic         uint16                `json:"magic"`
	IsPacked      bool                  `json:"is_packed"`
	ContentHash   *uint64               `json:"content_hash,omitempty"`
	ImageWidth    int                   `json:"image_width,omitempty"`
	ImageHeight   int                   `json:"image_height,omitempty"`
	ImageBPP      byte                  `json:"image_bpp,omitempty"`
	ImageStride   int                   `json:"image_stride,omitempty"`
	ImagePalette  []bitmap.PaletteEntry `json:"image_palette,omitempty"`
}

// Metadata is the sidecar document built by BuildMetadata (and written by
// the extract command) and consumed by pack.
type Metadata struct {
	Key     string          `json:"key"`
	Entries []EntryMetadata `json:"entries"`
}

// BuildMetadata derives a Metadata document from an opened archive's entries.
func (a *Archive) BuildMetadata() Metadata {
	m := Metadata{
		Key:     strings.ToUpper(hex.EncodeToString(a.key.Bytes())),
		Entries: make([]EntryMetadata, len(a.entries)),
	}
	for i, e := range a.entries {
		em := EntryMetadata{
			Name:          e.Name,
			Offset:        e.BodyOffset,
			PackedSize:    e.PackedSize,
			UnpackedSize:  e.UnpackedSize,
			LZSSFrameSize: e.LZSSFrameSize,
			LZSSInitPos:   e.LZSSInitPos,
			SubType:       uint32(e.SubType),
			Magic:         e.Magic,
			IsPacked:      e.UnpackedSize != e.PackedSize,
		}

		if e.SubType == format.SubTypeImage {
			if bmp, err := a.OpenImageAt(i); err == nil {
				em.ImageWidth = bmp.Width
				em.ImageHeight = bmp.Height
				em.ImageBPP = bmp.BPP
				em.ImageStride = bmp.Stride
				em.ImagePalette = bmp.Palette
			} else {
				a.log.WithError(err).WithField("entry", e.Name).Warn("could not read image geometry for metadata")
			}
		}

		m.Entries[i] = em
	}

	return m
}

// VerifyChecksums decodes every entry and fills in each EntryMetadata's
// ContentHash with the xxhash64 of its decoded payload bytes.
func (a *Archive) VerifyChecksums(m *Metadata) error {
	for i := range m.Entries {
		data, err := a.OpenEntryAt(i)
		if err != nil {
			return err
		}
		sum := hash.EntryID(string(data))
		m.Entries[i].ContentHash = &sum
	}

	return nil
}

// SaveMetadata writes m as 2-space-indented JSON.
func SaveMetadata(w io.Writer, m Metadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(m)
}

// LoadMetadata reads a sidecar document previously written by SaveMetadata.
func LoadMetadata(r io.Reader) (Metadata, error) {
	var m Metadata
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Metadata{}, errs.Wrap(errs.KindIOError, err)
	}

	return m, nil
}

// ParseKey decodes a sidecar's hex key field (case-insensitive) into a
// cipher.Routine.
func ParseKey(hexKey string) (cipher.Routine, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return cipher.Routine{}, errs.Wrap(errs.KindCorruptRoutine, err)
	}

	return cipher.ParseRoutine(raw)
}

// ToEntrySpec converts a loaded EntryMetadata and its extracted file
// contents into an EntrySpec ready for Writer.AddEntry. For an image
// entry, data is taken as the raw pixel buffer (what extract wrote
// alongside the PNG preview) and wrapped into a bitmap.Bitmap using the
// sidecar's recorded geometry.
func (em EntryMetadata) ToEntrySpec(data []byte) EntrySpec {
	spec := EntrySpec{
		Name:          em.Name,
		SubType:       format.SubType(em.SubType),
		Magic:         em.Magic,
		LZSSFrameSize: em.LZSSFrameSize,
		LZSSInitPos:   em.LZSSInitPos,
		UnpackedSize:  em.UnpackedSize,
	}

	if spec.SubType == format.SubTypeImage {
		spec.Image = &bitmap.Bitmap{
			Width:   em.ImageWidth,
			Height:  em.ImageHeight,
			BPP:     em.ImageBPP,
			Stride:  em.ImageStride,
			Pix:     data,
			Palette: em.ImagePalette,
		}
	}

	return spec
}
