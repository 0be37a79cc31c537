package archive

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/HOKORISAMA/Emon-engine-tools/bitmap"
	"github.com/HOKORISAMA/Emon-engine-tools/cipher"
	"github.com/HOKORISAMA/Emon-engine-tools/errs"
	"github.com/HOKORISAMA/Emon-engine-tools/format"
	"github.com/HOKORISAMA/Emon-engine-tools/internal/hash"
)

// discardLogger is the default, silent logger used when callers don't
// supply one.
var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}()

// EntryMeta is the read-only, public view of one index record.
type EntryMeta struct {
	format.Entry
	IsPacked bool
}

// Archive is an opened, read-only Emon Engine container.
type Archive struct {
	r      io.ReaderAt
	closer io.Closer
	size   int64

	key     cipher.Routine
	entries []format.Entry
	byName  map[uint64]int

	log *logrus.Logger
}

// Option configures Open/OpenReader.
type Option func(*Archive)

// WithLogger attaches a logrus.Logger for ambient diagnostics. A nil
// logger (the default) discards all output.
func WithLogger(l *logrus.Logger) Option {
	return func(a *Archive) {
		if l != nil {
			a.log = l
		}
	}
}

// Open opens the archive at path and parses its directory.
func Open(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.KindIOError, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.KindIOError, err)
	}

	a, err := OpenReader(f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.closer = f

	return a, nil
}

// OpenReader parses an archive from r, which must support reads at
// arbitrary offsets up to size. The caller retains ownership of r: Close on
// an Archive from OpenReader is a no-op, even if r implements io.Closer.
func OpenReader(r io.ReaderAt, size int64, opts ...Option) (*Archive, error) {
	a := &Archive{r: r, size: size, log: discardLogger}
	for _, opt := range opts {
		opt(a)
	}

	sigBuf := make([]byte, format.SignatureSize)
	if err := readFull(r, 0, sigBuf); err != nil {
		return nil, err
	}
	if !format.HasSignature(sigBuf) {
		return nil, errs.New(errs.KindBadSignature, "missing RREDATA signature")
	}

	if size < 4 {
		return nil, errs.New(errs.KindShortFile, "archive too short for tail count")
	}
	countBuf := make([]byte, 4)
	if err := readFull(r, size-4, countBuf); err != nil {
		return nil, err
	}
	count := int(binary.LittleEndian.Uint32(countBuf))
	if count < format.MinCount || count > format.MaxCount {
		return nil, errs.New(errs.KindInsaneCount, "entry count out of range")
	}

	indexSize := int64(count) * format.EntrySize
	indexOffset := size - 4 - indexSize
	keyOffset := indexOffset - cipher.Size
	if keyOffset < format.SignatureSize {
		return nil, errs.New(errs.KindShortFile, "archive too short for key and index")
	}

	keyBuf := make([]byte, cipher.Size)
	if err := readFull(r, keyOffset, keyBuf); err != nil {
		return nil, err
	}
	routine, err := cipher.ParseRoutine(keyBuf)
	if err != nil {
		return nil, err
	}
	if err := cipher.Validate(routine, format.EntrySize); err != nil {
		return nil, err
	}
	a.key = routine

	indexBuf := make([]byte, indexSize)
	if err := readFull(r, indexOffset, indexBuf); err != nil {
		return nil, err
	}

	a.entries = make([]format.Entry, count)
	a.byName = make(map[uint64]int, count)
	for i := 0; i < count; i++ {
		rec := indexBuf[i*format.EntrySize : (i+1)*format.EntrySize]
		cipher.Decrypt(rec, routine)
		e := format.ParseEntry(rec)

		if int64(e.BodyOffset)+int64(e.PackedSize) > indexOffset {
			return nil, errs.New(errs.KindBadPlacement, "entry body exceeds file region").WithEntry(e.Name)
		}

		a.entries[i] = e
		a.byName[hash.EntryID(e.Name)] = i
	}

	return a, nil
}

// Close releases the underlying file handle, if Open (not OpenReader)
// opened it.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}

	return a.closer.Close()
}

// List returns metadata for every entry, in archive order.
func (a *Archive) List() []EntryMeta {
	out := make([]EntryMeta, len(a.entries))
	for i, e := range a.entries {
		out[i] = EntryMeta{Entry: e, IsPacked: e.UnpackedSize != e.PackedSize}
	}

	return out
}

// Key returns the archive's cipher routine.
func (a *Archive) Key() cipher.Routine { return a.key }

// OpenEntry decodes the entry named name into its logical payload bytes.
func (a *Archive) OpenEntry(name string) ([]byte, error) {
	i, ok := a.byName[hash.EntryID(name)]
	if !ok {
		return nil, errs.New(errs.KindIOError, "no such entry").WithEntry(name)
	}

	return a.OpenEntryAt(i)
}

// OpenEntryAt decodes the i-th entry (in List order) into its logical
// payload bytes.
func (a *Archive) OpenEntryAt(i int) ([]byte, error) {
	if i < 0 || i >= len(a.entries) {
		return nil, errs.New(errs.KindIOError, "entry index out of range")
	}
	e := a.entries[i]

	a.log.WithField("entry", e.Name).Debug("decoding entry")

	switch e.SubType {
	case format.SubTypeScript:
		return a.decodeScript(e)
	case format.SubTypeType5:
		return a.decodeType5(e)
	case format.SubTypeImage:
		return a.decodeImage(e)
	default:
		return a.readBody(e.BodyOffset, e.PackedSize, &e)
	}
}

// OpenImage decodes a sub_type-4 entry named name into a bitmap.Bitmap,
// giving access to width/height/bpp alongside the pixel buffer.
func (a *Archive) OpenImage(name string) (bitmap.Bitmap, error) {
	i, ok := a.byName[hash.EntryID(name)]
	if !ok {
		return bitmap.Bitmap{}, errs.New(errs.KindIOError, "no such entry").WithEntry(name)
	}

	return a.OpenImageAt(i)
}

// OpenImageAt decodes the i-th entry (in List order), which must have
// SubType == format.SubTypeImage, into a bitmap.Bitmap.
func (a *Archive) OpenImageAt(i int) (bitmap.Bitmap, error) {
	if i < 0 || i >= len(a.entries) {
		return bitmap.Bitmap{}, errs.New(errs.KindIOError, "entry index out of range")
	}
	e := a.entries[i]
	if e.SubType != format.SubTypeImage {
		return bitmap.Bitmap{}, errs.New(errs.KindUnsupportedImage, "entry is not an image").WithEntry(e.Name)
	}

	raw, err := a.readBody(e.BodyOffset, e.PackedSize+format.BitmapHeaderSize, &e)
	if err != nil {
		return bitmap.Bitmap{}, err
	}

	bmp, err := bitmap.Decode(raw, a.key, e.LZSSFrameSize, e.LZSSInitPos)
	if err != nil {
		if be, ok := err.(*errs.Error); ok {
			return bitmap.Bitmap{}, be.WithEntry(e.Name)
		}
		return bitmap.Bitmap{}, err
	}

	return bmp, nil
}

func (a *Archive) readBody(offset, length uint32, e *format.Entry) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := a.r.ReadAt(buf, int64(offset)); err != nil {
		ee := errs.Wrap(errs.KindShortFile, err)
		if e != nil {
			ee = ee.WithEntry(e.Name)
		}
		return nil, ee
	}

	return buf, nil
}

func readFull(r io.ReaderAt, offset int64, buf []byte) error {
	_, err := r.ReadAt(buf, offset)
	if err != nil {
		return errs.Wrap(errs.KindShortFile, err)
	}

	return nil
}
