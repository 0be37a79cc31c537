// Package errs defines the flat error taxonomy shared by the cipher,
// archive, and bitmap packages.
//
// Every error these packages create carries exactly one Kind. Package lzss
// reports its own sentinel errors (lzss.ErrNoData, lzss.ErrInvalidFrameSize),
// which carry no Kind; archive and bitmap pass lzss errors from decoding
// through unwrapped. Callers that
// need to branch on the failure category should use errors.Is against the
// sentinel error for that Kind; callers that need the offending entry name
// or byte offset should use errors.As against *Error.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies one of the flat error categories from the container
// format specification.
type Kind uint8

const (
	// KindBadSignature means the first 8 bytes of the file were not "RREDATA ".
	KindBadSignature Kind = iota + 1
	// KindInsaneCount means the tail entry count was not in (0, 100000).
	KindInsaneCount
	// KindShortFile means a read would go past the end of the file.
	KindShortFile
	// KindBadPlacement means an entry body offset+size exceeds its file region.
	KindBadPlacement
	// KindCorruptRoutine means a cipher op is inapplicable: a non-invertible
	// permutation, or a routine shorter than 40 bytes.
	KindCorruptRoutine
	// KindBadPayload means a decoded payload is shorter than its declared
	// unpacked size, or a stored payload hit EOF early.
	KindBadPayload
	// KindUnsupportedImage means bpp isn't in {7,8,24,32}, or a palette is
	// missing for an indexed image.
	KindUnsupportedImage
	// KindIOError wraps an underlying host I/O failure.
	KindIOError
)

func (k Kind) String() string {
	switch k {
	case KindBadSignature:
		return "BadSignature"
	case KindInsaneCount:
		return "InsaneCount"
	case KindShortFile:
		return "ShortFile"
	case KindBadPlacement:
		return "BadPlacement"
	case KindCorruptRoutine:
		return "CorruptRoutine"
	case KindBadPayload:
		return "BadPayload"
	case KindUnsupportedImage:
		return "UnsupportedImage"
	case KindIOError:
		return "IOError"
	default:
		return "Unknown"
	}
}

// Sentinel errors, one per Kind. Wrap these with fmt.Errorf("%w: ...", ...)
// or with Error for entry/offset context; errors.Is keeps working either way.
var (
	ErrBadSignature     = errors.New("bad archive signature")
	ErrInsaneCount      = errors.New("entry count out of range")
	ErrShortFile        = errors.New("read past end of file")
	ErrBadPlacement     = errors.New("entry body exceeds file region")
	ErrCorruptRoutine   = errors.New("cipher routine is not invertible")
	ErrBadPayload       = errors.New("decoded payload shorter than declared size")
	ErrUnsupportedImage = errors.New("unsupported bitmap format")
	ErrIOError          = errors.New("I/O error")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindBadSignature:
		return ErrBadSignature
	case KindInsaneCount:
		return ErrInsaneCount
	case KindShortFile:
		return ErrShortFile
	case KindBadPlacement:
		return ErrBadPlacement
	case KindCorruptRoutine:
		return ErrCorruptRoutine
	case KindBadPayload:
		return ErrBadPayload
	case KindUnsupportedImage:
		return ErrUnsupportedImage
	case KindIOError:
		return ErrIOError
	default:
		return errors.New("unknown error")
	}
}

// Error is a Kind-tagged error carrying the offending entry name and/or byte
// offset, when known. Entry and Offset are informational: Entry is empty and
// Offset is -1 when not applicable (e.g. archive-level signature/count errors).
type Error struct {
	Kind   Kind
	Entry  string // entry name, empty if not entry-specific
	Offset int64  // byte offset, -1 if not applicable
	Err    error  // wrapped underlying cause, may be nil
}

// New creates an *Error for kind with no entry/offset context.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Offset: -1, Err: fmt.Errorf("%w: %s", sentinelFor(kind), msg)}
}

// Wrap creates an *Error for kind wrapping err, with no entry/offset context.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Offset: -1, Err: fmt.Errorf("%w: %w", sentinelFor(kind), err)}
}

// WithEntry returns a copy of e annotated with the given entry name.
func (e *Error) WithEntry(name string) *Error {
	cp := *e
	cp.Entry = name
	return &cp
}

// WithOffset returns a copy of e annotated with the given byte offset.
func (e *Error) WithOffset(off int64) *Error {
	cp := *e
	cp.Offset = off
	return &cp
}

func (e *Error) Error() string {
	switch {
	case e.Entry != "" && e.Offset >= 0:
		return fmt.Sprintf("%s: entry %q at offset 0x%x: %v", e.Kind, e.Entry, e.Offset, e.Err)
	case e.Entry != "":
		return fmt.Sprintf("%s: entry %q: %v", e.Kind, e.Entry, e.Err)
	case e.Offset >= 0:
		return fmt.Sprintf("%s: offset 0x%x: %v", e.Kind, e.Offset, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
