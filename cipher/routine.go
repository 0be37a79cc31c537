package cipher

import (
	"encoding/binary"

	"github.com/HOKORISAMA/Emon-engine-tools/errs"
)

// Size is the fixed byte length of a cipher routine.
const Size = 40

// stepCount is the number of (op, key) micro-instructions in a routine.
const stepCount = 8

// Op values. Any other byte is a no-op step.
const (
	OpXOR         byte = 1
	OpChainedXOR  byte = 2
	OpBitPermute  byte = 4
	OpBytePermute byte = 8
)

// Routine is the 40-byte cipher program: an opcode vector occupying bytes
// 0..8 and a little-endian uint32 key vector occupying bytes 8..40. The
// zero value is a valid all-no-op routine.
//
// Routine is copied verbatim between archive read and write — it is never
// regenerated, only parsed and re-emitted byte-for-byte.
type Routine [Size]byte

// ParseRoutine reads a Routine from the first Size bytes of b.
//
// Returns errs.ErrCorruptRoutine (via errs.Error, Kind KindCorruptRoutine)
// if b is shorter than Size.
func ParseRoutine(b []byte) (Routine, error) {
	var r Routine
	if len(b) < Size {
		return r, errs.New(errs.KindCorruptRoutine, "routine shorter than 40 bytes")
	}
	copy(r[:], b[:Size])

	return r, nil
}

// Bytes returns the routine's 40 raw bytes.
func (r Routine) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, r[:])

	return b
}

// Op returns the opcode for step i (0..7).
func (r Routine) Op(i int) byte {
	return r[i]
}

// Key returns the little-endian 32-bit key for step i (0..7).
func (r Routine) Key(i int) uint32 {
	return binary.LittleEndian.Uint32(r[8+4*i : 12+4*i])
}

// Validate reports whether every step of r is invertible over a region of
// the given length: every op==4 step must have a key whose value mod 32 is
// coprime with 32 (i.e. odd), and every op==8 step must have a key coprime
// with length. Steps with any other opcode are always fine (XOR and
// chained XOR are unconditionally self-inverse/invertible; unrecognized
// opcodes are no-ops).
//
// Returns errs.ErrCorruptRoutine (via errs.Error) describing the first
// offending step, or nil if r is invertible over a region of this length.
func Validate(r Routine, length int) error {
	for i := 0; i < stepCount; i++ {
		switch r.Op(i) {
		case OpBitPermute:
			key := int(r.Key(i)) % 32
			if key == 0 || gcd(key, 32) != 1 {
				return errs.New(errs.KindCorruptRoutine, "op4 key is not coprime with 32")
			}
		case OpBytePermute:
			key := int(r.Key(i))
			if length <= 0 || gcd(key%length, length) != 1 {
				return errs.New(errs.KindCorruptRoutine, "op8 key is not coprime with region length")
			}
		}
	}

	return nil
}

func gcd(a, b int) int {
	a, b = absInt(a), absInt(b)
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}

	return n
}
