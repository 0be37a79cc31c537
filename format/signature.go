package format

// Signature is the 8-byte magic every archive begins with.
var Signature = [8]byte{'R', 'R', 'E', 'D', 'A', 'T', 'A', ' '}

// SignatureSize is len(Signature).
const SignatureSize = 8

// HasSignature reports whether b begins with Signature.
func HasSignature(b []byte) bool {
	if len(b) < SignatureSize {
		return false
	}
	for i := 0; i < SignatureSize; i++ {
		if b[i] != Signature[i] {
			return false
		}
	}

	return true
}

// MinCount and MaxCount bound a sane entry count (spec §3: 0 < count < 100000).
const (
	MinCount = 1
	MaxCount = 99999
)
