package cipher

import "encoding/binary"

// Decrypt mutates buf in place, undoing r's forward transform. Steps run
// from i=7 down to i=0. Ops that work on 4-byte words (XOR, chained XOR,
// bit permutation) leave a trailing partial word untouched; byte
// permutation always runs over the full buf.
func Decrypt(buf []byte, r Routine) {
	for i := stepCount - 1; i >= 0; i-- {
		applyStep(buf, r.Op(i), r.Key(i), false)
	}
}

// Encrypt mutates buf in place, applying r's forward transform. Steps run
// from i=0 up to i=7; see Decrypt for the word-alignment rule.
func Encrypt(buf []byte, r Routine) {
	for i := 0; i < stepCount; i++ {
		applyStep(buf, r.Op(i), r.Key(i), true)
	}
}

func applyStep(buf []byte, op byte, key uint32, encrypt bool) {
	switch op {
	case OpXOR:
		xorWords(buf, key)
	case OpChainedXOR:
		if encrypt {
			chainedXOREncrypt(buf, key)
		} else {
			chainedXORDecrypt(buf, key)
		}
	case OpBitPermute:
		if encrypt {
			bitPermuteEncrypt(buf, key)
		} else {
			bitPermuteDecrypt(buf, key)
		}
	case OpBytePermute:
		if encrypt {
			bytePermuteEncrypt(buf, key)
		} else {
			bytePermuteDecrypt(buf, key)
		}
	}
	// any other opcode: no-op
}

// wordAligned returns the largest prefix length of n that's a multiple of 4.
func wordAligned(n int) int {
	return n - n%4
}

// xorWords XORs each 4-byte little-endian word of buf with key. Self-inverse.
func xorWords(buf []byte, key uint32) {
	end := wordAligned(len(buf))
	for j := 0; j < end; j += 4 {
		v := binary.LittleEndian.Uint32(buf[j : j+4])
		binary.LittleEndian.PutUint32(buf[j:j+4], v^key)
	}
}

// chainedXORDecrypt implements op==2 in the decrypt direction: the running
// feedback value is the pre-XOR (ciphertext) word just consumed.
func chainedXORDecrypt(buf []byte, key uint32) {
	end := wordAligned(len(buf))
	temp := key
	for j := 0; j < end; j += 4 {
		w := binary.LittleEndian.Uint32(buf[j : j+4])
		binary.LittleEndian.PutUint32(buf[j:j+4], w^temp)
		temp = w
	}
}

// chainedXOREncrypt implements op==2 in the encrypt direction: the running
// feedback value is the post-XOR (ciphertext) word just produced.
func chainedXOREncrypt(buf []byte, key uint32) {
	end := wordAligned(len(buf))
	temp := key
	for j := 0; j < end; j += 4 {
		w := binary.LittleEndian.Uint32(buf[j : j+4])
		out := w ^ temp
		binary.LittleEndian.PutUint32(buf[j:j+4], out)
		temp = out
	}
}

// bitPositions returns P[i] = ((i+1)*key) mod 32 for i in [0,32).
func bitPositions(key uint32) [32]uint {
	var p [32]uint
	k := uint(key) % 32
	for i := uint(0); i < 32; i++ {
		p[i] = ((i + 1) * k) % 32
	}

	return p
}

// bitPermuteDecrypt implements op==4 in the decrypt direction: source bit i
// moves to destination position P[i].
func bitPermuteDecrypt(buf []byte, key uint32) {
	p := bitPositions(key)
	end := wordAligned(len(buf))
	for j := 0; j < end; j += 4 {
		v := binary.LittleEndian.Uint32(buf[j : j+4])
		var out uint32
		for i := uint(0); i < 32; i++ {
			bit := (v >> i) & 1
			out |= bit << p[i]
		}
		binary.LittleEndian.PutUint32(buf[j:j+4], out)
	}
}

// bitPermuteEncrypt implements op==4 in the encrypt direction: output bit i
// takes the input bit at position P[i] — the exact inverse of Decrypt.
func bitPermuteEncrypt(buf []byte, key uint32) {
	p := bitPositions(key)
	end := wordAligned(len(buf))
	for j := 0; j < end; j += 4 {
		v := binary.LittleEndian.Uint32(buf[j : j+4])
		var out uint32
		for i := uint(0); i < 32; i++ {
			bit := (v >> p[i]) & 1
			out |= bit << i
		}
		binary.LittleEndian.PutUint32(buf[j:j+4], out)
	}
}

// bytePositions returns X[i] = ((i+1)*key) mod length for i in [0,length).
func bytePositions(key uint32, length int) []int {
	x := make([]int, length)
	k := int(key) % length
	if k < 0 {
		k += length
	}
	acc := 0
	for i := 0; i < length; i++ {
		acc = (acc + k) % length
		x[i] = acc
	}

	return x
}

// bytePermuteDecrypt implements op==8 in the decrypt direction over the
// full buf: out[X[i]] = in[i].
func bytePermuteDecrypt(buf []byte, key uint32) {
	if len(buf) == 0 {
		return
	}
	x := bytePositions(key, len(buf))
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[x[i]] = b
	}
	copy(buf, out)
}

// bytePermuteEncrypt implements op==8 in the encrypt direction over the
// full buf: out[i] = in[X[i]].
func bytePermuteEncrypt(buf []byte, key uint32) {
	if len(buf) == 0 {
		return
	}
	x := bytePositions(key, len(buf))
	out := make([]byte, len(buf))
	for i := range buf {
		out[i] = buf[x[i]]
	}
	copy(buf, out)
}
