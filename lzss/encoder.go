package lzss

import "github.com/HOKORISAMA/Emon-engine-tools/internal/pool"

// BST-accelerated LZSS compressor, ported from the reference encoder: each
// ring buffer position is inserted into one of 256 binary search trees
// (keyed by first byte) so the longest-match search is logarithmic rather
// than linear.
const nilIndex = -1 // sentinel; rebased to N per tree array at construction

type encoder struct {
	n int // ring buffer size (Params.FrameSize)

	textBuf []byte // size n+F-1
	lchild  []int  // size n+1
	rchild  []int  // size n+257
	parent  []int  // size n+1

	matchPosition int
	matchLength   int

	nil_ int // NIL sentinel value = n
}

// newEncoder draws its ring buffer and tree arrays from the package's
// shared slice pools. The returned cleanup function must be called
// (typically deferred) once the encoder is no longer needed.
func newEncoder(n int) (*encoder, func()) {
	textBuf, putText := pool.GetByteSlice(n + F - 1)
	lchild, putL := pool.GetIntSlice(n + 1)
	rchild, putR := pool.GetIntSlice(n + 257)
	parent, putP := pool.GetIntSlice(n + 1)

	e := &encoder{
		n:       n,
		textBuf: textBuf,
		lchild:  lchild,
		rchild:  rchild,
		parent:  parent,
		nil_:    n,
	}
	for i := n + 1; i < n+257; i++ {
		e.rchild[i] = e.nil_
	}
	for i := 0; i < n; i++ {
		e.parent[i] = e.nil_
	}

	cleanup := func() {
		putText()
		putL()
		putR()
		putP()
	}

	return e, cleanup
}

func (e *encoder) insertNode(r int) {
	cmp := 1
	key := e.textBuf[r : r+F]
	p := e.n + 1 + int(key[0])
	e.rchild[r] = e.nil_
	e.lchild[r] = e.nil_
	e.matchLength = 0

	for {
		if cmp >= 0 {
			if e.rchild[p] != e.nil_ {
				p = e.rchild[p]
			} else {
				e.rchild[p] = r
				e.parent[r] = p
				return
			}
		} else {
			if e.lchild[p] != e.nil_ {
				p = e.lchild[p]
			} else {
				e.lchild[p] = r
				e.parent[r] = p
				return
			}
		}

		i := 1
		for i < F {
			cmp = int(key[i]) - int(e.textBuf[p+i])
			if cmp != 0 {
				break
			}
			i++
		}

		if i > e.matchLength {
			e.matchPosition = p
			e.matchLength = i
			if i >= F {
				break
			}
		}
	}

	e.parent[r] = e.parent[p]
	e.lchild[r] = e.lchild[p]
	e.rchild[r] = e.rchild[p]
	e.parent[e.lchild[p]] = r
	e.parent[e.rchild[p]] = r

	if e.rchild[e.parent[p]] == p {
		e.rchild[e.parent[p]] = r
	} else {
		e.lchild[e.parent[p]] = r
	}
	e.parent[p] = e.nil_
}

func (e *encoder) deleteNode(p int) {
	if e.parent[p] == e.nil_ {
		return
	}

	var q int
	switch {
	case e.rchild[p] == e.nil_:
		q = e.lchild[p]
	case e.lchild[p] == e.nil_:
		q = e.rchild[p]
	default:
		q = e.lchild[p]
		if e.rchild[q] != e.nil_ {
			for e.rchild[q] != e.nil_ {
				q = e.rchild[q]
			}
			e.rchild[e.parent[q]] = e.lchild[q]
			e.parent[e.lchild[q]] = e.parent[q]
			e.lchild[q] = e.lchild[p]
			e.parent[e.lchild[p]] = q
		}
		e.rchild[q] = e.rchild[p]
		e.parent[e.rchild[p]] = q
	}

	e.parent[q] = e.parent[p]
	if e.rchild[e.parent[p]] == p {
		e.rchild[e.parent[p]] = q
	} else {
		e.lchild[e.parent[p]] = q
	}
	e.parent[p] = e.nil_
}

// Compress encodes data per params (ring buffer size and initial write
// position). Returns ErrNoData for empty input, ErrInvalidFrameSize for a
// malformed FrameSize.
func Compress(data []byte, params Params) ([]byte, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}

	n := params.FrameSize
	e, cleanup := newEncoder(n)
	defer cleanup()

	codeBuf := make([]byte, 17)
	var out []byte

	codeBuf[0] = 0
	codeBufPtr := 1
	mask := byte(1)

	r := normalizedInitPos(params)
	s := (r + F) & (n - 1)

	dataPos := 0
	length := 0
	for length < F && dataPos < len(data) {
		idx := (r + length) & (n - 1)
		e.textBuf[idx] = data[dataPos]
		if idx < F-1 {
			e.textBuf[idx+n] = data[dataPos]
		}
		dataPos++
		length++
	}

	// Seed the search trees with the F positions preceding r, wrapping
	// into the ring buffer when InitPos leaves less than F bytes of room
	// before position 0 (the reference encoder always has r = N-F, where
	// this never wraps).
	for i := 1; i <= F; i++ {
		idx := r - i
		for idx < 0 {
			idx += n
		}
		e.insertNode(idx)
	}
	e.insertNode(r)

	for length > 0 {
		if e.matchLength > length {
			e.matchLength = length
		}

		if e.matchLength <= Threshold {
			e.matchLength = 1
			codeBuf[0] |= mask
			codeBuf[codeBufPtr] = e.textBuf[r]
			codeBufPtr++
		} else {
			codeBuf[codeBufPtr] = byte(e.matchPosition & 0xFF)
			codeBufPtr++
			codeBuf[codeBufPtr] = byte(((e.matchPosition>>4)&0xF0) | (e.matchLength - (Threshold + 1)))
			codeBufPtr++
		}

		mask <<= 1
		if mask == 0 {
			out = append(out, codeBuf[:codeBufPtr]...)
			codeBuf[0] = 0
			codeBufPtr = 1
			mask = 1
		}

		lastMatchLength := e.matchLength
		i := 0
		for i < lastMatchLength && dataPos < len(data) {
			e.deleteNode(s)
			c := data[dataPos]
			dataPos++
			e.textBuf[s] = c

			if s < F-1 {
				e.textBuf[s+n] = c
			}

			s = (s + 1) & (n - 1)
			r = (r + 1) & (n - 1)

			e.insertNode(r)
			i++
		}

		for i < lastMatchLength {
			e.deleteNode(s)

			s = (s + 1) & (n - 1)
			r = (r + 1) & (n - 1)
			length--
			if length != 0 {
				e.insertNode(r)
			}
			i++
		}
	}

	if codeBufPtr > 1 {
		out = append(out, codeBuf[:codeBufPtr]...)
	}

	return out, nil
}
