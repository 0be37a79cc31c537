// Package pool provides sync.Pool-backed reuse of scratch buffers used
// while writing archives (the LZSS encoder's ring and tree arrays, and the
// writer's whole-archive staging buffer), so packing many entries in
// sequence doesn't allocate fresh encoder arrays per entry. The read path
// does not use these pools.
package pool

import (
	"io"
	"sync"
)

// BodySetBufferDefaultSize is the default capacity of the staging buffer
// Writer.WriteTo assembles a whole archive into before copying it to the
// destination. BodySetBufferMaxThreshold caps how large a returned buffer
// may grow before the pool discards it instead of retaining it.
const (
	BodySetBufferDefaultSize  = 1024 * 1024     // 1MiB
	BodySetBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB
)

// ByteBuffer is a growable byte slice wrapper, reset and recycled by
// ByteBufferPool instead of reallocated per use.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers.
// The pool can be configured with a maximum size threshold to avoid retaining
// overly large buffers that could lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int // Optional maximum size threshold for buffers
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		// Discard overly large buffers to prevent memory bloat
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var bodySetDefaultPool = NewByteBufferPool(BodySetBufferDefaultSize, BodySetBufferMaxThreshold)

// GetBodySetBuffer retrieves a ByteBuffer from the default body-set pool,
// used by Writer.WriteTo to stage a complete archive before copying it out.
func GetBodySetBuffer() *ByteBuffer {
	return bodySetDefaultPool.Get()
}

// PutBodySetBuffer returns a ByteBuffer to the default body-set pool.
func PutBodySetBuffer(bb *ByteBuffer) {
	bodySetDefaultPool.Put(bb)
}
