package pool

import "sync"

// Slice pools for efficient reuse of the fixed-shape int arrays behind the
// LZSS encoder's binary search trees (lchild/rchild/parent) and its byte
// ring buffer, so compressing many archive entries back-to-back doesn't
// allocate four fresh arrays per entry.
var (
	intSlicePool = sync.Pool{
		New: func() any { return &[]int{} },
	}
	byteSlicePool = sync.Pool{
		New: func() any { return &[]byte{} },
	}
)

// GetIntSlice retrieves an int slice of exact length size from the pool,
// zeroed. The caller must call the returned cleanup function (typically
// with defer) to return the slice to the pool.
func GetIntSlice(size int) ([]int, func()) {
	ptr, _ := intSlicePool.Get().(*[]int)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]int, size)
	} else {
		slice = slice[:size]
		for i := range slice {
			slice[i] = 0
		}
	}
	*ptr = slice

	return slice, func() { intSlicePool.Put(ptr) }
}

// GetByteSlice retrieves a byte slice of exact length size from the pool,
// zeroed. The caller must call the returned cleanup function (typically
// with defer) to return the slice to the pool.
func GetByteSlice(size int) ([]byte, func()) {
	ptr, _ := byteSlicePool.Get().(*[]byte)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]byte, size)
	} else {
		slice = slice[:size]
		for i := range slice {
			slice[i] = 0
		}
	}
	*ptr = slice

	return slice, func() { byteSlicePool.Put(ptr) }
}
