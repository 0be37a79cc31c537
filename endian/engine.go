// Package endian combines encoding/binary's ByteOrder and AppendByteOrder
// interfaces into one EndianEngine, so the format package can decode and
// append header fields through a single call site instead of a bare
// binary.LittleEndian literal sprinkled across the codebase.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into one interface. binary.LittleEndian satisfies it directly.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the engine used throughout this format: the
// Emon Engine container is always little-endian.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
