// Package lzss implements the Emon Engine's fixed-window LZSS variant: a
// sliding-window compressor/decompressor with an externally supplied frame
// size and ring-buffer initial write position.
//
// # Parameters
//
// F (maximum match length) is fixed at 18 and THRESHOLD at 2; only the
// frame size N and the ring buffer's initial write position are
// per-archive/per-entry parameters (see Params, DefaultParams).
//
// # Usage
//
//	params := lzss.DefaultParams() // N=0x1000, InitPos=0xFEE
//	compressed, err := lzss.Compress(data, params)
//	restored, err := lzss.Decompress(compressed, params, len(data))
//
// Decompress is deterministic and a pure function of its inputs. It never
// errors on truncated input — it returns whatever prefix it managed to
// decode, matching the source decoder's "decode until the input runs out"
// behavior — but it does reject structurally invalid parameters (a zero or
// non-power-of-two frame size) up front.
package lzss
