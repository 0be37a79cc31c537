// Package format defines the Emon Engine archive container's on-disk
// layout: the signature, the fixed-size entry record, the sub-type
// dispatch table, and the lzss_init_pos lifecycle conversion between the
// on-disk and in-memory conventions.
//
// format deliberately holds no I/O and no cipher/codec logic; it is the
// shared vocabulary that archive, bitmap, and cmd/emearc build on.
package format
