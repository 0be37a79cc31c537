// Package hash provides the fast hash used to key an archive's
// name-to-entry lookup table.
package hash

import "github.com/cespare/xxhash/v2"

// EntryID computes the xxHash64 of an entry name, used as the map key for
// archive.Archive's O(1) name lookup.
func EntryID(name string) uint64 {
	return xxhash.Sum64String(name)
}
