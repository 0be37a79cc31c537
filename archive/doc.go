// Package archive implements the Emon Engine container format: opening an
// archive, listing and decoding its entries (C4), and writing a new
// archive from a set of source files plus sidecar metadata (C5).
//
// # Reading
//
//	a, err := archive.Open("data.eme")
//	defer a.Close()
//	for _, meta := range a.List() {
//		data, err := a.OpenEntry(meta.Name)
//		...
//	}
//
// # Writing
//
//	w := archive.NewWriter(key)
//	w.AddEntry(archive.EntrySpec{Name: "a.bin", SubType: format.SubTypeOpaque}, data)
//	_, err := w.WriteTo(out)
//
// Writer.WriteTo is all-or-nothing: if any AddEntry or the final assembly
// fails, nothing is written to the destination io.Writer.
package archive
