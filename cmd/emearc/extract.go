package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HOKORISAMA/Emon-engine-tools/archive"
	"github.com/HOKORISAMA/Emon-engine-tools/format"
)

var verifyChecksums bool

var extractCmd = &cobra.Command{
	Use:   "extract <archive> <output-dir>",
	Short: "Extract every entry of an archive to a directory, plus a sidecar metadata.json",
	Args:  cobra.ExactArgs(2),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&verifyChecksums, "verify-checksums", false, "record a content hash for each extracted entry")
}

func runExtract(cmd *cobra.Command, args []string) error {
	archivePath, outDir := args[0], args[1]

	a, err := archive.Open(archivePath, archive.WithLogger(log))
	if err != nil {
		return fmt.Errorf("open %s: %w", archivePath, err)
	}
	defer a.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	meta := a.BuildMetadata()
	if verifyChecksums {
		if err := a.VerifyChecksums(&meta); err != nil {
			return fmt.Errorf("verify checksums: %w", err)
		}
	}

	metaPath := filepath.Join(outDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return fmt.Errorf("create metadata.json: %w", err)
	}
	if err := archive.SaveMetadata(metaFile, meta); err != nil {
		metaFile.Close()
		return fmt.Errorf("write metadata.json: %w", err)
	}
	metaFile.Close()

	failures := 0
	for i, entryMeta := range a.List() {
		outPath := filepath.Join(outDir, entryMeta.Name)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			log.WithError(err).Errorf("entry %s: create directory", entryMeta.Name)
			failures++
			continue
		}

		data, err := extractOne(a, i, entryMeta, outPath)
		if err != nil {
			log.WithError(err).Errorf("entry %s: decode", entryMeta.Name)
			failures++
			continue
		}

		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			log.WithError(err).Errorf("entry %s: write", entryMeta.Name)
			failures++
			continue
		}

		log.WithField("entry", entryMeta.Name).Debug("extracted")
	}

	if failures > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d entries failed to extract\n", failures)
	}

	return nil
}

// extractOne decodes an entry to raw bytes. Image entries also produce a
// PNG rendering alongside the raw pixel buffer, using image/png from the
// standard library — a thin convenience outside the core decoder's scope.
func extractOne(a *archive.Archive, i int, meta archive.EntryMeta, outPath string) ([]byte, error) {
	if meta.SubType != format.SubTypeImage {
		return a.OpenEntryAt(i)
	}

	bmp, err := a.OpenImageAt(i)
	if err != nil {
		return nil, err
	}

	pngPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".png"
	var buf bytes.Buffer
	if err := png.Encode(&buf, bmp.Image()); err != nil {
		return nil, err
	}
	if err := os.WriteFile(pngPath, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}

	return bmp.Pix, nil
}
