package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HOKORISAMA/Emon-engine-tools/archive"
)

var packCmd = &cobra.Command{
	Use:   "pack <input-dir> <sidecar.json> <archive>",
	Short: "Pack a directory of files into a new archive, driven by a sidecar metadata document",
	Args:  cobra.ExactArgs(3),
	RunE:  runPack,
}

func runPack(cmd *cobra.Command, args []string) error {
	inDir, sidecarPath, archivePath := args[0], args[1], args[2]

	sidecarFile, err := os.Open(sidecarPath)
	if err != nil {
		return fmt.Errorf("open sidecar: %w", err)
	}
	defer sidecarFile.Close()

	meta, err := archive.LoadMetadata(sidecarFile)
	if err != nil {
		return fmt.Errorf("parse sidecar: %w", err)
	}

	key, err := archive.ParseKey(meta.Key)
	if err != nil {
		return fmt.Errorf("parse key: %w", err)
	}

	w := archive.NewWriter(key)
	for _, em := range meta.Entries {
		data, err := os.ReadFile(filepath.Join(inDir, em.Name))
		if err != nil {
			return fmt.Errorf("entry %s: %w", em.Name, err)
		}

		if err := w.AddEntry(em.ToEntrySpec(data), data); err != nil {
			return fmt.Errorf("entry %s: %w", em.Name, err)
		}
		log.WithField("entry", em.Name).Debug("staged")
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create %s: %w", archivePath, err)
	}
	defer out.Close()

	if _, err := w.WriteTo(out); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	return nil
}
