package integrations

import (
	"archive/zip"
	"os"

	"github.com/nwatts/gbdl/pkg/data"
)

// CBZAssembler packs the page images into a zip container with
// zero-padded entry names, so any standards-compliant comic reader
// shows them in reading order.
type CBZAssembler struct{}

// NewCBZAssembler creates a CBZAssembler.
func NewCBZAssembler() *CBZAssembler {
	return &CBZAssembler{}
}

// Extension returns the file extension for CBZ output.
func (a *CBZAssembler) Extension() string {
	return ".cbz"
}

// Assemble writes the CBZ for one issue to dest.
func (a *CBZAssembler) Assemble(_ *data.Issue, images []data.PageImage, _ []*data.OutlineNode, dest string) error {
	err := writeAtomic(dest, func(path string) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()

		zw := zip.NewWriter(f)
		for _, img := range images {
			w, err := zw.Create(img.Filename())
			if err != nil {
				return err
			}
			if _, err := w.Write(img.Data); err != nil {
				return err
			}
		}
		return zw.Close()
	})
	if err != nil {
		return &AssemblyError{Format: "cbz", Err: err}
	}
	return nil
}
