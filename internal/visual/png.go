package visual

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg"
)

// PNGSurface writes every frame to one PNG file. Frames are written to a
// temporary file in the same directory and renamed over Path, so a viewer
// polling the file never reads a partial frame.
type PNGSurface struct {
	Path   string
	Width  vg.Length
	Height vg.Length
}

func NewPNGSurface(path string) *PNGSurface {
	return &PNGSurface{
		Path:   path,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

func (s *PNGSurface) Draw(snap *Snapshot) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".frame-*.png")
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WritePNG(tmp, snap, s.Width, s.Height); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to publish frame to %s: %w", s.Path, err)
	}
	return nil
}

func (s *PNGSurface) Close() error { return nil }
