package compose

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrAssetMissing is returned when a required font resource cannot be loaded.
// There is no remote fallback; this is fatal for the whole run.
var ErrAssetMissing = errors.New("font asset missing")

// loadFont parses a TTF from disk when a path is configured, otherwise from
// the embedded fallback bytes. A configured path that cannot be loaded is an
// asset error, never silently substituted.
func loadFont(path string, fallback []byte) (*sfnt.Font, error) {
	data := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrAssetMissing, path, err)
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err != nil {
		if path == "" {
			path = "embedded font"
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrAssetMissing, path, err)
	}
	return f, nil
}

// face builds a rendering face at the given point size.
func face(f *sfnt.Font, size float64) (font.Face, error) {
	fc, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: face at size %.0f: %v", ErrAssetMissing, size, err)
	}
	return fc, nil
}
