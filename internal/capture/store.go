package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrShotMissing is returned in reuse mode when no prior screenshot exists
// for an item.
var ErrShotMissing = errors.New("existing screenshot not found")

// ShotPath returns the deterministic, index-based path for an item's raw
// screenshot. Index is 1-based to match the item's position in the batch.
func ShotPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("shot_%02d.png", index))
}

// SaveShot persists a capture result so later runs can reuse it.
func SaveShot(path string, r *Result) error {
	if err := os.WriteFile(path, r.Image, 0644); err != nil {
		return fmt.Errorf("failed to save screenshot %s: %w", path, err)
	}
	return nil
}

// LoadShot reads a previously captured screenshot, for offline iteration
// without a browser. CapturedAt is taken from the file's modification time.
func LoadShot(path, sourceURL string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrShotMissing, path)
		}
		return nil, fmt.Errorf("failed to read screenshot %s: %w", path, err)
	}

	capturedAt := time.Time{}
	if info, statErr := os.Stat(path); statErr == nil {
		capturedAt = info.ModTime().UTC()
	}

	return &Result{
		SourceURL:  sourceURL,
		Image:      data,
		CapturedAt: capturedAt,
	}, nil
}
