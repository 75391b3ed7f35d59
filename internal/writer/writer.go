// Package writer persists moving-average samples.
package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"

	"github.com/PratikDhanave/delivery-time-analytics/internal/apperr"
	"github.com/PratikDhanave/delivery-time-analytics/internal/config"
	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
)

// CheckDestination fails with apperr.ErrOutputExists when path exists and
// overwrite is false. It lets a run fail before reading any input.
func CheckDestination(path string, overwrite bool) error {
	if overwrite {
		return nil
	}
	_, err := os.Stat(resolve(path))
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", apperr.ErrOutputExists, resolve(path))
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("%w: stat output %q: %w", apperr.ErrIO, resolve(path), err)
	}
}

// WriteFile encodes samples as indented JSON and writes them to path in one
// call. Without overwrite the file is created exclusively, so a destination
// that appeared after CheckDestination is still refused.
func WriteFile(path string, overwrite bool, samples []models.Sample) (string, error) {
	path = resolve(path)
	if samples == nil {
		samples = []models.Sample{}
	}
	payload, err := json.MarshalIndent(samples, "", " ")
	if err != nil {
		return path, fmt.Errorf("encode samples: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return path, fmt.Errorf("%w: %s", apperr.ErrOutputExists, path)
		}
		return path, fmt.Errorf("%w: open output %q: %w", apperr.ErrIO, path, err)
	}
	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		return path, fmt.Errorf("%w: write output %q: %w", apperr.ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return path, fmt.Errorf("%w: close output %q: %w", apperr.ErrIO, path, err)
	}
	return path, nil
}

func resolve(path string) string {
	if path == "" {
		return config.DefaultOutputPath
	}
	return path
}
