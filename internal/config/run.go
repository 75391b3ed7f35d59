package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PratikDhanave/delivery-time-analytics/internal/apperr"
)

const (
	DefaultOutputPath = "output.json"
	DefaultWindowSize = 10
)

// Run is everything a single batch run needs. It is passed explicitly to
// pipeline.Run; nothing is read from flags or the environment past this point.
type Run struct {
	InputPath     string
	OutputPath    string
	WindowMinutes int
	// Overwrite allows replacing an existing output file. The CLI never sets it.
	Overwrite bool
	// Filter is an optional boolean expression selecting the events to average.
	Filter string
}

// Validate checks the window before any file is touched.
func (r Run) Validate() error {
	if r.WindowMinutes < 0 {
		return fmt.Errorf("%w: got %d", apperr.ErrInvalidWindowSize, r.WindowMinutes)
	}
	if strings.TrimSpace(r.InputPath) == "" {
		return fmt.Errorf("%w: input_file is required", apperr.ErrIO)
	}
	return nil
}

// Output returns the destination path, falling back to DefaultOutputPath.
func (r Run) Output() string {
	if r.OutputPath == "" {
		return DefaultOutputPath
	}
	return r.OutputPath
}

// ParseWindowSize converts textual input into a window length in minutes.
// An empty string yields DefaultWindowSize.
func ParseWindowSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultWindowSize, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperr.ErrInvalidWindowSize, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: got %d", apperr.ErrInvalidWindowSize, n)
	}
	return n, nil
}
