// Package loader reads delivery event logs.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/PratikDhanave/delivery-time-analytics/internal/apperr"
	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
)

// LoadFile reads the JSON event log at path.
func LoadFile(path string) ([]models.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open input %q: %w", apperr.ErrIO, path, err)
	}
	defer f.Close()

	events, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// Decode reads a JSON array of events from r. The array must be non-empty and
// every duration non-negative; ordering is taken as given.
func Decode(r io.Reader) ([]models.Event, error) {
	dec := json.NewDecoder(r)
	var events []models.Event
	if err := dec.Decode(&events); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrDataFormat, err)
	}
	// the log is exactly one JSON value
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after the event array")
		}
		return nil, fmt.Errorf("%w: %w", apperr.ErrDataFormat, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: event log is empty", apperr.ErrDataFormat)
	}
	for i, e := range events {
		if !e.Timestamp.Valid() {
			return nil, fmt.Errorf("%w: event %d has no timestamp", apperr.ErrDataFormat, i)
		}
		if e.Duration < 0 {
			return nil, fmt.Errorf("%w: event %d has negative duration %v", apperr.ErrDataFormat, i, e.Duration)
		}
	}
	return events, nil
}
