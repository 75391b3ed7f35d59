package models

import (
	"fmt"
	"strconv"
	"time"
)

// Minute is a sample date truncated to whole minutes, encoded as MinuteLayout.
type Minute struct {
	time.Time
}

func (m Minute) String() string {
	return m.Format(MinuteLayout)
}

func (m Minute) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

func (m *Minute) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("date must be a string, got %s", b)
	}
	t, err := time.Parse(MinuteLayout, s)
	if err != nil {
		return err
	}
	m.Time = t
	return nil
}

// Sample is the moving average emitted for one minute.
type Sample struct {
	Date                Minute  `json:"date"`
	AverageDeliveryTime float64 `json:"average_delivery_time"`
}

// MovingAverageResponse is returned by the /moving-average endpoints.
type MovingAverageResponse struct {
	RunID      string   `json:"run_id"`
	WindowSize int      `json:"window_size"`
	Events     int      `json:"events"`
	Samples    []Sample `json:"samples"`
}
