package models

import (
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the fixed-width layout of event timestamps in the delivery log.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// MinuteLayout renders a whole-minute sample date.
const MinuteLayout = "2006-01-02 15:04:05"

// Timestamp is an event time encoded as TimestampLayout in JSON.
// No timezone is attached; all timestamps share one implicit clock.
// The zero value is an absent timestamp; 0001-01-01 is a valid one.
type Timestamp struct {
	time.Time
	valid bool
}

// NewTimestamp returns a present timestamp at t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, valid: true}
}

// ParseTimestamp parses s with TimestampLayout.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return Timestamp{}, err
	}
	return NewTimestamp(t), nil
}

// Valid reports whether the timestamp was set, as opposed to missing.
func (t Timestamp) Valid() bool {
	return t.valid
}

func (t Timestamp) String() string {
	return t.Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("timestamp must be a string, got %s", b)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return fmt.Errorf("timestamp must match %q: %w", TimestampLayout, err)
	}
	*t = parsed
	return nil
}

// Event is one translation delivery from the event log.
// Only Timestamp and Duration take part in the moving average; the rest is
// carried for filtering and storage.
type Event struct {
	Timestamp      Timestamp `json:"timestamp"`
	Duration       float64   `json:"duration"`
	TranslationID  string    `json:"translation_id,omitempty"`
	SourceLanguage string    `json:"source_language,omitempty"`
	TargetLanguage string    `json:"target_language,omitempty"`
	ClientName     string    `json:"client_name,omitempty"`
	EventName      string    `json:"event_name,omitempty"`
	NrWords        int       `json:"nr_words,omitempty"`
}

// EventIngestRequest is the POST /events payload.
// event_id is optional; the Idempotency-Key header takes precedence for retries.
type EventIngestRequest struct {
	EventID string `json:"event_id,omitempty"`
	Event
}

// EventIngestResponse is returned by POST /events.
// Duplicate indicates idempotent success (the event already existed).
type EventIngestResponse struct {
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}
