package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/delivery-time-analytics/internal/apperr"
)

const sampleLog = `[
 {"timestamp": "2018-12-26 18:11:08.509654", "translation_id": "5aa5b2f39f7254a75aa5", "source_language": "en", "target_language": "fr", "client_name": "airliberty", "event_name": "translation_delivered", "nr_words": 30, "duration": 20},
 {"timestamp": "2018-12-26 18:15:19.903159", "translation_id": "5aa5b2f39f7254a75aa4", "source_language": "en", "target_language": "fr", "client_name": "airliberty", "event_name": "translation_delivered", "nr_words": 30, "duration": 31},
 {"timestamp": "2018-12-26 18:23:19.903159", "translation_id": "5aa5b2f39f7254a75bb3", "source_language": "en", "target_language": "fr", "client_name": "taxi-eats", "event_name": "translation_delivered", "nr_words": 100, "duration": 54}
]`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	events, err := LoadFile(writeFile(t, sampleLog))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "2018-12-26 18:11:08.509654", events[0].Timestamp.String())
	assert.Equal(t, 20.0, events[0].Duration)
	assert.Equal(t, "airliberty", events[0].ClientName)
	assert.Equal(t, 100, events[2].NrWords)
	assert.Equal(t, "taxi-eats", events[2].ClientName)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, apperr.ErrIO))
	assert.False(t, errors.Is(err, apperr.ErrDataFormat))
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"timestamp"`},
		{"object instead of array", `{"timestamp": "2018-12-26 18:11:08.509654", "duration": 1}`},
		{"empty array", `[]`},
		{"null", `null`},
		{"bad timestamp layout", `[{"timestamp": "2018-12-26T18:11:08Z", "duration": 1}]`},
		{"short fraction", `[{"timestamp": "2018-12-26 18:11:08.5", "duration": 1}]`},
		{"missing timestamp", `[{"duration": 1}]`},
		{"negative duration", `[{"timestamp": "2018-12-26 18:11:08.509654", "duration": -1}]`},
		{"string duration", `[{"timestamp": "2018-12-26 18:11:08.509654", "duration": "1"}]`},
		{"null timestamp", `[{"timestamp": null, "duration": 1}]`},
		{"garbage after array", `[{"timestamp": "2023-01-01 00:00:00.000000", "duration": 1}] garbage`},
		{"second array", `[{"timestamp": "2023-01-01 00:00:00.000000", "duration": 1}][]`},
		{"second object", `[{"timestamp": "2023-01-01 00:00:00.000000", "duration": 1}] {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.body))
			assert.True(t, errors.Is(err, apperr.ErrDataFormat), "got %v", err)
		})
	}
}

func TestDecode_TrailingWhitespace(t *testing.T) {
	events, err := Decode(strings.NewReader("[{\"timestamp\": \"2023-01-01 00:00:00.000000\", \"duration\": 1}]\n\t \n"))
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestDecode_ZeroTimestamp(t *testing.T) {
	events, err := Decode(strings.NewReader(`[{"timestamp": "0001-01-01 00:00:00.000000", "duration": 3}]`))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Timestamp.IsZero())
	assert.True(t, events[0].Timestamp.Valid())
}
