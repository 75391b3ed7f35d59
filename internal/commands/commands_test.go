package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PratikDhanave/delivery-time-analytics/internal/apperr"
	"github.com/PratikDhanave/delivery-time-analytics/internal/logging"
	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
	"github.com/PratikDhanave/delivery-time-analytics/internal/store"
)

const eventLog = `[
	{"timestamp": "2018-12-26 18:11:08.509654", "translation_id": "5aa5b2f39f7254a75aa5", "source_language": "en", "target_language": "fr", "client_name": "airliberty", "event_name": "translation_delivered", "nr_words": 30, "duration": 20},
	{"timestamp": "2018-12-26 18:15:19.903159", "translation_id": "5aa5b2f39f7254a75aa4", "source_language": "en", "target_language": "fr", "client_name": "airliberty", "event_name": "translation_delivered", "nr_words": 30, "duration": 31},
	{"timestamp": "2018-12-26 18:23:19.903159", "translation_id": "5aa5b2f39f7254a75bb3", "source_language": "en", "target_language": "fr", "client_name": "taxi-eats", "event_name": "translation_delivered", "nr_words": 100, "duration": 54}
]`

func testContext() context.Context {
	return logging.WithLogger(context.Background(), zap.NewNop().Sugar())
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(eventLog), 0o644))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetErr(b)
	cmd.SetArgs(normalizeArgs(args))
	err := cmd.ExecuteContext(testContext())
	return b.String(), err
}

func readSamples(t *testing.T, path string) []models.Sample {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var samples []models.Sample
	require.NoError(t, json.Unmarshal(b, &samples))
	return samples
}

func Test_normalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"aliases", []string{"-in", "a.json", "-out", "b.json"}, []string{"--input_file", "a.json", "--out_file", "b.json"}},
		{"aliases with value", []string{"-in=a.json", "-out=b.json"}, []string{"--input_file=a.json", "--out_file=b.json"}},
		{"long forms untouched", []string{"--input_file", "a.json", "-w", "5"}, []string{"--input_file", "a.json", "-w", "5"}},
		{"after terminator", []string{"-in", "a.json", "--", "-out"}, []string{"--input_file", "a.json", "--", "-out"}},
		{"unknown single dash", []string{"-inx"}, []string{"-inx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArgs(tt.in))
		})
	}
}

func Test_RootCommand(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		out, err := runRoot(t, "help")
		require.NoError(t, err)
		assert.Contains(t, out, "Available Commands")
		assert.Contains(t, out, "serve")
		assert.Contains(t, out, "import")
	})

	t.Run("flags", func(t *testing.T) {
		cmd := NewRootCommand()
		assert.Equal(t, "string", cmd.Flag("input_file").Value.Type())
		assert.Equal(t, "output.json", cmd.Flag("out_file").DefValue)
		assert.Equal(t, "10", cmd.Flag("window_size").DefValue)
		assert.Equal(t, "w", cmd.Flag("window_size").Shorthand)
		assert.Nil(t, cmd.Flag("overwrite"))
	})

	t.Run("single dash aliases", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.json")
		_, err := runRoot(t, "-in", writeInput(t), "-out", out, "-w", "10")
		require.NoError(t, err)
		samples := readSamples(t, out)
		require.Len(t, samples, 15)
		assert.Equal(t, "2018-12-26 18:11:00", samples[0].Date.String())
		assert.Equal(t, 42.5, samples[14].AverageDeliveryTime)
	})

	t.Run("long flags and filter", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.json")
		_, err := runRoot(t, "--input_file", writeInput(t), "--out_file", out, "--filter", `client_name == "airliberty"`)
		require.NoError(t, err)
		assert.Len(t, readSamples(t, out), 7)
	})

	t.Run("existing output", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.json")
		require.NoError(t, os.WriteFile(out, []byte("keep"), 0o644))
		_, err := runRoot(t, "-in", writeInput(t), "-out", out)
		assert.ErrorIs(t, err, apperr.ErrOutputExists)
		b, _ := os.ReadFile(out)
		assert.Equal(t, "keep", string(b))
	})

	t.Run("invalid window", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.json")
		for _, w := range []string{"-1", "ten", "1.5"} {
			_, err := runRoot(t, "-in", writeInput(t), "-out", out, "--window_size="+w)
			assert.ErrorIs(t, err, apperr.ErrInvalidWindowSize, w)
		}
		assert.NoFileExists(t, out)
	})

	t.Run("invalid filter", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.json")
		_, err := runRoot(t, "-in", writeInput(t), "-out", out, "--filter", "duration >")
		assert.ErrorIs(t, err, apperr.ErrInvalidFilter)
		assert.NoFileExists(t, out)
	})

	t.Run("missing input", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.json")
		_, err := runRoot(t, "-in", filepath.Join(t.TempDir(), "nope.json"), "-out", out)
		assert.ErrorIs(t, err, apperr.ErrIO)
	})

	t.Run("environment", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.json")
		t.Setenv("MOVINGAVG_WINDOW_SIZE", "0")
		_, err := runRoot(t, "-in", writeInput(t), "-out", out)
		require.NoError(t, err)
		for _, s := range readSamples(t, out) {
			assert.Zero(t, s.AverageDeliveryTime)
		}
	})

	t.Run("config file", func(t *testing.T) {
		dir := t.TempDir()
		out := filepath.Join(dir, "out.json")
		cfg := filepath.Join(dir, "movingavg.yaml")
		yaml := "input_file: " + writeInput(t) + "\nout_file: " + out + "\nwindow_size: 1\n"
		require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o644))
		_, err := runRoot(t, "--config", cfg)
		require.NoError(t, err)
		samples := readSamples(t, out)
		require.Len(t, samples, 15)
		assert.Equal(t, 20.0, samples[1].AverageDeliveryTime)
		assert.Zero(t, samples[2].AverageDeliveryTime)
	})
}

func Test_ImportCommand(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		cmd := NewImportCommand()
		assert.True(t, cmd.HasLocalFlags())
		assert.Equal(t, "import", cmd.Use)
		assert.NotNil(t, cmd.Flag("tenant"))
	})

	t.Run("requires tenant and db", func(t *testing.T) {
		t.Setenv("DB_URL", "")
		_, err := runRoot(t, "import", "-in", writeInput(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tenant is required")

		_, err = runRoot(t, "import", "-in", writeInput(t), "--tenant", "tenant1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_url is required")
	})
}

func Test_importEvents(t *testing.T) {
	ctx := testContext()
	st := store.NewMemoryStore()
	events := []models.Event{
		{Timestamp: mustTimestamp(t, "2018-12-26 18:11:08.509654"), Duration: 20, TranslationID: "t-1"},
		{Timestamp: mustTimestamp(t, "2018-12-26 18:12:08.509654"), Duration: 30},
	}

	n, err := importEvents(ctx, st, "tenant1", events)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = importEvents(ctx, st, "tenant1", events)
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, err := st.ListEvents(ctx, "tenant1", events[0].Timestamp.Time, events[1].Timestamp.Add(1))
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func Test_eventID(t *testing.T) {
	e := models.Event{Timestamp: mustTimestamp(t, "2018-12-26 18:11:08.509654"), Duration: 20}
	assert.Equal(t, eventID(0, e), eventID(0, e))
	assert.NotEqual(t, eventID(0, e), eventID(1, e))
	e.TranslationID = "t-1"
	assert.Equal(t, "t-1", eventID(0, e))
}

func mustTimestamp(t *testing.T, s string) models.Timestamp {
	t.Helper()
	ts, err := models.ParseTimestamp(s)
	require.NoError(t, err)
	return ts
}
