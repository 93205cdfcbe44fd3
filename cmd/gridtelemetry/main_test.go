package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEvents = `{"session_id":"a","user_id":"ana","timestamp":"2024-05-01T10:00:00Z","event":"grid_loaded","rows":12}
{"session_id":"a","timestamp":"2024-05-01T10:00:05Z","event":"filter_changed","field":"companyName","value":"bau"}

not json
{"session_id":"a","timestamp":"2024-05-01T10:00:09Z","event":"sort_changed","field":"country","value":"asc"}
{"session_id":"b","timestamp":"2024-05-01T11:00:00Z","event":"fetch_failed","value":"timeout"}
{"session_id":"b","timestamp":"2024-05-01T11:00:01Z","event":"fetch_failed","value":"timeout"}
{"session_id":"b","timestamp":"2024-05-01T11:00:02Z","event":"fetch_failed","value":"timeout"}
{"session_id":"b","timestamp":"2024-05-01T11:00:09Z","event":"grid_loaded","rows":10}
`

func TestParseEvents(t *testing.T) {
	events, skipped, err := parseEvents(strings.NewReader(sampleEvents))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, events, 7)
	assert.Equal(t, 5, events[2].Line)
	assert.Equal(t, "companyName", events[1].Field)
}

func TestBuildReport(t *testing.T) {
	events, _, err := parseEvents(strings.NewReader(sampleEvents))
	require.NoError(t, err)

	report := buildReport("/tmp/grid-events.ndjson", events, 3)
	assert.Equal(t, "grid-events", report.RunID)
	require.Len(t, report.Snapshots, 3)
	assert.Equal(t, 1, report.Snapshots[0].Events["grid_loaded"])
	assert.Empty(t, report.Snapshots[0].Anomalies)
	assert.Equal(t, []string{"3 fetch failures"}, report.Snapshots[1].Anomalies)
	assert.Equal(t, 6, report.Snapshots[1].StartLine)

	final := report.FinalSummary
	assert.Equal(t, 2, final.Events["grid_loaded"])
	assert.Equal(t, 11.0, final.RowsMedian)
	assert.Equal(t, map[string]int{"companyName": 1, "country": 1}, final.Fields)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), final.StartTime)

	require.Len(t, report.Sessions, 2)
	assert.Equal(t, sessionSummary{
		SessionID: "a",
		UserID:    "ana",
		Events:    3,
		First:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Last:      time.Date(2024, 5, 1, 10, 0, 9, 0, time.UTC),
	}, report.Sessions[0])
}

func TestBuildReport_Empty(t *testing.T) {
	report := buildReport("events.ndjson", nil, 5)
	assert.Equal(t, "events", report.RunID)
	assert.Empty(t, report.Snapshots)
}

func TestRootCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid-events.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(sampleEvents), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--in", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"skipped_lines": 1`)

	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--in", path, "--interval", "0"})
	assert.EqualError(t, cmd.Execute(), "--interval must be positive")
}
