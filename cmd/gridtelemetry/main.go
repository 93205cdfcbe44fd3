// Command gridtelemetry summarizes the grid interaction log written by
// gridview (grid-events.ndjson) into a JSON report.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type gridEvent struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Field     string            `json:"field,omitempty"`
	Value     string            `json:"value,omitempty"`
	Rows      int               `json:"rows,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
	Line      int               `json:"-"`
}

type eventAggregate struct {
	StartLine  int            `json:"start_line"`
	EndLine    int            `json:"end_line"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    time.Time      `json:"end_time"`
	Events     map[string]int `json:"events"`
	Fields     map[string]int `json:"fields,omitempty"`
	RowsMedian float64        `json:"rows_median"`
	Anomalies  []string       `json:"anomalies,omitempty"`
}

type sessionSummary struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	Events    int       `json:"events"`
	First     time.Time `json:"first"`
	Last      time.Time `json:"last"`
}

type telemetryReport struct {
	RunID        string           `json:"run_id"`
	Source       string           `json:"source"`
	Skipped      int              `json:"skipped_lines"`
	Sessions     []sessionSummary `json:"sessions"`
	Snapshots    []eventAggregate `json:"snapshots"`
	FinalSummary eventAggregate   `json:"final_summary"`
}

// fetchFailureLimit is the number of fetch failures in one window that is
// reported as an anomaly.
const fetchFailureLimit = 3

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var inputPath, outputPath string
	var interval int
	cmd := &cobra.Command{
		Use:          "gridtelemetry",
		Short:        "Summarize gridview interaction events",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inputPath == "" {
				return errors.New("missing --in path")
			}
			if interval <= 0 {
				return errors.New("--interval must be positive")
			}
			f, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("open events: %w", err)
			}
			defer f.Close()
			events, skipped, err := parseEvents(f)
			if err != nil {
				return fmt.Errorf("parse events: %w", err)
			}
			report := buildReport(inputPath, events, interval)
			report.Skipped = skipped

			encoded, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			if outputPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			}
			if err := os.WriteFile(outputPath, append(encoded, '\n'), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputPath, "in", "", "events file path (required)")
	cmd.Flags().StringVar(&outputPath, "out", "", "output JSON path (optional, defaults to stdout)")
	cmd.Flags().IntVar(&interval, "interval", 20, "number of events per aggregated snapshot")
	return cmd
}

// parseEvents reads one JSON event per line. Blank lines are ignored and
// malformed ones are counted as skipped.
func parseEvents(r io.Reader) ([]gridEvent, int, error) {
	var (
		scanner = bufio.NewScanner(r)
		lineNo  int
		skipped int
		events  []gridEvent
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev gridEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil || ev.Event == "" {
			skipped++
			continue
		}
		ev.Line = lineNo
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}
	return events, skipped, nil
}

func buildReport(path string, events []gridEvent, interval int) telemetryReport {
	report := telemetryReport{RunID: deriveRunID(path), Source: path}
	if len(events) == 0 {
		return report
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })

	for start := 0; start < len(events); start += interval {
		end := start + interval
		if end > len(events) {
			end = len(events)
		}
		report.Snapshots = append(report.Snapshots, aggregateSegment(events[start:end]))
	}
	report.FinalSummary = aggregateSegment(events)
	report.Sessions = summarizeSessions(events)
	return report
}

func deriveRunID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func aggregateSegment(segment []gridEvent) eventAggregate {
	if len(segment) == 0 {
		return eventAggregate{}
	}
	agg := eventAggregate{
		StartLine: segment[0].Line,
		EndLine:   segment[len(segment)-1].Line,
		StartTime: segment[0].Timestamp,
		EndTime:   segment[len(segment)-1].Timestamp,
		Events:    map[string]int{},
	}
	var rows []int
	for _, ev := range segment {
		agg.Events[ev.Event]++
		if ev.Field != "" {
			if agg.Fields == nil {
				agg.Fields = map[string]int{}
			}
			agg.Fields[ev.Field]++
		}
		if ev.Event == "grid_loaded" {
			rows = append(rows, ev.Rows)
		}
	}
	agg.RowsMedian = computeMedian(rows)
	agg.Anomalies = detectAnomalies(agg.Events, rows)
	return agg
}

func summarizeSessions(events []gridEvent) []sessionSummary {
	byID := map[string]*sessionSummary{}
	var order []string
	for _, ev := range events {
		s, ok := byID[ev.SessionID]
		if !ok {
			s = &sessionSummary{SessionID: ev.SessionID, UserID: ev.UserID, First: ev.Timestamp}
			byID[ev.SessionID] = s
			order = append(order, ev.SessionID)
		}
		s.Events++
		s.Last = ev.Timestamp
	}
	out := make([]sessionSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

func computeMedian(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func detectAnomalies(counts map[string]int, rows []int) []string {
	var out []string
	if n := counts["fetch_failed"]; n >= fetchFailureLimit {
		out = append(out, fmt.Sprintf("%d fetch failures", n))
	}
	for _, n := range rows {
		if n == 0 {
			out = append(out, "empty company list loaded")
			break
		}
	}
	return out
}
