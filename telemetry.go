package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	eventGridLoaded     = "grid_loaded"
	eventFilterChanged  = "filter_changed"
	eventFiltersCleared = "filters_cleared"
	eventSortChanged    = "sort_changed"
	eventColumnsChanged = "columns_changed"
	eventCellEdited     = "cell_edited"
	eventFetchFailed    = "fetch_failed"
)

// telemetryEvent is one JSONL record of a grid interaction.
type telemetryEvent struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Field     string            `json:"field,omitempty"`
	Value     string            `json:"value,omitempty"`
	Rows      int               `json:"rows,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

type telemetryLogger struct {
	path      string
	sessionID string
	userID    string
	now       func() time.Time
	mu        sync.Mutex
}

func newTelemetryLogger(path, sessionID, userID string) *telemetryLogger {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &telemetryLogger{
		path:      path,
		sessionID: strings.TrimSpace(sessionID),
		userID:    strings.TrimSpace(userID),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (t *telemetryLogger) Emit(event telemetryEvent) {
	if t == nil || strings.TrimSpace(event.Event) == "" {
		return
	}
	if event.SessionID == "" {
		event.SessionID = t.sessionID
	}
	if strings.TrimSpace(event.UserID) == "" {
		event.UserID = t.userID
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = t.now()
	}
	if len(event.Extra) == 0 {
		event.Extra = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(data)
}

func newTelemetrySessionID() string {
	return uuid.NewString()
}

func resolveTelemetryUserID() string {
	candidates := []string{
		os.Getenv("GRIDVIEW_USER_ID"),
		os.Getenv("USER"),
		os.Getenv("USERNAME"),
	}
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
