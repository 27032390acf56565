package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventFetch    EventType = "fetch"
	EventExtract  EventType = "extract"
	EventLoad     EventType = "load"
	EventFilter   EventType = "filter"
	EventOverride EventType = "override"
	EventInsert   EventType = "insert"
	EventSkip     EventType = "skip"
	EventError    EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in the pipeline
type Event struct {
	Timestamp time.Time         `json:"ts"`
	RunID     string            `json:"run_id"`
	Stage     string            `json:"stage"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	Source    string            `json:"source,omitempty"`
	Entity    string            `json:"entity,omitempty"`
	Artist    string            `json:"artist,omitempty"`
	Title     string            `json:"title,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Count     int               `json:"count,omitempty"`
	Bytes     int64             `json:"bytes,omitempty"`
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file. A nil *EventLogger is valid
// and discards everything.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	stage    string
	minLevel EventLevel
}

// NewEventLogger creates a logger for one stage run. Every event it writes
// carries a fresh run id.
func NewEventLogger(outputDir, stage string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s-%s.jsonl", stage, timestamp)
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		runID:    uuid.NewString(),
		stage:    stage,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.RunID = l.runID
	event.Stage = l.stage

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogFetch logs the outcome of fetching one page
func (l *EventLogger) LogFetch(url string, bytes int64, err error) error {
	event := &Event{
		Level:  LevelInfo,
		Event:  EventFetch,
		Source: url,
		Bytes:  bytes,
	}
	if err != nil {
		event.Level = LevelWarning
		event.Error = err.Error()
	}
	return l.Log(event)
}

// LogExtract logs how many tracks one page yielded
func (l *EventLogger) LogExtract(source string, tracks int, err error) error {
	event := &Event{
		Level:  LevelInfo,
		Event:  EventExtract,
		Source: source,
		Count:  tracks,
	}
	if err != nil {
		event.Level = LevelWarning
		event.Error = err.Error()
	} else if tracks == 0 {
		event.Level = LevelWarning
		event.Reason = "page yielded no tracks"
	}
	return l.Log(event)
}

// LogLoad logs the outcome of loading one input source
func (l *EventLogger) LogLoad(source string, rows, dropped int, err error) error {
	event := &Event{
		Level:  LevelInfo,
		Event:  EventLoad,
		Source: source,
		Count:  rows,
		Extra: map[string]string{
			"dropped": fmt.Sprintf("%d", dropped),
		},
	}
	if err != nil {
		event.Level = LevelWarning
		event.Error = err.Error()
	}
	return l.Log(event)
}

// LogFilter logs an album rejected by the quality filter
func (l *EventLogger) LogFilter(artist, album, reason string) error {
	return l.Log(&Event{
		Level:  LevelDebug,
		Event:  EventFilter,
		Entity: "album",
		Artist: artist,
		Title:  album,
		Reason: reason,
	})
}

// LogOverride logs a manual override decision
func (l *EventLogger) LogOverride(artist, album string, applied bool, reason string) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventOverride,
		Entity: "album",
		Artist: artist,
		Title:  album,
		Reason: reason,
		Extra: map[string]string{
			"applied": fmt.Sprintf("%t", applied),
		},
	})
}

// LogInsert logs a row added to the store
func (l *EventLogger) LogInsert(entity, artist, title string) error {
	return l.Log(&Event{
		Level:  LevelDebug,
		Event:  EventInsert,
		Entity: entity,
		Artist: artist,
		Title:  title,
	})
}

// LogSkip logs a record that was not inserted
func (l *EventLogger) LogSkip(entity, artist, title, reason string) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventSkip,
		Entity: entity,
		Artist: artist,
		Title:  title,
		Reason: reason,
	})
}

// LogError logs a per-record failure
func (l *EventLogger) LogError(entity, artist, title string, err error) error {
	return l.Log(&Event{
		Level:  LevelError,
		Event:  EventError,
		Entity: entity,
		Artist: artist,
		Title:  title,
		Error:  err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// RunID returns the id stamped on every event of this run
func (l *EventLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
