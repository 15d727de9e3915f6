package model

import (
	"fmt"
	"time"
)

// TaskKind identifies what a background task does
type TaskKind string

const (
	// TaskKindDownload runs the downloader against a URL
	TaskKindDownload TaskKind = "download"

	// TaskKindUpdateDownloader runs the downloader with --update
	TaskKindUpdateDownloader TaskKind = "update-downloader"

	// TaskKindUpdateConverter fetches and unpacks a fresh converter build
	TaskKindUpdateConverter TaskKind = "update-converter"
)

// String returns the string representation of TaskKind
func (k TaskKind) String() string {
	return string(k)
}

// Task represents the single background action currently or last run
type Task struct {
	ID         string
	Kind       TaskKind
	Status     TaskStatus
	Percent    int    // 0 to 100, only meaningful for downloads
	URL        string // empty for update tasks
	LastError  string // last error message if any
	StartedAt  time.Time
	FinishedAt time.Time
}

// Clone returns a copy that can be handed to another goroutine
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// GetElapsedString returns run time formatted as mm:ss or hh:mm:ss, or "—" if not started
func (t *Task) GetElapsedString() string {
	if t.StartedAt.IsZero() {
		return "—"
	}

	end := t.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	secs := int(end.Sub(t.StartedAt).Seconds())
	if secs < 0 {
		secs = 0
	}

	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
