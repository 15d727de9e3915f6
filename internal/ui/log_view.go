package ui

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// LogView is a read-only, bounded list of output lines
type LogView struct {
	mu       sync.Mutex
	lines    []string
	maxLines int
	list     *widget.List
}

// NewLogView creates a log view holding at most maxLines lines
func NewLogView(maxLines int) *LogView {
	if maxLines <= 0 {
		maxLines = MaxLogLines
	}

	lv := &LogView{maxLines: maxLines}
	lv.list = widget.NewList(
		lv.length,
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.TextStyle = fyne.TextStyle{Monospace: true}
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if label, ok := obj.(*widget.Label); ok {
				label.SetText(lv.line(id))
			}
		},
	)
	return lv
}

// Widget returns the canvas object to place in a layout
func (lv *LogView) Widget() fyne.CanvasObject {
	return lv.list
}

// Append adds a line, dropping the oldest once the limit is reached, and scrolls to it.
// Must be called on the Fyne thread.
func (lv *LogView) Append(line string) {
	lv.mu.Lock()
	lv.lines = append(lv.lines, line)
	if over := len(lv.lines) - lv.maxLines; over > 0 {
		lv.lines = append(lv.lines[:0], lv.lines[over:]...)
	}
	lv.mu.Unlock()

	lv.list.Refresh()
	lv.list.ScrollToBottom()
}

// Clear removes all lines
func (lv *LogView) Clear() {
	lv.mu.Lock()
	lv.lines = nil
	lv.mu.Unlock()

	lv.list.Refresh()
}

// Lines returns a copy of the current lines
func (lv *LogView) Lines() []string {
	lv.mu.Lock()
	defer lv.mu.Unlock()

	out := make([]string, len(lv.lines))
	copy(out, lv.lines)
	return out
}

// Text returns the whole log joined by newlines
func (lv *LogView) Text() string {
	return strings.Join(lv.Lines(), LogLineSeparator)
}

func (lv *LogView) length() int {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return len(lv.lines)
}

func (lv *LogView) line(id widget.ListItemID) string {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	if id < 0 || id >= len(lv.lines) {
		return ""
	}
	return lv.lines[id]
}
