package model

import "fmt"

// PlaylistItem is a single entry of a playlist preview
type PlaylistItem struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// PlaylistSummary describes a playlist before the downloader walks it
type PlaylistSummary struct {
	ID    string         `json:"id"`
	URL   string         `json:"url"`
	Items []PlaylistItem `json:"items"`
}

// Count returns the number of items in the playlist
func (p *PlaylistSummary) Count() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

// String returns a one-line description used in the log view
func (p *PlaylistSummary) String() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("Playlist %s: %d videos", p.ID, len(p.Items))
}
