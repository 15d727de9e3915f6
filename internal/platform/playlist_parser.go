package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/media-downloader/internal/model"
	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultPlaylistParseTimeout = 20 * time.Second
)

// PlaylistQueryKey is the query parameter carrying the playlist ID
const PlaylistQueryKey = "list"

// PlaylistParserService fetches a playlist's entries so the log can show what
// the downloader is about to walk through
type PlaylistParserService struct {
	timeout time.Duration
	limit   int
}

// NewPlaylistParserService creates a new playlist parser service
func NewPlaylistParserService() *PlaylistParserService {
	return &PlaylistParserService{
		timeout: DefaultPlaylistParseTimeout,
	}
}

// SetTimeout sets the timeout for playlist parsing
func (p *PlaylistParserService) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// SetLimit caps the number of fetched items, 0 means all
func (p *PlaylistParserService) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	p.limit = limit
}

// IsPlaylistURL reports whether the URL carries a playlist parameter
func (p *PlaylistParserService) IsPlaylistURL(rawURL string) bool {
	id, err := p.extractPlaylistID(rawURL)
	return err == nil && id != ""
}

// ParsePlaylist fetches the playlist items behind a URL
func (p *PlaylistParserService) ParsePlaylist(ctx context.Context, rawURL string) (*model.PlaylistSummary, error) {
	playlistID, err := p.extractPlaylistID(rawURL)
	if err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, p.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	summary := &model.PlaylistSummary{
		ID:    playlistID,
		URL:   rawURL,
		Items: make([]model.PlaylistItem, 0, len(items)),
	}
	for _, it := range items {
		summary.Items = append(summary.Items, model.PlaylistItem{
			VideoID: it.VideoID,
			Title:   it.Title,
		})
	}

	return summary, nil
}

// extractPlaylistID extracts the playlist ID from a playlist URL
func (p *PlaylistParserService) extractPlaylistID(rawURL string) (string, error) {
	// Supported shapes:
	// - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&index=1
	// - https://www.youtube.com/playlist?list=PLAYLIST_ID
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	query := parsed.Query()
	if !query.Has(PlaylistQueryKey) {
		return "", fmt.Errorf("URL does not contain playlist parameter")
	}

	playlistID := strings.TrimSpace(query.Get(PlaylistQueryKey))
	if playlistID == "" {
		return "", fmt.Errorf("empty playlist ID")
	}

	return playlistID, nil
}
