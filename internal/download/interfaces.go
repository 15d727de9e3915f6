package download

import (
	"context"

	"github.com/ytget/media-downloader/internal/model"
)

// Runner defines the interface for the background task service.
type Runner interface {
	SetUpdateCallback(func(*model.Task))
	SetLineCallback(func(line string))

	// Download launches the downloader for req. Fails fast on validation errors and ErrBusy.
	Download(req model.DownloadRequest) (*model.Task, error)

	// UpdateDownloader launches "<path> --update".
	UpdateDownloader(path string) (*model.Task, error)

	// Submit runs an arbitrary job in the same single slot.
	Submit(kind model.TaskKind, job Job) (*model.Task, error)

	// Cancel terminates the active task.
	Cancel() error

	// Active returns a snapshot of the running task, if any.
	Active() (*model.Task, bool)

	// Wait blocks until the most recently started task has finished.
	Wait()
}

// Sink receives output produced by a job.
type Sink interface {
	Line(line string)
	Progress(percent int)
}

// Job is a unit of background work. It must return promptly once ctx is done.
type Job func(ctx context.Context, sink Sink) error

// PlaylistPreviewer resolves playlist contents ahead of a download.
type PlaylistPreviewer interface {
	IsPlaylistURL(url string) bool
	ParsePlaylist(ctx context.Context, url string) (*model.PlaylistSummary, error)
}
