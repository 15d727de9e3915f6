package converter

import "context"

// Reporter receives human-readable progress from an update
type Reporter interface {
	Line(line string)
	Progress(percent int)
}

// UpdateRunner defines the interface for the converter update service.
type UpdateRunner interface {
	Supported() bool
	Update(ctx context.Context, destDir string, reporter Reporter) ([]string, error)
}

var _ UpdateRunner = (*Updater)(nil)

type nopReporter struct{}

func (nopReporter) Line(string)  {}
func (nopReporter) Progress(int) {}
