package download

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ytget/media-downloader/internal/model"
	"github.com/ytget/media-downloader/internal/platform"
)

// Downloader invocation constants
const (
	UpdateFlag   = "--update"
	TaskIDPrefix = "task-"
)

// Output scanning limits
const (
	InitialLineBuffer = 64 * 1024
	MaxLineLength     = 1024 * 1024
)

// DefaultWaitDelay bounds how long Wait drains output after the child is killed
const DefaultWaitDelay = 5 * time.Second

var (
	// ErrBusy is returned when a task is already running
	ErrBusy = errors.New("another task is already running")

	// ErrNoActiveTask is returned by Cancel when nothing is running
	ErrNoActiveTask = errors.New("no active task")
)

// Service runs at most one background task at a time
type Service struct {
	mu        sync.Mutex
	current   *model.Task
	cancel    context.CancelFunc
	done      chan struct{}
	onUpdate  func(*model.Task)
	onLine    func(string)
	previewer PlaylistPreviewer
	waitDelay time.Duration
	logger    *log.Logger

	// seq orders snapshots; taken under mu, delivered in order under notifyMu
	seq       uint64
	notifyMu  sync.Mutex
	delivered uint64
}

var _ Runner = (*Service)(nil)

// NewService creates a new task service
func NewService() *Service {
	return &Service{
		waitDelay: DefaultWaitDelay,
		logger:    log.WithPrefix("download"),
	}
}

// SetUpdateCallback sets the callback for task state changes.
// The callback receives a copy and runs on the task goroutine; it must not
// call Cancel or start a task synchronously.
func (s *Service) SetUpdateCallback(callback func(*model.Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = callback
}

// SetLineCallback sets the callback for each output line
func (s *Service) SetLineCallback(callback func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLine = callback
}

// SetPlaylistPreviewer enables the playlist summary logged before a playlist download
func (s *Service) SetPlaylistPreviewer(p PlaylistPreviewer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewer = p
}

// SetWaitDelay sets how long to wait for output after the child exits or is killed
func (s *Service) SetWaitDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitDelay = d
}

// Download starts the downloader for req
func (s *Service) Download(req model.DownloadRequest) (*model.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	path := strings.TrimSpace(req.DownloaderPath)
	args := req.Args()
	url := strings.TrimSpace(req.URL)

	job := func(ctx context.Context, sink Sink) error {
		if err := s.previewPlaylist(ctx, url, sink); err != nil {
			return err
		}
		return s.runCommand(ctx, path, args, sink, true)
	}

	return s.start(model.TaskKindDownload, url, job)
}

// UpdateDownloader starts "<path> --update"
func (s *Service) UpdateDownloader(path string) (*model.Task, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: %s", model.ErrMissingField, model.FieldDownloaderPath)
	}

	job := func(ctx context.Context, sink Sink) error {
		return s.runCommand(ctx, path, []string{UpdateFlag}, sink, false)
	}

	return s.start(model.TaskKindUpdateDownloader, "", job)
}

// Submit runs job in the task slot
func (s *Service) Submit(kind model.TaskKind, job Job) (*model.Task, error) {
	if job == nil {
		return nil, fmt.Errorf("job is nil")
	}
	return s.start(kind, "", job)
}

// Cancel stops the active task
func (s *Service) Cancel() error {
	s.mu.Lock()
	task := s.current
	if task == nil || !task.Status.IsActive() || s.cancel == nil {
		s.mu.Unlock()
		return ErrNoActiveTask
	}
	task.Status = model.TaskStatusStopping
	cancel := s.cancel
	snapshot, seq := s.snapshotLocked(task)
	s.mu.Unlock()

	s.logger.Info("cancelling task", "id", snapshot.ID, "kind", snapshot.Kind)
	s.notifyUpdate(snapshot, seq)
	cancel()
	return nil
}

// Active returns a copy of the running task
func (s *Service) Active() (*model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || !s.current.Status.IsActive() {
		return nil, false
	}
	return s.current.Clone(), true
}

// Wait blocks until the most recently started task has finished
func (s *Service) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// start claims the slot and launches job on its own goroutine
func (s *Service) start(kind model.TaskKind, url string, job Job) (*model.Task, error) {
	s.mu.Lock()
	if s.current != nil && s.current.Status.IsActive() {
		s.mu.Unlock()
		return nil, ErrBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &model.Task{
		ID:        generateTaskID(),
		Kind:      kind,
		Status:    model.TaskStatusStarting,
		URL:       url,
		StartedAt: time.Now(),
	}
	done := make(chan struct{})

	s.current = task
	s.cancel = cancel
	s.done = done
	snapshot, seq := s.snapshotLocked(task)
	s.mu.Unlock()

	s.logger.Info("task started", "id", task.ID, "kind", kind)
	s.notifyUpdate(snapshot, seq)

	go s.run(ctx, cancel, task, job, done)

	return snapshot, nil
}

// run executes job and records its outcome
func (s *Service) run(ctx context.Context, cancel context.CancelFunc, task *model.Task, job Job, done chan struct{}) {
	defer close(done)
	defer cancel()

	s.setStatus(task, model.TaskStatusRunning)

	err := s.safeRun(ctx, job, &taskSink{service: s, task: task})

	s.mu.Lock()
	switch {
	case err == nil:
		task.Status = model.TaskStatusCompleted
		if task.Kind == model.TaskKindDownload {
			task.Percent = platform.MaxPercent
		}
	case ctx.Err() != nil:
		task.Status = model.TaskStatusStopped
	default:
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
	}
	task.FinishedAt = time.Now()
	snapshot, seq := s.snapshotLocked(task)
	s.mu.Unlock()

	if snapshot.Status == model.TaskStatusError {
		s.logger.Error("task failed", "id", snapshot.ID, "kind", snapshot.Kind, "err", err)
	} else {
		s.logger.Info("task finished", "id", snapshot.ID, "kind", snapshot.Kind, "status", snapshot.Status, "elapsed", snapshot.GetElapsedString())
	}

	s.notifyUpdate(snapshot, seq)
}

// safeRun turns a panicking job into an error
func (s *Service) safeRun(ctx context.Context, job Job, sink Sink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return job(ctx, sink)
}

// previewPlaylist logs the playlist size for playlist URLs. Lookup failures are not fatal.
func (s *Service) previewPlaylist(ctx context.Context, url string, sink Sink) error {
	s.mu.Lock()
	previewer := s.previewer
	s.mu.Unlock()

	if previewer == nil || !previewer.IsPlaylistURL(url) {
		return nil
	}

	summary, err := previewer.ParsePlaylist(ctx, url)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.logger.Warn("playlist preview failed", "url", url, "err", err)
		return nil
	}

	sink.Line(summary.String())
	return nil
}

// runCommand spawns path with args and streams its combined output into sink
func (s *Service) runCommand(ctx context.Context, path string, args []string, sink Sink, parseProgress bool) error {
	name := filepath.Base(path)

	s.mu.Lock()
	waitDelay := s.waitDelay
	s.mu.Unlock()

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.WaitDelay = waitDelay

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	s.logger.Debug("executing command", "path", path, "args", args)

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	scanDone := make(chan error, 1)
	go func() {
		scanDone <- scanOutput(pr, sink, parseProgress)
	}()

	waitErr := cmd.Wait()
	pw.Close()
	scanErr := <-scanDone

	if waitErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w", name, waitErr)
	}
	if scanErr != nil {
		return fmt.Errorf("failed to read %s output: %w", name, scanErr)
	}
	return nil
}

// scanOutput forwards each line to sink; on a scanner error the rest is discarded
// so the writer never blocks.
func scanOutput(r io.ReadCloser, sink Sink, parseProgress bool) error {
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, InitialLineBuffer), MaxLineLength)
	scanner.Split(platform.ScanOutputLines)

	for scanner.Scan() {
		line := scanner.Text()
		sink.Line(line)
		if !parseProgress {
			continue
		}
		if percent, ok := platform.ParseProgress(line); ok {
			sink.Progress(percent)
		}
	}

	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}

// setStatus updates task status and notifies
func (s *Service) setStatus(task *model.Task, status model.TaskStatus) {
	s.mu.Lock()
	if task.Status == model.TaskStatusStopping {
		s.mu.Unlock()
		return
	}
	task.Status = status
	snapshot, seq := s.snapshotLocked(task)
	s.mu.Unlock()

	s.notifyUpdate(snapshot, seq)
}

// setProgress stores a new percentage, notifying only on change
func (s *Service) setProgress(task *model.Task, percent int) {
	s.mu.Lock()
	if task.Percent == percent {
		s.mu.Unlock()
		return
	}
	task.Percent = percent
	snapshot, seq := s.snapshotLocked(task)
	s.mu.Unlock()

	s.notifyUpdate(snapshot, seq)
}

// snapshotLocked copies task and numbers the copy. Caller holds s.mu.
func (s *Service) snapshotLocked(task *model.Task) (*model.Task, uint64) {
	s.seq++
	return task.Clone(), s.seq
}

// notifyUpdate calls the update callback if set. A snapshot older than one
// already delivered is dropped, so a late Stopping never follows Stopped.
func (s *Service) notifyUpdate(task *model.Task, seq uint64) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.mu.Lock()
	callback := s.onUpdate
	s.mu.Unlock()

	if callback != nil {
		callback(task)
	}
}

// notifyLine calls the line callback if set
func (s *Service) notifyLine(line string) {
	s.mu.Lock()
	callback := s.onLine
	s.mu.Unlock()

	if callback != nil {
		callback(line)
	}
}

// taskSink routes job output to the service callbacks
type taskSink struct {
	service *Service
	task    *model.Task
}

func (ts *taskSink) Line(line string) {
	ts.service.notifyLine(line)
}

func (ts *taskSink) Progress(percent int) {
	ts.service.setProgress(ts.task, percent)
}

// generateTaskID generates a unique, time-ordered task ID
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
