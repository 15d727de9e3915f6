package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"github.com/ytget/media-downloader/internal/config"
	"github.com/ytget/media-downloader/internal/converter"
	"github.com/ytget/media-downloader/internal/download"
	"github.com/ytget/media-downloader/internal/model"
)

// fakeRunner records calls and never runs anything
type fakeRunner struct {
	downloads []model.DownloadRequest
	updates   []string
	submitted []model.TaskKind
	jobs      []download.Job
	cancels   int
	active    bool
	startErr  error
	waitCh    chan struct{}
}

func (f *fakeRunner) SetUpdateCallback(func(*model.Task)) {}
func (f *fakeRunner) SetLineCallback(func(string))        {}

func (f *fakeRunner) Download(req model.DownloadRequest) (*model.Task, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.downloads = append(f.downloads, req)
	return &model.Task{Kind: model.TaskKindDownload}, nil
}

func (f *fakeRunner) UpdateDownloader(path string) (*model.Task, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.updates = append(f.updates, path)
	return &model.Task{Kind: model.TaskKindUpdateDownloader}, nil
}

func (f *fakeRunner) Submit(kind model.TaskKind, job download.Job) (*model.Task, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.submitted = append(f.submitted, kind)
	f.jobs = append(f.jobs, job)
	return &model.Task{Kind: kind}, nil
}

func (f *fakeRunner) Cancel() error {
	if !f.active {
		return download.ErrNoActiveTask
	}
	f.cancels++
	return nil
}

func (f *fakeRunner) Active() (*model.Task, bool) {
	if !f.active {
		return nil, false
	}
	return &model.Task{Status: model.TaskStatusRunning}, true
}

func (f *fakeRunner) Wait() {
	if f.waitCh != nil {
		<-f.waitCh
	}
}

// fakeUpdater records the destination of each update
type fakeUpdater struct {
	supported bool
	dests     []string
	written   []string
	err       error
}

func (f *fakeUpdater) Supported() bool { return f.supported }

func (f *fakeUpdater) Update(_ context.Context, destDir string, reporter converter.Reporter) ([]string, error) {
	f.dests = append(f.dests, destDir)
	reporter.Line("updating")
	reporter.Progress(100)
	return f.written, f.err
}

type recordingSink struct {
	lines    []string
	progress []int
}

func (s *recordingSink) Line(line string)     { s.lines = append(s.lines, line) }
func (s *recordingSink) Progress(percent int) { s.progress = append(s.progress, percent) }

func newTestRootUI(t *testing.T, runner *fakeRunner, updater *fakeUpdater) (*RootUI, *config.Settings) {
	t.Helper()

	app := test.NewApp()
	t.Cleanup(app.Quit)

	settings := config.NewSettings(app)
	settings.SetLanguage("en")

	window := app.NewWindow("test")
	ui := NewRootUI(window, settings, runner, updater)

	ui.downloaderEntry.SetText("")
	ui.converterEntry.SetText("")
	ui.saveDirEntry.SetText("")
	ui.urlEntry.SetText("")
	return ui, settings
}

func TestRootUI_DownloadRequiresFields(t *testing.T) {
	tests := []struct {
		name       string
		downloader string
		saveDir    string
		url        string
	}{
		{"all empty", "", "", ""},
		{"missing downloader", "", "/tmp/out", "https://example.com/v"},
		{"missing save dir", "/usr/bin/yt-dlp", "", "https://example.com/v"},
		{"missing url", "/usr/bin/yt-dlp", "/tmp/out", ""},
		{"whitespace url", "/usr/bin/yt-dlp", "/tmp/out", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			ui, _ := newTestRootUI(t, runner, &fakeUpdater{})

			ui.downloaderEntry.SetText(tt.downloader)
			ui.saveDirEntry.SetText(tt.saveDir)
			ui.urlEntry.SetText(tt.url)

			test.Tap(ui.downloadBtn)

			if len(runner.downloads) != 0 {
				t.Errorf("Download called %d times, want 0", len(runner.downloads))
			}
		})
	}
}

func TestRootUI_DownloadStartsRunner(t *testing.T) {
	runner := &fakeRunner{}
	ui, settings := newTestRootUI(t, runner, &fakeUpdater{})

	ui.downloaderEntry.SetText(" /usr/bin/yt-dlp ")
	ui.converterEntry.SetText("/usr/bin/ffmpeg")
	ui.saveDirEntry.SetText("/tmp/out")
	ui.urlEntry.SetText("https://example.com/watch?v=1")
	ui.logView.Append("stale line")

	test.Tap(ui.downloadBtn)

	if len(runner.downloads) != 1 {
		t.Fatalf("Download called %d times, want 1", len(runner.downloads))
	}

	req := runner.downloads[0]
	if req.DownloaderPath != "/usr/bin/yt-dlp" {
		t.Errorf("DownloaderPath = %q", req.DownloaderPath)
	}
	if req.ConverterPath != "/usr/bin/ffmpeg" {
		t.Errorf("ConverterPath = %q", req.ConverterPath)
	}
	if req.URL != "https://example.com/watch?v=1" {
		t.Errorf("URL = %q", req.URL)
	}
	if req.FilenameTemplate != config.DefaultFilenameTemplate {
		t.Errorf("FilenameTemplate = %q", req.FilenameTemplate)
	}

	if got := settings.GetDownloaderPath(); got != "/usr/bin/yt-dlp" {
		t.Errorf("saved downloader path = %q", got)
	}
	if got := settings.GetSaveDir(); got != "/tmp/out" {
		t.Errorf("saved save dir = %q", got)
	}
	if lines := ui.logView.Lines(); len(lines) != 0 {
		t.Errorf("log not cleared: %v", lines)
	}
}

func TestRootUI_URLSubmitStartsDownload(t *testing.T) {
	runner := &fakeRunner{}
	ui, _ := newTestRootUI(t, runner, &fakeUpdater{})

	ui.downloaderEntry.SetText("/usr/bin/yt-dlp")
	ui.saveDirEntry.SetText("/tmp/out")
	ui.urlEntry.SetText("https://example.com/v")
	ui.urlEntry.OnSubmitted(ui.urlEntry.Text)

	if len(runner.downloads) != 1 {
		t.Errorf("Download called %d times, want 1", len(runner.downloads))
	}
}

func TestRootUI_StartErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"busy", download.ErrBusy, "Another task is already running."},
		{"other", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{startErr: tt.err}
			ui, _ := newTestRootUI(t, runner, &fakeUpdater{})

			ui.downloaderEntry.SetText("/usr/bin/yt-dlp")
			ui.saveDirEntry.SetText("/tmp/out")
			ui.urlEntry.SetText("https://example.com/v")
			ui.onDownloadClick()

			lines := ui.logView.Lines()
			if len(lines) == 0 || lines[len(lines)-1] != tt.want {
				t.Errorf("log = %v, want last line %q", lines, tt.want)
			}
		})
	}
}

func TestRootUI_UpdateDownloader(t *testing.T) {
	runner := &fakeRunner{}
	ui, _ := newTestRootUI(t, runner, &fakeUpdater{})

	test.Tap(ui.updateDownloaderBtn)
	if len(runner.updates) != 0 {
		t.Fatalf("UpdateDownloader called without a path")
	}

	ui.downloaderEntry.SetText("/opt/yt-dlp")
	test.Tap(ui.updateDownloaderBtn)

	if len(runner.updates) != 1 || runner.updates[0] != "/opt/yt-dlp" {
		t.Errorf("updates = %v", runner.updates)
	}
}

func TestRootUI_UpdateConverterUnsupported(t *testing.T) {
	runner := &fakeRunner{}
	ui, _ := newTestRootUI(t, runner, &fakeUpdater{supported: false})

	ui.converterEntry.SetText("/opt/ffmpeg/bin/ffmpeg")
	test.Tap(ui.updateConverterBtn)

	if len(runner.submitted) != 0 {
		t.Errorf("Submit called on unsupported platform")
	}
}

func TestRootUI_UpdateConverterNextToExisting(t *testing.T) {
	runner := &fakeRunner{}
	updater := &fakeUpdater{supported: true}
	ui, _ := newTestRootUI(t, runner, updater)

	exe := filepath.Join("opt", "ffmpeg", "bin", "ffmpeg.exe")
	ui.converterEntry.SetText(exe)
	test.Tap(ui.updateConverterBtn)

	if len(runner.submitted) != 1 || runner.submitted[0] != model.TaskKindUpdateConverter {
		t.Fatalf("submitted = %v", runner.submitted)
	}

	sink := &recordingSink{}
	if err := runner.jobs[0](context.Background(), sink); err != nil {
		t.Fatalf("job error = %v", err)
	}

	if want := filepath.Dir(exe); len(updater.dests) != 1 || updater.dests[0] != want {
		t.Errorf("dests = %v, want [%s]", updater.dests, want)
	}
	if len(sink.lines) != 1 || sink.lines[0] != "updating" {
		t.Errorf("sink lines = %v", sink.lines)
	}
	if ui.converterEntry.Text != exe {
		t.Errorf("converter path changed to %q", ui.converterEntry.Text)
	}
}

func TestRootUI_UpdateConverterJobError(t *testing.T) {
	runner := &fakeRunner{}
	updater := &fakeUpdater{supported: true, err: converter.ErrNoBinaries}
	ui, _ := newTestRootUI(t, runner, updater)

	ui.converterEntry.SetText("/opt/ffmpeg")
	ui.onUpdateConverterClick()

	if len(runner.jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(runner.jobs))
	}
	if err := runner.jobs[0](context.Background(), &recordingSink{}); !errors.Is(err, converter.ErrNoBinaries) {
		t.Errorf("job error = %v, want ErrNoBinaries", err)
	}
}

func TestRootUI_SetConverterPath(t *testing.T) {
	ui, settings := newTestRootUI(t, &fakeRunner{}, &fakeUpdater{})

	ui.setConverterPath("/tools/ffmpeg.exe")

	if ui.converterEntry.Text != "/tools/ffmpeg.exe" {
		t.Errorf("entry = %q", ui.converterEntry.Text)
	}
	if got := settings.GetConverterPath(); got != "/tools/ffmpeg.exe" {
		t.Errorf("saved = %q", got)
	}
	if text := ui.logView.Text(); !strings.Contains(text, "/tools/ffmpeg.exe") {
		t.Errorf("log = %q", text)
	}
}

func TestRootUI_OnTaskUpdate_Running(t *testing.T) {
	ui, _ := newTestRootUI(t, &fakeRunner{}, &fakeUpdater{})

	ui.onTaskUpdate(&model.Task{Kind: model.TaskKindDownload, Status: model.TaskStatusRunning, Percent: 42})

	if ui.progressBar.Value != 42 {
		t.Errorf("progress = %v, want 42", ui.progressBar.Value)
	}
	for name, btn := range map[string]bool{
		"download":          ui.downloadBtn.Disabled(),
		"update downloader": ui.updateDownloaderBtn.Disabled(),
		"update converter":  ui.updateConverterBtn.Disabled(),
	} {
		if !btn {
			t.Errorf("%s button enabled while running", name)
		}
	}
	if ui.cancelBtn.Disabled() {
		t.Error("cancel button disabled while running")
	}
	if len(ui.logView.Lines()) != 0 {
		t.Errorf("running update wrote to log: %v", ui.logView.Lines())
	}
}

func TestRootUI_OnTaskUpdate_Finished(t *testing.T) {
	tests := []struct {
		name string
		task model.Task
		want string
	}{
		{"download", model.Task{Kind: model.TaskKindDownload, Status: model.TaskStatusCompleted, Percent: 100}, "Download finished."},
		{"update downloader", model.Task{Kind: model.TaskKindUpdateDownloader, Status: model.TaskStatusCompleted}, "yt-dlp update finished."},
		{"update converter", model.Task{Kind: model.TaskKindUpdateConverter, Status: model.TaskStatusCompleted}, "ffmpeg updated."},
		{"cancelled", model.Task{Kind: model.TaskKindDownload, Status: model.TaskStatusStopped}, "Download cancelled."},
		{"error", model.Task{Kind: model.TaskKindDownload, Status: model.TaskStatusError, LastError: "yt-dlp failed: exit status 1"}, "yt-dlp failed: exit status 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui, _ := newTestRootUI(t, &fakeRunner{}, &fakeUpdater{})

			ui.onTaskUpdate(&model.Task{Kind: tt.task.Kind, Status: model.TaskStatusRunning})
			task := tt.task
			ui.onTaskUpdate(&task)

			lines := ui.logView.Lines()
			if len(lines) != 1 || lines[0] != tt.want {
				t.Errorf("log = %v, want [%q]", lines, tt.want)
			}
			if ui.downloadBtn.Disabled() {
				t.Error("download button still disabled")
			}
			if !ui.cancelBtn.Disabled() {
				t.Error("cancel button still enabled")
			}
		})
	}
}

func TestRootUI_Cancel(t *testing.T) {
	runner := &fakeRunner{}
	ui, _ := newTestRootUI(t, runner, &fakeUpdater{})

	ui.onCancelClick()
	if len(ui.logView.Lines()) != 0 {
		t.Errorf("idle cancel wrote to log: %v", ui.logView.Lines())
	}

	runner.active = true
	ui.onTaskUpdate(&model.Task{Kind: model.TaskKindDownload, Status: model.TaskStatusRunning})
	test.Tap(ui.cancelBtn)

	if runner.cancels != 1 {
		t.Errorf("cancels = %d, want 1", runner.cancels)
	}
}

func TestRootUI_RefreshUITexts(t *testing.T) {
	ui, _ := newTestRootUI(t, &fakeRunner{}, &fakeUpdater{})

	ui.localization.SetLanguage("ru")
	ui.refreshUITexts()

	if ui.downloadBtn.Text != "Скачать" {
		t.Errorf("download button = %q", ui.downloadBtn.Text)
	}
	if ui.form.Items[0].Text != "Путь к yt-dlp" {
		t.Errorf("first form label = %q", ui.form.Items[0].Text)
	}
}

func TestRootUI_StartWhileBusyKeepsRunningTask(t *testing.T) {
	runner := &fakeRunner{active: true, startErr: download.ErrBusy}
	updater := &fakeUpdater{supported: true}
	ui, _ := newTestRootUI(t, runner, updater)

	ui.downloaderEntry.SetText("/usr/bin/yt-dlp")
	ui.converterEntry.SetText("/opt/ffmpeg/ffmpeg")
	ui.saveDirEntry.SetText("/tmp/out")
	ui.urlEntry.SetText("https://example.com/v")
	ui.logView.Append("[download]  60.0% of 10MiB")
	ui.progressBar.SetValue(60)

	ui.urlEntry.OnSubmitted(ui.urlEntry.Text)
	ui.onUpdateDownloaderClick()
	ui.onUpdateConverterClick()

	if len(runner.downloads)+len(runner.updates)+len(runner.submitted) != 0 {
		t.Errorf("runner started: downloads=%v updates=%v submitted=%v", runner.downloads, runner.updates, runner.submitted)
	}
	if ui.progressBar.Value != 60 {
		t.Errorf("progress = %v, want 60", ui.progressBar.Value)
	}

	lines := ui.logView.Lines()
	if len(lines) == 0 || lines[0] != "[download]  60.0% of 10MiB" {
		t.Fatalf("running task log lost: %v", lines)
	}
	if lines[len(lines)-1] != "Another task is already running." {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}
}

func TestRootUI_IgnoresActiveUpdateAfterFinish(t *testing.T) {
	ui, _ := newTestRootUI(t, &fakeRunner{}, &fakeUpdater{})

	ui.onTaskUpdate(&model.Task{ID: "task-1", Kind: model.TaskKindDownload, Status: model.TaskStatusRunning})
	ui.onTaskUpdate(&model.Task{ID: "task-1", Kind: model.TaskKindDownload, Status: model.TaskStatusStopped})
	ui.onTaskUpdate(&model.Task{ID: "task-1", Kind: model.TaskKindDownload, Status: model.TaskStatusStopping})

	if ui.downloadBtn.Disabled() {
		t.Error("download button disabled by a stale update")
	}
	if !ui.cancelBtn.Disabled() {
		t.Error("cancel button enabled by a stale update")
	}
	if got := ui.statusLabel.Text; got != "Idle" {
		t.Errorf("status = %q, want Idle", got)
	}

	ui.onTaskUpdate(&model.Task{ID: "task-2", Kind: model.TaskKindDownload, Status: model.TaskStatusRunning})
	if !ui.downloadBtn.Disabled() {
		t.Error("next task did not mark the window busy")
	}
}

func TestRootUI_CloseWaitsForRunningTask(t *testing.T) {
	runner := &fakeRunner{active: true, waitCh: make(chan struct{})}
	ui, settings := newTestRootUI(t, runner, &fakeUpdater{})

	closed := make(chan struct{})
	ui.doOnMain = func(f func()) { f() }
	ui.closeWindow = func() { close(closed) }

	ui.downloaderEntry.SetText("/usr/bin/yt-dlp")
	ui.saveDirEntry.SetText("/tmp/out")

	ui.onClose()

	if got := settings.GetDownloaderPath(); got != "/usr/bin/yt-dlp" {
		t.Errorf("saved downloader path = %q", got)
	}
	if got := settings.GetSaveDir(); got != "/tmp/out" {
		t.Errorf("saved save dir = %q", got)
	}
	if runner.cancels != 1 {
		t.Errorf("cancels = %d, want 1", runner.cancels)
	}

	select {
	case <-closed:
		t.Fatal("window closed before the task finished")
	case <-time.After(100 * time.Millisecond):
	}

	close(runner.waitCh)

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("window not closed after the task finished")
	}
}

func TestRootUI_CloseWhenIdle(t *testing.T) {
	runner := &fakeRunner{}
	ui, _ := newTestRootUI(t, runner, &fakeUpdater{})

	closed := 0
	ui.closeWindow = func() { closed++ }

	ui.onClose()

	if closed != 1 {
		t.Errorf("closed = %d, want 1", closed)
	}
	if runner.cancels != 0 {
		t.Errorf("cancels = %d, want 0", runner.cancels)
	}
}
