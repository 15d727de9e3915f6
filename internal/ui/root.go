package ui

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"github.com/ytget/media-downloader/internal/config"
	"github.com/ytget/media-downloader/internal/converter"
	"github.com/ytget/media-downloader/internal/download"
	"github.com/ytget/media-downloader/internal/model"
	"github.com/ytget/media-downloader/internal/platform"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	settings     *config.Settings
	localization *Localization
	runner       download.Runner
	updater      converter.UpdateRunner
	logger       *log.Logger

	// Tool path and input fields
	downloaderEntry *widget.Entry
	converterEntry  *widget.Entry
	saveDirEntry    *widget.Entry
	urlEntry        *widget.Entry
	form            *widget.Form

	downloaderBrowseBtn *widget.Button
	converterBrowseBtn  *widget.Button
	saveDirBrowseBtn    *widget.Button

	// Actions
	downloadBtn         *widget.Button
	cancelBtn           *widget.Button
	updateDownloaderBtn *widget.Button
	updateConverterBtn  *widget.Button
	openFolderBtn       *widget.Button
	settingsBtn         *widget.Button

	progressBar *widget.ProgressBar
	statusLabel *widget.Label
	logView     *LogView

	// finishedID is the last task seen finished; later active snapshots of it are stale
	finishedID string

	// doOnMain runs f on the Fyne thread, closeWindow closes without the intercept
	doOnMain    func(f func())
	closeWindow func()
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, settings *config.Settings, runner download.Runner, updater converter.UpdateRunner) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		settings:     settings,
		localization: localization,
		runner:       runner,
		updater:      updater,
		logger:       log.WithPrefix("ui"),
		doOnMain:     fyne.Do,
		closeWindow:  window.Close,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))

	runner.SetUpdateCallback(func(task *model.Task) {
		ui.doOnMain(func() { ui.onTaskUpdate(task) })
	})
	runner.SetLineCallback(func(line string) {
		ui.doOnMain(func() { ui.logView.Append(line) })
	})

	ui.setupUI()
	ui.loadPaths()

	window.SetCloseIntercept(ui.onClose)
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.downloaderEntry = widget.NewEntry()
	ui.downloaderEntry.SetPlaceHolder(platform.ExecutableName(platform.DownloaderExecutable, runtime.GOOS))
	ui.downloaderBrowseBtn = widget.NewButton(ui.localization.GetText(KeyBrowse), func() {
		ui.browseFile(ui.downloaderEntry)
	})

	ui.converterEntry = widget.NewEntry()
	ui.converterEntry.SetPlaceHolder(platform.ExecutableName(platform.ConverterExecutable, runtime.GOOS))
	ui.converterBrowseBtn = widget.NewButton(ui.localization.GetText(KeyBrowse), func() {
		ui.browseFile(ui.converterEntry)
	})

	ui.saveDirEntry = widget.NewEntry()
	ui.saveDirBrowseBtn = widget.NewButton(ui.localization.GetText(KeyBrowse), func() {
		ui.browseFolder(ui.saveDirEntry)
	})

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	// Trigger download when user presses Enter in the URL field
	ui.urlEntry.OnSubmitted = func(string) {
		ui.onDownloadClick()
	}

	ui.form = widget.NewForm(
		widget.NewFormItem(ui.localization.GetText(KeyDownloaderPath), container.NewBorder(nil, nil, nil, ui.downloaderBrowseBtn, ui.downloaderEntry)),
		widget.NewFormItem(ui.localization.GetText(KeyConverterPath), container.NewBorder(nil, nil, nil, ui.converterBrowseBtn, ui.converterEntry)),
		widget.NewFormItem(ui.localization.GetText(KeySaveDirectory), container.NewBorder(nil, nil, nil, ui.saveDirBrowseBtn, ui.saveDirEntry)),
		widget.NewFormItem(ui.localization.GetText(KeyURL), ui.urlEntry),
	)

	ui.downloadBtn = widget.NewButton(ui.localization.GetText(KeyDownload), ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance
	ui.cancelBtn = widget.NewButton(ui.localization.GetText(KeyCancel), ui.onCancelClick)
	ui.cancelBtn.Disable()
	ui.updateDownloaderBtn = widget.NewButton(ui.localization.GetText(KeyUpdateDownloader), ui.onUpdateDownloaderClick)
	ui.updateConverterBtn = widget.NewButton(ui.localization.GetText(KeyUpdateConverter), ui.onUpdateConverterClick)
	ui.openFolderBtn = widget.NewButton(IconFolder+" "+ui.localization.GetText(KeyOpenFolder), ui.onOpenFolderClick)
	ui.settingsBtn = widget.NewButton(IconSettings, ui.onShowSettings)
	ui.settingsBtn.Importance = widget.LowImportance

	buttons := container.NewHBox(
		ui.downloadBtn,
		ui.cancelBtn,
		ui.updateDownloaderBtn,
		ui.updateConverterBtn,
		layout.NewSpacer(),
		ui.openFolderBtn,
		ui.settingsBtn,
	)

	ui.progressBar = widget.NewProgressBar()
	ui.progressBar.Min = ProgressMin
	ui.progressBar.Max = ProgressMax

	ui.statusLabel = widget.NewLabel(ui.localization.GetText(KeyStatusIdle))

	ui.logView = NewLogView(MaxLogLines)

	top := container.NewVBox(ui.form, buttons, ui.progressBar, ui.statusLabel)

	content := container.NewBorder(
		top, // top
		nil, // bottom
		nil, // left
		nil, // right
		ui.logView.Widget(),
	)

	ui.window.SetContent(content)
}

// loadPaths fills the path fields from settings, falling back to PATH lookups for empty tool paths
func (ui *RootUI) loadPaths() {
	paths := ui.settings.LoadPaths()

	if paths.DownloaderPath == "" {
		paths.DownloaderPath = platform.FindExecutable(platform.ExecutableName(platform.DownloaderExecutable, runtime.GOOS))
	}
	if paths.ConverterPath == "" {
		paths.ConverterPath = platform.FindExecutable(platform.ExecutableName(platform.ConverterExecutable, runtime.GOOS))
	}
	if paths.SaveDir == "" {
		if dir, err := platform.GetHomeDownloadsDir(); err == nil {
			paths.SaveDir = dir
		}
	}

	ui.downloaderEntry.SetText(paths.DownloaderPath)
	ui.converterEntry.SetText(paths.ConverterPath)
	ui.saveDirEntry.SetText(paths.SaveDir)
}

// savePaths persists the current path fields
func (ui *RootUI) savePaths() {
	ui.settings.SavePaths(config.Paths{
		DownloaderPath: ui.downloaderEntry.Text,
		ConverterPath:  ui.converterEntry.Text,
		SaveDir:        ui.saveDirEntry.Text,
	})
}

// request builds a download request from the current fields
func (ui *RootUI) request() model.DownloadRequest {
	return model.DownloadRequest{
		DownloaderPath:   strings.TrimSpace(ui.downloaderEntry.Text),
		ConverterPath:    strings.TrimSpace(ui.converterEntry.Text),
		SaveDir:          strings.TrimSpace(ui.saveDirEntry.Text),
		URL:              strings.TrimSpace(ui.urlEntry.Text),
		FilenameTemplate: ui.settings.GetFilenameTemplate(),
	}
}

// onDownloadClick handles the download button click
func (ui *RootUI) onDownloadClick() {
	req := ui.request()
	if missing := req.MissingFields(); len(missing) > 0 {
		ui.logger.Debug("download rejected", "missing", missing)
		ui.showInfo(ui.localization.GetText(KeyMissingFields))
		return
	}
	if ui.rejectWhileBusy() {
		return
	}

	ui.savePaths()
	ui.logView.Clear()
	ui.progressBar.SetValue(ProgressMin)

	if _, err := ui.runner.Download(req); err != nil {
		ui.reportStartError(err)
	}
}

// onCancelClick cancels the running task
func (ui *RootUI) onCancelClick() {
	if err := ui.runner.Cancel(); err != nil && !errors.Is(err, download.ErrNoActiveTask) {
		ui.logView.Append(err.Error())
	}
}

// onUpdateDownloaderClick runs the downloader self-update
func (ui *RootUI) onUpdateDownloaderClick() {
	path := strings.TrimSpace(ui.downloaderEntry.Text)
	if path == "" {
		ui.showInfo(ui.localization.GetText(KeyDownloaderRequired))
		return
	}
	if ui.rejectWhileBusy() {
		return
	}

	ui.savePaths()
	ui.progressBar.SetValue(ProgressMin)

	if _, err := ui.runner.UpdateDownloader(path); err != nil {
		ui.reportStartError(err)
	}
}

// onUpdateConverterClick fetches a fresh converter next to the configured one,
// or into a user-chosen folder when no converter path is set
func (ui *RootUI) onUpdateConverterClick() {
	if !ui.updater.Supported() {
		ui.showInfo(ui.localization.GetText(KeyConverterManual))
		return
	}
	if ui.rejectWhileBusy() {
		return
	}

	path := strings.TrimSpace(ui.converterEntry.Text)
	if path != "" {
		ui.startConverterUpdate(platform.ParentDir(path), false)
		return
	}

	ui.statusLabel.SetText(ui.localization.GetText(KeyConverterTarget))
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		ui.statusLabel.SetText(ui.localization.GetText(KeyStatusIdle))
		if err != nil {
			ui.logView.Append(err.Error())
			return
		}
		if uri == nil {
			return
		}
		ui.startConverterUpdate(uri.Path(), true)
	}, ui.window)
}

// startConverterUpdate submits the converter update into the runner slot.
// With fillPath set the extracted executable becomes the configured converter.
func (ui *RootUI) startConverterUpdate(destDir string, fillPath bool) {
	if ui.rejectWhileBusy() {
		return
	}
	ui.progressBar.SetValue(ProgressMin)

	job := func(ctx context.Context, sink download.Sink) error {
		written, err := ui.updater.Update(ctx, destDir, sink)
		if err != nil {
			return err
		}
		if !fillPath {
			return nil
		}
		if exe := converter.FindConverter(written); exe != "" {
			ui.doOnMain(func() { ui.setConverterPath(exe) })
		}
		return nil
	}

	if _, err := ui.runner.Submit(model.TaskKindUpdateConverter, job); err != nil {
		ui.reportStartError(err)
	}
}

// setConverterPath fills and persists the converter path
func (ui *RootUI) setConverterPath(path string) {
	ui.converterEntry.SetText(path)
	ui.settings.SetConverterPath(path)
	ui.logView.Append(fmt.Sprintf("%s %s", ui.localization.GetText(KeyConverterPathFilled), path))
}

// onOpenFolderClick reveals the save directory in the file manager
func (ui *RootUI) onOpenFolderClick() {
	dir := strings.TrimSpace(ui.saveDirEntry.Text)
	if dir == "" {
		ui.showInfo(ui.localization.GetText(KeyMissingFields))
		return
	}

	if err := platform.OpenDirectory(dir); err != nil {
		ui.logger.Warn("failed to open folder", "dir", dir, "err", err)
		dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyErrorOpeningFolder), err), ui.window)
	}
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.localization, ui.window, func() {
		ui.localization.SetLanguage(ui.settings.GetLanguage())
		ui.refreshUITexts()
	}).Show()
}

// onTaskUpdate renders a task snapshot. Must run on the Fyne thread.
func (ui *RootUI) onTaskUpdate(task *model.Task) {
	if task == nil {
		return
	}
	if task.Status.IsActive() && task.ID != "" && task.ID == ui.finishedID {
		return
	}

	ui.progressBar.SetValue(float64(task.Percent))

	if task.Status.IsActive() {
		ui.setBusy(true)
		if task.Status == model.TaskStatusStopping {
			ui.statusLabel.SetText(ui.localization.GetText(KeyStatusStopping))
		} else {
			ui.statusLabel.SetText(fmt.Sprintf("%s: %s "+ProgressLabelFormat,
				ui.localization.GetText(KeyStatusRunning), task.Kind, task.Percent))
		}
		return
	}

	ui.finishedID = task.ID
	ui.setBusy(false)
	ui.statusLabel.SetText(ui.localization.GetText(KeyStatusIdle))
	if line := ui.finishedLine(task); line != "" {
		ui.logView.Append(line)
	}
}

// finishedLine returns the closing log line for a finished task
func (ui *RootUI) finishedLine(task *model.Task) string {
	switch task.Status {
	case model.TaskStatusCompleted:
		switch task.Kind {
		case model.TaskKindDownload:
			return ui.localization.GetText(KeyDownloadFinished)
		case model.TaskKindUpdateDownloader:
			return ui.localization.GetText(KeyDownloaderUpdated)
		case model.TaskKindUpdateConverter:
			return ui.localization.GetText(KeyConverterUpdated)
		}
	case model.TaskStatusStopped:
		return ui.localization.GetText(KeyDownloadCancelled)
	case model.TaskStatusError:
		return task.LastError
	}
	return ""
}

// setBusy toggles the action buttons while a task runs
func (ui *RootUI) setBusy(busy bool) {
	for _, btn := range []*widget.Button{ui.downloadBtn, ui.updateDownloaderBtn, ui.updateConverterBtn} {
		if busy {
			btn.Disable()
		} else {
			btn.Enable()
		}
	}
	if busy {
		ui.cancelBtn.Enable()
	} else {
		ui.cancelBtn.Disable()
	}
}

// rejectWhileBusy reports whether a task is running, noting it in the log.
// The running task's log and progress are left alone.
func (ui *RootUI) rejectWhileBusy() bool {
	if _, running := ui.runner.Active(); !running {
		return false
	}
	ui.logView.Append(ui.localization.GetText(KeyTaskAlreadyRunning))
	return true
}

// reportStartError writes a failed start to the log
func (ui *RootUI) reportStartError(err error) {
	if errors.Is(err, download.ErrBusy) {
		ui.logView.Append(ui.localization.GetText(KeyTaskAlreadyRunning))
		return
	}
	ui.logger.Error("failed to start task", "err", err)
	ui.logView.Append(err.Error())
}

// showInfo shows an information dialog titled with the app name
func (ui *RootUI) showInfo(message string) {
	dialog.ShowInformation(ui.localization.GetText(KeyAppTitle), message, ui.window)
}

// browseFile fills entry with a picked file path
func (ui *RootUI) browseFile(entry *widget.Entry) {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		entry.SetText(reader.URI().Path())
	}, ui.window)
}

// browseFolder fills entry with a picked directory
func (ui *RootUI) browseFolder(entry *widget.Entry) {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		entry.SetText(uri.Path())
	}, ui.window)
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))

	labels := []string{KeyDownloaderPath, KeyConverterPath, KeySaveDirectory, KeyURL}
	for i, item := range ui.form.Items {
		if i < len(labels) {
			item.Text = ui.localization.GetText(labels[i])
		}
	}
	ui.form.Refresh()

	for _, btn := range []*widget.Button{ui.downloaderBrowseBtn, ui.converterBrowseBtn, ui.saveDirBrowseBtn} {
		btn.SetText(ui.localization.GetText(KeyBrowse))
	}
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.downloadBtn.SetText(ui.localization.GetText(KeyDownload))
	ui.cancelBtn.SetText(ui.localization.GetText(KeyCancel))
	ui.updateDownloaderBtn.SetText(ui.localization.GetText(KeyUpdateDownloader))
	ui.updateConverterBtn.SetText(ui.localization.GetText(KeyUpdateConverter))
	ui.openFolderBtn.SetText(IconFolder + " " + ui.localization.GetText(KeyOpenFolder))

	if _, running := ui.runner.Active(); !running {
		ui.statusLabel.SetText(ui.localization.GetText(KeyStatusIdle))
	}
}

// onClose saves the paths, stops any running task and closes the window
func (ui *RootUI) onClose() {
	ui.savePaths()

	if _, running := ui.runner.Active(); !running {
		ui.closeWindow()
		return
	}

	ui.logger.Info("cancelling running task before exit")
	_ = ui.runner.Cancel()
	go func() {
		ui.runner.Wait()
		ui.doOnMain(ui.closeWindow)
	}()
}
