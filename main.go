package main

import (
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/charmbracelet/log"

	"github.com/ytget/media-downloader/internal/config"
	"github.com/ytget/media-downloader/internal/converter"
	"github.com/ytget/media-downloader/internal/download"
	"github.com/ytget/media-downloader/internal/platform"
	"github.com/ytget/media-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID = "com.ytget.media-downloader"

	// LogLevelEnv selects the log level (debug, info, warn, error)
	LogLevelEnv = "MEDIA_DOWNLOADER_LOG_LEVEL"

	WindowWidth  = 800
	WindowHeight = 600
)

func main() {
	setupLogging()
	log.Info("Media Downloader starting", "version", version)

	myApp := app.NewWithID(AppID)

	// Apply compact theme
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow("")
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	if icon, err := ui.LoadLogoResource(); err == nil {
		myWindow.SetIcon(icon)
	} else {
		log.Debug("window icon not loaded", "err", err)
	}

	// Initialize services
	settings := config.NewSettings(myApp)

	downloadSvc := download.NewService()
	downloadSvc.SetPlaylistPreviewer(platform.NewPlaylistParserService())

	converterSvc := converter.NewUpdater()

	ui.NewRootUI(myWindow, settings, downloadSvc, converterSvc)

	myWindow.ShowAndRun()
	log.Info("Media Downloader stopped")
}

// setupLogging configures the default logger from the environment
func setupLogging() {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(true)

	level := log.InfoLevel
	if value := os.Getenv(LogLevelEnv); value != "" {
		parsed, err := log.ParseLevel(value)
		if err != nil {
			log.Warn("invalid log level, using info", "env", LogLevelEnv, "value", value)
		} else {
			level = parsed
		}
	}
	log.SetLevel(level)
}
