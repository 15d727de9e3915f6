package config

import (
	"strings"

	"fyne.io/fyne/v2"

	"github.com/ytget/media-downloader/internal/model"
)

// Settings keys for Fyne preferences
const (
	KeyDownloaderPath   = "ytDlpPath"
	KeyConverterPath    = "ffmpegPath"
	KeySaveDir          = "saveDir"
	KeyFilenameTemplate = "filenameTemplate"
	KeyLanguage         = "app_language"
)

// Default values
const (
	DefaultFilenameTemplate = model.DefaultFilenameTemplate
	DefaultLanguage         = "system"
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloaderPath returns the configured downloader executable, "" if unset
func (s *Settings) GetDownloaderPath() string {
	return s.app.Preferences().String(KeyDownloaderPath)
}

// SetDownloaderPath sets the downloader executable
func (s *Settings) SetDownloaderPath(path string) {
	s.app.Preferences().SetString(KeyDownloaderPath, strings.TrimSpace(path))
}

// GetConverterPath returns the configured converter executable, "" if unset
func (s *Settings) GetConverterPath() string {
	return s.app.Preferences().String(KeyConverterPath)
}

// SetConverterPath sets the converter executable
func (s *Settings) SetConverterPath(path string) {
	s.app.Preferences().SetString(KeyConverterPath, strings.TrimSpace(path))
}

// GetSaveDir returns the configured save directory, "" if unset
func (s *Settings) GetSaveDir() string {
	return s.app.Preferences().String(KeySaveDir)
}

// SetSaveDir sets the save directory
func (s *Settings) SetSaveDir(dir string) {
	s.app.Preferences().SetString(KeySaveDir, strings.TrimSpace(dir))
}

// GetFilenameTemplate returns the filename template
func (s *Settings) GetFilenameTemplate() string {
	template := s.app.Preferences().String(KeyFilenameTemplate)
	if template == "" {
		s.SetFilenameTemplate(DefaultFilenameTemplate)
		return DefaultFilenameTemplate
	}
	return template
}

// SetFilenameTemplate sets the filename template
func (s *Settings) SetFilenameTemplate(template string) {
	template = strings.TrimSpace(template)
	if template == "" {
		template = DefaultFilenameTemplate
	}
	s.app.Preferences().SetString(KeyFilenameTemplate, template)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}

// Paths is the trio of tool locations persisted between runs
type Paths struct {
	DownloaderPath string
	ConverterPath  string
	SaveDir        string
}

// LoadPaths reads all three paths at once
func (s *Settings) LoadPaths() Paths {
	return Paths{
		DownloaderPath: s.GetDownloaderPath(),
		ConverterPath:  s.GetConverterPath(),
		SaveDir:        s.GetSaveDir(),
	}
}

// SavePaths writes all three paths at once
func (s *Settings) SavePaths(p Paths) {
	s.SetDownloaderPath(p.DownloaderPath)
	s.SetConverterPath(p.ConverterPath)
	s.SetSaveDir(p.SaveDir)
}
