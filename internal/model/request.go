package model

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFilenameTemplate is the yt-dlp output template used when none is set
const DefaultFilenameTemplate = "%(title)s.%(ext)s"

// ErrMissingField is wrapped by validation errors for empty required fields
var ErrMissingField = errors.New("required field is empty")

// Field names reported by DownloadRequest.Validate
const (
	FieldDownloaderPath = "downloader path"
	FieldSaveDir        = "save directory"
	FieldURL            = "URL"
)

// DownloadRequest carries everything needed to launch one download
type DownloadRequest struct {
	DownloaderPath   string
	ConverterPath    string // optional
	SaveDir          string
	URL              string
	FilenameTemplate string // optional, DefaultFilenameTemplate when empty
}

// MissingFields returns the names of required fields that are empty
func (r DownloadRequest) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(r.DownloaderPath) == "" {
		missing = append(missing, FieldDownloaderPath)
	}
	if strings.TrimSpace(r.SaveDir) == "" {
		missing = append(missing, FieldSaveDir)
	}
	if strings.TrimSpace(r.URL) == "" {
		missing = append(missing, FieldURL)
	}
	return missing
}

// Validate rejects a request with any empty required field
func (r DownloadRequest) Validate() error {
	missing := r.MissingFields()
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
}

// OutputTemplate returns the -o value: save directory joined with the filename template
func (r DownloadRequest) OutputTemplate() string {
	tmpl := strings.TrimSpace(r.FilenameTemplate)
	if tmpl == "" {
		tmpl = DefaultFilenameTemplate
	}
	dir := strings.TrimRight(strings.TrimSpace(r.SaveDir), `/\`)
	return dir + "/" + tmpl
}

// Args builds the downloader argument list (without the executable itself)
func (r DownloadRequest) Args() []string {
	args := make([]string, 0, 5)
	if converter := strings.TrimSpace(r.ConverterPath); converter != "" {
		args = append(args, "--ffmpeg-location", converter)
	}
	args = append(args, "-o", r.OutputTemplate())
	args = append(args, strings.TrimSpace(r.URL))
	return args
}
