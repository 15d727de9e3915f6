package converter

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/ytget/media-downloader/internal/platform"
)

// Update source constants
const (
	// DefaultSourceURL is the latest static Windows build of ffmpeg
	DefaultSourceURL = "https://github.com/BtbN/FFmpeg-Builds/releases/download/latest/ffmpeg-master-latest-win64-gpl.zip"

	// DefaultHTTPTimeout bounds the whole archive transfer
	DefaultHTTPTimeout = 15 * time.Minute

	TempFilePattern  = "ffmpeg-*.zip"
	BinSegment       = "bin/"
	BinaryPermission = 0o755
)

// Progress lines written to the reporter
const (
	MsgDownloading = "Downloading latest ffmpeg..."
	MsgExtracting  = "Download complete. Extracting..."
)

var (
	// ErrUnsupportedPlatform is returned when no prebuilt archive exists for the OS
	ErrUnsupportedPlatform = errors.New("automatic ffmpeg update is only supported on Windows")

	// ErrNoBinaries is returned when the archive holds no bin/ entries
	ErrNoBinaries = errors.New("archive contains no bin/ entries")
)

// Updater downloads a converter build and unpacks its binaries
type Updater struct {
	client    *http.Client
	sourceURL string
	targetOS  string
	tempDir   string
	logger    *log.Logger
}

// NewUpdater creates an updater pointed at DefaultSourceURL
func NewUpdater() *Updater {
	return &Updater{
		client:    &http.Client{Timeout: DefaultHTTPTimeout},
		sourceURL: DefaultSourceURL,
		targetOS:  runtime.GOOS,
		logger:    log.WithPrefix("converter"),
	}
}

// SetSourceURL overrides the archive location
func (u *Updater) SetSourceURL(url string) {
	u.sourceURL = url
}

// SetHTTPClient overrides the HTTP client
func (u *Updater) SetHTTPClient(client *http.Client) {
	if client != nil {
		u.client = client
	}
}

// SetTargetOS overrides the operating system the update is checked against
func (u *Updater) SetTargetOS(goos string) {
	u.targetOS = goos
}

// SetTempDir sets where the archive is staged, "" means os.TempDir
func (u *Updater) SetTempDir(dir string) {
	u.tempDir = dir
}

// Supported reports whether an update can run on the target OS
func (u *Updater) Supported() bool {
	return u.targetOS == platform.OSWindows
}

// Update fetches the archive and extracts its bin/ entries into destDir.
// It returns the paths written.
func (u *Updater) Update(ctx context.Context, destDir string, reporter Reporter) ([]string, error) {
	if !u.Supported() {
		return nil, ErrUnsupportedPlatform
	}
	if strings.TrimSpace(destDir) == "" {
		return nil, fmt.Errorf("destination directory is empty")
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	if err := platform.CreateDirectoryIfNotExists(destDir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	reporter.Line(MsgDownloading)
	u.logger.Info("fetching converter archive", "url", u.sourceURL, "dest", destDir)

	archive, err := u.fetch(ctx, reporter)
	if err != nil {
		return nil, err
	}
	defer os.Remove(archive)

	reporter.Line(MsgExtracting)
	written, err := ExtractBinaries(archive, destDir)
	if err != nil {
		return written, err
	}

	u.logger.Info("converter updated", "dest", destDir, "files", len(written))
	return written, nil
}

// fetch downloads the archive to a temp file and returns its path
func (u *Updater) fetch(ctx context.Context, reporter Reporter) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to download archive: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(u.tempDir, TempFilePattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	pw := &progressWriter{total: resp.ContentLength, reporter: reporter, last: -1}
	n, copyErr := io.Copy(tmp, io.TeeReader(resp.Body, pw))
	closeErr := tmp.Close()

	if copyErr != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save archive: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save archive: %w", closeErr)
	}

	u.logger.Info("archive downloaded", "size", humanize.Bytes(uint64(n)), "path", tmp.Name())
	reporter.Line(fmt.Sprintf("Downloaded %s", humanize.Bytes(uint64(n))))
	return tmp.Name(), nil
}

// ExtractBinaries writes every non-directory entry of zipPath that sits under a
// bin/ segment into destDir, flattened to its base name. Other entries are skipped.
func ExtractBinaries(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	var written []string
	for _, f := range r.File {
		name := strings.ReplaceAll(f.Name, `\`, "/")
		if f.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
			continue
		}
		if !IsBinEntry(name) {
			continue
		}

		base := path.Base(name)
		if base == "." || base == "/" || base == "" {
			continue
		}

		dst := filepath.Join(destDir, base)
		if err := extractFile(f, dst); err != nil {
			return written, err
		}
		written = append(written, dst)
	}

	if len(written) == 0 {
		return nil, ErrNoBinaries
	}
	return written, nil
}

// IsBinEntry reports whether a slash-separated archive path has a bin/ segment
func IsBinEntry(name string) bool {
	return strings.Contains("/"+name, "/"+BinSegment)
}

// extractFile copies one archive entry to dst
func extractFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, BinaryPermission)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

// FindConverter returns the ffmpeg executable among written paths, or ""
func FindConverter(written []string) string {
	for _, p := range written {
		name := strings.ToLower(filepath.Base(p))
		if name == platform.ConverterExecutable || name == platform.ConverterExecutable+platform.WindowsExeSuffix {
			return p
		}
	}
	return ""
}

// progressWriter turns byte counts into whole-percent progress
type progressWriter struct {
	total    int64
	written  int64
	last     int
	reporter Reporter
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.written += int64(len(p))
	if pw.total <= 0 {
		return len(p), nil
	}
	percent := int(pw.written * 100 / pw.total)
	if percent > 100 {
		percent = 100
	}
	if percent != pw.last {
		pw.last = percent
		pw.reporter.Progress(percent)
	}
	return len(p), nil
}
