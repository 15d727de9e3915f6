package converter

// Package converter keeps the optional converter executable (ffmpeg) current:
// it downloads a prebuilt archive and extracts the binaries found under its
// bin/ directory next to the configured converter.
