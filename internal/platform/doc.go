package platform

// Package platform contains OS/platform integration and external tooling glue:
// downloader output parsing, filesystem helpers, executable lookup, playlist
// preview via github.com/ytget/ytdlp/v2, and opening folders in the OS shell.
