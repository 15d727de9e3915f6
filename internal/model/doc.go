package model

// Package model defines the data passed between the runner and the UI: the
// single background task, its kind and status, the download request with its
// required-field validation, and the playlist summary shown before a download.
