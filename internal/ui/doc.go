package ui

// Package ui contains the Fyne-based desktop user interface for the application.
// It binds the tool path fields and action buttons to the background runner and
// renders the progress bar and output log. All UI strings are localized via Localization.
