package ui

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
)

// Text fragments
const (
	ProgressLabelFormat = "%d%%"
	LogLineSeparator    = "\n"
)

// Layout sizing
const (
	FieldLabelWidth float32 = 140
	LogMinHeight    float32 = 240

	SettingsDialogWidth  float32 = 460
	SettingsDialogHeight float32 = 260
)

// Log view limits
const (
	MaxLogLines = 2000
)

// Progress bar range
const (
	ProgressMin = 0
	ProgressMax = 100
)
