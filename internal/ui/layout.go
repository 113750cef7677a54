package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops
	// secondary fields.
	LayoutCompactWidth = 80

	// QuoteMaxWidth caps the quote card so long lines stay readable.
	QuoteMaxWidth = 72
)

// Activity pane limits.
const (
	// ActivityLines is how many log entries the activity pane shows.
	ActivityLines = 6
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// BannerDuration is how long a notification stays visible.
	BannerDuration = 4 * time.Second
)
