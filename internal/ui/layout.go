package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the detail pane is hidden.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160
)

// Activity view limits.
const (
	// ActivityLineLimit is the number of log lines read for the activity view.
	ActivityLineLimit = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval. It expires
	// toasts and refreshes the activity view.
	DefaultUIInterval = time.Second

	// DetailFetchTimeout bounds a product detail request.
	DetailFetchTimeout = 5 * time.Second
)
