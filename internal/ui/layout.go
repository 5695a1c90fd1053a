package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutMinPanelWidth is the narrowest a panel may get before labels
	// are dropped from its title.
	LayoutMinPanelWidth = 30
)

// Panel geometry.
const (
	// GutterWidth is the width of the error overlay column inside each panel.
	GutterWidth = 1

	// NearBottomRows is how close to the bottom a panel must be scrolled
	// before the next page is requested.
	NearBottomRows = 5

	// WheelScrollLines is how many rows one mouse wheel notch scrolls.
	WheelScrollLines = 3
)

// Timing constants.
const (
	// DefaultPollInterval is the default stats polling interval.
	DefaultPollInterval = 2 * time.Second

	// SearchDebounce is how long typing must pause before a search is applied.
	SearchDebounce = 300 * time.Millisecond

	// SettleDelay is how long after a second selection's results render
	// before the centering animation starts.
	SettleDelay = 100 * time.Millisecond

	// AnimDuration is how long the selection centering animation runs.
	AnimDuration = 300 * time.Millisecond

	// AnimFrame is the tick interval between animation frames.
	AnimFrame = 33 * time.Millisecond

	// FlashDuration is how long the landed selection stays emphasized.
	FlashDuration = 500 * time.Millisecond

	// BannerTTL is how long transient footer messages stay visible.
	BannerTTL = 3 * time.Second

	// FetchTimeout is the timeout for every request issued from the UI.
	FetchTimeout = 5 * time.Second
)
