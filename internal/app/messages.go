package app

import (
	"github.com/abelbrown/facetline/internal/store"
)

// Messages for Bubble Tea

// RecordsLoadedMsg is sent when a catalog query completes
type RecordsLoadedMsg struct {
	Records []store.Record
	Err     error
}

// scrollTickMsg drives the results scroll animation between frames
type scrollTickMsg struct{}
