// Package model - ForkPoint defines the intermediate records handed from the catalog scrape to the vulnerability scan.
package model

// ForkPoint is the highest upstream version a vendored component was forked from.
// Only the maximum fork point per component is kept.
type ForkPoint struct {
	Component string `json:"component"` // e.g., "pkg:composer/symfony/console"
	ForkPoint string `json:"forkPoint"` // e.g., "5.3.0"
}

// WorkItem is a single (component, fork point) query handed to exactly one worker
type WorkItem struct {
	Component string
	ForkPoint string
}

// WorkItem converts the fork point into a queue entry
func (f ForkPoint) WorkItem() WorkItem {
	return WorkItem{Component: f.Component, ForkPoint: f.ForkPoint}
}

// String returns a human-readable representation
func (w WorkItem) String() string {
	return w.Component + "@" + w.ForkPoint
}
