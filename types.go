package reddit

import (
	"context"
	"errors"
	"fmt"
)

// SourceName identifies this provider in registries and error reports.
const SourceName = "reddit"

// MediaItem is an immutable media reference fetched from the upstream
// source. Items have no identity beyond their field values.
type MediaItem struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
}

// SortOrder is an upstream listing variant fetched independently during a
// refresh. Window is an optional time-range hint ("week" for top posts in
// the upstream API) that fetch implementations may fold into their query.
type SortOrder struct {
	Name   string
	Window string
}

// defaultSortOrders mirrors the upstream listing variants a refresh cycle
// draws from. Order is irrelevant; the list is truncated to the configured
// fetch concurrency.
var defaultSortOrders = []SortOrder{
	{Name: "hot"},
	{Name: "top", Window: "week"},
	{Name: "new"},
}

// Fetcher turns a (subreddit, sort order) pair into media items. Transport,
// authentication and response parsing live behind this boundary.
//
// Implementations should honor ctx cancellation; the orchestrator treats
// any returned error as an empty result.
type Fetcher interface {
	Fetch(ctx context.Context, subreddit string, order SortOrder) ([]MediaItem, error)
}

// ExistenceChecker answers whether a subreddit is valid upstream.
type ExistenceChecker interface {
	CheckExists(ctx context.Context, subreddit string) (bool, error)
}

// Dictionary suggests a subreddit from user context. An empty string means
// no suggestion is available.
type Dictionary interface {
	SuggestKey(ctx context.Context, userID, source string) (string, error)
}

// ErrorReporter receives background-path failures. Calls are fire-and-forget
// and must never block or panic.
type ErrorReporter interface {
	Report(source, phase, message, userID string)
}

// noopReporter is the default when no ErrorReporter is configured.
type noopReporter struct{}

func (noopReporter) Report(source, phase, message, userID string) {}

// ErrExhausted is returned when a subreddit's queue is empty even after a
// refresh attempt. The subreddit itself was valid; supply is empty.
var ErrExhausted = errors.New("no media items available")

// NoValidKeyError is returned when the key selector runs out of attempts
// without finding a valid subreddit.
type NoValidKeyError struct {
	Attempts int
}

func (e *NoValidKeyError) Error() string {
	return fmt.Sprintf("no valid subreddit found after %d attempts", e.Attempts)
}
