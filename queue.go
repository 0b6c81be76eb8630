package reddit

import (
	"sync"
	"time"
)

// cacheEntry owns the in-memory state for a single subreddit: the FIFO
// queue of ready items, the set of fingerprints already seen, and the time
// of the last successful refresh. Entries for different subreddits share
// nothing; all methods are safe for concurrent use.
type cacheEntry struct {
	mu            sync.Mutex
	items         []MediaItem
	seen          map[Fingerprint]struct{}
	lastRefreshed time.Time
	loaded        bool
}

func newCacheEntry() *cacheEntry {
	return &cacheEntry{
		seen: make(map[Fingerprint]struct{}),
	}
}

// beginLoad reports whether the caller should attempt the one-time snapshot
// preload for this entry. Only the first caller per entry gets true.
func (e *cacheEntry) beginLoad() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return false
	}
	e.loaded = true
	return true
}

// preload seeds the queue from persisted snapshot state.
func (e *cacheEntry) preload(items []MediaItem, refreshedAt time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, item := range items {
		e.items = append(e.items, item)
		e.seen[FingerprintOf(item)] = struct{}{}
	}
	e.lastRefreshed = refreshedAt
}

// take pops the oldest queued item.
func (e *cacheEntry) take() (MediaItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.items) == 0 {
		return MediaItem{}, false
	}
	item := e.items[0]
	e.items = e.items[1:]
	return item, true
}

func (e *cacheEntry) size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

// needsRefresh reports whether the queue is below the low watermark or the
// last refresh is older than the expiration window.
func (e *cacheEntry) needsRefresh(minQueue int, expiration time.Duration, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items) < minQueue || now.Sub(e.lastRefreshed) > expiration
}

// addAll appends candidates in order, skipping items whose fingerprint was
// already seen and stopping once the queue holds maxPerKey items. The seen
// set keeps fingerprints of consumed items too, so duplicates cannot
// reappear across refresh cycles; once it outgrows 2×maxPerKey it is
// cleared wholesale, trading a small duplicate-reappearance risk for
// bounded memory. Returns the number of items appended.
func (e *cacheEntry) addAll(candidates []MediaItem, maxPerKey int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := 0
	for _, item := range candidates {
		if len(e.items) >= maxPerKey {
			break
		}
		fp := FingerprintOf(item)
		if _, dup := e.seen[fp]; dup {
			continue
		}
		e.items = append(e.items, item)
		e.seen[fp] = struct{}{}
		added++
	}

	if len(e.seen) > 2*maxPerKey {
		e.seen = make(map[Fingerprint]struct{})
	}

	return added
}

// markRefreshed stamps the last successful refresh time.
func (e *cacheEntry) markRefreshed(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastRefreshed = now
}

// snapshotState returns a copy of the queue and the refresh timestamp for
// persistence off the critical path.
func (e *cacheEntry) snapshotState() ([]MediaItem, time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	items := make([]MediaItem, len(e.items))
	copy(items, e.items)
	return items, e.lastRefreshed
}
