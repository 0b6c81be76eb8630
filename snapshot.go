package reddit

import (
	"time"
)

// CachedItem is a serializable copy of a queued item together with its
// capture time, used to age items out when a snapshot is reloaded.
type CachedItem struct {
	Item     MediaItem `json:"item"`
	CachedAt int64     `json:"cached_at"`
}

// Snapshot is a persisted point-in-time copy of one subreddit's queue plus
// its last-refresh timestamp. Snapshots are a write-behind mirror: the
// in-memory queue stays authoritative, and a snapshot is only read to
// pre-warm an empty queue.
type Snapshot struct {
	Items       []CachedItem `json:"items"`
	RefreshedAt int64        `json:"refreshed_at"`
}

// newSnapshot captures the given queue contents at now.
func newSnapshot(items []MediaItem, refreshedAt time.Time, now time.Time) Snapshot {
	cached := make([]CachedItem, len(items))
	nowMs := now.UnixMilli()
	for i, item := range items {
		cached[i] = CachedItem{Item: item, CachedAt: nowMs}
	}
	return Snapshot{
		Items:       cached,
		RefreshedAt: refreshedAt.UnixMilli(),
	}
}

// live returns the snapshot items still inside the expiration window at
// now. Aged-out entries are dropped silently.
func (s Snapshot) live(now time.Time, expiration time.Duration) []MediaItem {
	cutoff := now.Add(-expiration).UnixMilli()
	items := make([]MediaItem, 0, len(s.Items))
	for _, cached := range s.Items {
		if cached.CachedAt >= cutoff {
			items = append(items, cached.Item)
		}
	}
	return items
}

// refreshedAtTime converts the stored millisecond timestamp back to a
// time.Time; the zero value maps to the zero time so a missing timestamp
// reads as "never refreshed".
func (s Snapshot) refreshedAtTime() time.Time {
	if s.RefreshedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.RefreshedAt)
}
