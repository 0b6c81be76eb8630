package reddit

import (
	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a dedup signature derived from an item's content fields.
// It is a probabilistic guard against re-queueing items already served; a
// hash collision costs one skipped item, which is tolerated.
type Fingerprint uint64

// FingerprintOf hashes the (URL, title) pair of an item. Other fields do
// not participate, matching the dedup granularity of the upstream feed.
func FingerprintOf(item MediaItem) Fingerprint {
	d := xxhash.New()
	_, _ = d.WriteString(item.URL)
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(item.Title)
	return Fingerprint(d.Sum64())
}
