package reddit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Provider serves random media items from warm per-subreddit queues,
// refilling them concurrently from the upstream fetcher when they run low
// or stale. All public methods are goroutine-safe.
type Provider struct {
	cfg        Config
	logger     Logger
	fetcher    Fetcher
	selector   *KeySelector
	resolver   *ExistenceResolver
	reporter   ErrorReporter
	snapshots  KeyValueTable[Snapshot]
	pool       *workerPool
	sortOrders []SortOrder

	// dictionary and candidates are consulted only during construction,
	// when the key selector is built.
	dictionary Dictionary
	candidates []string

	// sfg collapses concurrent refreshes for the same subreddit into one;
	// latecomers wait on the in-flight refill instead of starting another.
	sfg     singleflight.Group
	entries sync.Map // subreddit -> *cacheEntry
	closed  atomic.Bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(p *Provider) {
		cfg.SetDefaults()
		p.cfg = cfg
	}
}

// WithDictionary enables dictionary-driven subreddit suggestions.
func WithDictionary(d Dictionary) Option {
	return func(p *Provider) {
		if d != nil {
			p.dictionary = d
		}
	}
}

// WithErrorReporter forwards background-path failures to r.
func WithErrorReporter(r ErrorReporter) Option {
	return func(p *Provider) {
		if r != nil {
			p.reporter = r
		}
	}
}

// WithCandidates replaces the embedded fallback subreddit list.
func WithCandidates(candidates []string) Option {
	return func(p *Provider) {
		if len(candidates) > 0 {
			p.candidates = candidates
		}
	}
}

// WithSortOrders replaces the listing variants fetched during a refresh.
func WithSortOrders(orders []SortOrder) Option {
	return func(p *Provider) {
		if len(orders) > 0 {
			p.sortOrders = orders
		}
	}
}

// NewProvider constructs a provider over the given collaborators. snapshots
// and existence are the durable tables (see OpenStore/NewTable for the
// Badger-backed implementation).
func NewProvider(
	fetcher Fetcher,
	checker ExistenceChecker,
	snapshots KeyValueTable[Snapshot],
	existence KeyValueTable[bool],
	logger Logger,
	opts ...Option,
) (*Provider, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}
	if checker == nil {
		return nil, errors.New("existence checker cannot be nil")
	}
	if snapshots == nil || existence == nil {
		return nil, errors.New("persistent tables cannot be nil")
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	p := &Provider{
		cfg:        DefaultConfig(),
		logger:     logger.Named("reddit"),
		fetcher:    fetcher,
		reporter:   noopReporter{},
		snapshots:  snapshots,
		sortOrders: defaultSortOrders,
	}
	for _, o := range opts {
		o(p)
	}

	p.resolver = NewExistenceResolver(checker, existence, p.cfg.MaxExistenceEntries, p.logger)
	p.selector = NewKeySelector(p.resolver, p.dictionary, p.reporter, p.candidates, p.cfg.MaxKeyAttempts, p.logger)
	p.pool = newWorkerPool(p.cfg.Workers, p.logger)

	p.logger.Info("provider initialised",
		Int("maxPerSubreddit", p.cfg.MaxPerKey),
		Int("minQueueSize", p.cfg.MinQueueSize),
		Duration("cacheExpiration", p.cfg.CacheExpiration),
		Int("workers", p.cfg.Workers))

	return p, nil
}

// GetRandomItem returns one item for the given subreddit, resolving a
// fallback subreddit when none is requested or the requested one is
// invalid. The queue is refilled first if low or stale. A snapshot of the
// post-pop queue state is written off the request path.
//
// Errors surfaced to the caller: NoValidKeyError when no subreddit could be
// resolved, ErrExhausted when the resolved subreddit has no supply even
// after a refresh attempt.
func (p *Provider) GetRandomItem(ctx context.Context, subreddit, userID string) (MediaItem, error) {
	key, err := p.selector.Resolve(ctx, subreddit, userID)
	if err != nil {
		return MediaItem{}, err
	}

	entry := p.entry(key)
	p.ensureReady(ctx, key, entry)

	item, ok := entry.take()
	if !ok {
		p.logger.Warn("no items available after refresh", String("subreddit", key))
		p.reporter.Report(SourceName, "empty queue",
			"no items available for subreddit: "+key, userID)
		return MediaItem{}, fmt.Errorf("subreddit %s: %w", key, ErrExhausted)
	}

	p.scheduleSnapshot(key, entry)
	return item, nil
}

// entry returns the cache entry for key, creating it on first use.
func (p *Provider) entry(key string) *cacheEntry {
	if v, ok := p.entries.Load(key); ok {
		return v.(*cacheEntry)
	}
	v, _ := p.entries.LoadOrStore(key, newCacheEntry())
	return v.(*cacheEntry)
}

// ensureReady guarantees the entry has been given its one-time snapshot
// preload and is neither below the low watermark nor stale — refilling it
// synchronously if needed. Failures leave the queue as it was; take then
// reports the shortage.
func (p *Provider) ensureReady(ctx context.Context, key string, entry *cacheEntry) {
	if entry.beginLoad() {
		p.loadSnapshot(ctx, key, entry)
	}

	if !entry.needsRefresh(p.cfg.MinQueueSize, p.cfg.CacheExpiration, time.Now()) {
		return
	}

	p.sfg.Do(key, func() (interface{}, error) {
		p.refresh(ctx, key, entry)
		return nil, nil
	})
}

// loadSnapshot pre-warms an entry from the persistent store, dropping items
// that have aged past the expiration window.
func (p *Provider) loadSnapshot(ctx context.Context, key string, entry *cacheEntry) {
	snap, err := p.snapshots.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			p.logger.Warn("failed to load snapshot",
				String("subreddit", key),
				Error(err))
		}
		return
	}

	items := snap.live(time.Now(), p.cfg.CacheExpiration)
	entry.preload(items, snap.refreshedAtTime())
	p.logger.Debug("preloaded queue from snapshot",
		String("subreddit", key),
		Int("items", len(items)))
}

// refresh repopulates one subreddit's queue: fetch up to MaxConcurrentFetches
// sort orders concurrently on the worker pool, wait at most RequestTimeout,
// then shuffle and dedup-append whatever arrived. An empty harvest leaves
// the queue untouched — stale-but-present beats empty. No failure escapes
// to the caller.
func (p *Provider) refresh(ctx context.Context, key string, entry *cacheEntry) {
	orders := p.sortOrders
	if len(orders) > p.cfg.MaxConcurrentFetches {
		orders = orders[:p.cfg.MaxConcurrentFetches]
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	// The channel is buffered to the fetch count so a fetch that outlives
	// the timeout parks its result here and is simply discarded.
	results := make(chan []MediaItem, len(orders))
	launched := 0
	for _, order := range orders {
		order := order
		if p.pool.Submit(func(context.Context) {
			results <- p.fetchSafely(fetchCtx, key, order)
		}) {
			launched++
		} else {
			p.logger.Debug("worker pool rejected fetch",
				String("subreddit", key),
				String("sort", order.Name))
		}
	}

	var candidates []MediaItem
collect:
	for i := 0; i < launched; i++ {
		select {
		case items := <-results:
			candidates = append(candidates, items...)
		case <-fetchCtx.Done():
			p.logger.Warn("timed out waiting for subreddit fetches",
				String("subreddit", key),
				Int("pending", launched-i))
			break collect
		}
	}

	if len(candidates) == 0 {
		p.logger.Warn("no items fetched for subreddit", String("subreddit", key))
		return
	}

	// Shuffle so FIFO consumption doesn't cluster by sort order.
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	added := entry.addAll(candidates, p.cfg.MaxPerKey)
	entry.markRefreshed(time.Now())
	p.logger.Debug("refreshed subreddit queue",
		String("subreddit", key),
		Int("added", added),
		Int("queued", entry.size()))

	p.scheduleSnapshot(key, entry)
}

// fetchSafely runs one sort-order fetch, converting any failure — error or
// panic — into an empty result so one bad variant never aborts the others.
func (p *Provider) fetchSafely(ctx context.Context, key string, order SortOrder) (items []MediaItem) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic fetching subreddit",
				String("subreddit", key),
				String("sort", order.Name),
				Any("panic", r))
			items = nil
		}
	}()

	fetched, err := p.fetcher.Fetch(ctx, key, order)
	if err != nil {
		p.logger.Error("failed to fetch subreddit posts",
			String("subreddit", key),
			String("sort", order.Name),
			Error(err))
		return nil
	}
	return fetched
}

// scheduleSnapshot captures the entry's current state and queues the write
// on the worker pool. The request path never waits on it; a failed write
// costs durability, not correctness.
func (p *Provider) scheduleSnapshot(key string, entry *cacheEntry) {
	items, refreshedAt := entry.snapshotState()
	snap := newSnapshot(items, refreshedAt, time.Now())

	if !p.pool.Submit(func(ctx context.Context) {
		if err := p.snapshots.Put(ctx, key, snap); err != nil {
			p.logger.Warn("failed to save snapshot",
				String("subreddit", key),
				Error(err))
		}
	}) {
		p.logger.Debug("snapshot write skipped, pool stopped", String("subreddit", key))
	}
}

// CacheStats reports cache occupancy for monitoring.
type CacheStats struct {
	CachedSubreddits  int `json:"cached_subreddits"`
	QueuedItems       int `json:"queued_items"`
	PersistentEntries int `json:"persistent_entries"`
}

// CacheStats returns current in-memory and persistent cache sizes.
func (p *Provider) CacheStats(ctx context.Context) CacheStats {
	var stats CacheStats
	p.entries.Range(func(_, v interface{}) bool {
		stats.CachedSubreddits++
		stats.QueuedItems += v.(*cacheEntry).size()
		return true
	})

	if n, err := p.snapshots.Count(ctx); err == nil {
		stats.PersistentEntries = n
	} else {
		p.logger.Warn("failed to count persistent entries", Error(err))
	}
	return stats
}

// Cleanup flushes every queue to the persistent store, clears the in-memory
// maps and stops the worker pool. Safe to call more than once; requests
// racing a shutdown may fail, which is accepted over serializing on a
// global lock.
func (p *Provider) Cleanup(ctx context.Context) {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.logger.Info("cleaning up provider resources")

	// Writes are independent per subreddit; fan out.
	g, gctx := errgroup.WithContext(ctx)
	p.entries.Range(func(k, v interface{}) bool {
		key := k.(string)
		entry := v.(*cacheEntry)
		g.Go(func() error {
			items, refreshedAt := entry.snapshotState()
			if err := p.snapshots.Put(gctx, key, newSnapshot(items, refreshedAt, time.Now())); err != nil {
				p.logger.Warn("failed to flush queue on shutdown",
					String("subreddit", key),
					Error(err))
			}
			return nil
		})
		return true
	})
	_ = g.Wait()

	p.entries.Range(func(k, _ interface{}) bool {
		p.entries.Delete(k)
		return true
	})

	p.pool.Stop(p.cfg.ShutdownGrace, p.cfg.ShutdownKill)
	p.logger.Info("provider cleanup completed")
}
