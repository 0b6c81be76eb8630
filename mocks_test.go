package reddit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"
)

// newTestLogger creates a zaptest-backed logger. Tests that leave
// background work running after they return should use NewNoOpLogger
// instead, so stray goroutines cannot log into a finished test.
func newTestLogger(t *testing.T) Logger {
	adapter, _ := NewZapAdapter(zaptest.NewLogger(t))
	return adapter
}

// memTable is an in-memory KeyValueTable for tests.
type memTable[T any] struct {
	mu     sync.Mutex
	m      map[string]T
	getErr error
	putErr error
}

func newMemTable[T any]() *memTable[T] {
	return &memTable[T]{m: make(map[string]T)}
}

func (t *memTable[T]) Get(ctx context.Context, key string) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	if t.getErr != nil {
		return zero, t.getErr
	}
	v, ok := t.m[key]
	if !ok {
		return zero, ErrNotFound
	}
	return v, nil
}

func (t *memTable[T]) Put(ctx context.Context, key string, value T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.putErr != nil {
		return t.putErr
	}
	t.m[key] = value
	return nil
}

func (t *memTable[T]) Count(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m), nil
}

func (t *memTable[T]) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m = make(map[string]T)
	return nil
}

func (t *memTable[T]) get(key string) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.m[key]
	return v, ok
}

// fakeChecker implements ExistenceChecker with canned answers.
type fakeChecker struct {
	mu     sync.Mutex
	exists map[string]bool
	errs   map[string]error
	calls  map[string]int
	total  atomic.Int32
}

func newFakeChecker() *fakeChecker {
	return &fakeChecker{
		exists: make(map[string]bool),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (c *fakeChecker) CheckExists(ctx context.Context, subreddit string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[subreddit]++
	c.total.Add(1)
	if err := c.errs[subreddit]; err != nil {
		return false, err
	}
	return c.exists[subreddit], nil
}

func (c *fakeChecker) callsFor(subreddit string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[subreddit]
}

// fakeFetcher implements Fetcher via a pluggable function.
type fakeFetcher struct {
	fn    func(ctx context.Context, subreddit string, order SortOrder) ([]MediaItem, error)
	calls atomic.Int32

	mu         sync.Mutex
	subreddits []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, subreddit string, order SortOrder) ([]MediaItem, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.subreddits = append(f.subreddits, subreddit)
	f.mu.Unlock()
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(ctx, subreddit, order)
}

func (f *fakeFetcher) fetchedSubreddits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.subreddits))
	copy(out, f.subreddits)
	return out
}

// fakeDictionary returns a fixed suggestion.
type fakeDictionary struct {
	word string
	err  error
}

func (d *fakeDictionary) SuggestKey(ctx context.Context, userID, source string) (string, error) {
	return d.word, d.err
}

type reportCall struct {
	source, phase, message, userID string
}

// fakeReporter records reported failures.
type fakeReporter struct {
	mu      sync.Mutex
	reports []reportCall
}

func (r *fakeReporter) Report(source, phase, message, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, reportCall{source, phase, message, userID})
}

func (r *fakeReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}
