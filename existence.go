package reddit

import (
	"context"
	"errors"
)

// ExistenceResolver answers "does this subreddit exist upstream?", memoizing
// answers in a persisted table so repeat lookups cost nothing.
//
// The table is capped: when it outgrows maxEntries it is cleared wholesale
// rather than evicted entry by entry. A burst of distinct never-seen
// subreddits right after a clear will all miss again; that is the accepted
// cost of keeping the guard simple. Concurrent lookups for the same
// uncached subreddit may both hit the upstream checker — the check is
// idempotent and the race is rare at this call rate.
type ExistenceResolver struct {
	checker    ExistenceChecker
	table      KeyValueTable[bool]
	maxEntries int
	logger     Logger
}

// NewExistenceResolver builds a resolver over the given checker and table.
func NewExistenceResolver(checker ExistenceChecker, table KeyValueTable[bool], maxEntries int, logger Logger) *ExistenceResolver {
	return &ExistenceResolver{
		checker:    checker,
		table:      table,
		maxEntries: maxEntries,
		logger:     logger.Named("existence"),
	}
}

// Exists returns whether the subreddit is valid upstream. Table failures
// degrade to a fresh upstream check; only checker failures propagate.
func (r *ExistenceResolver) Exists(ctx context.Context, subreddit string) (bool, error) {
	cached, err := r.table.Get(ctx, subreddit)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrNotFound) {
		r.logger.Warn("existence table read failed",
			String("subreddit", subreddit),
			Error(err))
	}

	exists, err := r.checker.CheckExists(ctx, subreddit)
	if err != nil {
		return false, err
	}

	if err := r.table.Put(ctx, subreddit, exists); err != nil {
		r.logger.Warn("failed to persist existence result",
			String("subreddit", subreddit),
			Error(err))
		return exists, nil
	}

	if n, err := r.table.Count(ctx); err == nil && n > r.maxEntries {
		r.logger.Warn("existence table exceeded limit, clearing",
			Int("entries", n),
			Int("limit", r.maxEntries))
		if err := r.table.Clear(ctx); err != nil {
			r.logger.Warn("failed to clear existence table", Error(err))
		}
	}

	return exists, nil
}
