package reddit

import (
	"context"
	_ "embed"
	"math/rand/v2"
	"strings"
)

//go:embed subreddits.txt
var defaultSubredditList string

// DefaultSubreddits returns the built-in candidate list used when no key is
// requested and the dictionary yields nothing usable.
func DefaultSubreddits() []string {
	lines := strings.Split(defaultSubredditList, "\n")
	subs := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			subs = append(subs, s)
		}
	}
	return subs
}

// KeySelector picks the subreddit to serve when the caller names none, or
// names one that turns out to be invalid.
type KeySelector struct {
	resolver    *ExistenceResolver
	dictionary  Dictionary
	reporter    ErrorReporter
	candidates  []string
	maxAttempts int
	logger      Logger
}

// NewKeySelector builds a selector. dictionary may be nil; reporter may be
// nil, in which case failures are only logged.
func NewKeySelector(resolver *ExistenceResolver, dictionary Dictionary, reporter ErrorReporter, candidates []string, maxAttempts int, logger Logger) *KeySelector {
	if reporter == nil {
		reporter = noopReporter{}
	}
	if len(candidates) == 0 {
		candidates = DefaultSubreddits()
	}
	return &KeySelector{
		resolver:    resolver,
		dictionary:  dictionary,
		reporter:    reporter,
		candidates:  candidates,
		maxAttempts: maxAttempts,
		logger:      logger.Named("selector"),
	}
}

// Resolve applies the fallback policy: a validated dictionary suggestion
// when no subreddit is requested and user context is present, then the
// requested subreddit if it validates, then random draws from the candidate
// list. Returns NoValidKeyError when every attempt fails.
func (s *KeySelector) Resolve(ctx context.Context, requested, userID string) (string, error) {
	if requested == "" && userID != "" && s.dictionary != nil {
		if word, err := s.dictionary.SuggestKey(ctx, userID, SourceName); err != nil {
			s.logger.Warn("dictionary suggestion failed", Error(err))
		} else if word != "" {
			if ok, err := s.resolver.Exists(ctx, word); err == nil && ok {
				s.logger.Info("using dictionary subreddit", String("subreddit", word))
				return word, nil
			}
			s.logger.Debug("dictionary subreddit invalid", String("subreddit", word))
		}
	}

	if requested != "" {
		if ok, err := s.resolver.Exists(ctx, requested); err == nil && ok {
			return requested, nil
		}
	}

	return s.randomCandidate(ctx, userID)
}

// randomCandidate draws candidates in random order, validating each, until
// one passes or the attempt budget runs out. Individual failures are
// reported but never abort the loop.
func (s *KeySelector) randomCandidate(ctx context.Context, userID string) (string, error) {
	maxAttempts := min(s.maxAttempts, len(s.candidates))
	attempts := 0

	for _, i := range rand.Perm(len(s.candidates)) {
		if attempts >= maxAttempts {
			break
		}
		attempts++
		candidate := s.candidates[i]

		ok, err := s.resolver.Exists(ctx, candidate)
		if err != nil {
			s.logger.Warn("subreddit validation error",
				String("subreddit", candidate),
				Error(err))
			s.reporter.Report(SourceName, "subreddit validation",
				"validation error for "+candidate+": "+err.Error(), userID)
			continue
		}
		if ok {
			return candidate, nil
		}
		s.reporter.Report(SourceName, "subreddit validation",
			"subreddit does not exist: "+candidate, userID)
	}

	return "", &NoValidKeyError{Attempts: attempts}
}
