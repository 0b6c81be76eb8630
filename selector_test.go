package reddit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSelector(t *testing.T, checker *fakeChecker, dict Dictionary, reporter ErrorReporter, candidates []string, maxAttempts int) *KeySelector {
	t.Helper()
	resolver := NewExistenceResolver(checker, newMemTable[bool](), 1000, newTestLogger(t))
	return NewKeySelector(resolver, dict, reporter, candidates, maxAttempts, newTestLogger(t))
}

func TestResolveDictionarySuggestion(t *testing.T) {
	ctx := context.Background()
	checker := newFakeChecker()
	checker.exists["cats"] = true
	s := newTestSelector(t, checker, &fakeDictionary{word: "cats"}, nil, []string{"pics"}, 10)

	key, err := s.Resolve(ctx, "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "cats", key)
}

func TestResolveDictionarySkippedWhenSubredditRequested(t *testing.T) {
	ctx := context.Background()
	checker := newFakeChecker()
	checker.exists["cats"] = true
	checker.exists["pics"] = true
	s := newTestSelector(t, checker, &fakeDictionary{word: "cats"}, nil, []string{"aww"}, 10)

	key, err := s.Resolve(ctx, "pics", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "pics", key)
	assert.Equal(t, 0, checker.callsFor("cats"))
}

func TestResolveDictionarySkippedWithoutUser(t *testing.T) {
	ctx := context.Background()
	checker := newFakeChecker()
	checker.exists["cats"] = true
	checker.exists["pics"] = true
	s := newTestSelector(t, checker, &fakeDictionary{word: "cats"}, nil, []string{"pics"}, 10)

	key, err := s.Resolve(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "pics", key)
}

func TestResolveInvalidDictionaryWordFallsBack(t *testing.T) {
	ctx := context.Background()
	checker := newFakeChecker()
	checker.exists["pics"] = true
	s := newTestSelector(t, checker, &fakeDictionary{word: "notasubreddit"}, nil, []string{"pics"}, 10)

	key, err := s.Resolve(ctx, "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "pics", key)
}

func TestResolveDictionaryErrorFallsBack(t *testing.T) {
	ctx := context.Background()
	checker := newFakeChecker()
	checker.exists["pics"] = true
	s := newTestSelector(t, checker, &fakeDictionary{err: errors.New("dictionary down")}, nil, []string{"pics"}, 10)

	key, err := s.Resolve(ctx, "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "pics", key)
}

func TestResolveInvalidRequestFallsBackToRandom(t *testing.T) {
	ctx := context.Background()
	checker := newFakeChecker()
	checker.exists["aww"] = true
	reporter := &fakeReporter{}
	s := newTestSelector(t, checker, nil, reporter, []string{"aww"}, 10)

	key, err := s.Resolve(ctx, "bannedsub", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "aww", key)
}

func TestResolveNoValidKey(t *testing.T) {
	ctx := context.Background()
	checker := newFakeChecker() // nothing exists
	reporter := &fakeReporter{}
	candidates := []string{"a", "b", "c"}
	s := newTestSelector(t, checker, nil, reporter, candidates, 10)

	_, err := s.Resolve(ctx, "", "user-1")

	var nvk *NoValidKeyError
	require.ErrorAs(t, err, &nvk)
	// The attempt budget is capped by the candidate list size.
	assert.Equal(t, 3, nvk.Attempts)
	assert.Equal(t, 3, reporter.count())
}

func TestResolveAttemptBudgetCapped(t *testing.T) {
	ctx := context.Background()
	checker := newFakeChecker()
	candidates := make([]string, 30)
	for i := range candidates {
		candidates[i] = string(rune('a' + i))
	}
	s := newTestSelector(t, checker, nil, nil, candidates, 10)

	_, err := s.Resolve(ctx, "", "")

	var nvk *NoValidKeyError
	require.ErrorAs(t, err, &nvk)
	assert.Equal(t, 10, nvk.Attempts)
	assert.EqualValues(t, 10, checker.total.Load())
}

func TestResolveValidationErrorContinuesLoop(t *testing.T) {
	ctx := context.Background()
	checker := newFakeChecker()
	checker.errs["broken"] = errors.New("upstream 500")
	checker.exists["aww"] = true
	reporter := &fakeReporter{}
	s := newTestSelector(t, checker, nil, reporter, []string{"broken", "aww"}, 10)

	key, err := s.Resolve(ctx, "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "aww", key)
}

func TestNoValidKeyErrorMessage(t *testing.T) {
	err := &NoValidKeyError{Attempts: 7}
	assert.Equal(t, "no valid subreddit found after 7 attempts", err.Error())
}

func TestDefaultSubreddits(t *testing.T) {
	subs := DefaultSubreddits()
	assert.NotEmpty(t, subs)
	for _, s := range subs {
		assert.NotEmpty(t, s)
		assert.NotContains(t, s, " ")
	}
	assert.Contains(t, subs, "pics")
}
