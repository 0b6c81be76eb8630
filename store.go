package reddit

import (
	"context"
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	jsoniter "github.com/json-iterator/go"
)

// jsoniter is considerably faster than the stdlib; a private instance keeps
// callers relying on jsoniter.ConfigDefault elsewhere unaffected.
var jsonFast = jsoniter.ConfigFastest

// ErrNotFound is returned when a key is not present in the store.
var ErrNotFound = errors.New("key not found in store")

// KeyValueTable is a persisted string-keyed table of values of type T.
// It is the boundary the cache uses for durable state: snapshots and the
// subreddit-existence table both live behind it.
type KeyValueTable[T any] interface {
	// Get returns the stored value, or ErrNotFound.
	Get(ctx context.Context, key string) (T, error)

	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value T) error

	// Count returns the number of keys in the table.
	Count(ctx context.Context) (int, error)

	// Clear removes every key in the table.
	Clear(ctx context.Context) error
}

// StoreConfig configures the Badger-backed store. The defaults favor write
// throughput over durability: snapshot writes are a best-effort mirror of
// in-memory state, so losing the tail on a crash is acceptable.
type StoreConfig struct {
	Dir        string
	SyncWrites bool

	// InMemory runs Badger without touching disk. Intended for tests.
	InMemory bool

	// Logger receives Badger's internal logging (nil silences it).
	Logger badger.Logger
}

// DefaultStoreConfig returns a store configuration rooted at dir.
func DefaultStoreConfig(dir string) StoreConfig {
	return StoreConfig{
		Dir:        dir,
		SyncWrites: false,
	}
}

// Store owns the Badger database shared by all tables.
type Store struct {
	db        *badger.DB
	closeOnce sync.Once
}

// OpenStore opens the Badger database. Badger's open is blocking, so it
// runs in a goroutine and ctx can abandon the wait.
func OpenStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	// Badger rejects directory paths in disk-less mode.
	dir := cfg.Dir
	if cfg.InMemory {
		dir = ""
	}
	opts := badger.
		DefaultOptions(dir).
		WithSyncWrites(cfg.SyncWrites).
		WithInMemory(cfg.InMemory).
		WithCompression(options.None).
		WithDetectConflicts(false).
		WithLogger(cfg.Logger)

	type openResult struct {
		db  *badger.DB
		err error
	}
	resCh := make(chan openResult, 1)
	go func() {
		db, err := badger.Open(opts)
		resCh <- openResult{db: db, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-resCh:
		if r.err != nil {
			return nil, r.err
		}
		return &Store{db: r.db}, nil
	}
}

// Close shuts the database down. Safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
	})
	return err
}

// Table is a Badger-backed KeyValueTable. Tables carve namespaces out of
// the shared database with a key prefix; values are jsoniter-encoded.
type Table[T any] struct {
	db     *badger.DB
	prefix []byte
}

// NewTable creates a table named name inside the store. Two tables with
// distinct names never see each other's keys.
func NewTable[T any](s *Store, name string) *Table[T] {
	return &Table[T]{
		db:     s.db,
		prefix: []byte(name + "/"),
	}
}

var _ KeyValueTable[int] = (*Table[int])(nil)

func (t *Table[T]) keyFor(key string) []byte {
	return append(append(make([]byte, 0, len(t.prefix)+len(key)), t.prefix...), key...)
}

func (t *Table[T]) Get(ctx context.Context, key string) (T, error) {
	var value T
	if err := ctx.Err(); err != nil {
		return value, err
	}

	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(t.keyFor(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(v []byte) error {
			return jsonFast.Unmarshal(v, &value)
		})
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

func (t *Table[T]) Put(ctx context.Context, key string, value T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := jsonFast.Marshal(value)
	if err != nil {
		return err
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(t.keyFor(key), data)
	})
}

func (t *Table[T]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(t.keyFor(key))
	})
}

func (t *Table[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = t.prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func (t *Table[T]) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.db.DropPrefix(t.prefix)
}
