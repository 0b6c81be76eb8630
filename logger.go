// Package reddit implements a warm, deduplicated prefetch-queue cache for
// media items pulled from a rate-limited, paginated upstream source.
//
// Consumer requests are served from per-subreddit in-memory queues in
// constant time; refills run concurrently in the background across several
// sort orders and are deduplicated against previously seen items. Queue
// state is mirrored asynchronously to a persistent store so the cache comes
// up warm after a restart.
package reddit

import (
	"time"
)

// Logger is the structured logging interface used throughout the package.
// It keeps the cache decoupled from any particular logging library; the
// default production implementation is ZapAdapter.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Named returns a sub-logger with the given name appended, for
	// per-component log scoping.
	Named(name string) Logger
}

// fieldType tags a Field so adapters can serialize it without reflection.
type fieldType int

const (
	fieldString fieldType = iota
	fieldInt
	fieldInt64
	fieldDuration
	fieldError
	fieldAny
)

// Field is a typed key-value pair attached to a log message.
type Field struct {
	key string
	val interface{}
	typ fieldType
}

// String creates a string field.
func String(key, val string) Field {
	return Field{key: key, val: val, typ: fieldString}
}

// Int creates an integer field.
func Int(key string, val int) Field {
	return Field{key: key, val: val, typ: fieldInt}
}

// Int64 creates a 64-bit integer field.
func Int64(key string, val int64) Field {
	return Field{key: key, val: val, typ: fieldInt64}
}

// Duration creates a time.Duration field.
func Duration(key string, val time.Duration) Field {
	return Field{key: key, val: val, typ: fieldDuration}
}

// Error creates an error field with the key "error".
func Error(err error) Field {
	return Field{key: "error", val: err, typ: fieldError}
}

// Any creates a field holding an arbitrary value. Prefer the typed
// constructors where possible.
func Any(key string, val interface{}) Field {
	return Field{key: key, val: val, typ: fieldAny}
}

// NoOpLogger discards all log messages. Useful for tests and benchmarks.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, fields ...Field) {}
func (NoOpLogger) Info(msg string, fields ...Field)  {}
func (NoOpLogger) Warn(msg string, fields ...Field)  {}
func (NoOpLogger) Error(msg string, fields ...Field) {}
func (n NoOpLogger) Named(name string) Logger        { return n }

// NewNoOpLogger creates a logger that discards everything.
func NewNoOpLogger() Logger {
	return NoOpLogger{}
}
