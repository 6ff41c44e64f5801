package squirrel

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// TTL sentinel values.
const (
	// TTLDisabled turns caching off entirely: Squirrel calls the producer
	// and never touches storage.
	TTLDisabled = 0

	// TTLSession scopes every entry to the lifetime of this cache instance.
	// Entries never expire while the instance is alive and are removed by
	// Close.
	TTLSession = -1
)

// Cache is an on-disk memoization cache. Given a key and a producer, Squirrel
// returns the previously persisted result if it is still fresh, or invokes
// the producer exactly once and persists its result otherwise.
//
// A Cache is single-threaded by design: every operation is a direct blocking
// call with no internal locking. It assumes cooperative access to the cache
// directory; session mode is the only active concurrency guarantee, in that
// two live session caches never collide on storage locations.
type Cache[T any] struct {
	dir       string
	ttl       int // seconds, or a TTL sentinel
	sessionID string

	storage Storage
	codec   Codec[T]
	logger  *log.Logger
	loc     *locator
	closed  bool
}

// Option configures a Cache.
type Option[T any] func(*Cache[T])

// WithCodec replaces the default GobCodec.
func WithCodec[T any](codec Codec[T]) Option[T] {
	return func(c *Cache[T]) { c.codec = codec }
}

// WithLogger sets the logger used for debug output and cleanup warnings.
func WithLogger[T any](logger *log.Logger) Option[T] {
	return func(c *Cache[T]) { c.logger = logger }
}

// New creates a cache over the local filesystem. It normalizes dir and
// delegates to NewWithStorage; same validation, same errors.
func New[T any](dir string, ttlSeconds int, opts ...Option[T]) (*Cache[T], error) {
	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return nil, &ConfigError{Setting: "directory", Value: dir, Reason: err.Error()}
	}
	return NewWithStorage[T](OSStorage{}, abs, ttlSeconds, opts...)
}

// NewWithStorage creates a cache over an injected Storage. The directory
// must already exist; it is never created here. ttlSeconds is either
// TTLDisabled, TTLSession, or a positive number of seconds an entry stays
// fresh after its last write. Any other negative value is rejected.
func NewWithStorage[T any](storage Storage, dir string, ttlSeconds int, opts ...Option[T]) (*Cache[T], error) {
	if !storage.IsDir(dir) {
		return nil, &ConfigError{
			Setting: "directory",
			Value:   dir,
			Reason:  "does not exist",
		}
	}
	if ttlSeconds < 0 && ttlSeconds != TTLSession {
		return nil, &ConfigError{
			Setting: "ttl",
			Value:   strconv.Itoa(ttlSeconds),
			Reason:  "must be zero, positive, or TTLSession",
		}
	}

	c := &Cache[T]{
		dir:     dir,
		ttl:     ttlSeconds,
		storage: storage,
		codec:   GobCodec[T]{},
		logger:  log.Default(),
	}
	if ttlSeconds == TTLSession {
		c.sessionID = uuid.NewString()
	}

	for _, opt := range opts {
		opt(c)
	}

	c.loc = newLocator(dir, c.sessionID)
	return c, nil
}

// Dir returns the cache directory.
func (c *Cache[T]) Dir() string {
	return c.dir
}

// SessionID returns the session token, or "" outside session mode.
func (c *Cache[T]) SessionID() string {
	return c.sessionID
}

// Squirrel returns the cached value for key, invoking producer at most once
// to fill a miss. With TTLDisabled it calls producer directly and never
// touches storage. On a miss the produced value is saved and then read back
// from disk, keeping the entry the single source of truth and validating the
// encode/decode round trip. A producer error propagates as-is and nothing is
// written.
func (c *Cache[T]) Squirrel(key string, producer func() (T, error)) (T, error) {
	var zero T

	if c.ttl == TTLDisabled {
		return producer()
	}

	path := c.loc.locate(key)
	if !c.hasItem(path) {
		c.logger.Debug("cache miss", "key", key, "path", path)
		v, err := producer()
		if err != nil {
			return zero, err
		}
		if err := c.save(key, path, v); err != nil {
			return zero, err
		}
	} else {
		c.logger.Debug("cache hit", "key", key, "path", path)
	}

	return c.getItem(key, path)
}

// hasItem reports whether the entry at path is still fresh. In session mode
// existence alone implies validity, since this instance owns the entry's
// whole lifetime. Otherwise an entry exactly ttl seconds old is still fresh.
func (c *Cache[T]) hasItem(path string) bool {
	if !c.storage.IsRegularFile(path) {
		return false
	}
	if c.ttl == TTLSession {
		return true
	}

	modTime, err := c.storage.ModTime(path)
	if err != nil {
		return false
	}
	deadline := modTime.Add(time.Duration(c.ttl) * time.Second)
	return !deadline.Before(time.Now())
}

// save encodes v and overwrites the entry at path.
func (c *Cache[T]) save(key, path string, v T) error {
	data, err := c.codec.Encode(v)
	if err != nil {
		return &PersistenceError{Op: OpSave, Key: key, Err: err}
	}

	n, err := c.storage.WriteAll(path, data)
	if err != nil {
		return &PersistenceError{Op: OpSave, Key: key, Err: err}
	}
	if n != len(data) {
		return &PersistenceError{
			Op:  OpSave,
			Key: key,
			Err: fmt.Errorf("short write: %d of %d bytes", n, len(data)),
		}
	}
	return nil
}

// getItem reads and decodes the entry at path. A vanished or unreadable file
// is a reportable fault, not a silent miss.
func (c *Cache[T]) getItem(key, path string) (T, error) {
	var zero T

	data, err := c.storage.ReadAll(path)
	if err != nil {
		return zero, &PersistenceError{Op: OpGet, Key: key, Err: err}
	}

	v, err := c.codec.Decode(data)
	if err != nil {
		return zero, &PersistenceError{Op: OpDecode, Key: key, Err: err}
	}
	return v, nil
}

// Close ends the cache's lifetime. In session mode it deletes every entry
// this instance created; deletions are best-effort and failures are only
// warned about, since a leftover file is a cleanliness problem rather than a
// correctness one. Close is idempotent and a no-op outside session mode.
func (c *Cache[T]) Close() error {
	if c.ttl != TTLSession || c.closed {
		return nil
	}
	c.closed = true

	for _, path := range c.loc.created() {
		if err := c.storage.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("failed to remove session cache entry", "path", path, "err", err)
		}
	}
	c.loc.reset()
	return nil
}
