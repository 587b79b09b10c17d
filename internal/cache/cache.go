// Package cache stores encoded syntax trees on disk, keyed by the content
// hash of the source and the parse options that produced them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Entry format changes
const schemaVersion uint16 = 1

// Key addresses one cached tree.
type Key [32]byte

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// KeyFor derives a key from the source content hash, the canonical options
// bytes and the engine identity.
func KeyFor(content [32]byte, opts []byte, engine string) Key {
	h := sha256.New()
	h.Write(content[:])
	h.Write([]byte{0})
	h.Write(opts)
	h.Write([]byte{0})
	h.Write([]byte(engine))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Entry is the on-disk payload.
type Entry struct {
	Schema  uint16
	Engine  string
	Tree    string
	Created int64
}

// Cache is a directory of msgpack entries. Safe for concurrent use; a nil
// *Cache is a disabled cache.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Dir returns the default cache location for app, honouring XDG_CACHE_HOME.
func Dir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// Open creates dir if needed and returns a cache rooted there.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// OpenDefault opens the cache at Dir(app).
func OpenDefault(app string) (*Cache, error) {
	dir, err := Dir(app)
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

func (c *Cache) pathFor(key Key) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "trees", hexKey[:2], hexKey+".mp")
}

// Put writes a tree; the file is replaced atomically.
func (c *Cache) Put(key Key, engine, tree string) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	entry := Entry{
		Schema:  schemaVersion,
		Engine:  engine,
		Tree:    tree,
		Created: time.Now().Unix(),
	}
	if err = msgpack.NewEncoder(f).Encode(&entry); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get returns the cached tree for key. Entries written by another schema or
// engine are treated as misses.
func (c *Cache) Get(key Key, engine string) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	defer f.Close()

	var entry Entry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return "", false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if entry.Schema != schemaVersion || entry.Engine != engine {
		return "", false, nil
	}
	return entry.Tree, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
