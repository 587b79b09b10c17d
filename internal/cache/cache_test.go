package cache

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestPutGet(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := KeyFor(sha256.Sum256([]byte("const a = 1;")), []byte("opts"), "ts")

	if _, ok, err := c.Get(key, "ts"); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put(key, "ts", `{"type":"Module"}`); err != nil {
		t.Fatalf("Put: %v", err)
	}
	tree, ok, err := c.Get(key, "ts")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if tree != `{"type":"Module"}` {
		t.Errorf("tree = %q", tree)
	}
	if _, ok, _ := c.Get(key, "other-engine"); ok {
		t.Errorf("entry from another engine must miss")
	}
}

func TestKeyForSeparatesInputs(t *testing.T) {
	content := sha256.Sum256([]byte("x"))
	a := KeyFor(content, []byte("ab"), "c")
	b := KeyFor(content, []byte("a"), "bc")
	if a == b {
		t.Fatalf("keys collide across field boundaries")
	}
	if KeyFor(content, []byte("ab"), "c") != a {
		t.Fatalf("KeyFor is not deterministic")
	}
}

func TestDropAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "jsparse")
	c, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := KeyFor(sha256.Sum256([]byte("y")), nil, "ts")
	if err := c.Put(key, "ts", "{}"); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := c.Get(key, "ts"); ok {
		t.Errorf("entry survived DropAll")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir should be recreated: %v", err)
	}
	if err := c.Put(key, "ts", "{}"); err != nil {
		t.Errorf("Put after DropAll: %v", err)
	}
}

func TestNilCache(t *testing.T) {
	var c *Cache
	if err := c.Put(Key{}, "ts", "{}"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(Key{}, "ts"); ok || err != nil {
		t.Fatalf("nil cache: ok=%v err=%v", ok, err)
	}
}

func TestConcurrentPut(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := KeyFor(sha256.Sum256([]byte("z")), nil, "ts")
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Put(key, "ts", "{}"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if tree, ok, err := c.Get(key, "ts"); !ok || err != nil || tree != "{}" {
		t.Fatalf("Get after concurrent Put: %q %v %v", tree, ok, err)
	}
}

func TestDirHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := Dir("jsparse")
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "jsparse") {
		t.Errorf("dir = %q", dir)
	}
}
