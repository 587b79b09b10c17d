package source

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"

	"fortio.org/safecast"
)

// Registry owns every registered source and hands out disjoint global position
// ranges. Registrations are append-only: registering an identity again creates
// a new FileID and never rebinds an older one. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	files []*File
	index map[Identity]FileID // identity -> latest registration

	// next is the first unallocated global position. Position 0 is never
	// handed out so a zero Base always means "not registered".
	next atomic.Uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{
		files: make([]*File, 0),
		index: make(map[Identity]FileID),
	}
	r.next.Store(1)
	return r
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry()
}

// Register copies text, builds its line index and allocates a global position
// range for it. It always succeeds.
func (r *Registry) Register(id Identity, text string) Handle {
	return r.register(id, []byte(text), FileVirtual)
}

func (r *Registry) register(id Identity, content []byte, flags FileFlags) Handle {
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		panic(fmt.Errorf("source %s too large: %w", id, err))
	}

	// Reserve [base, base+size] before taking the lock so that concurrent
	// registrations never wait on each other for positions.
	end := r.next.Add(uint64(size) + 1)
	base := end - uint64(size) - 1

	f := &File{
		Identity: id,
		Content:  content,
		LineIdx:  buildLineIndex(content),
		Hash:     sha256.Sum256(content),
		Flags:    flags,
		Base:     base,
		Size:     size,
	}

	r.mu.Lock()
	n, err := safecast.Conv[uint32](len(r.files))
	if err != nil {
		r.mu.Unlock()
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	f.ID = FileID(n)
	r.files = append(r.files, f)
	r.index[id] = f.ID
	r.mu.Unlock()

	return Handle{ID: f.ID, Identity: id, Base: base, Size: size}
}

// Get returns the registration for id.
func (r *Registry) Get(id FileID) *File {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.files) {
		return nil
	}
	return r.files[id]
}

// Latest returns the most recent registration of an identity.
func (r *Registry) Latest(id Identity) (FileID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fid, ok := r.index[id]
	return fid, ok
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}

// Release drops the text of a registration. Its position range and line
// index stay, so spans still resolve to line and column; source snippets
// are no longer available.
func (r *Registry) Release(id FileID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(id) >= len(r.files) {
		return
	}
	old := r.files[id]
	released := *old
	released.Content = nil
	released.Flags |= FileReleased
	r.files[id] = &released
}

// Resolve converts a span into line and column positions.
func (r *Registry) Resolve(span Span) (start, end LineCol) {
	f := r.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Resolve(span)
}

// Global maps a span onto process-wide positions.
func (r *Registry) Global(span Span) (start, end uint64) {
	f := r.Get(span.File)
	if f == nil {
		return 0, 0
	}
	return f.Base + uint64(span.Start), f.Base + uint64(span.End)
}
