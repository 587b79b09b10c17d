package source

type (
	// FileID uniquely identifies a registration within a Registry.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the text was handed over in memory rather than read from disk.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileReleased marks a registration whose text was dropped after delivery.
	FileReleased
)

// File captures metadata and content for a single registered source.
type File struct {
	ID       FileID
	Identity Identity
	Content  []byte
	LineIdx  []uint32
	Hash     [32]byte
	Flags    FileFlags
	// Base is the first global position owned by this file. The file owns
	// [Base, Base+Size]; the extra slot keeps empty files disjoint.
	Base uint64
	Size uint32
}

// Path returns the display name used in diagnostics.
func (f *File) Path() string {
	return f.Identity.String()
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Handle is what downstream phases keep to refer to a registration.
type Handle struct {
	ID       FileID
	Identity Identity
	Base     uint64
	Size     uint32
}

// Global maps a file-local offset to its process-wide position.
func (h Handle) Global(off uint32) uint64 {
	return h.Base + uint64(off)
}
