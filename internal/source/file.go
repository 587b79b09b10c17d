package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Resolve converts a span of this file into line and column positions.
func (f *File) Resolve(span Span) (start, end LineCol) {
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// LineStart returns the byte offset where the 1-based line begins.
func (f *File) LineStart(lineNum uint32) (uint32, bool) {
	switch {
	case lineNum == 0:
		return 0, false
	case lineNum == 1:
		return 0, true
	case int(lineNum-2) < len(f.LineIdx):
		return f.LineIdx[lineNum-2] + 1, true
	default:
		return 0, false
	}
}

// Offset converts a 1-based line and a 0-based byte column into a file offset,
// clamped to the file size.
func (f *File) Offset(lineNum, col uint32) uint32 {
	start, ok := f.LineStart(lineNum)
	if !ok {
		return f.Size
	}
	off := start + col
	if off > f.Size {
		return f.Size
	}
	return off
}

// GetLine returns the 1-based line without its trailing newline.
// Missing lines yield "".
func (f *File) GetLine(lineNum uint32) string {
	start, ok := f.LineStart(lineNum)
	if !ok {
		return ""
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	if start >= lenContent {
		return ""
	}

	end := lenContent
	if int(lineNum-1) < len(f.LineIdx) {
		end = f.LineIdx[lineNum-1]
	}
	if end > lenContent {
		end = lenContent
	}
	return string(f.Content[start:end])
}
