package diagfmt

import (
	"path/filepath"

	"jsparse/internal/source"
)

func formatPath(f *source.File, mode PathMode, baseDir string) string {
	if f == nil {
		return "<unknown>"
	}
	if !f.Identity.IsNamed() {
		return f.Path()
	}
	name := f.Identity.Name()
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(name); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if baseDir == "" {
			return name
		}
		absName, err := filepath.Abs(name)
		if err != nil {
			return name
		}
		absBase, err := filepath.Abs(baseDir)
		if err != nil {
			return name
		}
		if rel, err := filepath.Rel(absBase, absName); err == nil {
			return filepath.ToSlash(rel)
		}
	case PathModeBasename:
		return filepath.Base(name)
	}
	return name
}
