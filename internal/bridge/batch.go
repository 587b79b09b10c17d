package bridge

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"jsparse/internal/observ"
	"jsparse/internal/source"
)

// Extensions lists the file suffixes picked up when a directory is parsed.
var Extensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// FileResult is the outcome of one file of a batch.
type FileResult struct {
	Path    string
	Tree    string
	Err     error
	Timings observ.Report
}

// ConfigFunc returns the raw configuration buffer for a path.
type ConfigFunc func(path string) ([]byte, error)

// HasSourceExt reports whether path has one of Extensions.
func HasSourceExt(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// ListFiles expands directories into the sorted list of source files below
// them. Explicit file arguments are kept whatever their extension.
func ListFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if HasSourceExt(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		slices.Sort(found)
		for _, p := range found {
			add(p)
		}
	}
	return files, nil
}

// ParseFiles submits every file under paths and waits for all of them. At
// most jobs files are loaded and awaited at once; parsing itself is bounded
// by the bridge. Per-file failures are reported in the results; the error is
// non-nil only for listing failures or when ctx ends.
func (b *Bridge) ParseFiles(ctx context.Context, paths []string, config ConfigFunc, jobs int) ([]FileResult, error) {
	files, err := ListFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Indexes are unique per goroutine, no mutex needed.
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			res := &results[i]
			res.Path = path

			text, _, err := source.Load(path)
			if err != nil {
				res.Err = err
				return nil
			}
			raw, err := config(path)
			if err != nil {
				res.Err = err
				return nil
			}

			p := b.Submit(text, raw, &path)
			out, err := p.Await(gctx)
			if err != nil {
				return err
			}
			res.Tree, res.Err = out.Value, out.Err
			res.Timings = p.Timings()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
