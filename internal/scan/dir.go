// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/petar-djukic/docgaps/internal/source"
	"github.com/petar-djukic/docgaps/pkg/types"
)

// skipDirs contains directory names the walker never descends into.
var skipDirs = map[string]bool{
	"__pycache__":   true,
	"node_modules":  true,
	"venv":          true,
	".venv":         true,
	".tox":          true,
	"site-packages": true,
}

// Options configures a directory scan.
type Options struct {
	Concurrency int    // Parallel scanner goroutines; <= 0 means NumCPU
	Policy      Policy // Gap policy applied per file
}

// FileResult holds the scan outcome for one file. Err is set for parse
// failures; the rest of the scan is unaffected.
type FileResult struct {
	Path string
	Gaps []types.Gap
	Err  error
}

// Collect walks the given paths (files or directories), scans every Python
// file with a bounded worker pool, and returns per-file results sorted by
// path. It returns an error only when nothing can be scanned at all.
func Collect(roots []string, opts Options) ([]FileResult, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	paths, err := resolvePaths(roots)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no Python files found under %s", strings.Join(roots, ", "))
	}

	jobs := make(chan string, len(paths))
	results := make(chan FileResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- scanOne(path, opts.Policy)
			}
		}()
	}

	for _, p := range paths {
		jobs <- p
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []FileResult
	for r := range results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ScanFile loads and scans a single file. The session controller uses this
// to recompute gaps after each applied patch.
func ScanFile(path string, policy Policy) ([]types.Gap, error) {
	src, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	return Gaps(src, policy)
}

func scanOne(path string, policy Policy) FileResult {
	gaps, err := ScanFile(path, policy)
	return FileResult{Path: path, Gaps: gaps, Err: err}
}

// resolvePaths expands the roots into the list of Python files to scan.
// A root that does not exist is a fatal error.
func resolvePaths(roots []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot scan %s: %w", root, err)
		}

		if !info.IsDir() {
			if strings.HasSuffix(root, ".py") && !seen[root] {
				seen[root] = true
				paths = append(paths, root)
			}
			continue
		}

		ignorer := loadIgnorer(root)
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // Skip inaccessible entries.
			}
			name := d.Name()
			if d.IsDir() {
				if path == root {
					return nil
				}
				if skipDirs[name] || strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(name, ".py") {
				return nil
			}
			if ignorer != nil {
				if rel, relErr := filepath.Rel(root, path); relErr == nil && ignorer.MatchesPath(rel) {
					return nil
				}
			}
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// loadIgnorer compiles the root's .gitignore, if present.
func loadIgnorer(root string) *gitignore.GitIgnore {
	ign, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return ign
}
