// Package catalog discovers the files of a project tree. A single Scan
// walks the tree once, applies exclude patterns and the size ceiling, and
// seals the result; every downstream detector reads from the sealed
// catalog and none of them mutates it.
package catalog

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/julianshen/archguide/internal/analysis"
)

// langExtensions maps file extensions to language names.
var langExtensions = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "tsx",
	".java": "java",
	".rb":   "ruby",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
	".vue":  "vue",
	".css":  "css",
	".scss": "css",
	".html": "html",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".md":   "markdown",
	".sql":  "sql",
	".sh":   "shell",
}

// defaultCacheSize bounds the per-run content cache.
const defaultCacheSize = 256

// Entry describes one discovered file. Entries are created by Scan and
// never modified afterwards; detectors hold references into the catalog.
type Entry struct {
	Path         string // relative to the scan root, slash-separated
	Size         int64
	Language     string
	SizeExceeded bool
	Unreadable   bool
}

// ContentBearing reports whether the file may participate in
// content-level operations (pattern matching, example extraction).
func (e *Entry) ContentBearing() bool {
	return !e.SizeExceeded && !e.Unreadable
}

// Options controls a scan.
type Options struct {
	Exclude     []string // gitignore-style patterns
	MaxFileSize int64    // bytes; files above are flagged SizeExceeded
	CacheSize   int      // content cache entries; 0 means default
}

// Catalog is the sealed output of one Scan. It owns a per-run content
// cache; nothing in it survives across runs.
type Catalog struct {
	root     string
	entries  []*Entry
	byPath   map[string]*Entry
	warnings []analysis.Warning
	cache    *lru.Cache[string, []byte]
}

// Scan walks root once and returns a sealed catalog. Exclude patterns are
// applied before the size check. A single unreadable file records a
// warning and the walk continues; only an unreadable root is fatal.
func Scan(root string, opts Options) (*Catalog, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s: not a directory", root)
	}

	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("content cache: %w", err)
	}

	matcher := ignore.CompileIgnoreLines(opts.Exclude...)

	c := &Catalog{
		root:   root,
		byPath: make(map[string]*Entry),
		cache:  cache,
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			rel := relOrPath(root, path)
			log.Printf("WARNING: catalog: skipping %s: %v", rel, err)
			c.warnings = append(c.warnings, analysis.Warning{Path: rel, Reason: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matcher.MatchesPath(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if matcher.MatchesPath(rel) {
			return nil
		}

		entry := &Entry{
			Path:     rel,
			Language: languageFor(rel),
		}

		fi, statErr := d.Info()
		if statErr != nil {
			entry.Unreadable = true
			c.warnings = append(c.warnings, analysis.Warning{Path: rel, Reason: statErr.Error()})
		} else {
			entry.Size = fi.Size()
			if entry.Size > opts.MaxFileSize {
				entry.SizeExceeded = true
			}
		}

		// Probe readability now so the warning lands in the scan, not in
		// whichever detector happens to touch the file first.
		if !entry.Unreadable && !entry.SizeExceeded {
			if f, openErr := os.Open(path); openErr != nil {
				entry.Unreadable = true
				c.warnings = append(c.warnings, analysis.Warning{Path: rel, Reason: openErr.Error()})
			} else {
				f.Close()
			}
		}

		c.entries = append(c.entries, entry)
		c.byPath[rel] = entry
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, walkErr)
	}

	return c, nil
}

// Root returns the scanned project root.
func (c *Catalog) Root() string { return c.root }

// Len returns the total number of cataloged files, oversized and
// unreadable ones included.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns all entries in emission (walk) order.
func (c *Catalog) Entries() []*Entry { return c.entries }

// Entry looks up a single entry by relative path.
func (c *Catalog) Entry(path string) (*Entry, bool) {
	e, ok := c.byPath[path]
	return e, ok
}

// Warnings returns the non-fatal conditions recorded during the scan.
func (c *Catalog) Warnings() []analysis.Warning { return c.warnings }

// Content returns the bytes of a content-bearing entry, reading through
// the per-run cache. Oversized and unreadable entries are refused.
func (c *Catalog) Content(path string) ([]byte, error) {
	e, ok := c.byPath[path]
	if !ok {
		return nil, fmt.Errorf("catalog: no entry for %s", path)
	}
	if e.SizeExceeded {
		return nil, fmt.Errorf("catalog: %s exceeds the size ceiling", path)
	}
	if e.Unreadable {
		return nil, fmt.Errorf("catalog: %s was unreadable at scan time", path)
	}

	if data, ok := c.cache.Get(path); ok {
		return data, nil
	}
	data, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	c.cache.Add(path, data)
	return data, nil
}

// languageFor infers the language from the file extension, with a few
// well-known extensionless names special-cased.
func languageFor(rel string) string {
	base := filepath.Base(rel)
	switch base {
	case "Dockerfile":
		return "dockerfile"
	case "Makefile":
		return "makefile"
	case "Gemfile", "Rakefile":
		return "ruby"
	}
	if lang, ok := langExtensions[filepath.Ext(rel)]; ok {
		return lang
	}
	return "unknown"
}

func relOrPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
