package crawler

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the file types that hold saved model answers.
var DefaultExtensions = []string{".json", ".txt", ".md", ".ast"}

// File is one discovered input with its contents.
type File struct {
	Path    string
	Content string
}

// Crawler scans a directory for saved model answers.
type Crawler struct {
	extensions map[string]bool
	ignored    []string
}

// NewCrawler creates a crawler matching the given extensions, or
// DefaultExtensions when none are given.
func NewCrawler(extensions ...string) *Crawler {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &Crawler{
		extensions: exts,
		ignored:    []string{".git", "vendor", "node_modules"},
	}
}

// Scan walks root and streams every matching file to onFile, in lexical
// order. Unreadable files are skipped.
func (c *Crawler) Scan(root string, onFile func(File) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !c.extensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return onFile(File{Path: path, Content: string(content)})
	})
}
