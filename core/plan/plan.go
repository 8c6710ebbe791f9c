// Package plan locates the plan document produced by an assistant's
// plan mode.
package plan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Document is a plan markdown file. It is read once and never written.
type Document struct {
	Path    string
	Content string
}

// Locate finds the plan document for a workspace. A workspace-local
// .claude/plan.md under root wins; otherwise the most recently
// modified *.md file in plansDir is used. An empty root skips the
// workspace-local step. A nil document with a nil error means no plan
// exists anywhere, which callers treat as a normal no-op.
func Locate(root, plansDir string) (*Document, error) {
	if root != "" {
		local := filepath.Join(root, ".claude", "plan.md")
		doc, err := read(local)
		if err == nil {
			slog.Debug("Plan located in workspace", "path", local)
			return doc, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return newestIn(plansDir)
}

// newestIn returns the most recently modified markdown file in dir, or
// nil when the directory is absent or holds none.
func newestIn(dir string) (*Document, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan plans directory %s: %w", dir, err)
	}

	var newest string
	var newestMod int64
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat plan %s: %w", entry.Name(), err)
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = entry.Name()
			newestMod = mod
		}
	}
	if newest == "" {
		return nil, nil
	}

	path := filepath.Join(dir, newest)
	doc, err := read(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("Plan located in global directory", "path", path)
	return doc, nil
}

func read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read plan %s: %w", path, err)
	}
	return &Document{Path: path, Content: string(data)}, nil
}
