package profile

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// FileWatcher polls the YAML files under a directory and calls onChange
// when one is added, modified or removed. Polling keeps it portable.
type FileWatcher struct {
	Root     string
	Interval time.Duration
	onChange func(string) // called with the path that changed
	stopCh   chan struct{}
	seen     map[string]time.Time
}

// NewFileWatcher creates a watcher for the YAML files under root.
func NewFileWatcher(root string, interval time.Duration, onChange func(string)) *FileWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &FileWatcher{
		Root:     root,
		Interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		seen:     make(map[string]time.Time),
	}
}

// Start primes the file table and begins polling in a goroutine.
func (w *FileWatcher) Start() {
	w.scan(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher.
func (w *FileWatcher) Stop() {
	close(w.stopCh)
}

// scan compares mtimes with the previous pass. The first pass only records.
func (w *FileWatcher) scan(prime bool) {
	current := make(map[string]time.Time, len(w.seen))
	_ = filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isYAML(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		current[path] = info.ModTime()
		return nil
	})

	if !prime && w.onChange != nil {
		for path, mt := range current {
			if last, ok := w.seen[path]; !ok || mt.After(last) {
				w.onChange(path)
			}
		}
		for path := range w.seen {
			if _, ok := current[path]; !ok {
				w.onChange(path)
			}
		}
	}
	w.seen = current
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
