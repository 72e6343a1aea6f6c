package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// WatchedFile is an append-only log file that reopens its path when the file
// it holds has been moved or deleted, so external rotation does not leave the
// process writing into an unlinked inode.
type WatchedFile struct {
	mu   sync.Mutex
	path string
	file *os.File
	info os.FileInfo
}

// OpenWatchedFile opens path for appending, creating parent directories.
func OpenWatchedFile(path string) (*WatchedFile, error) {
	w := &WatchedFile{path: path}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *WatchedFile) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", w.path, err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("stat log file %s: %w", w.path, err)
	}
	w.file = file
	w.info = info
	return nil
}

// Write appends p, reopening the path first if it no longer refers to the
// open file.
func (w *WatchedFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	current, err := os.Stat(w.path)
	if err != nil || !os.SameFile(current, w.info) {
		if w.file != nil {
			_ = w.file.Close()
			w.file = nil
		}
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	return w.file.Write(p)
}

// Close closes the underlying file.
func (w *WatchedFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
