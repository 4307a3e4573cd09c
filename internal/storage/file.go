package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// File keeps all keys in a single JSON object file, rewritten on every change
type File struct {
	mu     sync.RWMutex
	values map[string]string
	file   string
	log    zerolog.Logger
}

// NewFile creates a file backed store, loading existing data if the file exists.
// A file that is not a JSON object is moved aside to <path>.corrupt and the
// store starts empty.
func NewFile(filePath string, log zerolog.Logger) (*File, error) {
	f := &File{
		values: make(map[string]string),
		file:   filePath,
		log:    log.With().Str("component", "storage").Logger(),
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := f.load(); err != nil {
			return nil, fmt.Errorf("failed to load storage: %w", err)
		}
	}

	return f, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.values[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.values[key]
	f.values[key] = value
	if err := f.save(); err != nil {
		if existed {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.values[key]
	if !existed {
		return nil
	}
	delete(f.values, key)
	if err := f.save(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

func (f *File) Close() error { return nil }

// save writes every key to the file; callers hold the lock
func (f *File) save() error {
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	dir := filepath.Dir(f.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to a sibling file first so a crash never leaves half a document
	tmp := f.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, f.file); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

func (f *File) load() error {
	data, err := os.ReadFile(f.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &f.values); err != nil {
		return f.quarantine(err)
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}

	return nil
}

// quarantine keeps an unreadable file for inspection and resets to empty
func (f *File) quarantine(cause error) error {
	dst := f.file + ".corrupt"
	if err := os.Rename(f.file, dst); err != nil {
		return fmt.Errorf("failed to move aside unreadable file: %w", err)
	}
	f.values = make(map[string]string)
	f.log.Warn().Err(cause).Str("file", f.file).Str("moved_to", dst).
		Msg("Storage file is not valid JSON, starting empty")
	return nil
}
