package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"event-banner/internal/models"
)

// Storage is the device-local key/value store the roster is mirrored into
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Backend is a Storage that holds resources until closed
type Backend interface {
	Storage
	Close() error
}

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config selects and configures a backend
type Config struct {
	Driver   string
	DataDir  string
	RedisURL string
	Log      zerolog.Logger
}

// Open creates the backend named by cfg.Driver
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		return NewFile(filepath.Join(cfg.DataDir, "storage.json"), cfg.Log)
	case DriverSQLite:
		return NewSQLite(ctx, filepath.Join(cfg.DataDir, "event-banner.db"))
	case DriverRedis:
		return NewRedis(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownDriver, cfg.Driver)
	}
}
