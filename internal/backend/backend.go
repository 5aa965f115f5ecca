// Package backend builds the configured byte store.
package backend

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/faheemho18/monefy-pwa-clone/internal/config"
	"github.com/faheemho18/monefy-pwa-clone/internal/kv"
	"github.com/faheemho18/monefy-pwa-clone/internal/kv/filestore"
	"github.com/faheemho18/monefy-pwa-clone/internal/kv/memory"
	"github.com/faheemho18/monefy-pwa-clone/internal/kv/sqlite"
)

// Backend names.
const (
	Memory = "memory"
	File   = "file"
	SQLite = "sqlite"
)

// Result is an opened byte store and the func that releases it.
type Result struct {
	Store   kv.Store
	Cleanup func() error
}

// Close runs Cleanup if there is one.
func (r *Result) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Open builds the backend described by cfg. Relative paths are resolved
// against dataDir.
func Open(dataDir string, cfg config.StorageConfig, log zerolog.Logger) (*Result, error) {
	path := config.Resolve(dataDir, cfg.Path)

	switch cfg.Backend {
	case Memory:
		var opts []memory.Option
		if cfg.CapacityBytes > 0 {
			opts = append(opts, memory.WithCapacity(cfg.CapacityBytes))
		}
		log.Debug().Int64("capacity", cfg.CapacityBytes).Msg("opened memory backend")
		return &Result{Store: memory.New(opts...)}, nil

	case File, "":
		st, err := filestore.New(path, cfg.CapacityBytes)
		if err != nil {
			return nil, fmt.Errorf("opening file backend: %w", err)
		}
		log.Debug().Str("dir", path).Int64("capacity", cfg.CapacityBytes).Msg("opened file backend")
		return &Result{Store: st}, nil

	case SQLite:
		st, err := sqlite.Open(path, cfg.CapacityBytes)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite backend: %w", err)
		}
		log.Debug().Str("db", path).Int64("capacity", cfg.CapacityBytes).Msg("opened sqlite backend")
		return &Result{Store: st, Cleanup: st.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.Backend)
	}
}
