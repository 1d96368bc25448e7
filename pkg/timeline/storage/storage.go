package storage

import (
	"context"
	"fmt"
	"sort"

	"formation-hq/timeline/pkg/timeline"
)

// Backend is a timeline.Store that can also list every policy and be
// closed. All three adapters in this package implement it.
type Backend interface {
	timeline.Store

	// List returns every stored policy, ordered by id.
	List(ctx context.Context) ([]timeline.RetentionPolicy, error)

	// Close releases the backend's resources.
	Close() error
}

var (
	_ Backend = (*MemoryStore)(nil)
	_ Backend = (*SQLiteStore)(nil)
	_ Backend = (*RESTClient)(nil)
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendREST   = "rest"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend string
	SQLite  *SQLiteConfig
	REST    RESTConfig
}

// Open creates the backend named by opts.Backend.
func Open(opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendSQLite:
		s, err := NewSQLiteStore(opts.SQLite)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendREST:
		if opts.REST.BaseURL == "" {
			return nil, fmt.Errorf("rest backend requires a base URL")
		}
		return NewRESTClient(opts.REST), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

func sortByID(policies []timeline.RetentionPolicy) {
	sort.Slice(policies, func(i, j int) bool { return policies[i].ID < policies[j].ID })
}
