package sources

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"price-sync/core/config"
	"price-sync/core/reconcile"
	"price-sync/feature/sources/keysetapi"
	"price-sync/feature/sources/pagedapi"
	"price-sync/feature/sources/sqlextract"

	"go.uber.org/zap"
)

// ErrDuplicateSource is returned when two sources share a client name.
var ErrDuplicateSource = errors.New("source already registered")

// Info describes a registered source.
type Info struct {
	Name string   `json:"name"`
	Jobs []string `json:"jobs"`
}

// Registry holds the configured sources by client name.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]reconcile.Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]reconcile.Source)}
}

// Register adds src under its name.
func (r *Registry) Register(src reconcile.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[src.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, src.Name())
	}
	r.sources[src.Name()] = src
	return nil
}

// Get returns the source registered as name.
func (r *Registry) Get(name string) (reconcile.Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[name]
	return src, ok
}

// List describes every source, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.sources))
	for name, src := range r.sources {
		out = append(out, Info{Name: name, Jobs: src.Jobs()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close releases sources holding connections.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, src := range r.sources {
		if c, ok := src.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Defaults derives the stamped defaults from the sync settings.
func Defaults(cfg config.Sync) reconcile.Defaults {
	return reconcile.Defaults{
		CompanyID:       cfg.CompanyID,
		EstablishmentID: cfg.EstablishmentID,
		UserID:          cfg.UserID,
		Location:        cfg.Location(),
	}
}

// FromConfig builds a registry with every enabled source.
func FromConfig(cfg *config.Config, logger *zap.Logger) (*Registry, error) {
	defaults := Defaults(cfg.Sync)
	reg := NewRegistry()

	var enabled []reconcile.Source
	if cfg.PagedAPI.Enabled {
		enabled = append(enabled, pagedapi.New(cfg.PagedAPI, defaults, logger.Named(cfg.PagedAPI.Client)))
	}
	if cfg.KeysetAPI.Enabled {
		enabled = append(enabled, keysetapi.New(cfg.KeysetAPI, defaults, logger.Named(cfg.KeysetAPI.Client)))
	}
	if cfg.SQLExtract.Enabled {
		enabled = append(enabled, sqlextract.New(cfg.SQLExtract, defaults, logger.Named(cfg.SQLExtract.Client)))
	}

	for _, src := range enabled {
		if err := reg.Register(src); err != nil {
			return nil, err
		}
		logger.Info("Source registered", zap.String("client", src.Name()), zap.Strings("jobs", src.Jobs()))
	}
	return reg, nil
}
