package sources

import (
	"context"
	"testing"

	"price-sync/core/config"
	"price-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	name   string
	closed bool
}

func (s *stubSource) Name() string   { return s.name }
func (s *stubSource) Jobs() []string { return []string{reconcile.JobCatalog} }
func (s *stubSource) Login(context.Context) error {
	return nil
}
func (s *stubSource) Partitions(context.Context, string) ([]reconcile.Partition, error) {
	return []reconcile.Partition{reconcile.AllPartition}, nil
}
func (s *stubSource) Pipeline(string, reconcile.Partition) (reconcile.Pipeline, error) {
	return reconcile.Pipeline{}, nil
}
func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	b := &stubSource{name: "b"}
	require.NoError(t, reg.Register(b))
	require.NoError(t, reg.Register(&stubSource{name: "a"}))
	assert.ErrorIs(t, reg.Register(&stubSource{name: "a"}), ErrDuplicateSource)

	src, ok := reg.Get("b")
	require.True(t, ok)
	assert.Same(t, b, src)
	_, ok = reg.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []Info{
		{Name: "a", Jobs: []string{reconcile.JobCatalog}},
		{Name: "b", Jobs: []string{reconcile.JobCatalog}},
	}, reg.List())

	require.NoError(t, reg.Close())
	assert.True(t, b.closed)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Sync:       config.Sync{Timezone: "UTC", CompanyID: 2, UserID: 9},
		PagedAPI:   config.PagedAPI{Enabled: true, Client: "arroz"},
		KeysetAPI:  config.KeysetAPI{Enabled: false, Client: "america"},
		SQLExtract: config.SQLExtract{Enabled: true, Client: "extract", Driver: "postgres"},
	}

	reg, err := FromConfig(cfg, zap.NewNop())
	require.NoError(t, err)

	names := make([]string, 0)
	for _, info := range reg.List() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"arroz", "extract"}, names)

	cfg.SQLExtract.Client = "arroz"
	_, err = FromConfig(cfg, zap.NewNop())
	assert.ErrorIs(t, err, ErrDuplicateSource)
}

func TestDefaults(t *testing.T) {
	d := Defaults(config.Sync{Timezone: "Nowhere/Unknown", CompanyID: 3, EstablishmentID: 4, UserID: 5})
	assert.Equal(t, 3, d.CompanyID)
	assert.Equal(t, 4, d.EstablishmentID)
	assert.Equal(t, 5, d.UserID)
	assert.Equal(t, "UTC", d.Location.String())
}
