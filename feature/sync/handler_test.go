package sync

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"price-sync/core/reconcile"
	"price-sync/feature/sources"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, srcs ...reconcile.Source) (*fiber.App, *Service) {
	t.Helper()
	svc, _ := newTestService(t, Options{}, srcs...)
	app := fiber.New()
	NewHandler(svc, time.Minute, nil).RegisterRoutes(app)
	return app, svc
}

func TestHandleSources(t *testing.T) {
	app, _ := setupTestApp(t, &fakeSource{name: "arroz", jobs: []string{reconcile.JobPrices, reconcile.JobPromotions}})

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/sources", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body []sources.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []sources.Info{{Name: "arroz", Jobs: []string{"prices", "promotions"}}}, body)
}

func TestHandleRun(t *testing.T) {
	ok := &fakeSource{
		name:  "arroz",
		jobs:  []string{reconcile.JobCatalog},
		pages: map[string][][]reconcile.RawRecord{"all": branchPages(1)},
	}
	broken := &fakeSource{name: "down", jobs: []string{reconcile.JobCatalog}, loginErr: errors.New("connection refused")}
	app, _ := setupTestApp(t, ok, broken)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"run", "POST", "/sync/arroz/catalog", fiber.StatusOK},
		{"get alias", "GET", "/sync/arroz/catalog", fiber.StatusOK},
		{"unknown source", "POST", "/sync/nope/catalog", fiber.StatusNotFound},
		{"unsupported job", "POST", "/sync/arroz/promotions", fiber.StatusBadRequest},
		{"login failure", "POST", "/sync/down/catalog", fiber.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil), 5000)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHandleRun_Report(t *testing.T) {
	app, _ := setupTestApp(t, &fakeSource{
		name:  "arroz",
		jobs:  []string{reconcile.JobCatalog},
		pages: map[string][][]reconcile.RawRecord{"all": branchPages(3)},
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/arroz/catalog", nil), 5000)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var report Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Success)
	require.Len(t, report.Partitions, 1)
	assert.Equal(t, 1, report.Partitions[0].ProductsInserted)
	assert.Equal(t, 1, report.Partitions[0].PricesInserted)
}

func TestHandleRun_Conflict(t *testing.T) {
	src := &fakeSource{
		name:    "arroz",
		jobs:    []string{reconcile.JobCatalog},
		pages:   map[string][][]reconcile.RawRecord{"all": branchPages(1)},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	app, svc := setupTestApp(t, src)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Run(t.Context(), "arroz", reconcile.JobCatalog)
	}()
	<-src.started

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/arroz/catalog", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	close(src.gate)
	<-done
}

func TestFeature(t *testing.T) {
	disabled := NewFeature(nil, 0, nil)
	assert.Equal(t, "sync", disabled.Name())
	assert.False(t, disabled.IsEnabled())

	svc, _ := newTestService(t, Options{})
	feature := NewFeature(svc, time.Minute, nil)
	assert.True(t, feature.IsEnabled())
	assert.NoError(t, feature.Load(fiber.New()))
}
