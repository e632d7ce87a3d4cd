package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"price-sync/core/reconcile"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_BatchDone(t *testing.T) {
	r := NewRegistry("test")
	ctx := context.Background()

	r.BatchDone(ctx, reconcile.BatchResult{
		Source: "paged", Job: "prices", Outcome: reconcile.OutcomeCommitted,
		PricesInserted: 3, PricesUpdated: 2, Dropped: 1,
	})
	r.BatchDone(ctx, reconcile.BatchResult{
		Source: "paged", Job: "prices", Outcome: reconcile.OutcomeRolledBack,
		ProductsInserted: 4, PricesInserted: 9,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Batches.WithLabelValues("paged", "prices", "committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Batches.WithLabelValues("paged", "prices", "rolled_back")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.Rows.WithLabelValues("paged", "prices", "price", "insert")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Rows.WithLabelValues("paged", "prices", "price", "update")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.Rows.WithLabelValues("paged", "prices", "product", "insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Dropped.WithLabelValues("paged", "prices")))
}

func TestRegistry_TruncationAndDuration(t *testing.T) {
	r := NewRegistry("test")
	summary := reconcile.RunSummary{Source: "keyset", Job: "catalog", Elapsed: 3 * time.Second}

	r.StreamTruncated(context.Background(), summary, errors.New("gave up"))
	r.RunFinished(summary)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Truncations.WithLabelValues("keyset", "catalog")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.RunDuration))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry("test")
	r.StreamTruncated(context.Background(), reconcile.RunSummary{Source: "s", Job: "j"}, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_stream_truncations_total"))
}
