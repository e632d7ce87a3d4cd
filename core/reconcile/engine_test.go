package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"price-sync/core/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// memStore is an in-memory Store. Writes become visible on commit.
type memStore struct {
	mu            sync.Mutex
	index         Index
	nextProductID int64
	nextPriceID   int64
	loadCalls     [][]int64
	commits       int
	rollbacks     int

	insertProductCalls [][]*Product
	updateProductCalls [][]*Product
	insertPriceCalls   [][]*Price
	updatePriceCalls   [][]*Price

	insertPricesErr func(prices []*Price) error
}

func newMemStore() *memStore {
	return &memStore{index: Index{}, nextProductID: 100, nextPriceID: 1000}
}

func (s *memStore) seedProduct(code int64, prices ...PriceRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	s.index[code] = &IndexEntry{ProductID: s.nextProductID, Prices: prices}
}

func (s *memStore) LoadIndex(ctx context.Context, codes []int64) (Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls = append(s.loadCalls, codes)
	out := Index{}
	for _, code := range codes {
		if e, ok := s.index[code]; ok {
			cp := *e
			cp.Prices = append([]PriceRef{}, e.Prices...)
			out[code] = &cp
		}
	}
	return out, nil
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	return &memTx{store: s}, nil
}

type memTx struct {
	store  *memStore
	mu     sync.Mutex
	staged []func()
}

func (t *memTx) stage(fn func()) {
	t.mu.Lock()
	t.staged = append(t.staged, fn)
	t.mu.Unlock()
}

func (t *memTx) LoadIndex(ctx context.Context, codes []int64) (Index, error) {
	return t.store.LoadIndex(ctx, codes)
}

func (t *memTx) InsertProducts(ctx context.Context, products []*Product) error {
	s := t.store
	s.mu.Lock()
	s.insertProductCalls = append(s.insertProductCalls, products)
	for _, p := range products {
		s.nextProductID++
		p.ID = s.nextProductID
	}
	s.mu.Unlock()

	t.stage(func() {
		for _, p := range products {
			s.index[p.Code] = &IndexEntry{ProductID: p.ID}
		}
	})
	return nil
}

func (t *memTx) UpdateProducts(ctx context.Context, products []*Product) error {
	s := t.store
	s.mu.Lock()
	s.updateProductCalls = append(s.updateProductCalls, products)
	s.mu.Unlock()
	return nil
}

func (t *memTx) InsertPrices(ctx context.Context, prices []*Price) error {
	s := t.store
	s.mu.Lock()
	s.insertPriceCalls = append(s.insertPriceCalls, prices)
	hook := s.insertPricesErr
	s.mu.Unlock()
	if hook != nil {
		if err := hook(prices); err != nil {
			return err
		}
	}

	t.stage(func() {
		for _, p := range prices {
			s.nextPriceID++
			for _, e := range s.index {
				if e.ProductID == p.ProductID {
					e.Prices = append(e.Prices, PriceRef{ID: s.nextPriceID, BranchID: p.BranchID, Type: p.Type})
				}
			}
		}
	})
	return nil
}

func (t *memTx) UpdatePrices(ctx context.Context, prices []*Price) error {
	s := t.store
	s.mu.Lock()
	s.updatePriceCalls = append(s.updatePriceCalls, prices)
	s.mu.Unlock()
	return nil
}

func (t *memTx) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, fn := range t.staged {
		fn()
	}
	t.store.commits++
	return nil
}

func (t *memTx) Rollback() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.staged = nil
	t.store.rollbacks++
	return nil
}

// canonicalNormalizer passes canonical entities through unchanged.
var canonicalNormalizer = NormalizerFunc(func(raw RawRecord) (Normalized, error) {
	switch v := raw.(type) {
	case *Product:
		return Normalized{Products: []*Product{v}}, nil
	case *Price:
		return Normalized{Prices: []*Price{v}}, nil
	case *Promotion:
		return Normalized{Promotions: []*Promotion{v}}, nil
	case string:
		panic(v)
	default:
		return Normalized{}, errors.New("unknown record")
	}
})

type recordingObserver struct {
	mu        sync.Mutex
	results   []BatchResult
	truncated []RunSummary
}

func (o *recordingObserver) BatchDone(ctx context.Context, res BatchResult) {
	o.mu.Lock()
	o.results = append(o.results, res)
	o.mu.Unlock()
}

func (o *recordingObserver) StreamTruncated(ctx context.Context, summary RunSummary, err error) {
	o.mu.Lock()
	o.truncated = append(o.truncated, summary)
	o.mu.Unlock()
}

type resolverFunc func(ctx context.Context, codes []int64) ([]*Product, error)

func (f resolverFunc) ResolveProducts(ctx context.Context, codes []int64) ([]*Product, error) {
	return f(ctx, codes)
}

type projectorFunc func(ctx context.Context, tx Tx, batch *Batch) (int, error)

func (f projectorFunc) Project(ctx context.Context, tx Tx, batch *Batch) (int, error) {
	return f(ctx, tx, batch)
}

func newTestEngine(store Store, pipe Pipeline, cfg Config, observers ...Observer) *Engine {
	if pipe.Normalizer == nil {
		pipe.Normalizer = canonicalNormalizer
	}
	pipe.Start = Cursor{Page: 1}
	cfg.Source, cfg.Job, cfg.RunID = "test", JobCatalog, "run-1"
	cfg.Partition = AllPartition
	return NewEngine(cfg, pipe, store, nil, observers...)
}

func TestEngine_ProductsNewAndExisting(t *testing.T) {
	store := newMemStore()
	store.seedProduct(2)
	fetcher := newPagedFetcher([]RawRecord{
		&Product{Code: 1, Name: "A"},
		&Product{Code: 2, Name: "B"},
		&Product{Code: 3, Name: "C"},
	})

	e := newTestEngine(store, Pipeline{Fetcher: fetcher}, Config{UpdateProducts: true})
	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, store.insertProductCalls, 1)
	require.Len(t, store.updateProductCalls, 1)
	assert.Len(t, store.insertProductCalls[0], 2)
	assert.Len(t, store.updateProductCalls[0], 1)
	assert.Equal(t, int64(2), store.updateProductCalls[0][0].Code)
	assert.Equal(t, 2, summary.ProductsInserted)
	assert.Equal(t, 1, summary.ProductsUpdated)
	assert.Equal(t, 1, summary.Committed)
	assert.True(t, summary.Clean())
}

func TestEngine_ExistingProductsNotUpdatedWhenDisabled(t *testing.T) {
	store := newMemStore()
	store.seedProduct(2)
	fetcher := newPagedFetcher([]RawRecord{&Product{Code: 2}})

	e := newTestEngine(store, Pipeline{Fetcher: fetcher}, Config{UpdateProducts: false})
	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, store.updateProductCalls)
	assert.Zero(t, summary.ProductsUpdated)
}

func TestEngine_PriceMatchingByBranchAndType(t *testing.T) {
	store := newMemStore()
	store.seedProduct(1, PriceRef{ID: 77, BranchID: 5, Type: Regular})
	regular := &Price{ProductCode: 1, BranchID: 5, Type: Regular, Value: "10,50"}
	promo := &Price{ProductCode: 1, BranchID: 5, Type: Promotional, Value: "10,50!@#9,99"}

	e := newTestEngine(store, Pipeline{Fetcher: newPagedFetcher([]RawRecord{regular, promo})}, Config{})
	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, store.updatePriceCalls, 1)
	require.Len(t, store.insertPriceCalls, 1)
	assert.Equal(t, []*Price{regular}, store.updatePriceCalls[0])
	assert.Equal(t, []*Price{promo}, store.insertPriceCalls[0])
	assert.Equal(t, int64(77), regular.ID)
	assert.Equal(t, regular.ProductID, promo.ProductID)
	assert.Equal(t, 1, summary.PricesInserted)
	assert.Equal(t, 1, summary.PricesUpdated)
}

func TestEngine_RollbackContinuesWithNextPage(t *testing.T) {
	store := newMemStore()
	store.seedProduct(1)
	store.insertPricesErr = func(prices []*Price) error {
		if prices[0].BranchID == 1 {
			return errors.New("constraint violation")
		}
		return nil
	}
	fetcher := newPagedFetcher(
		[]RawRecord{&Price{ProductCode: 1, BranchID: 1, Type: Regular, Value: "1,00"}},
		[]RawRecord{&Price{ProductCode: 1, BranchID: 2, Type: Regular, Value: "2,00"}},
	)
	obs := &recordingObserver{}

	e := newTestEngine(store, Pipeline{Fetcher: fetcher}, Config{}, obs)
	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, store.rollbacks)
	assert.Equal(t, 1, store.commits)
	assert.Equal(t, 1, fetcher.calls[2], "next page is still fetched")
	assert.Equal(t, 2, summary.Batches)
	assert.Equal(t, 1, summary.RolledBack)
	assert.Equal(t, 1, summary.PricesInserted)
	assert.False(t, summary.Clean())

	require.Len(t, obs.results, 2)
	assert.Equal(t, OutcomeRolledBack, obs.results[0].Outcome)
	assert.NotNil(t, obs.results[0].Batch)
	assert.Error(t, obs.results[0].Err)
	assert.Equal(t, OutcomeCommitted, obs.results[1].Outcome)
	assert.Len(t, obs.results[1].Prices, 1)

	entry := store.index[1]
	require.Len(t, entry.Prices, 1)
	assert.Equal(t, 2, entry.Prices[0].BranchID)
}

func TestEngine_Idempotent(t *testing.T) {
	store := newMemStore()
	page := func() []RawRecord {
		return []RawRecord{
			&Product{Code: 1, Name: "A"},
			&Price{ProductCode: 1, BranchID: 5, Type: Regular, Value: "10,50"},
			&Price{ProductCode: 1, BranchID: 5, Type: Promotional, Value: "10,50!@#8,00"},
		}
	}

	first, err := newTestEngine(store, Pipeline{Fetcher: newPagedFetcher(page())}, Config{UpdateProducts: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.ProductsInserted)
	assert.Equal(t, 2, first.PricesInserted)

	second, err := newTestEngine(store, Pipeline{Fetcher: newPagedFetcher(page())}, Config{UpdateProducts: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.ProductsInserted)
	assert.Zero(t, second.PricesInserted)
	assert.Equal(t, 1, second.ProductsUpdated)
	assert.Equal(t, 2, second.PricesUpdated)
}

func TestEngine_CreatesMissingProductsFirst(t *testing.T) {
	store := newMemStore()
	var resolved []int64
	resolver := resolverFunc(func(ctx context.Context, codes []int64) ([]*Product, error) {
		resolved = append(resolved, codes...)
		out := make([]*Product, 0, len(codes))
		for _, c := range codes {
			if c == 9 {
				out = append(out, &Product{Code: 9, Name: "Resolved"})
			}
		}
		return out, nil
	})
	price9 := &Price{ProductCode: 9, BranchID: 1, Type: Regular, Value: "3,00"}
	price8 := &Price{ProductCode: 8, BranchID: 1, Type: Regular, Value: "4,00"}
	fetcher := newPagedFetcher([]RawRecord{price9, price8})

	e := newTestEngine(store, Pipeline{Fetcher: fetcher, Resolver: resolver}, Config{})
	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int64{9, 8}, resolved)
	assert.Equal(t, 2, store.commits, "products sub-transaction then batch transaction")
	require.Len(t, store.insertProductCalls, 1)
	assert.Equal(t, int64(9), store.insertProductCalls[0][0].Code)
	require.Len(t, store.insertPriceCalls, 1)
	assert.Equal(t, []*Price{price9}, store.insertPriceCalls[0])
	assert.Equal(t, store.insertProductCalls[0][0].ID, price9.ProductID)
	assert.Equal(t, 1, summary.ProductsInserted)
	assert.Equal(t, 1, summary.RecordsDropped, "price of unknown product 8 is dropped")
	assert.Len(t, store.loadCalls, 2)
	assert.Equal(t, []int64{9, 8}, store.loadCalls[1])
}

func TestEngine_BatchProductsCreatedBeforePrices(t *testing.T) {
	store := newMemStore()
	product := &Product{Code: 4, Name: "Feijao"}
	price := &Price{ProductCode: 4, BranchID: 2, Type: Regular, Value: "7,99"}

	e := newTestEngine(store, Pipeline{Fetcher: newPagedFetcher([]RawRecord{product, price})}, Config{UpdateProducts: true})
	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProductsInserted)
	assert.Zero(t, summary.ProductsUpdated, "created products are not updated in the same batch")
	assert.Equal(t, 1, summary.PricesInserted)
	assert.Equal(t, product.ID, price.ProductID)
}

func TestEngine_ZeroPriceNeverWritten(t *testing.T) {
	store := newMemStore()
	store.seedProduct(1)
	fetcher := newPagedFetcher([]RawRecord{&Price{ProductCode: 1, BranchID: 1, Type: Regular, Value: "0,00"}})

	summary, err := newTestEngine(store, Pipeline{Fetcher: fetcher}, Config{}).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, store.insertPriceCalls)
	assert.Empty(t, store.updatePriceCalls)
	assert.Equal(t, 1, summary.RecordsDropped)
}

func TestEngine_BadRecordsDroppedIndividually(t *testing.T) {
	store := newMemStore()
	fetcher := newPagedFetcher([]RawRecord{
		42,
		"boom",
		&Product{Code: 1},
	})

	summary, err := newTestEngine(store, Pipeline{Fetcher: fetcher}, Config{}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.RecordsDropped)
	assert.Equal(t, 1, summary.ProductsInserted)
}

func TestEngine_TruncatedStream(t *testing.T) {
	store := newMemStore()
	fetcher := newPagedFetcher([]RawRecord{&Product{Code: 1}}, []RawRecord{&Product{Code: 2}})
	fetcher.failOn[2] = 3
	obs := &recordingObserver{}

	e := newTestEngine(store, Pipeline{Fetcher: fetcher}, Config{Reader: ReaderConfig{MaxAttempts: 3}}, obs)
	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.Truncated)
	assert.False(t, summary.Clean())
	assert.Equal(t, 1, summary.Batches)
	require.Len(t, obs.truncated, 1)
	assert.Equal(t, 1, obs.truncated[0].Committed)
}

func TestEngine_EmptyStream(t *testing.T) {
	store := newMemStore()
	summary, err := newTestEngine(store, Pipeline{Fetcher: newPagedFetcher()}, Config{}).Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, summary.Batches)
	assert.Empty(t, store.loadCalls)
}

func TestEngine_PromotionsFoldedAndProjected(t *testing.T) {
	store := newMemStore()
	store.seedProduct(1)
	promo := &Promotion{
		Name:            "Semana do arroz",
		EstablishmentID: 3,
		Items: []PromotionItem{
			{Product: &Product{Code: 1}, Price: &Price{ProductCode: 1, BranchID: 3, Type: Promotional, Value: "5,00"}},
		},
	}
	var projected *Batch
	projector := projectorFunc(func(ctx context.Context, tx Tx, batch *Batch) (int, error) {
		projected = batch
		return len(batch.Promotions), nil
	})

	e := newTestEngine(store, Pipeline{Fetcher: newPagedFetcher([]RawRecord{promo}), Projector: projector}, Config{})
	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	require.NotNil(t, projected)
	assert.Len(t, projected.Prices, 1)
	assert.Equal(t, 1, summary.PricesInserted)
	assert.Equal(t, 1, summary.Projected)
}

func TestEngine_ProjectorFailureRollsBack(t *testing.T) {
	store := newMemStore()
	store.seedProduct(1)
	projector := projectorFunc(func(ctx context.Context, tx Tx, batch *Batch) (int, error) {
		return 0, errors.New("projection failed")
	})
	fetcher := newPagedFetcher([]RawRecord{&Price{ProductCode: 1, BranchID: 1, Type: Regular, Value: "1,00"}})

	summary, err := newTestEngine(store, Pipeline{Fetcher: fetcher, Projector: projector}, Config{}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.RolledBack)
	assert.Equal(t, 1, store.rollbacks)
	assert.Empty(t, store.index[1].Prices)
}

func TestEngine_ChunksWrites(t *testing.T) {
	store := newMemStore()
	var records []RawRecord
	for i := int64(1); i <= 5; i++ {
		records = append(records, &Product{Code: i})
	}

	_, err := newTestEngine(store, Pipeline{Fetcher: newPagedFetcher(records)}, Config{WriteChunkSize: 2}).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, store.insertProductCalls, 3)
	assert.Len(t, store.insertProductCalls[2], 1)
}

func TestEngine_RequiresPipeline(t *testing.T) {
	_, err := NewEngine(Config{}, Pipeline{}, newMemStore(), nil).Run(context.Background())
	assert.Error(t, err)
}

func TestEngine_WriteFailureLogsRecords(t *testing.T) {
	store := newMemStore()
	store.seedProduct(100)
	store.insertPricesErr = func(prices []*Price) error { return errors.New("duplicate entry") }
	price := &Price{ProductCode: 100, BranchID: 5, Type: Regular, Value: "10,50"}
	fetcher := newPagedFetcher([]RawRecord{price})

	core, logs := observer.New(zap.DebugLevel)
	channels := logger.NopChannels()
	channels.Database = zap.New(core)

	e := newTestEngine(store, Pipeline{Fetcher: fetcher}, Config{})
	e.logs = channels
	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.RolledBack)

	entries := logs.FilterMessage("Statement failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "insert prices", fields["statement"])
	assert.Equal(t, int64(1), fields["rows"])
	assert.Equal(t, []*Price{price}, fields["records"])
	assert.Equal(t, "duplicate entry", fields["error"])
	assert.Equal(t, int64(1), fields["batch"])
}

func TestEngine_CancellationIsNotTruncation(t *testing.T) {
	store := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := FetcherFunc(func(ctx context.Context, cursor Cursor, size int) (Page, error) {
		if cursor.Page > 1 {
			cancel()
			return Page{}, ctx.Err()
		}
		return Page{Records: []RawRecord{&Product{Code: 1, Name: "A"}}, Next: Cursor{Page: 2}, HasMore: true}, nil
	})
	obs := &recordingObserver{}

	e := newTestEngine(store, Pipeline{Fetcher: fetcher}, Config{}, obs)
	summary, err := e.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, summary.Truncated)
	assert.Equal(t, 1, summary.Committed)
	assert.Empty(t, obs.truncated)
}
