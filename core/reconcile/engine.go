package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"price-sync/core/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWriteChunkSize bounds the rows handed to one writer call.
const DefaultWriteChunkSize = 500

// Config holds the per-run settings of an Engine.
type Config struct {
	RunID     string
	Source    string
	Job       string
	Partition Partition

	Reader ReaderConfig

	// EnrichConcurrency bounds concurrent enrichment calls.
	EnrichConcurrency int

	// WriteChunkSize bounds the rows of one insert or update statement.
	WriteChunkSize int

	// UpdateProducts enables updates of products that already exist.
	// When false, existing products are only used for matching.
	UpdateProducts bool
}

// Engine drives one partition of a job: it reads pages, reconciles each one
// as a batch and commits or rolls it back before reading the next page.
type Engine struct {
	cfg       Config
	pipe      Pipeline
	store     Store
	logs      *logger.Channels
	observers []Observer
}

// NewEngine creates an engine for one partition.
func NewEngine(cfg Config, pipe Pipeline, store Store, logs *logger.Channels, observers ...Observer) *Engine {
	if cfg.WriteChunkSize <= 0 {
		cfg.WriteChunkSize = DefaultWriteChunkSize
	}
	if cfg.EnrichConcurrency <= 0 {
		cfg.EnrichConcurrency = DefaultEnrichConcurrency
	}
	if logs == nil {
		logs = logger.NopChannels()
	}
	return &Engine{cfg: cfg, pipe: pipe, store: store, logs: logs, observers: observers}
}

// Run processes the whole stream. Batch failures are rolled back, logged and
// skipped; they never stop the run. The returned error is reserved for setup
// failures and cancellation.
func (e *Engine) Run(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	summary := RunSummary{
		RunID:     e.cfg.RunID,
		Source:    e.cfg.Source,
		Job:       e.cfg.Job,
		Partition: e.cfg.Partition.Name,
	}
	if e.pipe.Fetcher == nil || e.pipe.Normalizer == nil {
		return summary, errors.New("pipeline requires a fetcher and a normalizer")
	}
	if e.store == nil {
		return summary, errors.New("engine requires a store")
	}

	fields := e.fields()
	app := e.logs.App.With(fields...)
	app.Info("Run started", zap.Int("page_size", e.cfg.Reader.PageSize))

	reader := NewReader(e.pipe.Fetcher, e.pipe.Start, e.cfg.Reader, e.logs.Error.With(fields...))

	seq := 0
	for records := range reader.Pages(ctx) {
		seq++
		res := e.processBatch(ctx, seq, records)
		summary.add(res)
		for _, obs := range e.observers {
			obs.BatchDone(ctx, res)
		}
	}
	summary.Elapsed = time.Since(start)

	if reader.Truncated() {
		summary.Truncated = true
		e.logs.Error.With(fields...).Warn("Source stream truncated",
			zap.Int("batches", summary.Batches),
			zap.Error(reader.Err()),
		)
		for _, obs := range e.observers {
			obs.StreamTruncated(ctx, summary, reader.Err())
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("run canceled: %w", err)
	}

	app.Info("Run finished",
		zap.Int("batches", summary.Batches),
		zap.Int("committed", summary.Committed),
		zap.Int("rolled_back", summary.RolledBack),
		zap.Int("products_inserted", summary.ProductsInserted),
		zap.Int("products_updated", summary.ProductsUpdated),
		zap.Int("prices_inserted", summary.PricesInserted),
		zap.Int("prices_updated", summary.PricesUpdated),
		zap.Int("dropped", summary.RecordsDropped),
		zap.Bool("truncated", summary.Truncated),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (e *Engine) processBatch(ctx context.Context, seq int, records []RawRecord) BatchResult {
	res := BatchResult{
		RunID:     e.cfg.RunID,
		Source:    e.cfg.Source,
		Job:       e.cfg.Job,
		Partition: e.cfg.Partition.Name,
		Seq:       seq,
	}
	fields := append(e.fields(), zap.Int("batch", seq))
	errLog := e.logs.Error.With(fields...)
	dbLog := e.logs.Database.With(fields...)

	batch := e.normalize(seq, records, &res, errLog)
	if batch.Empty() {
		res.Outcome = OutcomeSkipped
		return res
	}

	Enrich(ctx, e.pipe.Enricher, batch.Products, e.cfg.EnrichConcurrency, errLog)

	products := uniqueProducts(batch.Products)
	codes := Codes(products, batch.Prices)

	index, err := e.store.LoadIndex(ctx, codes)
	if err != nil {
		return e.fail(res, batch, "index", err, errLog)
	}

	// products must exist before their prices are matched
	var created []*Product
	if len(batch.Prices) > 0 {
		if missing := index.Missing(codes); len(missing) > 0 {
			created, err = e.createMissing(ctx, products, missing, errLog, dbLog)
			res.ProductsInserted = len(created)
			if err != nil {
				return e.fail(res, batch, "create missing products", err, errLog)
			}
			if len(created) > 0 {
				reloaded, err := e.store.LoadIndex(ctx, missing)
				if err != nil {
					return e.fail(res, batch, "index", err, errLog)
				}
				index.Merge(reloaded)
			}
		}
	}

	productDiff := DiffProducts(products, index)
	priceDiff := DiffPrices(batch.Prices, index)
	res.Dropped += e.logRejections(productDiff.Rejected, errLog)
	res.Dropped += e.logRejections(priceDiff.Rejected, errLog)
	if e.cfg.UpdateProducts {
		productDiff.Existing = without(productDiff.Existing, created)
	} else {
		productDiff.Existing = nil
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return e.fail(res, batch, "begin", err, errLog)
	}

	projected, err := e.write(ctx, tx, batch, productDiff, priceDiff, dbLog)
	if err == nil {
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("failed to commit: %w", err)
		}
	}
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			dbLog.Warn("Rollback failed", zap.Error(rbErr))
		}
		return e.fail(res, batch, "write", err, errLog)
	}

	res.Outcome = OutcomeCommitted
	res.ProductsInserted += len(productDiff.New)
	res.ProductsUpdated = len(productDiff.Existing)
	res.PricesInserted = len(priceDiff.New)
	res.PricesUpdated = len(priceDiff.Existing)
	res.Projected = projected
	res.Prices = append(append([]*Price{}, priceDiff.New...), priceDiff.Existing...)

	e.logs.App.With(fields...).Info("Batch committed",
		zap.Int("records", len(records)),
		zap.Int("products_inserted", res.ProductsInserted),
		zap.Int("products_updated", res.ProductsUpdated),
		zap.Int("prices_inserted", res.PricesInserted),
		zap.Int("prices_updated", res.PricesUpdated),
		zap.Int("dropped", res.Dropped),
	)
	return res
}

// write runs the four bulk writes concurrently; they touch disjoint rows.
func (e *Engine) write(ctx context.Context, tx Tx, batch *Batch, pd ProductDiff, prd PriceDiff, dbLog *zap.Logger) (int, error) {
	size := e.cfg.WriteChunkSize

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return inChunks(gctx, pd.New, size, statement(dbLog, "insert products", tx.InsertProducts)) })
	g.Go(func() error { return inChunks(gctx, pd.Existing, size, statement(dbLog, "update products", tx.UpdateProducts)) })
	g.Go(func() error { return inChunks(gctx, prd.New, size, statement(dbLog, "insert prices", tx.InsertPrices)) })
	g.Go(func() error { return inChunks(gctx, prd.Existing, size, statement(dbLog, "update prices", tx.UpdatePrices)) })
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if e.pipe.Projector == nil {
		return 0, nil
	}
	n, err := e.pipe.Projector.Project(ctx, tx, batch)
	if err != nil {
		dbLog.Error("Statement failed",
			zap.String("statement", "project promotions"),
			zap.Int("rows", len(batch.Promotions)),
			zap.Any("records", batch.Promotions),
			zap.Error(err),
		)
		return 0, fmt.Errorf("failed to project batch: %w", err)
	}
	return n, nil
}

// createMissing inserts, in their own transaction, the products referenced by
// the batch but absent downstream. Codes not carried by the batch are looked
// up through the resolver when the pipeline has one.
func (e *Engine) createMissing(ctx context.Context, products []*Product, missing []int64, errLog, dbLog *zap.Logger) ([]*Product, error) {
	wanted := make(map[int64]struct{}, len(missing))
	for _, code := range missing {
		wanted[code] = struct{}{}
	}

	var create []*Product
	take := func(p *Product) {
		if validateProduct(p) != nil {
			return
		}
		if _, ok := wanted[p.Code]; !ok {
			return
		}
		delete(wanted, p.Code)
		create = append(create, p)
	}
	for _, p := range products {
		take(p)
	}

	if len(wanted) > 0 && e.pipe.Resolver != nil {
		unresolved := make([]int64, 0, len(wanted))
		for _, code := range missing {
			if _, ok := wanted[code]; ok {
				unresolved = append(unresolved, code)
			}
		}
		resolved, err := e.pipe.Resolver.ResolveProducts(ctx, unresolved)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve missing products: %w", err)
		}
		Enrich(ctx, e.pipe.Enricher, resolved, e.cfg.EnrichConcurrency, errLog)
		for _, p := range resolved {
			take(p)
		}
	}

	if len(create) == 0 {
		return nil, nil
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	if err := inChunks(ctx, create, e.cfg.WriteChunkSize, statement(dbLog, "insert missing products", tx.InsertProducts)); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to commit missing products: %w", err)
	}
	return create, nil
}

func (e *Engine) normalize(seq int, records []RawRecord, res *BatchResult, errLog *zap.Logger) *Batch {
	batch := &Batch{Seq: seq}
	for i, raw := range records {
		n, err := e.safeNormalize(raw)
		if err != nil {
			res.Dropped++
			errLog.Error("Record dropped", zap.Int("record", i), zap.Error(err))
			continue
		}
		batch.Products = append(batch.Products, n.Products...)
		batch.Prices = append(batch.Prices, n.Prices...)
		for _, promo := range n.Promotions {
			if promo == nil {
				continue
			}
			batch.Promotions = append(batch.Promotions, promo)
			for _, item := range promo.Items {
				if item.Product != nil {
					batch.Products = append(batch.Products, item.Product)
				}
				if item.Price != nil {
					batch.Prices = append(batch.Prices, item.Price)
				}
			}
		}
	}
	return batch
}

func (e *Engine) safeNormalize(raw RawRecord) (n Normalized, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: normalizer panic: %v", ErrInvalidRecord, r)
		}
	}()
	return e.pipe.Normalizer.Normalize(raw)
}

func (e *Engine) logRejections(rejected []Rejection, errLog *zap.Logger) int {
	for _, r := range rejected {
		errLog.Error("Record dropped",
			zap.Int64("product_code", r.ProductCode),
			zap.String("key", r.Key),
			zap.Error(r.Err),
		)
	}
	return len(rejected)
}

func (e *Engine) fail(res BatchResult, batch *Batch, stage string, err error, errLog *zap.Logger) BatchResult {
	res.Outcome = OutcomeRolledBack
	res.Err = fmt.Errorf("%s: %w", stage, err)
	res.Batch = batch
	errLog.Error("Batch rolled back", zap.String("stage", stage), zap.Error(err))
	return res
}

func (e *Engine) fields() []zap.Field {
	return []zap.Field{
		zap.String("run_id", e.cfg.RunID),
		zap.String("source", e.cfg.Source),
		zap.String("job", e.cfg.Job),
		zap.String("partition", e.cfg.Partition.Name),
	}
}

// uniqueProducts keeps the first product of each code.
func uniqueProducts(products []*Product) []*Product {
	seen := make(map[int64]struct{}, len(products))
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if p == nil {
			out = append(out, p)
			continue
		}
		if _, ok := seen[p.Code]; ok {
			continue
		}
		seen[p.Code] = struct{}{}
		out = append(out, p)
	}
	return out
}

// without removes the products already written in this batch.
func without(products, written []*Product) []*Product {
	if len(written) == 0 {
		return products
	}
	skip := make(map[int64]struct{}, len(written))
	for _, p := range written {
		skip[p.Code] = struct{}{}
	}
	out := products[:0:0]
	for _, p := range products {
		if _, ok := skip[p.Code]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// statement logs a failing chunk with its records on dbLog. Chunks aborted
// because a sibling writer already failed are not logged again.
func statement[T any](dbLog *zap.Logger, name string, fn func(context.Context, []T) error) func(context.Context, []T) error {
	return func(ctx context.Context, chunk []T) error {
		err := fn(ctx, chunk)
		if err != nil && ctx.Err() == nil {
			dbLog.Error("Statement failed",
				zap.String("statement", name),
				zap.Int("rows", len(chunk)),
				zap.Any("records", chunk),
				zap.Error(err),
			)
		}
		return err
	}
}

func inChunks[T any](ctx context.Context, items []T, size int, fn func(context.Context, []T) error) error {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		if err := fn(ctx, items[start:end]); err != nil {
			return err
		}
	}
	return nil
}
