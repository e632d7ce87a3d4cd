package sqlextract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"price-sync/core/config"
	"price-sync/core/pricing"
	"price-sync/core/reconcile"
	"price-sync/core/utils"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"
)

// ErrNoQuery is returned when the source is used without a configured query.
var ErrNoQuery = errors.New("sql extract query is not configured")

// Column names the extract query is expected to select. Only code is
// required; missing columns read as empty.
const (
	ColCode        = "code"
	ColName        = "name"
	ColDescription = "description"
	ColGTIN        = "gtin"
	ColPackaging   = "packaging"
	ColSection     = "section"
	ColGroup       = "product_group"
	ColSubgroup    = "subgroup"
	ColBranch      = "branch"
	ColPrice       = "price"
	ColPromoPrice  = "promo_price"
	ColPromoFrom   = "promo_from"
	ColPromoTo     = "promo_to"
)

// Row is one extracted row keyed by column name.
type Row map[string]any

// Source reads products and prices from an upstream relational database
// with an offset-paginated query.
type Source struct {
	cfg      config.SQLExtract
	defaults reconcile.Defaults
	logger   *zap.Logger

	mu sync.Mutex
	db *sql.DB
}

// New creates the source. The connection is opened on Login.
func New(cfg config.SQLExtract, defaults reconcile.Defaults, logger *zap.Logger) *Source {
	return NewWithDB(nil, cfg, defaults, logger)
}

// NewWithDB creates the source over an open handle.
func NewWithDB(db *sql.DB, cfg config.SQLExtract, defaults reconcile.Defaults, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{cfg: cfg, defaults: defaults, logger: logger, db: db}
}

// Name implements reconcile.Source.
func (s *Source) Name() string { return s.cfg.Client }

// Jobs implements reconcile.Source.
func (s *Source) Jobs() []string { return []string{reconcile.JobCatalog} }

// Login implements reconcile.Source by opening and pinging the connection.
func (s *Source) Login(ctx context.Context) error {
	if strings.TrimSpace(s.cfg.Query) == "" {
		return ErrNoQuery
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		db, err := sql.Open(s.cfg.Driver, s.cfg.DSN)
		if err != nil {
			return fmt.Errorf("failed to open %s connection: %w", s.cfg.Driver, err)
		}
		s.db = db
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach upstream database: %w", err)
	}
	return nil
}

// Close releases the connection.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Partitions implements reconcile.Source.
func (s *Source) Partitions(context.Context, string) ([]reconcile.Partition, error) {
	return []reconcile.Partition{reconcile.AllPartition}, nil
}

// Pipeline implements reconcile.Source.
func (s *Source) Pipeline(job string, _ reconcile.Partition) (reconcile.Pipeline, error) {
	if job != reconcile.JobCatalog {
		return reconcile.Pipeline{}, fmt.Errorf("job %q is not supported by %s", job, s.Name())
	}
	return reconcile.Pipeline{
		Fetcher:    reconcile.FetcherFunc(s.fetch),
		Normalizer: reconcile.NormalizerFunc(s.normalize),
	}, nil
}

func (s *Source) fetch(ctx context.Context, cursor reconcile.Cursor, size int) (reconcile.Page, error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return reconcile.Page{}, errors.New("sql extract source is not connected")
	}

	rows, err := db.QueryContext(ctx, s.cfg.Query, size, cursor.Offset)
	if err != nil {
		return reconcile.Page{}, fmt.Errorf("failed to run extract query: %w", err)
	}
	defer rows.Close()

	records, err := scan(rows)
	if err != nil {
		return reconcile.Page{}, err
	}
	return reconcile.Page{
		Records: records,
		Next:    reconcile.Cursor{Offset: cursor.Offset + len(records)},
		HasMore: len(records) == size,
	}, nil
}

func scan(rows *sql.Rows) ([]reconcile.RawRecord, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read extract columns: %w", err)
	}
	for i, c := range cols {
		cols[i] = strings.ToLower(c)
	}

	var records []reconcile.RawRecord
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan extract row: %w", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		records = append(records, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate extract rows: %w", err)
	}
	return records, nil
}

func (s *Source) normalize(raw reconcile.RawRecord) (reconcile.Normalized, error) {
	row, ok := raw.(Row)
	if !ok {
		return reconcile.Normalized{}, fmt.Errorf("%w: unexpected %T", reconcile.ErrInvalidRecord, raw)
	}
	code := utils.ToInt64(row[ColCode])
	if code <= 0 {
		return reconcile.Normalized{}, fmt.Errorf("%w: product code %v", reconcile.ErrInvalidRecord, row[ColCode])
	}

	product := s.defaults.Product(code, utils.ToString(row[ColName]), utils.ToString(row[ColDescription]))
	product.GTINs = utils.ToString(row[ColGTIN])
	product.Packaging = utils.ToString(row[ColPackaging])
	product.Section = utils.ToString(row[ColSection])
	product.Group = utils.ToString(row[ColGroup])
	product.Subgroup = utils.ToString(row[ColSubgroup])

	branch := s.cfg.Branch
	if b := utils.ToInt(row[ColBranch]); b > 0 {
		branch = b
	}

	regular := utils.ToDecimal(row[ColPrice])
	prices := []*reconcile.Price{s.defaults.RegularPrice(code, branch, regular)}
	if promo := utils.ToDecimal(row[ColPromoPrice]); !promo.IsZero() {
		from := s.date(row[ColPromoFrom])
		to := s.date(row[ColPromoTo])
		prices = append(prices, s.defaults.PromotionalPrice(code, branch, regular, promo, from, to))
	}

	return reconcile.Normalized{
		Products: []*reconcile.Product{product},
		Prices:   reconcile.WithoutZero(prices...),
	}, nil
}

// date reads a date column. Drivers return time.Time for typed columns and
// text otherwise. Missing dates mean today.
func (s *Source) date(v any) time.Time {
	switch d := v.(type) {
	case time.Time:
		return s.defaults.Date(d)
	case nil:
		return s.defaults.Today()
	}
	str := utils.ToString(v)
	loc := s.defaults.Location
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(pricing.DateLayout, str, loc); err == nil {
		return t
	}
	if t, err := pricing.ParseDayFirst(str, loc); err == nil {
		return t
	}
	return s.defaults.Today()
}
