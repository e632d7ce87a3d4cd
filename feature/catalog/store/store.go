package store

import (
	"context"
	"fmt"

	"price-sync/core/reconcile"
	"price-sync/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// indexQuery reads products with all their price rows. Products without
// prices come back once with NULL price columns.
const indexQuery = `SELECT p.prod_cod AS code, p.prod_id AS product_id, p.prod_sessao AS section, ` +
	`p.prod_grupo AS product_group, p.prod_subgrupo AS subgroup, v.vlr_id AS price_id, ` +
	`v.vlr_filial AS branch_id, v.vlr_idcomercial AS commercial_type ` +
	`FROM cf_produto p LEFT JOIN cf_valor v ON v.vlr_produto = p.prod_id ` +
	`WHERE p.prod_cod IN ? ORDER BY p.prod_id, v.vlr_id`

type indexRow struct {
	Code           int64
	ProductID      int64
	Section        *string
	ProductGroup   *string
	Subgroup       *string
	PriceID        *int64
	BranchID       *int
	CommercialType *int
}

// Store is the GORM-backed catalog store.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a catalog store. logger receives database failures.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// LoadIndex reads the index for codes outside of any transaction.
func (s *Store) LoadIndex(ctx context.Context, codes []int64) (reconcile.Index, error) {
	return loadIndex(s.db.WithContext(ctx), codes, s.logger)
}

// Begin opens a catalog transaction.
func (s *Store) Begin(ctx context.Context) (reconcile.Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("Failed to begin transaction", zap.Error(tx.Error))
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return &Tx{db: tx, logger: s.logger}, nil
}

// ClearDailyPrints empties the print queue. Promotion runs call it once
// before their first batch.
func (s *Store) ClearDailyPrints(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM " + models.DailyPrint{}.TableName()).Error; err != nil {
		s.logger.Error("Failed to clear print queue", zap.Error(err))
		return fmt.Errorf("failed to clear print queue: %w", err)
	}
	return nil
}

func loadIndex(db *gorm.DB, codes []int64, logger *zap.Logger) (reconcile.Index, error) {
	index := reconcile.Index{}
	if len(codes) == 0 {
		return index, nil
	}

	var rows []indexRow
	if err := db.Raw(indexQuery, codes).Scan(&rows).Error; err != nil {
		logger.Error("Failed to load index", zap.Int("codes", len(codes)), zap.Error(err))
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	for _, r := range rows {
		entry, ok := index[r.Code]
		if !ok {
			entry = &reconcile.IndexEntry{
				ProductID: r.ProductID,
				Section:   deref(r.Section),
				Group:     deref(r.ProductGroup),
				Subgroup:  deref(r.Subgroup),
			}
			index[r.Code] = entry
		}
		// a code stored twice downstream resolves to its lowest id
		if entry.ProductID != r.ProductID || r.PriceID == nil {
			continue
		}
		ref := reconcile.PriceRef{ID: *r.PriceID}
		if r.BranchID != nil {
			ref.BranchID = *r.BranchID
		}
		if r.CommercialType != nil {
			ref.Type = reconcile.CommercialType(*r.CommercialType)
		}
		entry.Prices = append(entry.Prices, ref)
	}
	return index, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
