package store

import (
	"context"
	"fmt"
	"sync"

	"price-sync/core/reconcile"
	"price-sync/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Tx is one catalog transaction. It is safe for concurrent use; statements
// share the transaction's connection and are issued one at a time.
type Tx struct {
	db     *gorm.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// LoadIndex reads the index inside the transaction.
func (t *Tx) LoadIndex(ctx context.Context, codes []int64) (reconcile.Index, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return loadIndex(t.db.WithContext(ctx), codes, t.logger)
}

// InsertProducts inserts products and sets their ID.
func (t *Tx) InsertProducts(ctx context.Context, products []*reconcile.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]models.Product, len(products))
	for i, p := range products {
		rows[i] = models.FromProduct(p)
		rows[i].ID = 0
	}

	if err := t.create(ctx, &rows, models.Product{}.TableName()); err != nil {
		return err
	}
	for i := range rows {
		products[i].ID = rows[i].ID
	}
	return nil
}

// UpdateProducts updates the descriptive columns of products matched by ID.
// Empty values leave the stored column untouched.
func (t *Tx) UpdateProducts(ctx context.Context, products []*reconcile.Product) error {
	if len(products) == 0 {
		return nil
	}
	u := newCaseUpdate(models.Product{}.TableName(), "prod_id")
	for _, p := range products {
		row := models.FromProduct(p)
		u.add(row.ID,
			set("prod_nome", row.Name),
			set("prod_desc", row.Description),
			set("prod_sku", row.SKU),
			set("prod_proporcao", row.Proportion),
			set("prod_sessao", row.Section),
			set("prod_grupo", row.Group),
			set("prod_subgrupo", row.Subgroup),
		)
	}
	return t.exec(ctx, u)
}

// InsertPrices inserts prices and sets their ID. ProductID must be set.
func (t *Tx) InsertPrices(ctx context.Context, prices []*reconcile.Price) error {
	if len(prices) == 0 {
		return nil
	}
	rows := make([]models.Price, len(prices))
	for i, p := range prices {
		rows[i] = models.FromPrice(p)
		rows[i].ID = 0
	}

	if err := t.create(ctx, &rows, models.Price{}.TableName()); err != nil {
		return err
	}
	for i := range rows {
		prices[i].ID = rows[i].ID
	}
	return nil
}

// UpdatePrices rewrites value, validity and stamps of prices matched by ID.
func (t *Tx) UpdatePrices(ctx context.Context, prices []*reconcile.Price) error {
	if len(prices) == 0 {
		return nil
	}
	u := newCaseUpdate(models.Price{}.TableName(), "vlr_id")
	for _, p := range prices {
		row := models.FromPrice(p)
		u.add(row.ID,
			set("vlr_valores", row.Values),
			set("vlr_data_de", row.ValidFrom),
			set("vlr_data_ate", row.ValidTo),
			set("vlr_hora", row.Time),
			set("vlr_usuario", row.UserID),
		)
	}
	return t.exec(ctx, u)
}

// InsertDailyPrints appends rows to the print queue.
func (t *Tx) InsertDailyPrints(ctx context.Context, rows []models.DailyPrint) error {
	if len(rows) == 0 {
		return nil
	}
	return t.create(ctx, &rows, models.DailyPrint{}.TableName())
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.db.Commit().Error; err != nil {
		t.logger.Error("Failed to commit", zap.Error(err))
		return err
	}
	return nil
}

// Rollback rolls the transaction back.
func (t *Tx) Rollback() error {
	return t.db.Rollback().Error
}

// create and exec only wrap errors; the caller logs the failing records on
// its database channel.
func (t *Tx) create(ctx context.Context, rows any, table string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.db.WithContext(ctx).Create(rows).Error; err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (t *Tx) exec(ctx context.Context, u *caseUpdate) error {
	query, args, ok := u.build()
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.db.WithContext(ctx).Exec(query, args...).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", u.table, err)
	}
	return nil
}
