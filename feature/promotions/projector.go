package promotions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"price-sync/core/pricing"
	"price-sync/core/reconcile"
	"price-sync/feature/catalog/models"

	"go.uber.org/zap"
)

// Print queue defaults for every projected row.
const (
	defaultMobile       = "0"
	defaultInstallments = "1"
	defaultRateID       = "sjuros"
)

// ErrNoPrintQueue is returned when the transaction cannot write print rows.
var ErrNoPrintQueue = errors.New("transaction does not support the print queue")

// PrintQueueTx is a catalog transaction able to append to the print queue.
type PrintQueueTx interface {
	reconcile.Tx
	InsertDailyPrints(ctx context.Context, rows []models.DailyPrint) error
}

// Clearer empties the print queue.
type Clearer interface {
	ClearDailyPrints(ctx context.Context) error
}

// Projector turns the promotions of a batch into print queue rows, inside
// the batch transaction and after its prices were written.
type Projector struct {
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewProjector creates a projector stamping rows in loc.
func NewProjector(loc *time.Location, logger *zap.Logger) *Projector {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{loc: loc, now: time.Now, logger: logger}
}

// Project implements reconcile.Projector.
func (p *Projector) Project(ctx context.Context, tx reconcile.Tx, batch *reconcile.Batch) (int, error) {
	if len(batch.Promotions) == 0 {
		return 0, nil
	}
	queue, ok := tx.(PrintQueueTx)
	if !ok {
		return 0, ErrNoPrintQueue
	}

	// prices inserted by this batch only have ids inside the transaction
	index, err := tx.LoadIndex(ctx, promotionCodes(batch.Promotions))
	if err != nil {
		return 0, fmt.Errorf("failed to reload index: %w", err)
	}

	clock := pricing.Clock(p.now(), p.loc)
	var rows []models.DailyPrint
	for _, promo := range batch.Promotions {
		for _, item := range promo.Items {
			row, ok := p.row(promo, item, index, clock)
			if ok {
				rows = append(rows, row)
			}
		}
	}

	if err := queue.InsertDailyPrints(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (p *Projector) row(promo *reconcile.Promotion, item reconcile.PromotionItem, index reconcile.Index, clock string) (models.DailyPrint, bool) {
	code, t := itemKey(item)
	entry, ok := index[code]
	if !ok {
		p.logger.Warn("Promotion item without product",
			zap.String("promotion", promo.Name),
			zap.Int64("product_code", code),
		)
		return models.DailyPrint{}, false
	}

	row := models.DailyPrint{
		ProductID:       entry.ProductID,
		CompanyID:       promo.CompanyID,
		EstablishmentID: promo.EstablishmentID,
		UserID:          promo.UserID,
		Time:            clock,
		Name:            promo.Name,
		Mobile:          defaultMobile,
		Installments:    defaultInstallments,
		RateID:          defaultRateID,
	}
	if !promo.Date.IsZero() {
		row.Date = promo.Date.In(p.loc).Format(pricing.DateLayout)
	} else {
		row.Date = p.now().In(p.loc).Format(pricing.DateLayout)
	}

	ref, found := entry.Find(promo.EstablishmentID, t)
	if !found {
		ref, found = entry.Find(promo.EstablishmentID, reconcile.Regular)
	}
	if found {
		id := ref.ID
		row.PriceID = &id
	}

	layout := LayoutFor(t, entry.Section)
	row.PosterID = layout.PosterID
	row.ReasonID = layout.ReasonID
	row.Format = layout.Format
	row.Size = layout.Size
	return row, true
}

func itemKey(item reconcile.PromotionItem) (int64, reconcile.CommercialType) {
	t := reconcile.Regular
	var code int64
	if item.Price != nil {
		code = item.Price.ProductCode
		t = item.Price.Type
	}
	if item.Product != nil {
		code = item.Product.Code
	}
	return code, t
}

func promotionCodes(promos []*reconcile.Promotion) []int64 {
	var products []*reconcile.Product
	var prices []*reconcile.Price
	for _, promo := range promos {
		for _, item := range promo.Items {
			products = append(products, item.Product)
			prices = append(prices, item.Price)
		}
	}
	return reconcile.Codes(products, prices)
}

// Reset clears the print queue. Promotion runs call it once before reading.
func Reset(ctx context.Context, queue Clearer, logger *zap.Logger) error {
	if err := queue.ClearDailyPrints(ctx); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("Print queue cleared")
	}
	return nil
}
