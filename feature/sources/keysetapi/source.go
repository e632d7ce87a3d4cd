package keysetapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"price-sync/core/config"
	"price-sync/core/httpclient"
	"price-sync/core/pricing"
	"price-sync/core/reconcile"
	"price-sync/core/utils"

	"go.uber.org/zap"
)

const (
	pathLogin    = "/v1.1/auth"
	pathBranches = "/v1.5/unidades"
	pathProducts = "/v2.8/produtounidade/listaprodutos/%d/unidade/%d/detalhado/ativos"
)

// ErrStalledCursor is returned when a page does not move the keyset
// watermark forward.
var ErrStalledCursor = errors.New("keyset cursor did not advance")

type envelope[T any] struct {
	Response T `json:"response"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type branchList struct {
	Branches []struct {
		Code any `json:"Codigo"`
	} `json:"unidades"`
}

type productList struct {
	Products []productDTO `json:"produtos"`
}

type productDTO struct {
	Code         any    `json:"Codigo"`
	Description  string `json:"Descricao"`
	Barcode      any    `json:"CodigoBarras"`
	Packaging    string `json:"TipoEmbalagem"`
	Price        any    `json:"Preco"`
	RegularPrice any    `json:"PrecoNormal"`
	Offer        string `json:"Oferta"`
	OfferDate    string `json:"DataOferta"`
}

// branchProduct is the raw record of the catalog job.
type branchProduct struct {
	Branch  int
	Product productDTO
}

// Source reads a per-branch product listing paginated by the last product
// code seen.
type Source struct {
	cfg      config.KeysetAPI
	client   *httpclient.Client
	defaults reconcile.Defaults
	logger   *zap.Logger
}

// New creates the source.
func New(cfg config.KeysetAPI, defaults reconcile.Defaults, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		cfg:      cfg,
		client:   httpclient.New(cfg.BaseURL, cfg.Timeout),
		defaults: defaults,
		logger:   logger,
	}
}

// Name implements reconcile.Source.
func (s *Source) Name() string { return s.cfg.Client }

// Jobs implements reconcile.Source.
func (s *Source) Jobs() []string { return []string{reconcile.JobCatalog} }

// Login implements reconcile.Source. A configured token is used as is.
func (s *Source) Login(ctx context.Context) error {
	return s.client.Once("login", func() error {
		token := s.cfg.Token
		if token == "" {
			var resp envelope[loginResponse]
			body := map[string]string{"usuario": s.cfg.Username, "senha": s.cfg.Password}
			if err := s.client.PostJSON(ctx, pathLogin, body, &resp); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			token = resp.Response.Token
		}
		if token == "" {
			return fmt.Errorf("failed to login: empty token")
		}
		s.client.SetHeader("token", token)
		return nil
	})
}

// Partitions implements reconcile.Source. Every branch is its own stream.
func (s *Source) Partitions(ctx context.Context, job string) ([]reconcile.Partition, error) {
	branches := s.cfg.Branches
	if len(branches) == 0 {
		var resp envelope[branchList]
		if err := s.client.GetJSON(ctx, pathBranches, nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to list branches: %w", err)
		}
		for _, b := range resp.Response.Branches {
			if id := utils.ToInt(b.Code); id > 0 {
				branches = append(branches, id)
			}
		}
	}

	parts := make([]reconcile.Partition, 0, len(branches))
	for _, b := range branches {
		parts = append(parts, reconcile.Partition{Name: strconv.Itoa(b), BranchID: b})
	}
	return parts, nil
}

// Pipeline implements reconcile.Source.
func (s *Source) Pipeline(job string, partition reconcile.Partition) (reconcile.Pipeline, error) {
	if job != reconcile.JobCatalog {
		return reconcile.Pipeline{}, fmt.Errorf("job %q is not supported by %s", job, s.Name())
	}
	return reconcile.Pipeline{
		Fetcher:    s.fetcher(partition.BranchID),
		Normalizer: reconcile.NormalizerFunc(s.normalize),
	}, nil
}

// The listing has no page size: the upstream decides how many products a
// page holds, and an empty page ends the stream.
func (s *Source) fetcher(branch int) reconcile.PageFetcher {
	return reconcile.FetcherFunc(func(ctx context.Context, cursor reconcile.Cursor, _ int) (reconcile.Page, error) {
		path := fmt.Sprintf(pathProducts, cursor.After, branch)
		if s.cfg.ChangedOnly {
			path += "/dataHoraManutencao/" + s.defaults.Today().Format("02-01-2006") + "%2000:00:00"
		}

		var resp envelope[productList]
		if err := s.client.GetJSON(ctx, path, nil, &resp); err != nil {
			return reconcile.Page{}, err
		}

		items := resp.Response.Products
		page := reconcile.Page{
			Records: make([]reconcile.RawRecord, len(items)),
			Next:    cursor,
			HasMore: true,
		}
		next := cursor.After
		for i, p := range items {
			page.Records[i] = branchProduct{Branch: branch, Product: p}
			if code := utils.ToInt64(p.Code); code > next {
				next = code
			}
		}
		if len(items) > 0 {
			// the watermark must advance or the same page comes back forever
			if next <= cursor.After {
				return reconcile.Page{}, fmt.Errorf("%w: no product code above %d", ErrStalledCursor, cursor.After)
			}
			page.Next = reconcile.Cursor{After: next}
		}
		return page, nil
	})
}

// normalize maps one listed product to the product, its shelf price and,
// when the product is on offer, its promotional price.
func (s *Source) normalize(raw reconcile.RawRecord) (reconcile.Normalized, error) {
	bp, ok := raw.(branchProduct)
	if !ok {
		return reconcile.Normalized{}, fmt.Errorf("%w: unexpected %T", reconcile.ErrInvalidRecord, raw)
	}
	p := bp.Product
	code := utils.ToInt64(p.Code)
	if code <= 0 {
		return reconcile.Normalized{}, fmt.Errorf("%w: product code %v", reconcile.ErrInvalidRecord, p.Code)
	}

	name := strings.TrimSpace(p.Description)
	product := s.defaults.Product(code, name, name)
	product.GTINs = utils.ToString(p.Barcode)
	product.Packaging = strings.TrimSpace(p.Packaging)

	price := utils.ToDecimal(p.Price)
	prices := []*reconcile.Price{s.defaults.RegularPrice(code, bp.Branch, price)}
	if utils.ToBool(p.Offer) {
		day := s.defaults.Today()
		if t, err := pricing.ParseDayFirst(p.OfferDate, s.location()); err == nil {
			day = t
		}
		prices = append(prices, s.defaults.PromotionalPrice(code, bp.Branch, utils.ToDecimal(p.RegularPrice), price, day, day))
	}

	return reconcile.Normalized{
		Products: []*reconcile.Product{product},
		Prices:   reconcile.WithoutZero(prices...),
	}, nil
}

func (s *Source) location() *time.Location {
	if s.defaults.Location != nil {
		return s.defaults.Location
	}
	return time.Local
}
