package pagedapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"price-sync/core/config"
	"price-sync/core/httpclient"
	"price-sync/core/reconcile"

	"go.uber.org/zap"
)

const (
	pathLogin      = "/api/v1/auth/login"
	pathProducts   = "/CadastrosEstruturaisAPI/api/v1/Produto"
	pathBranches   = "/CadastrosEstruturaisAPI/api/v1/Empresa"
	pathPrices     = "/SMProdutosAPI/api/v4/produtos/precos-produtos"
	pathPackaging  = "/SMProdutosAPI/api/v4/produtos/embalagens-venda-produtos"
	pathCategories = "/SMProdutosAPI/api/v4/produtos/categorias-produtos"
	pathPromotions = "/SMPromocoesAPI/api/v1/CombosPromocionais"
)

// resolveChunk bounds the product codes of one lookup URL.
const resolveChunk = 100

// Source reads an ERP REST API paginated with a page counter.
type Source struct {
	cfg      config.PagedAPI
	client   *httpclient.Client
	defaults reconcile.Defaults
	logger   *zap.Logger
}

// New creates the source.
func New(cfg config.PagedAPI, defaults reconcile.Defaults, logger *zap.Logger) *Source {
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
func (s *Source) Jobs() []string {
	return []string{reconcile.JobProducts, reconcile.JobPrices, reconcile.JobPromotions}
}

// Login implements reconcile.Source. Concurrent callers share one request.
func (s *Source) Login(ctx context.Context) error {
	return s.client.Once("login", func() error {
		var resp loginResponse
		body := map[string]string{
			"company":  s.cfg.Company,
			"username": s.cfg.Username,
			"password": s.cfg.Password,
		}
		if err := s.client.PostJSON(ctx, pathLogin, body, &resp); err != nil {
			return fmt.Errorf("failed to login: %w", err)
		}
		if resp.AccessToken == "" {
			return fmt.Errorf("failed to login: empty access token")
		}
		s.client.SetHeader("Authorization", "Bearer "+resp.AccessToken)
		s.logger.Info("Logged in", zap.String("client", s.cfg.Client))
		return nil
	})
}

// Partitions implements reconcile.Source. Promotions are read per active branch.
func (s *Source) Partitions(ctx context.Context, job string) ([]reconcile.Partition, error) {
	if job != reconcile.JobPromotions {
		return []reconcile.Partition{reconcile.AllPartition}, nil
	}

	var resp page[branchDTO]
	if err := s.client.GetJSON(ctx, pathBranches, url.Values{"Status": {"A"}}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	parts := make([]reconcile.Partition, 0, len(resp.Items))
	for _, b := range resp.Items {
		parts = append(parts, reconcile.Partition{Name: strconv.Itoa(b.ID), BranchID: b.ID})
	}
	return parts, nil
}

// Pipeline implements reconcile.Source.
func (s *Source) Pipeline(job string, partition reconcile.Partition) (reconcile.Pipeline, error) {
	pipe := reconcile.Pipeline{
		Start:    reconcile.Cursor{Page: 1},
		Enricher: s,
	}
	switch job {
	case reconcile.JobProducts:
		pipe.Fetcher = reconcile.FetcherFunc(s.fetchProducts)
		pipe.Normalizer = reconcile.NormalizerFunc(s.normalizeProduct)
	case reconcile.JobPrices:
		pipe.Fetcher = reconcile.FetcherFunc(s.fetchPrices)
		pipe.Normalizer = reconcile.NormalizerFunc(s.normalizePrice)
		pipe.Resolver = s
	case reconcile.JobPromotions:
		pipe.Fetcher = s.promotionFetcher(partition.BranchID)
		pipe.Normalizer = reconcile.NormalizerFunc(s.normalizePromotion)
		pipe.Resolver = s
	default:
		return reconcile.Pipeline{}, fmt.Errorf("job %q is not supported by %s", job, s.Name())
	}
	return pipe, nil
}

func (s *Source) fetchProducts(ctx context.Context, cursor reconcile.Cursor, size int) (reconcile.Page, error) {
	var resp page[productDTO]
	q := pageQuery(cursor.Page, size)
	if err := s.client.GetJSON(ctx, pathProducts, q, &resp); err != nil {
		return reconcile.Page{}, err
	}
	return reconcile.Page{
		Records: records(resp.Items),
		Next:    reconcile.Cursor{Page: cursor.Page + 1},
		HasMore: resp.HasNext,
	}, nil
}

// The price endpoint answers with a bare array; an empty one ends the stream.
func (s *Source) fetchPrices(ctx context.Context, cursor reconcile.Cursor, size int) (reconcile.Page, error) {
	var resp []priceDTO
	q := url.Values{
		"modelo._pageNo":   {strconv.Itoa(cursor.Page)},
		"modelo._pageSize": {strconv.Itoa(size)},
	}
	if err := s.client.GetJSON(ctx, pathPrices, q, &resp); err != nil {
		return reconcile.Page{}, err
	}
	return reconcile.Page{
		Records: records(resp),
		Next:    reconcile.Cursor{Page: cursor.Page + 1},
		HasMore: true,
	}, nil
}

func (s *Source) promotionFetcher(branch int) reconcile.PageFetcher {
	return reconcile.FetcherFunc(func(ctx context.Context, cursor reconcile.Cursor, size int) (reconcile.Page, error) {
		var resp page[promotionDTO]
		q := pageQuery(cursor.Page, size)
		q.Set("Vigente", "S")
		q.Set("Status", "A")
		q.Set("NroEmpresa", strconv.Itoa(branch))
		if err := s.client.GetJSON(ctx, pathPromotions, q, &resp); err != nil {
			return reconcile.Page{}, err
		}
		recs := make([]reconcile.RawRecord, len(resp.Items))
		for i, p := range resp.Items {
			recs[i] = branchPromotion{Branch: branch, Promotion: p}
		}
		return reconcile.Page{
			Records: recs,
			Next:    reconcile.Cursor{Page: cursor.Page + 1},
			HasMore: resp.HasNext,
		}, nil
	})
}

// FetchPackaging implements reconcile.Enricher.
func (s *Source) FetchPackaging(ctx context.Context, code int64) ([]reconcile.Packaging, error) {
	var resp []packagingGroupDTO
	q := url.Values{"idProduto": {strconv.FormatInt(code, 10)}}
	if err := s.client.GetJSON(ctx, pathPackaging, q, &resp); err != nil {
		return nil, err
	}
	var packs []reconcile.Packaging
	for _, g := range resp {
		for _, p := range g.Packagings {
			packs = append(packs, reconcile.Packaging{GTIN: p.GTIN, Unit: p.Unit, Active: p.Status == "A"})
		}
	}
	return packs, nil
}

// FetchCategories implements reconcile.Enricher.
func (s *Source) FetchCategories(ctx context.Context, code int64) ([]reconcile.CategoryLevel, error) {
	var resp []categoryDTO
	q := url.Values{"idProduto": {strconv.FormatInt(code, 10)}}
	if err := s.client.GetJSON(ctx, pathCategories, q, &resp); err != nil {
		return nil, err
	}
	levels := make([]reconcile.CategoryLevel, 0, len(resp))
	for _, c := range resp {
		if c.Level <= 3 {
			levels = append(levels, reconcile.CategoryLevel{Level: c.Level, Description: c.Description})
		}
	}
	return levels, nil
}

// ResolveProducts implements reconcile.ProductResolver.
func (s *Source) ResolveProducts(ctx context.Context, codes []int64) ([]*reconcile.Product, error) {
	var out []*reconcile.Product
	for start := 0; start < len(codes); start += resolveChunk {
		chunk := codes[start:min(start+resolveChunk, len(codes))]
		for pg := 1; ; pg++ {
			q := pageQuery(pg, 500)
			for _, c := range chunk {
				q.Add("idProduto", strconv.FormatInt(c, 10))
			}
			var resp page[productDTO]
			if err := s.client.GetJSON(ctx, pathProducts, q, &resp); err != nil {
				return nil, err
			}
			for _, p := range resp.Items {
				n, err := s.normalizeProduct(p)
				if err == nil {
					out = append(out, n.Products...)
				}
			}
			if !resp.HasNext || len(resp.Items) == 0 {
				break
			}
		}
	}
	return out, nil
}

func pageQuery(pg, size int) url.Values {
	return url.Values{
		"Page":     {strconv.Itoa(pg)},
		"PageSize": {strconv.Itoa(size)},
	}
}

func records[T any](items []T) []reconcile.RawRecord {
	recs := make([]reconcile.RawRecord, len(items))
	for i, it := range items {
		recs[i] = it
	}
	return recs
}
