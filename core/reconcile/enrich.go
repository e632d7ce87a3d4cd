package reconcile

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultEnrichConcurrency bounds concurrent enrichment calls per batch.
const DefaultEnrichConcurrency = 16

// Enrich folds packaging and category data into products that were not
// enriched yet. One call pair is issued per distinct code, at most limit at a
// time. Lookup failures are logged and leave the product as it was.
// It returns the number of products enriched.
func Enrich(ctx context.Context, enricher Enricher, products []*Product, limit int, logger *zap.Logger) int {
	if enricher == nil || len(products) == 0 {
		return 0
	}
	if limit <= 0 {
		limit = DefaultEnrichConcurrency
	}

	// duplicates of a code share the result of the first occurrence
	byCode := make(map[int64][]*Product)
	var targets []*Product
	for _, p := range products {
		if p == nil || p.Enriched {
			continue
		}
		if _, ok := byCode[p.Code]; !ok {
			targets = append(targets, p)
		}
		byCode[p.Code] = append(byCode[p.Code], p)
	}

	results := make([]bool, len(targets))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, p := range targets {
		g.Go(func() error {
			results[i] = enrichOne(ctx, enricher, p, logger)
			return nil
		})
	}
	_ = g.Wait()

	enriched := 0
	for i, p := range targets {
		if !results[i] {
			continue
		}
		enriched++
		for _, dup := range byCode[p.Code][1:] {
			dup.GTINs = p.GTINs
			dup.Packaging = p.Packaging
			dup.Section, dup.Group, dup.Subgroup = p.Section, p.Group, p.Subgroup
			dup.Enriched = true
		}
	}
	return enriched
}

func enrichOne(ctx context.Context, enricher Enricher, p *Product, logger *zap.Logger) bool {
	packs, err := enricher.FetchPackaging(ctx, p.Code)
	if err != nil {
		logger.Error("Packaging lookup failed", zap.Int64("product_code", p.Code), zap.Error(err))
		return false
	}
	levels, err := enricher.FetchCategories(ctx, p.Code)
	if err != nil {
		logger.Error("Category lookup failed", zap.Int64("product_code", p.Code), zap.Error(err))
		return false
	}

	ApplyPackaging(p, packs)
	ApplyCategories(p, levels)
	p.Enriched = true
	return true
}

// ApplyPackaging merges the packaging GTINs into p.GTINs (deduplicated,
// comma-joined) and fills p.Packaging from the first active packaging when
// it is empty.
func ApplyPackaging(p *Product, packs []Packaging) {
	var gtins []string
	seen := make(map[string]struct{})
	add := func(g string) {
		g = strings.TrimSpace(g)
		if g == "" {
			return
		}
		if _, ok := seen[g]; ok {
			return
		}
		seen[g] = struct{}{}
		gtins = append(gtins, g)
	}

	for _, g := range strings.Split(p.GTINs, ",") {
		add(g)
	}
	for _, pack := range packs {
		add(pack.GTIN)
		if p.Packaging == "" && pack.Active && pack.Unit != "" {
			p.Packaging = pack.Unit
		}
	}
	p.GTINs = strings.Join(gtins, ",")
}

// ApplyCategories maps category levels 1 to 3 onto section, group and
// subgroup. Missing levels become empty strings; deeper levels are ignored.
func ApplyCategories(p *Product, levels []CategoryLevel) {
	p.Section, p.Group, p.Subgroup = "", "", ""
	for _, c := range levels {
		switch c.Level {
		case 1:
			p.Section = c.Description
		case 2:
			p.Group = c.Description
		case 3:
			p.Subgroup = c.Description
		}
	}
}
