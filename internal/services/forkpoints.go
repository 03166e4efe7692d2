package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ortelius/forkpoint-cves/internal/clients"
	"github.com/ortelius/forkpoint-cves/model"
	"github.com/ortelius/forkpoint-cves/util"
	"go.uber.org/zap"
)

// CatalogPager fetches one page of the vendor catalog
type CatalogPager interface {
	Page(ctx context.Context, page int) (*model.CatalogPage, error)
}

var _ CatalogPager = (*clients.CatalogClient)(nil)

// ForkPointResolver walks the catalog and keeps the highest fork point per component
type ForkPointResolver struct {
	catalog CatalogPager
	delay   time.Duration
	logger  *zap.Logger
}

// NewForkPointResolver returns a resolver that waits delay between page requests
func NewForkPointResolver(catalog CatalogPager, delay time.Duration, logger *zap.Logger) *ForkPointResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForkPointResolver{catalog: catalog, delay: delay, logger: logger}
}

// Resolve fetches every catalog page and returns one fork point per component,
// sorted by component. The page count is taken from page 1 and not re-read.
// Any page failure aborts the run.
func (r *ForkPointResolver) Resolve(ctx context.Context) ([]model.ForkPoint, error) {
	first, err := r.catalog.Page(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog page 1: %w", err)
	}

	totalPages := first.TotalPages
	r.logger.Sugar().Infof("Catalog has %d pages", totalPages)

	best := make(map[string]string)
	var order []string
	r.collect(first, best, &order)

	for page := 2; page <= totalPages; page++ {
		if err := sleep(ctx, r.delay); err != nil {
			return nil, err
		}

		p, err := r.catalog.Page(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
		}
		if p.TotalPages != totalPages {
			r.logger.Sugar().Warnf("Catalog page %d reports %d pages, continuing with %d", page, p.TotalPages, totalPages)
		}
		r.collect(p, best, &order)
	}

	forkPoints := make([]model.ForkPoint, 0, len(order))
	for _, component := range order {
		forkPoints = append(forkPoints, model.ForkPoint{Component: component, ForkPoint: best[component]})
	}
	sort.Slice(forkPoints, func(i, j int) bool { return forkPoints[i].Component < forkPoints[j].Component })

	r.logger.Sugar().Infof("Resolved fork points for %d components", len(forkPoints))
	return forkPoints, nil
}

func (r *ForkPointResolver) collect(page *model.CatalogPage, best map[string]string, order *[]string) {
	for _, entry := range page.Results {
		if util.IsEmpty(entry.Component) {
			continue
		}
		for _, version := range entry.Versions {
			if version.OSS == nil || util.IsEmpty(version.OSS.ForkPoint) {
				continue
			}
			forkPoint := version.OSS.ForkPoint
			if err := util.ValidateVersion(forkPoint); err != nil {
				r.logger.Warn("Skipping fork point",
					zap.String("component", entry.Component),
					zap.String("forkPoint", forkPoint),
					zap.Error(err))
				continue
			}

			current, seen := best[entry.Component]
			if !seen {
				best[entry.Component] = forkPoint
				*order = append(*order, entry.Component)
				continue
			}
			best[entry.Component] = util.MaxVersion(current, forkPoint)
		}
	}
}

// sleep waits for d unless ctx ends first
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
