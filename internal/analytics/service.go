// Package analytics derives read-only price statistics. Nothing here writes.
package analytics

import (
	"context"
	"sort"

	"pricehive_backend/internal/catalog"
	"pricehive_backend/internal/common"
	"pricehive_backend/internal/price"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	historyLimit = 1000
	recentLimit  = 10
	unknownName  = "Unknown"
)

// PriceReader is the slice of the price repository the stats endpoint reads.
type PriceReader interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, sellableID *uuid.UUID, limit int) ([]price.PriceRecord, error)
}

type Service interface {
	ProductAnalytics(ctx context.Context, productID uuid.UUID, supermarketID *uuid.UUID) (*ProductAnalyticsResponse, error)
	Compare(ctx context.Context, productID uuid.UUID) (*CompareResponse, error)
	Stats(ctx context.Context) (*StatsResponse, error)
}

type ServiceImplementation struct {
	resolver price.Resolver
	prices   PriceReader
	catalog  catalog.Directory
	logger   *zap.Logger
}

func NewService(resolver price.Resolver, prices PriceReader, dir catalog.Directory, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		resolver: resolver,
		prices:   prices,
		catalog:  dir,
		logger:   logger.Named("AnalyticsService"),
	}
}

func (s *ServiceImplementation) product(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	p, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to load product", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not load product.")
	}
	if p == nil {
		return nil, common.ErrNotFound.WithDetails("Product not found.")
	}
	return p, nil
}

// ProductAnalytics summarises up to the oldest 1000 records of the product. Averages and
// extremes use the recorded totals without dividing by quantity, unlike shopping-list
// estimates which are per unit.
func (s *ServiceImplementation) ProductAnalytics(ctx context.Context, productID uuid.UUID, supermarketID *uuid.UUID) (*ProductAnalyticsResponse, error) {
	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	history, err := s.resolver.ProductHistory(ctx, productID, supermarketID, historyLimit)
	if err != nil {
		s.logger.Error("Failed to load price history", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not compute product analytics.")
	}

	resp := &ProductAnalyticsResponse{
		ProductID:     p.ID,
		ProductName:   p.Name,
		SupermarketID: supermarketID,
		PriceHistory:  make([]HistoryPoint, len(history)),
	}
	if supermarketID != nil {
		names, err := catalog.Resolve(ctx, s.catalog, catalog.NewRefs().Add(catalog.KindSupermarket, supermarketID))
		if err != nil {
			s.logger.Warn("Could not resolve supermarket name", zap.Error(err))
		}
		resp.SupermarketName = names.Get(catalog.KindSupermarket, supermarketID)
	}
	if len(history) == 0 {
		return resp, nil
	}

	sum := decimal.Zero
	minP, maxP := history[0].Price, history[0].Price
	for i, rec := range history {
		resp.PriceHistory[i] = HistoryPoint{Date: rec.CreatedAt, Price: rec.Price}
		sum = sum.Add(rec.Price)
		minP = decimal.Min(minP, rec.Price)
		maxP = decimal.Max(maxP, rec.Price)
	}
	current := history[len(history)-1].Price
	avg := common.RoundMoney(sum.Div(decimal.NewFromInt(int64(len(history)))))
	resp.CurrentPrice, resp.AvgPrice, resp.MinPrice, resp.MaxPrice = &current, &avg, &minP, &maxP
	return resp, nil
}

// Compare lists the latest price of every history of the product, cheapest first.
func (s *ServiceImplementation) Compare(ctx context.Context, productID uuid.UUID) (*CompareResponse, error) {
	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	latest, err := s.resolver.SupermarketLatest(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to load latest prices", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not compare prices.")
	}

	refs := catalog.NewRefs()
	for i := range latest {
		refs.Add(catalog.KindSupermarket, &latest[i].SupermarketID)
	}
	names, err := catalog.Resolve(ctx, s.catalog, refs)
	if err != nil {
		s.logger.Warn("Could not resolve supermarket names", zap.Error(err))
	}

	resp := &CompareResponse{ProductID: p.ID, ProductName: p.Name, Comparison: make([]ComparisonEntry, len(latest))}
	for i, sp := range latest {
		resp.Comparison[i] = ComparisonEntry{
			SupermarketID:     sp.SupermarketID,
			SupermarketName:   names.Get(catalog.KindSupermarket, &latest[i].SupermarketID),
			SellableProductID: sp.SellableProductID,
			Price:             sp.Record.Price,
			UpdatedAt:         sp.Record.CreatedAt,
		}
	}
	sort.SliceStable(resp.Comparison, func(i, j int) bool {
		return resp.Comparison[i].Price.LessThan(resp.Comparison[j].Price)
	})
	if len(resp.Comparison) > 0 {
		best := resp.Comparison[0]
		resp.BestPrice = &best
	}
	return resp, nil
}

// Stats reports catalog and ledger totals and the ten newest price records.
func (s *ServiceImplementation) Stats(ctx context.Context) (*StatsResponse, error) {
	totals, err := s.catalog.Totals(ctx)
	if err != nil {
		s.logger.Error("Failed to count catalog", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not compute stats.")
	}
	count, err := s.prices.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count prices", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not compute stats.")
	}
	recent, err := s.prices.List(ctx, nil, recentLimit)
	if err != nil {
		s.logger.Error("Failed to load recent prices", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not compute stats.")
	}

	var sellableIDs []uuid.UUID
	for _, r := range recent {
		if r.SellableProductID != nil {
			sellableIDs = append(sellableIDs, *r.SellableProductID)
		}
	}
	sellables, err := s.catalog.FindSellables(ctx, sellableIDs)
	if err != nil {
		s.logger.Warn("Could not load sellable products for stats", zap.Error(err))
	}

	productIDs := make([]*uuid.UUID, len(recent))
	supermarketIDs := make([]*uuid.UUID, len(recent))
	refs := catalog.NewRefs()
	for i, r := range recent {
		switch {
		case r.SellableProductID != nil:
			if sp, ok := sellables[*r.SellableProductID]; ok {
				pid, sid := sp.ProductID, sp.SupermarketID
				productIDs[i], supermarketIDs[i] = &pid, &sid
			}
		default:
			productIDs[i], supermarketIDs[i] = r.ProductID, r.SupermarketID
		}
		refs.Add(catalog.KindProduct, productIDs[i]).Add(catalog.KindSupermarket, supermarketIDs[i])
	}
	names, err := catalog.Resolve(ctx, s.catalog, refs)
	if err != nil {
		s.logger.Warn("Could not resolve names for stats", zap.Error(err))
	}

	resp := &StatsResponse{
		TotalProducts:     totals.Products,
		TotalPrices:       count,
		TotalUsers:        totals.Users,
		TotalSupermarkets: totals.Supermarkets,
		RecentActivity:    make([]RecentActivity, len(recent)),
	}
	for i, r := range recent {
		resp.RecentActivity[i] = RecentActivity{
			ProductName:     names.GetOr(catalog.KindProduct, productIDs[i], unknownName),
			SupermarketName: names.GetOr(catalog.KindSupermarket, supermarketIDs[i], unknownName),
			Price:           r.Price,
			CreatedAt:       r.CreatedAt,
		}
	}
	return resp, nil
}
