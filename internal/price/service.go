package price

import (
	"context"
	"fmt"

	"pricehive_backend/internal/alert"
	"pricehive_backend/internal/catalog"
	"pricehive_backend/internal/common"
	"pricehive_backend/internal/config"
	"pricehive_backend/internal/events"
	"pricehive_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000

	rewardReasonSubmission = "price submitted"
)

// NewPrice is one entry appended through Record.
type NewPrice struct {
	SellableProductID uuid.UUID
	Price             decimal.Decimal
	Quantity          decimal.Decimal
}

// Service is the price ledger.
type Service interface {
	SubmitPrice(ctx context.Context, userID uuid.UUID, req SubmitPriceRequest) (*PriceResponse, error)
	Record(ctx context.Context, userID uuid.UUID, prices []NewPrice) ([]PriceRecord, error)
	ListPrices(ctx context.Context, sellableID *uuid.UUID, limit int) ([]PriceResponse, error)
	LatestPrice(ctx context.Context, productID uuid.UUID, supermarketID *uuid.UUID) (*LatestPriceResponse, error)
	SearchPrices(ctx context.Context, query string, limit int) ([]PriceDocument, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo      Repository
	resolver  Resolver
	catalog   catalog.Directory
	alerts    alert.Engine
	rewarder  shared.Rewarder
	publisher events.Publisher
	index     SearchIndex
	cfg       *config.Config
	logger    *zap.Logger
}

// NewService creates the price ledger. index may be nil when search is disabled.
func NewService(
	repo Repository,
	resolver Resolver,
	dir catalog.Directory,
	alerts alert.Engine,
	rewarder shared.Rewarder,
	publisher events.Publisher,
	index SearchIndex,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:      repo,
		resolver:  resolver,
		catalog:   dir,
		alerts:    alerts,
		rewarder:  rewarder,
		publisher: publisher,
		index:     index,
		cfg:       cfg,
		logger:    logger.Named("PriceService"),
	}
}

// SubmitPrice appends a price observation. The previous price is read before the insert and
// the two steps are not serialised: concurrent submissions for one key may both see the same
// predecessor. Alert evaluation, rewards, events and indexing run after the append and
// their failures are logged, never returned.
func (s *ServiceImplementation) SubmitPrice(ctx context.Context, userID uuid.UUID, req SubmitPriceRequest) (*PriceResponse, error) {
	key := keyFromRequest(req)
	quantity := decimal.NewFromInt(1)
	if req.Quantity.Valid {
		quantity = common.RoundQuantity(req.Quantity.Decimal)
	}

	details := map[string]string{}
	if !key.Valid() {
		details["sellable_product_id"] = "Either sellable_product_id or both product_id and supermarket_id are required."
	}
	if !req.Price.Valid {
		details["price"] = "The price field is required."
	} else if req.Price.Decimal.IsNegative() {
		details["price"] = "The price field must be greater than or equal to 0."
	}
	if quantity.Sign() <= 0 {
		details["quantity"] = "The quantity field must be greater than 0."
	}
	if len(details) > 0 {
		return nil, common.NewValidationAPIError(details)
	}

	var sellable *catalog.SellableProduct
	if !key.IsLegacy() {
		sp, err := s.catalog.FindSellable(ctx, key.SellableID())
		if err != nil {
			s.logger.Error("Failed to look up sellable product", zap.Error(err))
			return nil, common.ErrInternalServer.WithDetails("Could not submit price.")
		}
		if sp == nil {
			return nil, common.ErrNotFound.WithDetails("Sellable product not found.")
		}
		sellable = sp
	}

	previous, err := s.resolver.Latest(ctx, key)
	if err != nil {
		s.logger.Error("Failed to resolve previous price", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not submit price.")
	}

	// Rounded to the stored precision so the delta matches what is persisted.
	rec := &PriceRecord{Price: common.RoundMoney(req.Price.Decimal), Quantity: quantity, UserID: userID}
	key.stamp(rec)
	if err := s.repo.Create(ctx, rec); err != nil {
		s.logger.Error("Failed to append price record", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not submit price.")
	}

	s.evaluateAlerts(ctx, rec, previous, sellable)
	s.credit(ctx, userID, s.cfg.PriceSubmissionPoints, rewardReasonSubmission)

	views := s.toResponses(ctx, []PriceRecord{*rec})
	s.announce(ctx, views, previous)
	return &views[0], nil
}

// evaluateAlerts hands a price change above the epsilon to the alert engine.
// The first observation of a key has no delta and never alerts.
func (s *ServiceImplementation) evaluateAlerts(ctx context.Context, rec *PriceRecord, previous *PriceRecord, sellable *catalog.SellableProduct) {
	if previous == nil {
		return
	}
	delta := rec.Price.Sub(previous.Price)
	if delta.Abs().LessThanOrEqual(common.PriceChangeEpsilon) {
		return
	}

	ev := alert.PriceEvent{NewPrice: rec.Price, Delta: delta}
	if sellable != nil {
		ev.ProductID, ev.SupermarketID = sellable.ProductID, sellable.SupermarketID
	} else {
		ev.ProductID, ev.SupermarketID = derefUUID(rec.ProductID), derefUUID(rec.SupermarketID)
	}

	if _, err := s.alerts.Evaluate(ctx, ev); err != nil {
		s.logger.Error("Alert evaluation failed after price was recorded",
			zap.String("price_id", rec.ID.String()),
			zap.Error(err),
		)
	}
}

// Record appends prices without alert evaluation or rewards; callers credit points themselves.
// All records are written in one statement.
func (s *ServiceImplementation) Record(ctx context.Context, userID uuid.UUID, prices []NewPrice) ([]PriceRecord, error) {
	if len(prices) == 0 {
		return nil, nil
	}
	records := make([]PriceRecord, len(prices))
	for i, p := range prices {
		records[i] = PriceRecord{
			Price:    common.RoundMoney(p.Price),
			Quantity: common.NonZeroQuantity(common.RoundQuantity(p.Quantity)),
			UserID:   userID,
		}
		BySellable(p.SellableProductID).stamp(&records[i])
	}
	if err := s.repo.CreateBatch(ctx, records); err != nil {
		s.logger.Error("Failed to append price records", zap.Int("count", len(records)), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not record prices.")
	}
	s.announce(ctx, s.toResponses(ctx, records), nil)
	return records, nil
}

func (s *ServiceImplementation) ListPrices(ctx context.Context, sellableID *uuid.UUID, limit int) ([]PriceResponse, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	records, err := s.repo.List(ctx, sellableID, limit)
	if err != nil {
		s.logger.Error("Failed to list prices", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve prices.")
	}
	return s.toResponses(ctx, records), nil
}

func (s *ServiceImplementation) LatestPrice(ctx context.Context, productID uuid.UUID, supermarketID *uuid.UUID) (*LatestPriceResponse, error) {
	latest, err := s.resolver.LatestForProduct(ctx, productID, supermarketID)
	if err != nil {
		s.logger.Error("Failed to resolve latest price", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve latest price.")
	}
	return latest, nil
}

func (s *ServiceImplementation) SearchPrices(ctx context.Context, query string, limit int) ([]PriceDocument, error) {
	if s.index == nil {
		return nil, common.ErrServiceUnavailable.WithDetails("Price search is not enabled.")
	}
	docs, err := s.index.Search(ctx, query, limit)
	if err != nil {
		s.logger.Error("Price search failed", zap.String("query", query), zap.Error(err))
		return nil, common.ErrServiceUnavailable.WithDetails("Price search is temporarily unavailable.")
	}
	return docs, nil
}

func (s *ServiceImplementation) credit(ctx context.Context, userID uuid.UUID, points int, reason string) {
	if err := s.rewarder.Credit(ctx, userID, points, reason); err != nil {
		s.logger.Warn("Failed to credit points", zap.String("user_id", userID.String()), zap.Int("points", points), zap.Error(err))
	}
}

// announce publishes price.submitted events and indexes the records for search.
func (s *ServiceImplementation) announce(ctx context.Context, views []PriceResponse, previous *PriceRecord) {
	evs := make([]events.Event, len(views))
	docs := make([]PriceDocument, len(views))
	for i, v := range views {
		payload := PriceSubmittedPayload{PriceResponse: v}
		if previous != nil {
			p := previous.Price
			payload.PreviousPrice = &p
		}
		evs[i] = events.New(events.PriceSubmitted, v.Key(), payload)
		docs[i] = NewPriceDocument(v)
	}

	if err := s.publisher.Publish(ctx, evs...); err != nil {
		s.logger.Warn("Failed to publish price.submitted", zap.Int("count", len(evs)), zap.Error(err))
	}
	if s.index != nil {
		if err := s.index.Index(ctx, docs...); err != nil {
			s.logger.Warn("Failed to index prices for search", zap.Int("count", len(docs)), zap.Error(err))
		}
	}
}

// toResponses adds display names. Sellable records report the product and supermarket of
// their sellable product. Dangling references and lookup failures leave names nil.
func (s *ServiceImplementation) toResponses(ctx context.Context, records []PriceRecord) []PriceResponse {
	sellableIDs := make([]uuid.UUID, 0, len(records))
	for i := range records {
		if records[i].SellableProductID != nil {
			sellableIDs = append(sellableIDs, *records[i].SellableProductID)
		}
	}
	sellables, err := s.catalog.FindSellables(ctx, sellableIDs)
	if err != nil {
		s.logger.Warn("Could not load sellable products for display", zap.Error(err))
		sellables = nil
	}

	out := make([]PriceResponse, len(records))
	refs := catalog.NewRefs()
	brands := make([]*uuid.UUID, len(records))
	for i := range records {
		r := &records[i]
		resp := PriceResponse{
			ID:                r.ID,
			SellableProductID: r.SellableProductID,
			ProductID:         r.ProductID,
			SupermarketID:     r.SupermarketID,
			Price:             common.RoundMoney(r.Price),
			Quantity:          r.Quantity,
			UserID:            r.UserID,
			CreatedAt:         r.CreatedAt,
		}
		if r.SellableProductID != nil {
			if sp, ok := sellables[*r.SellableProductID]; ok {
				pid, sid := sp.ProductID, sp.SupermarketID
				resp.ProductID, resp.SupermarketID = &pid, &sid
				brands[i] = sp.BrandID
			}
		}
		refs.Add(catalog.KindProduct, resp.ProductID).
			Add(catalog.KindSupermarket, resp.SupermarketID).
			Add(catalog.KindBrand, brands[i]).
			Add(catalog.KindUser, &resp.UserID)
		out[i] = resp
	}

	names, err := catalog.Resolve(ctx, s.catalog, refs)
	if err != nil {
		s.logger.Warn("Could not resolve price display names", zap.Error(err))
	}
	for i := range out {
		out[i].ProductName = names.Get(catalog.KindProduct, out[i].ProductID)
		out[i].SupermarketName = names.Get(catalog.KindSupermarket, out[i].SupermarketID)
		out[i].BrandName = names.Get(catalog.KindBrand, brands[i])
		out[i].UserName = names.Get(catalog.KindUser, &out[i].UserID)
	}
	return out
}

// Reindex rebuilds the search index from the ledger in batches of batchSize.
// It returns the number of records sent and stops at the first failed batch.
func (s *ServiceImplementation) Reindex(ctx context.Context, batchSize int) (int, error) {
	if s.index == nil {
		return 0, fmt.Errorf("price search index is not configured")
	}
	if batchSize <= 0 {
		batchSize = DefaultListLimit
	}

	synced := 0
	for offset, batch := 0, 1; ; offset, batch = offset+batchSize, batch+1 {
		records, err := s.repo.FindAllForSync(ctx, offset, batchSize)
		if err != nil {
			return synced, fmt.Errorf("fetch batch %d: %w", batch, err)
		}
		if len(records) == 0 {
			return synced, nil
		}

		views := s.toResponses(ctx, records)
		docs := make([]PriceDocument, len(views))
		for i, v := range views {
			docs[i] = NewPriceDocument(v)
		}
		if err := s.index.Index(ctx, docs...); err != nil {
			return synced, fmt.Errorf("index batch %d: %w", batch, err)
		}
		synced += len(docs)
		s.logger.Info("Price batch indexed", zap.Int("batch", batch), zap.Int("count", len(docs)))
	}
}
