package shopping

import (
	"context"
	"fmt"

	"pricehive_backend/internal/catalog"
	"pricehive_backend/internal/common"
	"pricehive_backend/internal/config"
	"pricehive_backend/internal/price"
	"pricehive_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	listLimit          = 100
	rewardReasonCommit = "prices submitted from shopping list"
)

// PriceRecorder appends prices to the ledger without alert evaluation.
type PriceRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, prices []price.NewPrice) ([]price.PriceRecord, error)
}

type Service interface {
	CreateList(ctx context.Context, userID uuid.UUID, req CreateShoppingListRequest) (*ShoppingListResponse, error)
	ListLists(ctx context.Context, userID uuid.UUID) ([]ShoppingListResponse, error)
	GetList(ctx context.Context, listID, userID uuid.UUID) (*ShoppingListResponse, error)
	UpdateList(ctx context.Context, listID, userID uuid.UUID, req UpdateShoppingListRequest) (*ShoppingListResponse, error)
	DeleteList(ctx context.Context, listID, userID uuid.UUID) error
	Commit(ctx context.Context, listID, userID uuid.UUID) (*CommitResponse, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	resolver price.Resolver
	catalog  catalog.Directory
	ledger   PriceRecorder
	rewarder shared.Rewarder
	cfg      *config.Config
	logger   *zap.Logger
}

func NewService(
	repo Repository,
	resolver price.Resolver,
	dir catalog.Directory,
	ledger PriceRecorder,
	rewarder shared.Rewarder,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		resolver: resolver,
		catalog:  dir,
		ledger:   ledger,
		rewarder: rewarder,
		cfg:      cfg,
		logger:   logger.Named("ShoppingService"),
	}
}

func (s *ServiceImplementation) CreateList(ctx context.Context, userID uuid.UUID, req CreateShoppingListRequest) (*ShoppingListResponse, error) {
	list := &ShoppingList{
		UserID:        userID,
		Name:          req.Name,
		SupermarketID: req.SupermarketID,
		Items:         itemsFromRequest(req.Items),
	}
	if err := s.repo.Create(ctx, list); err != nil {
		s.logger.Error("Failed to create shopping list", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not create shopping list.")
	}
	return s.single(ctx, list)
}

func (s *ServiceImplementation) ListLists(ctx context.Context, userID uuid.UUID) ([]ShoppingListResponse, error) {
	lists, err := s.repo.ListByUser(ctx, userID, listLimit)
	if err != nil {
		s.logger.Error("Failed to list shopping lists", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve shopping lists.")
	}
	return s.toResponses(ctx, lists)
}

func (s *ServiceImplementation) GetList(ctx context.Context, listID, userID uuid.UUID) (*ShoppingListResponse, error) {
	list, err := s.findOwned(ctx, listID, userID)
	if err != nil {
		return nil, err
	}
	return s.single(ctx, list)
}

func (s *ServiceImplementation) UpdateList(ctx context.Context, listID, userID uuid.UUID, req UpdateShoppingListRequest) (*ShoppingListResponse, error) {
	list, err := s.findOwned(ctx, listID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		list.Name = *req.Name
	}
	if req.SupermarketID != nil {
		list.SupermarketID = *req.SupermarketID
	}
	if req.Items != nil {
		list.Items = itemsFromRequest(*req.Items)
	}

	if err := s.repo.Update(ctx, list, req.Items != nil); err != nil {
		s.logger.Error("Failed to update shopping list", zap.String("list_id", listID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not update shopping list.")
	}
	return s.single(ctx, list)
}

func (s *ServiceImplementation) DeleteList(ctx context.Context, listID, userID uuid.UUID) error {
	deleted, err := s.repo.DeleteOwned(ctx, listID, userID)
	if err != nil {
		s.logger.Error("Failed to delete shopping list", zap.String("list_id", listID.String()), zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not delete shopping list.")
	}
	if !deleted {
		return common.ErrNotFound.WithDetails("Shopping list not found.")
	}
	return nil
}

// Commit appends one price record per purchased item that has a price. Nothing is
// deduplicated: committing twice records the prices twice. Points are credited
// once for the whole batch.
func (s *ServiceImplementation) Commit(ctx context.Context, listID, userID uuid.UUID) (*CommitResponse, error) {
	list, err := s.findOwned(ctx, listID, userID)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for _, item := range list.Items {
		if item.Purchased && item.Price.Valid {
			ids = append(ids, item.SellableProductID)
		}
	}
	var known map[uuid.UUID]catalog.SellableProduct
	if len(ids) > 0 {
		known, err = s.catalog.FindSellables(ctx, ids)
		if err != nil {
			s.logger.Error("Failed to look up sellable products for commit", zap.String("list_id", listID.String()), zap.Error(err))
			return nil, common.ErrInternalServer.WithDetails("Could not submit shopping list prices.")
		}
	}

	var prices []price.NewPrice
	for _, item := range list.Items {
		if item.Purchased && item.Price.Valid {
			if _, ok := known[item.SellableProductID]; !ok {
				s.logger.Warn("Skipping shopping list item with unknown sellable product",
					zap.String("list_id", listID.String()),
					zap.String("sellable_product_id", item.SellableProductID.String()),
				)
				continue
			}
			prices = append(prices, price.NewPrice{
				SellableProductID: item.SellableProductID,
				Price:             item.Price.Decimal,
				Quantity:          item.Quantity,
			})
		}
	}

	if len(prices) > 0 {
		if _, err := s.ledger.Record(ctx, userID, prices); err != nil {
			return nil, err
		}
	}

	count := len(prices)
	points := count * s.cfg.PriceSubmissionPoints
	if points > 0 {
		if err := s.rewarder.Credit(ctx, userID, points, rewardReasonCommit); err != nil {
			s.logger.Warn("Failed to credit points for shopping list prices",
				zap.String("list_id", listID.String()),
				zap.Int("points", points),
				zap.Error(err),
			)
		}
	}

	return &CommitResponse{
		Message:       fmt.Sprintf("%d prices submitted", count),
		PricesCreated: count,
		PointsEarned:  points,
	}, nil
}

func (s *ServiceImplementation) findOwned(ctx context.Context, listID, userID uuid.UUID) (*ShoppingList, error) {
	list, err := s.repo.FindOwned(ctx, listID, userID)
	if err != nil {
		s.logger.Error("Failed to load shopping list", zap.String("list_id", listID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve shopping list.")
	}
	if list == nil {
		return nil, common.ErrNotFound.WithDetails("Shopping list not found.")
	}
	return list, nil
}

func (s *ServiceImplementation) single(ctx context.Context, list *ShoppingList) (*ShoppingListResponse, error) {
	out, err := s.toResponses(ctx, []ShoppingList{*list})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// toResponses recomputes estimates from the current latest prices. Name lookups that fail
// or dangle leave names nil; a failing price lookup fails the read.
func (s *ServiceImplementation) toResponses(ctx context.Context, lists []ShoppingList) ([]ShoppingListResponse, error) {
	var sellableIDs []uuid.UUID
	for _, l := range lists {
		for _, item := range l.Items {
			sellableIDs = append(sellableIDs, item.SellableProductID)
		}
	}

	latest, err := s.resolver.LatestBySellable(ctx, sellableIDs)
	if err != nil {
		s.logger.Error("Failed to resolve latest prices for shopping lists", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not estimate shopping list costs.")
	}

	sellables, err := s.catalog.FindSellables(ctx, sellableIDs)
	if err != nil {
		s.logger.Warn("Could not load sellable products for shopping lists", zap.Error(err))
		sellables = nil
	}

	refs := catalog.NewRefs()
	for _, l := range lists {
		l := l
		refs.Add(catalog.KindSupermarket, &l.SupermarketID)
		for _, item := range l.Items {
			item := item
			refs.Add(catalog.KindUnit, &item.UnitID)
			if sp, ok := sellables[item.SellableProductID]; ok {
				pid := sp.ProductID
				refs.Add(catalog.KindProduct, &pid).Add(catalog.KindBrand, sp.BrandID)
			}
		}
	}
	names, err := catalog.Resolve(ctx, s.catalog, refs)
	if err != nil {
		s.logger.Warn("Could not resolve shopping list display names", zap.Error(err))
	}

	out := make([]ShoppingListResponse, len(lists))
	for li, l := range lists {
		est := Recompute(l.Items, latest)
		resp := ShoppingListResponse{
			ID:              l.ID,
			Name:            l.Name,
			SupermarketID:   l.SupermarketID,
			SupermarketName: names.Get(catalog.KindSupermarket, &l.SupermarketID),
			Items:           make([]ShoppingListItemResponse, len(l.Items)),
			UserID:          l.UserID,
			TotalEstimated:  common.RoundMoney(est.TotalEstimated),
			TotalActual:     common.RoundMoney(est.TotalActual),
			CreatedAt:       l.CreatedAt,
			UpdatedAt:       l.UpdatedAt,
		}
		for i, item := range l.Items {
			item := item
			ir := ShoppingListItemResponse{
				SellableProductID: item.SellableProductID,
				Quantity:          item.Quantity,
				UnitID:            item.UnitID,
				UnitName:          names.Get(catalog.KindUnit, &item.UnitID),
				UnitPrice:         roundPtr(est.Items[i].UnitPrice, common.RoundUnitPrice),
				EstimatedPrice:    roundPtr(est.Items[i].Estimated, common.RoundMoney),
				Purchased:         item.Purchased,
			}
			if item.Price.Valid {
				p := item.Price.Decimal
				ir.Price = &p
			}
			if sp, ok := sellables[item.SellableProductID]; ok {
				pid := sp.ProductID
				ir.ProductID = &pid
				ir.ProductName = names.Get(catalog.KindProduct, &pid)
				ir.BrandID = sp.BrandID
				ir.BrandName = names.Get(catalog.KindBrand, sp.BrandID)
			}
			resp.Items[i] = ir
		}
		out[li] = resp
	}
	return out, nil
}
