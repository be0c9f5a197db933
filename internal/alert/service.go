package alert

import (
	"context"

	"pricehive_backend/internal/catalog"
	"pricehive_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const listLimit = 100

// Service manages a user's alerts.
type Service interface {
	CreateAlert(ctx context.Context, userID uuid.UUID, req CreateAlertRequest) (*AlertResponse, error)
	ListAlerts(ctx context.Context, userID uuid.UUID) ([]AlertResponse, error)
	DeleteAlert(ctx context.Context, alertID, userID uuid.UUID) error
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo    Repository
	catalog catalog.Directory
	logger  *zap.Logger
}

// NewService creates a new alert service.
func NewService(repo Repository, dir catalog.Directory, logger *zap.Logger) Service {
	return &ServiceImplementation{repo: repo, catalog: dir, logger: logger.Named("AlertService")}
}

func (s *ServiceImplementation) CreateAlert(ctx context.Context, userID uuid.UUID, req CreateAlertRequest) (*AlertResponse, error) {
	if req.AlertType == "" {
		req.AlertType = TypeBelow
	}
	details := map[string]string{}
	if !req.AlertType.Valid() {
		details["alert_type"] = "The alert_type field must be one of: below above any_change."
	}
	if !req.TargetPrice.Valid {
		details["target_price"] = "The target_price field is required."
	} else if req.TargetPrice.Decimal.IsNegative() {
		details["target_price"] = "The target_price field must be greater than or equal to 0."
	}
	if len(details) > 0 {
		return nil, common.NewValidationAPIError(details)
	}

	a := &Alert{
		UserID:        userID,
		ProductID:     req.ProductID,
		SupermarketID: req.SupermarketID,
		TargetPrice:   req.TargetPrice.Decimal,
		AlertType:     req.AlertType,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.Error("Failed to create alert", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not create alert.")
	}

	views, err := s.toResponses(ctx, []Alert{*a})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ServiceImplementation) ListAlerts(ctx context.Context, userID uuid.UUID) ([]AlertResponse, error) {
	alerts, err := s.repo.ListByUser(ctx, userID, listLimit)
	if err != nil {
		s.logger.Error("Failed to list alerts", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve alerts.")
	}
	return s.toResponses(ctx, alerts)
}

func (s *ServiceImplementation) DeleteAlert(ctx context.Context, alertID, userID uuid.UUID) error {
	deleted, err := s.repo.DeleteOwned(ctx, alertID, userID)
	if err != nil {
		s.logger.Error("Failed to delete alert", zap.String("alert_id", alertID.String()), zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not delete alert.")
	}
	if !deleted {
		return common.ErrNotFound.WithDetails("Alert not found.")
	}
	return nil
}

func (s *ServiceImplementation) toResponses(ctx context.Context, alerts []Alert) ([]AlertResponse, error) {
	refs := catalog.NewRefs()
	for i := range alerts {
		refs.Add(catalog.KindProduct, &alerts[i].ProductID).Add(catalog.KindSupermarket, alerts[i].SupermarketID)
	}
	names, err := catalog.Resolve(ctx, s.catalog, refs)
	if err != nil {
		s.logger.Warn("Could not resolve alert display names", zap.Error(err))
	}

	out := make([]AlertResponse, len(alerts))
	for i := range alerts {
		a := &alerts[i]
		out[i] = AlertResponse{
			ID:              a.ID,
			ProductID:       a.ProductID,
			ProductName:     names.Get(catalog.KindProduct, &a.ProductID),
			SupermarketID:   a.SupermarketID,
			SupermarketName: names.Get(catalog.KindSupermarket, a.SupermarketID),
			TargetPrice:     common.RoundMoney(a.TargetPrice),
			AlertType:       a.AlertType,
			Triggered:       a.Triggered,
			CreatedAt:       a.CreatedAt,
		}
	}
	return out, nil
}

