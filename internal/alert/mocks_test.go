package alert

import (
	"context"

	"pricehive_backend/internal/catalog"
	"pricehive_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAlertRepository is a mock type for alert.Repository
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Create(ctx context.Context, a *Alert) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil && a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockAlertRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Alert, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Alert), args.Error(1)
}

func (m *MockAlertRepository) DeleteOwned(ctx context.Context, alertID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, alertID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) FindActive(ctx context.Context, productID, supermarketID uuid.UUID) ([]Alert, error) {
	args := m.Called(ctx, productID, supermarketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Alert), args.Error(1)
}

func (m *MockAlertRepository) MarkTriggered(ctx context.Context, alertID uuid.UUID) (bool, error) {
	args := m.Called(ctx, alertID)
	return args.Bool(0), args.Error(1)
}

// MockNotifier is a mock type for shared.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, in shared.NotificationInput) error {
	return m.Called(ctx, in).Error(0)
}

// stubDirectory answers name lookups from a fixed map.
type stubDirectory struct {
	catalog.Directory
	names map[uuid.UUID]string
}

func (d stubDirectory) Names(_ context.Context, _ catalog.Kind, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	for _, id := range ids {
		if n, ok := d.names[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}
