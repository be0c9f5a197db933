package alert

import (
	"context"
	"errors"
	"testing"

	"pricehive_backend/internal/events"
	"pricehive_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type engineSuite struct {
	repo      *MockAlertRepository
	notifier  *MockNotifier
	publisher *events.MemoryPublisher
	engine    Engine
	product   uuid.UUID
	market    uuid.UUID
}

func setupEngine(t *testing.T) *engineSuite {
	s := &engineSuite{
		repo:      new(MockAlertRepository),
		notifier:  new(MockNotifier),
		publisher: events.NewMemoryPublisher(),
		product:   uuid.New(),
		market:    uuid.New(),
	}
	dir := stubDirectory{names: map[uuid.UUID]string{s.product: "Milk", s.market: "Mercadona"}}
	s.engine = NewEngine(s.repo, dir, s.notifier, s.publisher, zap.NewNop())
	return s
}

func newAlert(typ AlertType, target string) Alert {
	a := Alert{UserID: uuid.New(), AlertType: typ, TargetPrice: d(target)}
	a.ID = uuid.New()
	return a
}

func TestShouldTrigger_Boundaries(t *testing.T) {
	below := newAlert(TypeBelow, "2.00")
	assert.True(t, below.ShouldTrigger(d("2.00")))
	assert.False(t, below.ShouldTrigger(d("2.01")))

	above := newAlert(TypeAbove, "2.00")
	assert.True(t, above.ShouldTrigger(d("2.00")))
	assert.False(t, above.ShouldTrigger(d("1.99")))

	anyChange := newAlert(TypeAnyChange, "0")
	assert.True(t, anyChange.ShouldTrigger(d("123.45")))

	unknown := newAlert(AlertType("sideways"), "1")
	assert.False(t, unknown.ShouldTrigger(d("1")))
}

func TestFormatMessage(t *testing.T) {
	up := PriceEvent{NewPrice: d("1.2"), Delta: d("0.3")}
	down := PriceEvent{NewPrice: d("1.05"), Delta: d("-0.15")}

	assert.Equal(t, "Milk at Mercadona: 1.20€ (+0.30€)", FormatMessage("Milk", "Mercadona", up))
	assert.Equal(t, "Milk at Mercadona: 1.05€ (-0.15€)", FormatMessage("Milk", "Mercadona", down))
}

func TestEngine_TriggersMatchingAlertsAndNotifies(t *testing.T) {
	s := setupEngine(t)
	ctx := context.Background()
	hit := newAlert(TypeBelow, "2.00")
	miss := newAlert(TypeAbove, "5.00")

	s.repo.On("FindActive", ctx, s.product, s.market).Return([]Alert{hit, miss}, nil)
	s.repo.On("MarkTriggered", ctx, hit.ID).Return(true, nil)
	s.notifier.On("Notify", ctx, shared.NotificationInput{
		UserID:  hit.UserID,
		Title:   "Price Alert",
		Message: "Milk at Mercadona: 1.80€ (-0.20€)",
		Type:    shared.NotificationTypePriceAlert,
	}).Return(nil)

	triggered, err := s.engine.Evaluate(ctx, PriceEvent{ProductID: s.product, SupermarketID: s.market, NewPrice: d("1.80"), Delta: d("-0.20")})

	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Equal(t, hit.ID, triggered[0].ID)
	assert.True(t, triggered[0].Triggered)
	assert.Len(t, s.publisher.Of(events.AlertTriggered), 1)
	s.repo.AssertNotCalled(t, "MarkTriggered", ctx, miss.ID)
	s.repo.AssertExpectations(t)
	s.notifier.AssertExpectations(t)
}

func TestEngine_LostFlipDoesNotNotify(t *testing.T) {
	s := setupEngine(t)
	ctx := context.Background()
	a := newAlert(TypeAnyChange, "0")

	s.repo.On("FindActive", ctx, s.product, s.market).Return([]Alert{a}, nil)
	s.repo.On("MarkTriggered", ctx, a.ID).Return(false, nil)

	triggered, err := s.engine.Evaluate(ctx, PriceEvent{ProductID: s.product, SupermarketID: s.market, NewPrice: d("3"), Delta: d("0.5")})

	require.NoError(t, err)
	assert.Empty(t, triggered)
	s.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestEngine_NotificationFailureKeepsTrigger(t *testing.T) {
	s := setupEngine(t)
	ctx := context.Background()
	a := newAlert(TypeAnyChange, "0")

	s.repo.On("FindActive", ctx, s.product, s.market).Return([]Alert{a}, nil)
	s.repo.On("MarkTriggered", ctx, a.ID).Return(true, nil)
	s.notifier.On("Notify", ctx, mock.Anything).Return(errors.New("smtp down"))

	triggered, err := s.engine.Evaluate(ctx, PriceEvent{ProductID: s.product, SupermarketID: s.market, NewPrice: d("3"), Delta: d("0.5")})

	require.NoError(t, err)
	assert.Len(t, triggered, 1)
}

func TestEngine_FlipErrorIsReported(t *testing.T) {
	s := setupEngine(t)
	ctx := context.Background()
	broken := newAlert(TypeAnyChange, "0")
	fine := newAlert(TypeAnyChange, "0")

	s.repo.On("FindActive", ctx, s.product, s.market).Return([]Alert{broken, fine}, nil)
	s.repo.On("MarkTriggered", ctx, broken.ID).Return(false, errors.New("deadlock"))
	s.repo.On("MarkTriggered", ctx, fine.ID).Return(true, nil)
	s.notifier.On("Notify", ctx, mock.Anything).Return(nil)

	triggered, err := s.engine.Evaluate(ctx, PriceEvent{ProductID: s.product, SupermarketID: s.market, NewPrice: d("3"), Delta: d("0.5")})

	assert.Error(t, err)
	require.Len(t, triggered, 1)
	assert.Equal(t, fine.ID, triggered[0].ID)
}

func TestEngine_FallbackNames(t *testing.T) {
	s := setupEngine(t)
	ctx := context.Background()
	unknownProduct := uuid.New()
	a := newAlert(TypeAnyChange, "0")

	s.repo.On("FindActive", ctx, unknownProduct, s.market).Return([]Alert{a}, nil)
	s.repo.On("MarkTriggered", ctx, a.ID).Return(true, nil)
	s.notifier.On("Notify", ctx, mock.MatchedBy(func(in shared.NotificationInput) bool {
		return in.Message == "Product at Mercadona: 3.00€ (+0.50€)"
	})).Return(nil)

	_, err := s.engine.Evaluate(ctx, PriceEvent{ProductID: unknownProduct, SupermarketID: s.market, NewPrice: d("3"), Delta: d("0.5")})
	require.NoError(t, err)
	s.notifier.AssertExpectations(t)
}

