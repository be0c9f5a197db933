package price

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"pricehive_backend/internal/alert"
	"pricehive_backend/internal/common"
	"pricehive_backend/internal/config"
	"pricehive_backend/internal/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAlertEngine is a mock type for alert.Engine
type MockAlertEngine struct {
	mock.Mock
}

func (m *MockAlertEngine) Evaluate(ctx context.Context, ev alert.PriceEvent) ([]alert.Alert, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alert.Alert), args.Error(1)
}

// MockRewarder is a mock type for shared.Rewarder
type MockRewarder struct {
	mock.Mock
}

func (m *MockRewarder) Credit(ctx context.Context, userID uuid.UUID, points int, reason string) error {
	return m.Called(ctx, userID, points, reason).Error(0)
}

type serviceFixture struct {
	*ledgerFixture
	engine    *MockAlertEngine
	rewarder  *MockRewarder
	publisher *events.MemoryPublisher
	service   *ServiceImplementation
}

func newServiceFixture(t *testing.T) *serviceFixture {
	f := &serviceFixture{
		ledgerFixture: newLedgerFixture(t),
		engine:        new(MockAlertEngine),
		rewarder:      new(MockRewarder),
		publisher:     events.NewMemoryPublisher(),
	}
	cfg := &config.Config{PriceSubmissionPoints: 10}
	f.service = NewService(f.repo, NewResolver(f.repo, f.dir), f.dir, f.engine, f.rewarder, f.publisher, nil, cfg, zap.NewNop())
	return f
}

func submitReq(sellableID uuid.UUID, price string) SubmitPriceRequest {
	return SubmitPriceRequest{
		SellableProductID: &sellableID,
		Price:             decimal.NewNullDecimal(d(price)),
	}
}

func assertAPIError(t *testing.T, err error, status int) {
	t.Helper()
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok, "expected an APIError, got %v", err)
	assert.Equal(t, status, apiErr.StatusCode)
}

func TestSubmitPrice_FirstObservationNeverAlerts(t *testing.T) {
	f := newServiceFixture(t)
	f.rewarder.On("Credit", mock.Anything, f.user.ID, 10, rewardReasonSubmission).Return(nil).Once()

	resp, err := f.service.SubmitPrice(context.Background(), f.user.ID, submitReq(f.sellable.ID, "1.00"))
	require.NoError(t, err)

	f.engine.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
	f.rewarder.AssertExpectations(t)
	assert.True(t, decimal.NewFromInt(1).Equal(resp.Quantity), "quantity defaults to 1")
	require.NotNil(t, resp.ProductName)
	assert.Equal(t, "Milk", *resp.ProductName)
	require.NotNil(t, resp.SupermarketName)
	assert.Equal(t, "Mercadona", *resp.SupermarketName)
	require.NotNil(t, resp.BrandName)
	assert.Equal(t, "Hacendado", *resp.BrandName)
	require.NotNil(t, resp.UserName)
	assert.Equal(t, "ana", *resp.UserName)
	assert.Len(t, f.publisher.Of(events.PriceSubmitted), 1)
}

func TestSubmitPrice_ChangeThreshold(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.rewarder.On("Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.add(t, BySellable(f.sellable.ID), "1.00", time.Now().UTC().Add(-time.Hour))

	_, err := f.service.SubmitPrice(ctx, f.user.ID, submitReq(f.sellable.ID, "1.01"))
	require.NoError(t, err)
	f.engine.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)

	f.engine.On("Evaluate", mock.Anything, mock.MatchedBy(func(ev alert.PriceEvent) bool {
		return ev.ProductID == f.product.ID &&
			ev.SupermarketID == f.supermarket.ID &&
			ev.NewPrice.Equal(d("1.03")) &&
			ev.Delta.Equal(d("0.02"))
	})).Return([]alert.Alert{}, nil).Once()

	_, err = f.service.SubmitPrice(ctx, f.user.ID, submitReq(f.sellable.ID, "1.03"))
	require.NoError(t, err)
	f.engine.AssertExpectations(t)
}

func TestSubmitPrice_RoundsToStoredPrecisionBeforeDelta(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.rewarder.On("Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.add(t, BySellable(f.sellable.ID), "2.00", time.Now().UTC().Add(-time.Hour))

	req := submitReq(f.sellable.ID, "2.014")
	req.Quantity = decimal.NewNullDecimal(d("1.23456"))
	resp, err := f.service.SubmitPrice(ctx, f.user.ID, req)
	require.NoError(t, err)
	assert.True(t, d("2.01").Equal(resp.Price), "got %s", resp.Price)
	assert.True(t, d("1.235").Equal(resp.Quantity), "got %s", resp.Quantity)
	f.engine.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)

	latest, err := f.repo.Latest(ctx, BySellable(f.sellable.ID))
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, d("2.01").Equal(latest.Price))
}

func TestSubmitPrice_QuantityBelowStoredPrecisionIsRejected(t *testing.T) {
	f := newServiceFixture(t)

	req := submitReq(f.sellable.ID, "1.00")
	req.Quantity = decimal.NewNullDecimal(d("0.0001"))
	_, err := f.service.SubmitPrice(context.Background(), f.user.ID, req)
	assertAPIError(t, err, http.StatusUnprocessableEntity)

	n, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitPrice_SideEffectFailuresDoNotFailSubmission(t *testing.T) {
	f := newServiceFixture(t)
	f.add(t, BySellable(f.sellable.ID), "2.00", time.Now().UTC().Add(-time.Hour))
	f.engine.On("Evaluate", mock.Anything, mock.Anything).Return(nil, errors.New("alerts down"))
	f.rewarder.On("Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("points down"))

	resp, err := f.service.SubmitPrice(context.Background(), f.user.ID, submitReq(f.sellable.ID, "1.00"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.ID)

	n, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSubmitPrice_LegacyKeyEvaluatesWithItsOwnIDs(t *testing.T) {
	f := newServiceFixture(t)
	f.rewarder.On("Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.add(t, ByLegacy(f.product.ID, f.supermarket.ID), "5.00", time.Now().UTC().Add(-time.Hour))
	f.engine.On("Evaluate", mock.Anything, mock.MatchedBy(func(ev alert.PriceEvent) bool {
		return ev.ProductID == f.product.ID && ev.SupermarketID == f.supermarket.ID && ev.Delta.Equal(d("-1"))
	})).Return([]alert.Alert{}, nil).Once()

	resp, err := f.service.SubmitPrice(context.Background(), f.user.ID, SubmitPriceRequest{
		ProductID:     &f.product.ID,
		SupermarketID: &f.supermarket.ID,
		Price:         decimal.NewNullDecimal(d("4.00")),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.SellableProductID)
	f.engine.AssertExpectations(t)
}

func TestSubmitPrice_Rejections(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.SubmitPrice(ctx, f.user.ID, submitReq(f.sellable.ID, "-0.01"))
	assertAPIError(t, err, http.StatusUnprocessableEntity)

	zero := submitReq(f.sellable.ID, "1.00")
	zero.Quantity = decimal.NewNullDecimal(decimal.Zero)
	_, err = f.service.SubmitPrice(ctx, f.user.ID, zero)
	assertAPIError(t, err, http.StatusUnprocessableEntity)

	_, err = f.service.SubmitPrice(ctx, f.user.ID, SubmitPriceRequest{ProductID: &f.product.ID, Price: decimal.NewNullDecimal(d("1"))})
	assertAPIError(t, err, http.StatusUnprocessableEntity)

	_, err = f.service.SubmitPrice(ctx, f.user.ID, submitReq(uuid.New(), "1.00"))
	assertAPIError(t, err, http.StatusNotFound)

	n, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "rejected submissions write nothing")
	f.rewarder.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecord_AppendsWithoutAlertsOrRewards(t *testing.T) {
	f := newServiceFixture(t)
	f.add(t, BySellable(f.sellable.ID), "9.00", time.Now().UTC().Add(-time.Hour))

	records, err := f.service.Record(context.Background(), f.user.ID, []NewPrice{
		{SellableProductID: f.sellable.ID, Price: d("5.50"), Quantity: d("3")},
		{SellableProductID: f.sellable.ID, Price: d("1.00"), Quantity: decimal.Zero},
		{SellableProductID: f.sellable.ID, Price: d("0.996"), Quantity: d("0.0004")},
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, decimal.NewFromInt(1).Equal(records[1].Quantity))
	assert.True(t, d("1.00").Equal(records[2].Price))
	assert.True(t, decimal.NewFromInt(1).Equal(records[2].Quantity))

	f.engine.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
	f.rewarder.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, f.publisher.Of(events.PriceSubmitted), 3)
}

func TestListPrices_LegacyRecordsKeepOwnNames(t *testing.T) {
	f := newServiceFixture(t)
	f.add(t, ByLegacy(f.product.ID, f.supermarket.ID), "3.00", time.Now().UTC())

	list, err := f.service.ListPrices(context.Background(), nil, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ProductName)
	assert.Equal(t, "Milk", *list[0].ProductName)
	assert.Nil(t, list[0].BrandName)
}

func TestSearchPrices_DisabledWithoutIndex(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.SearchPrices(context.Background(), "milk", 10)
	assertAPIError(t, err, http.StatusServiceUnavailable)
}

type recordingIndex struct {
	batches [][]PriceDocument
	hits    []PriceDocument
	err     error
}

func (x *recordingIndex) Index(_ context.Context, docs ...PriceDocument) error {
	x.batches = append(x.batches, docs)
	return x.err
}

func (x *recordingIndex) Search(context.Context, string, int) ([]PriceDocument, error) {
	return x.hits, x.err
}

func TestReindex_PagesThroughLedger(t *testing.T) {
	f := newServiceFixture(t)
	idx := &recordingIndex{}
	f.service.index = idx
	now := time.Now().UTC()
	for i, p := range []string{"1.00", "1.10", "1.20"} {
		f.add(t, BySellable(f.sellable.ID), p, now.Add(time.Duration(i)*time.Minute))
	}

	synced, err := f.service.Reindex(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, synced)
	require.Len(t, idx.batches, 2)
	assert.Len(t, idx.batches[0], 2)
	assert.Equal(t, "Milk", idx.batches[1][0].ProductName)
}

func TestSubmitPrice_IndexFailureIsSwallowed(t *testing.T) {
	f := newServiceFixture(t)
	idx := &recordingIndex{err: errors.New("cluster red")}
	f.service.index = idx
	f.rewarder.On("Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.SubmitPrice(context.Background(), f.user.ID, submitReq(f.sellable.ID, "2.00"))
	require.NoError(t, err)
	require.Len(t, idx.batches, 1)

	_, err = f.service.SearchPrices(context.Background(), "milk", 10)
	assertAPIError(t, err, http.StatusServiceUnavailable)
}
