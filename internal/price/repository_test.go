package price

import (
	"context"
	"testing"
	"time"

	"pricehive_backend/internal/catalog"
	"pricehive_backend/internal/platform/database/dbtest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type ledgerFixture struct {
	db          *gorm.DB
	repo        Repository
	dir         catalog.Directory
	product     catalog.Product
	supermarket catalog.Supermarket
	brand       catalog.Brand
	user        catalog.User
	sellable    catalog.SellableProduct
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	models := append(catalog.Models(), &PriceRecord{})
	db := dbtest.New(t, models...)

	f := &ledgerFixture{db: db, repo: NewGORMRepository(db), dir: catalog.NewGORMDirectory(db)}
	f.product = catalog.Product{Name: "Milk"}
	f.supermarket = catalog.Supermarket{Name: "Mercadona"}
	f.brand = catalog.Brand{Name: "Hacendado"}
	f.user = catalog.User{Name: "ana"}
	require.NoError(t, db.Create(&f.product).Error)
	require.NoError(t, db.Create(&f.supermarket).Error)
	require.NoError(t, db.Create(&f.brand).Error)
	require.NoError(t, db.Create(&f.user).Error)
	f.sellable = catalog.SellableProduct{ProductID: f.product.ID, SupermarketID: f.supermarket.ID, BrandID: &f.brand.ID}
	require.NoError(t, db.Create(&f.sellable).Error)
	return f
}

func (f *ledgerFixture) add(t *testing.T, key Key, price string, at time.Time) PriceRecord {
	t.Helper()
	rec := PriceRecord{Price: d(price), Quantity: decimal.NewFromInt(1), UserID: f.user.ID, CreatedAt: at}
	key.stamp(&rec)
	require.NoError(t, f.repo.Create(context.Background(), &rec))
	return rec
}

func TestRepository_LatestFollowsCreatedAt(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	key := BySellable(f.sellable.ID)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	latest, err := f.repo.Latest(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, latest, "empty history has no latest price")

	f.add(t, key, "1.00", base)
	f.add(t, key, "1.50", base.Add(time.Hour))
	// Written later but observed earlier.
	f.add(t, key, "0.90", base.Add(-time.Hour))

	latest, err = f.repo.Latest(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, d("1.50").Equal(latest.Price))
}

func TestRepository_LatestBreaksTiesByInsertionOrder(t *testing.T) {
	f := newLedgerFixture(t)
	key := BySellable(f.sellable.ID)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	f.add(t, key, "1.00", at)
	second := f.add(t, key, "1.20", at)

	latest, err := f.repo.Latest(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestRepository_KeysAreIsolated(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	other := catalog.SellableProduct{ProductID: f.product.ID, SupermarketID: f.supermarket.ID}
	require.NoError(t, f.db.Create(&other).Error)

	f.add(t, BySellable(f.sellable.ID), "1.00", now)
	f.add(t, ByLegacy(f.product.ID, f.supermarket.ID), "3.00", now.Add(-time.Minute))

	latest, err := f.repo.Latest(ctx, BySellable(other.ID))
	require.NoError(t, err)
	assert.Nil(t, latest, "sibling sellable products keep separate histories")

	legacy, err := f.repo.Latest(ctx, ByLegacy(f.product.ID, f.supermarket.ID))
	require.NoError(t, err)
	require.NotNil(t, legacy)
	assert.True(t, d("3.00").Equal(legacy.Price), "legacy key must not see sellable records")
}

func TestRepository_HistoryIsAscendingAndLimited(t *testing.T) {
	f := newLedgerFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.add(t, BySellable(f.sellable.ID), "2.00", base.Add(2*time.Hour))
	f.add(t, BySellable(f.sellable.ID), "1.00", base)
	f.add(t, ByLegacy(f.product.ID, f.supermarket.ID), "1.50", base.Add(time.Hour))

	history, err := f.repo.History(context.Background(), HistoryQuery{
		SellableIDs:     []uuid.UUID{f.sellable.ID},
		LegacyProductID: &f.product.ID,
		Limit:           2,
	})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, d("1.00").Equal(history[0].Price))
	assert.True(t, d("1.50").Equal(history[1].Price))
}

func TestRepository_CreateBatchAssignsIDs(t *testing.T) {
	f := newLedgerFixture(t)
	records := []PriceRecord{
		{Price: d("1.00"), Quantity: d("1"), UserID: f.user.ID},
		{Price: d("2.00"), Quantity: d("2"), UserID: f.user.ID},
	}
	for i := range records {
		BySellable(f.sellable.ID).stamp(&records[i])
	}

	require.NoError(t, f.repo.CreateBatch(context.Background(), records))
	for _, r := range records {
		assert.NotEqual(t, uuid.Nil, r.ID)
	}

	n, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestResolver_LatestForProduct(t *testing.T) {
	f := newLedgerFixture(t)
	resolver := NewResolver(f.repo, f.dir)
	ctx := context.Background()

	res, err := resolver.LatestForProduct(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Nil(t, res.Price)
	assert.Equal(t, msgNoSellable, res.Message)

	res, err = resolver.LatestForProduct(ctx, f.product.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Price)
	assert.Equal(t, msgNoPrice, res.Message)

	f.add(t, BySellable(f.sellable.ID), "1.25", time.Now().UTC())
	res, err = resolver.LatestForProduct(ctx, f.product.ID, &f.supermarket.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Price)
	assert.True(t, d("1.25").Equal(*res.Price))
}

func TestResolver_SupermarketLatestIncludesLegacy(t *testing.T) {
	f := newLedgerFixture(t)
	resolver := NewResolver(f.repo, f.dir)
	legacyMarket := uuid.New()
	now := time.Now().UTC()

	f.add(t, BySellable(f.sellable.ID), "1.10", now)
	f.add(t, ByLegacy(f.product.ID, legacyMarket), "0.95", now)

	prices, err := resolver.SupermarketLatest(context.Background(), f.product.ID)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, f.supermarket.ID, prices[0].SupermarketID)
	assert.NotNil(t, prices[0].SellableProductID)
	assert.Equal(t, legacyMarket, prices[1].SupermarketID)
	assert.Nil(t, prices[1].SellableProductID)
}
