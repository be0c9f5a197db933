package catalog

import (
	"context"
	"testing"
	"time"

	"pricehive_backend/internal/platform/database/dbtest"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	product     Product
	supermarket Supermarket
	sellable    SellableProduct
}

func seed(t *testing.T) fixture {
	db := dbtest.New(t, Models()...)
	f := fixture{db: db}
	f.product = Product{Name: "Milk"}
	f.supermarket = Supermarket{Name: "Mercadona"}
	require.NoError(t, db.Create(&f.product).Error)
	require.NoError(t, db.Create(&f.supermarket).Error)
	f.sellable = SellableProduct{ProductID: f.product.ID, SupermarketID: f.supermarket.ID}
	require.NoError(t, db.Create(&f.sellable).Error)
	return f
}

func TestGORMDirectory_Lookups(t *testing.T) {
	f := seed(t)
	dir := NewGORMDirectory(f.db)
	ctx := context.Background()

	sp, err := dir.FindSellable(ctx, f.sellable.ID)
	require.NoError(t, err)
	require.NotNil(t, sp)
	assert.Equal(t, f.product.ID, sp.ProductID)

	missing, err := dir.FindSellable(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := dir.ListSellablesByProduct(ctx, f.product.ID, &f.supermarket.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other := uuid.New()
	list, err = dir.ListSellablesByProduct(ctx, f.product.ID, &other)
	require.NoError(t, err)
	assert.Empty(t, list)

	totals, err := dir.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Products)
	assert.Equal(t, int64(1), totals.Supermarkets)
	assert.Equal(t, int64(0), totals.Users)
}

func TestResolve_ToleratesDanglingReferences(t *testing.T) {
	f := seed(t)
	dir := NewGORMDirectory(f.db)
	dangling := uuid.New()

	names, err := Resolve(context.Background(), dir, NewRefs().
		Add(KindProduct, &f.product.ID).
		Add(KindSupermarket, &dangling).
		Add(KindBrand, nil))
	require.NoError(t, err)

	require.NotNil(t, names.Get(KindProduct, &f.product.ID))
	assert.Equal(t, "Milk", *names.Get(KindProduct, &f.product.ID))
	assert.Nil(t, names.Get(KindSupermarket, &dangling))
	assert.Equal(t, "Supermarket", names.GetOr(KindSupermarket, &dangling, "Supermarket"))
	assert.Nil(t, names.Get(KindBrand, nil))
}

func TestCachedDirectory_ReadThrough(t *testing.T) {
	f := seed(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cached := NewCachedDirectory(NewGORMDirectory(f.db), rdb, time.Minute, zap.NewNop())
	ctx := context.Background()

	names, err := cached.Names(ctx, KindProduct, []uuid.UUID{f.product.ID})
	require.NoError(t, err)
	assert.Equal(t, "Milk", names[f.product.ID])

	stored, err := mr.Get(nameKey(KindProduct, f.product.ID))
	require.NoError(t, err)
	assert.Equal(t, "Milk", stored)

	// A rename in the database is not visible until the entry expires.
	require.NoError(t, f.db.Model(&Product{}).Where("id = ?", f.product.ID).Update("name", "Whole milk").Error)
	names, err = cached.Names(ctx, KindProduct, []uuid.UUID{f.product.ID})
	require.NoError(t, err)
	assert.Equal(t, "Milk", names[f.product.ID])

	mr.FastForward(2 * time.Minute)
	names, err = cached.Names(ctx, KindProduct, []uuid.UUID{f.product.ID})
	require.NoError(t, err)
	assert.Equal(t, "Whole milk", names[f.product.ID])
}

func TestCachedDirectory_FallsBackWhenRedisIsDown(t *testing.T) {
	f := seed(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	cached := NewCachedDirectory(NewGORMDirectory(f.db), rdb, time.Minute, zap.NewNop())
	names, err := cached.Names(context.Background(), KindSupermarket, []uuid.UUID{f.supermarket.ID})
	require.NoError(t, err)
	assert.Equal(t, "Mercadona", names[f.supermarket.ID])
}
