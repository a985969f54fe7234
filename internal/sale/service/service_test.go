package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/events"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	inventoryrepo "github.com/smallbiznis/stockroom/internal/inventory/repository"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	productrepo "github.com/smallbiznis/stockroom/internal/product/repository"
	"github.com/smallbiznis/stockroom/internal/sale/domain"
	"github.com/smallbiznis/stockroom/internal/sale/repository"
	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	svc       domain.Service
	db        *gorm.DB
	node      *snowflake.Node
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&productdomain.Product{}, &inventorydomain.Inventory{}, &domain.Sale{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	svc := New(Params{
		DB:            conn,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:          repository.Provide(),
		ProductRepo:   productrepo.Provide(),
		InventoryRepo: inventoryrepo.Provide(),
		Publisher:     pub,
	})
	return &fixture{svc: svc, db: conn, node: node, publisher: pub}
}

func (f *fixture) seed(t *testing.T, qty int, avg string) *productdomain.Product {
	t.Helper()
	perCase, perSet := 4, 10
	now := time.Now().UTC()
	p := &productdomain.Product{
		ID:           f.node.Generate().Int64(),
		Code:         "SR-001",
		Name:         "Starlight",
		BoxesPerCase: &perCase,
		BoxesPerSet:  &perSet,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.db.Create(p).Error)
	require.NoError(t, f.db.Omit("Product").Create(&inventorydomain.Inventory{
		ID:          f.node.Generate().Int64(),
		ProductID:   p.ID,
		Quantity:    qty,
		AvgCost:     decimal.RequireFromString(avg),
		LastUpdated: now,
	}).Error)
	return p
}

func (f *fixture) stock(t *testing.T, productID int64) int {
	t.Helper()
	var inv inventorydomain.Inventory
	require.NoError(t, f.db.Where("product_id = ?", productID).First(&inv).Error)
	return inv.Quantity
}

func TestCreate_DecrementsStockAndComputesProfit(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, 10, "20")
	shipping := decimal.NewFromInt(5)

	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		UserID:      42,
		Platform:    "shop",
		ProductID:   snowflake.ID(p.ID).String(),
		Quantity:    3,
		SalePrice:   decimal.NewFromInt(30),
		ShippingFee: &shipping,
	})
	require.NoError(t, err)

	// 3*30 - 3*20 - 5
	assert.True(t, resp.Profit.Equal(decimal.NewFromInt(25)), resp.Profit.String())
	require.NotNil(t, resp.RemainingStock)
	assert.Equal(t, 7, *resp.RemainingStock)
	assert.Equal(t, 7, f.stock(t, p.ID))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, p.ID, f.publisher.events[0].ProductID)
	assert.Equal(t, 7, f.publisher.events[0].Quantity)
}

func TestCreate_ConvertsCaseToBoxes(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, 50, "10")

	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		UserID:    1,
		ProductID: snowflake.ID(p.ID).String(),
		Quantity:  1,
		Unit:      "case",
		SalePrice: decimal.NewFromInt(600),
	})
	require.NoError(t, err)

	assert.Equal(t, 40, resp.Quantity)
	assert.True(t, resp.SalePrice.Equal(decimal.NewFromInt(15)), resp.SalePrice.String())
	assert.True(t, resp.Profit.Equal(decimal.NewFromInt(200)), resp.Profit.String())
	assert.Equal(t, 10, f.stock(t, p.ID))
}

func TestCreate_InsufficientStockLeavesInventory(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, 2, "10")

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		UserID:    1,
		ProductID: snowflake.ID(p.ID).String(),
		Quantity:  3,
		SalePrice: decimal.NewFromInt(20),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, f.stock(t, p.ID))
	assert.Empty(t, f.publisher.events)

	var count int64
	require.NoError(t, f.db.Model(&domain.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, 5, "10")
	id := snowflake.ID(p.ID).String()
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		req  domain.CreateRequest
		want error
	}{
		{"missing user", domain.CreateRequest{ProductID: id, Quantity: 1}, domain.ErrMissingUser},
		{"bad product", domain.CreateRequest{UserID: 1, ProductID: "x", Quantity: 1}, domain.ErrInvalidProduct},
		{"zero quantity", domain.CreateRequest{UserID: 1, ProductID: id}, domain.ErrInvalidQuantity},
		{"negative price", domain.CreateRequest{UserID: 1, ProductID: id, Quantity: 1, SalePrice: negative}, domain.ErrInvalidSalePrice},
		{"negative shipping", domain.CreateRequest{UserID: 1, ProductID: id, Quantity: 1, ShippingFee: &negative}, domain.ErrInvalidShipping},
		{"bad unit", domain.CreateRequest{UserID: 1, ProductID: id, Quantity: 1, Unit: "pallet"}, domain.ErrInvalidUnit},
		{"unknown product", domain.CreateRequest{UserID: 1, ProductID: "12345", Quantity: 1}, domain.ErrProductNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreate_PublishFailureDoesNotFailSale(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("bus down")
	p := f.seed(t, 5, "10")

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		UserID:    1,
		ProductID: snowflake.ID(p.ID).String(),
		Quantity:  1,
		SalePrice: decimal.NewFromInt(12),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, f.stock(t, p.ID))
}

func TestList_FiltersByPlatform(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, 10, "10")
	for _, platform := range []string{"shop", "market", "shop"} {
		_, err := f.svc.Create(context.Background(), domain.CreateRequest{
			UserID:    1,
			Platform:  platform,
			ProductID: snowflake.ID(p.ID).String(),
			Quantity:  1,
			SalePrice: decimal.NewFromInt(12),
		})
		require.NoError(t, err)
	}

	items, err := f.svc.List(context.Background(), domain.ListRequest{Platform: "shop"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	for _, item := range items {
		require.NotNil(t, item.Product)
		assert.Equal(t, "SR-001", item.Product.Code)
	}
}

// racingInventoryRepo commits another sale's decrement right before the
// caller's own decrement runs.
type racingInventoryRepo struct {
	inventorydomain.Repository
	otherBoxes int
}

func (r *racingInventoryRepo) Decrement(ctx context.Context, tx *gorm.DB, productID int64, qty int, at time.Time) (bool, error) {
	if r.otherBoxes > 0 {
		if _, err := r.Repository.Decrement(ctx, tx, productID, r.otherBoxes, at); err != nil {
			return false, err
		}
		r.otherBoxes = 0
	}
	return r.Repository.Decrement(ctx, tx, productID, qty, at)
}

func TestCreate_PublishesStockAfterConcurrentDecrement(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, 5, "10")

	svc := New(Params{
		DB:            f.db,
		Log:           zap.NewNop(),
		GenID:         f.node,
		Clock:         clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:          repository.Provide(),
		ProductRepo:   productrepo.Provide(),
		InventoryRepo: &racingInventoryRepo{Repository: inventoryrepo.Provide(), otherBoxes: 2},
		Publisher:     f.publisher,
	})

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		UserID:    1,
		ProductID: snowflake.ID(p.ID).String(),
		Quantity:  2,
		SalePrice: decimal.NewFromInt(12),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.stock(t, p.ID))
	require.NotNil(t, resp.RemainingStock)
	assert.Equal(t, 1, *resp.RemainingStock)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, 1, f.publisher.events[0].Quantity)
}
