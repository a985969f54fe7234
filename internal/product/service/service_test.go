package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	inventoryrepo "github.com/smallbiznis/stockroom/internal/inventory/repository"
	"github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/product/repository"
	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Product{}, &inventorydomain.Inventory{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:            conn,
		Log:           zap.NewNop(),
		GenID:         node,
		Repo:          repository.Provide(),
		InventoryRepo: inventoryrepo.Provide(),
	})
	return svc, conn
}

func intPtr(v int) *int { return &v }

func TestCreateProductCreatesEmptyInventory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateRequest{
		Code:         " SR-001 ",
		Name:         "Starlight Series Box",
		Series:       "Starlight",
		BoxesPerCase: intPtr(4),
		BoxesPerSet:  intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "SR-001", resp.Code)
	assert.Equal(t, domain.Specs{BoxesPerCase: 4, BoxesPerSet: 10}, resp.Specs)
	require.NotNil(t, resp.Inventory)
	assert.Equal(t, 0, resp.Inventory.Quantity)
	assert.Equal(t, "0盒", resp.Inventory.Display)

	var count int64
	require.NoError(t, conn.Model(&inventorydomain.Inventory{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateProductRejectsDuplicateCode(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Code: "SR-001", Name: "First"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Code: "SR-001", Name: "Second"})
	assert.ErrorIs(t, err, domain.ErrCodeExists)

	var count int64
	require.NoError(t, conn.Model(&inventorydomain.Inventory{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Code: " ", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Create(ctx, domain.CreateRequest{Code: "A", Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	ratio := -0.5
	_, err = svc.Create(ctx, domain.CreateRequest{Code: "A", Name: "B", HiddenRatio: &ratio})
	assert.ErrorIs(t, err, domain.ErrInvalidRatio)
}

func TestListFiltersBySearchAndSeries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, req := range []domain.CreateRequest{
		{Code: "SR-001", Name: "Starlight Alpha", Series: "Starlight"},
		{Code: "SR-002", Name: "Starlight Beta", Series: "Starlight"},
		{Code: "MO-001", Name: "Moonrise Alpha", Series: "Moon Rise"},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, domain.ListRequest{Search: "alpha"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = svc.List(ctx, domain.ListRequest{Series: "moon rise"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "MO-001", items[0].Code)

	items, err = svc.List(ctx, domain.ListRequest{Series: "all"})
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestUpdateNormalizesSpecs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Code: "SR-001", Name: "Starlight", BoxesPerCase: intPtr(4), BoxesPerSet: intPtr(10)})
	require.NoError(t, err)

	name := "Starlight Deluxe"
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Name: &name, BoxesPerCase: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "Starlight Deluxe", updated.Name)
	assert.Equal(t, domain.Specs{BoxesPerCase: 1, BoxesPerSet: 10}, updated.Specs)

	_, err = svc.Get(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Get(ctx, "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
