package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/clock"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	saledomain "github.com/smallbiznis/stockroom/internal/sale/domain"
	salerepo "github.com/smallbiznis/stockroom/internal/sale/repository"
	"github.com/smallbiznis/stockroom/internal/salereturn/domain"
	"github.com/smallbiznis/stockroom/internal/salereturn/repository"
	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   *Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&productdomain.Product{}, &saledomain.Sale{}, &domain.Return{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     repository.Provide(),
		SaleRepo: salerepo.Provide(),
	}).(*Service)
	return &fixture{svc: svc, db: conn, node: node, clock: clk}
}

func (f *fixture) seedSale(t *testing.T) *saledomain.Sale {
	t.Helper()
	now := time.Now().UTC()
	p := &productdomain.Product{
		ID:        f.node.Generate().Int64(),
		Code:      "SR-001",
		Name:      "Starlight",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(p).Error)
	s := &saledomain.Sale{
		ID:        f.node.Generate().Int64(),
		SaleTime:  now,
		ProductID: p.ID,
		Quantity:  3,
		SalePrice: decimal.NewFromInt(30),
		Profit:    decimal.NewFromInt(10),
		UserID:    1,
		CreatedAt: now,
	}
	require.NoError(t, f.db.Omit("Product").Create(s).Error)
	return s
}

func TestCreate_Defaults(t *testing.T) {
	f := newFixture(t)
	sale := f.seedSale(t)
	f.svc.suffix = func() int { return 7 }

	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		UserID:      9,
		SaleID:      snowflake.ID(sale.ID).String(),
		Quantity:    2,
		ReturnPrice: decimal.RequireFromString("12.5"),
	})
	require.NoError(t, err)

	assert.Equal(t, "RT20250301007", resp.ReturnNo)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(25)))
	assert.True(t, resp.PackageIntact)
	assert.True(t, resp.Resalable)
	assert.Equal(t, domain.StatusPending, resp.Status)
	require.NotNil(t, resp.Sale)
	assert.Equal(t, "SR-001", resp.Sale.ProductCode)
}

func TestCreate_RetriesOnReturnNoCollision(t *testing.T) {
	f := newFixture(t)
	sale := f.seedSale(t)
	suffixes := []int{1, 1, 2}
	f.svc.suffix = func() int {
		n := suffixes[0]
		suffixes = suffixes[1:]
		return n
	}
	req := domain.CreateRequest{
		UserID:      9,
		SaleID:      snowflake.ID(sale.ID).String(),
		Quantity:    1,
		ReturnPrice: decimal.NewFromInt(5),
	}

	first, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "RT20250301001", first.ReturnNo)
	assert.Equal(t, "RT20250301002", second.ReturnNo)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	sale := f.seedSale(t)
	id := snowflake.ID(sale.ID).String()

	cases := []struct {
		name string
		req  domain.CreateRequest
		want error
	}{
		{"missing user", domain.CreateRequest{SaleID: id, Quantity: 1, ReturnPrice: decimal.NewFromInt(1)}, domain.ErrMissingUser},
		{"bad sale id", domain.CreateRequest{UserID: 1, SaleID: "", Quantity: 1, ReturnPrice: decimal.NewFromInt(1)}, domain.ErrInvalidSale},
		{"zero quantity", domain.CreateRequest{UserID: 1, SaleID: id, ReturnPrice: decimal.NewFromInt(1)}, domain.ErrInvalidQuantity},
		{"zero price", domain.CreateRequest{UserID: 1, SaleID: id, Quantity: 1}, domain.ErrInvalidPrice},
		{"unknown sale", domain.CreateRequest{UserID: 1, SaleID: "777", Quantity: 1, ReturnPrice: decimal.NewFromInt(1)}, domain.ErrSaleNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestList_PagesAndFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	sale := f.seedSale(t)
	n := 0
	f.svc.suffix = func() int { n++; return n }

	var ids []string
	for i := 0; i < 3; i++ {
		resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
			UserID:      1,
			SaleID:      snowflake.ID(sale.ID).String(),
			Quantity:    1,
			ReturnPrice: decimal.NewFromInt(5),
		})
		require.NoError(t, err)
		ids = append(ids, resp.ID)
		f.clock.Advance(time.Minute)
	}
	_, err := f.svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{ID: ids[0], Status: domain.StatusCompleted})
	require.NoError(t, err)

	page, err := f.svc.List(context.Background(), domain.ListRequest{
		Pagination: pagination.Pagination{Page: 1, Limit: 2},
		Status:     "all",
	})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, ids[2], page.Data[0].ID)

	completed, err := f.svc.List(context.Background(), domain.ListRequest{Status: domain.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed.Data, 1)
	assert.Equal(t, ids[0], completed.Data[0].ID)
	assert.Equal(t, 10, completed.Pagination.Limit)
}

func TestUpdateStatusAndDelete(t *testing.T) {
	f := newFixture(t)
	sale := f.seedSale(t)
	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		UserID:      1,
		SaleID:      snowflake.ID(sale.ID).String(),
		Quantity:    1,
		ReturnPrice: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{ID: resp.ID, Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	updated, err := f.svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{ID: resp.ID, Status: domain.StatusRejected})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, updated.Status)

	require.NoError(t, f.svc.Delete(context.Background(), resp.ID))
	assert.ErrorIs(t, f.svc.Delete(context.Background(), resp.ID), domain.ErrNotFound)
	_, err = f.svc.UpdateStatus(context.Background(), domain.UpdateStatusRequest{ID: resp.ID, Status: domain.StatusPending})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
