package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/events"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/sale/domain"
	"github.com/smallbiznis/stockroom/internal/unit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	ProductRepo   productdomain.Repository
	InventoryRepo inventorydomain.Repository
	Publisher     events.Publisher
	Metrics       *metrics.Metrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	productRepo   productdomain.Repository
	inventoryRepo inventorydomain.Repository
	publisher     events.Publisher
	metrics       *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("sale.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		productRepo:   p.ProductRepo,
		inventoryRepo: p.InventoryRepo,
		publisher:     p.Publisher,
		metrics:       p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		From:     req.StartDate,
		To:       req.EndDate,
		Platform: req.Platform,
		SaleType: req.SaleType,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i], items[i].Product))
	}
	return resp, nil
}

// Create records a sale and decrements stock in one transaction, then emits
// stock.changed with the remaining box count.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	if req.UserID == 0 {
		return nil, domain.ErrMissingUser
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil || productID == 0 {
		return nil, domain.ErrInvalidProduct
	}
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.SalePrice.IsNegative() {
		return nil, domain.ErrInvalidSalePrice
	}
	shipping := decimal.Zero
	if req.ShippingFee != nil {
		if req.ShippingFee.IsNegative() {
			return nil, domain.ErrInvalidShipping
		}
		shipping = *req.ShippingFee
	}
	u, err := unit.ParseUnit(req.Unit)
	if err != nil {
		return nil, domain.ErrInvalidUnit
	}

	now := s.clock.Now().UTC()
	saleTime := now
	if req.SaleTime != nil && !req.SaleTime.IsZero() {
		saleTime = req.SaleTime.UTC()
	}

	var (
		saved     *domain.Sale
		product   *productdomain.Product
		remaining int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err = s.productRepo.FindByID(ctx, tx, productID.Int64())
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		inv, err := s.inventoryRepo.FindByProductID(ctx, tx, product.ID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrInsufficientStock
		}

		specs := product.Specs()
		boxes := unit.ToBoxesInt(req.Quantity, u, specs)
		if inv.Quantity < boxes {
			return domain.ErrInsufficientStock
		}

		pricePerBox := unit.PerBoxCost(req.SalePrice, u, specs)
		qty := decimal.NewFromInt(int64(boxes))
		profit := pricePerBox.Mul(qty).
			Sub(inv.AvgCost.Mul(qty)).
			Sub(shipping)

		sale := &domain.Sale{
			ID:             s.genID.Generate().Int64(),
			SaleTime:       saleTime,
			Sender:         strings.TrimSpace(req.Sender),
			Platform:       strings.TrimSpace(req.Platform),
			SaleType:       strings.TrimSpace(req.SaleType),
			ProductID:      product.ID,
			Quantity:       boxes,
			SalePrice:      pricePerBox,
			ShippingFee:    shipping,
			Profit:         profit.Round(2),
			CustomerName:   trimmedOrNil(req.CustomerName),
			ReceiveMethod:  trimmedOrNil(req.ReceiveMethod),
			ExpressCompany: trimmedOrNil(req.ExpressCompany),
			TrackingNo:     trimmedOrNil(req.TrackingNo),
			Notes:          trimmedOrNil(req.Notes),
			UserID:         req.UserID,
			CreatedAt:      now,
		}
		if err := s.repo.Create(ctx, tx, sale); err != nil {
			return err
		}

		ok, err := s.inventoryRepo.Decrement(ctx, tx, product.ID, boxes, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientStock
		}

		after, err := s.inventoryRepo.FindByProductID(ctx, tx, product.ID)
		if err != nil {
			return err
		}
		if after == nil {
			return domain.ErrInsufficientStock
		}

		saved = sale
		remaining = after.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSale(ctx, saved.Platform)
	obslogger.WithContext(ctx, s.log).Info("sale recorded",
		zap.Int64("sale_id", saved.ID),
		zap.Int64("product_id", saved.ProductID),
		zap.Int("boxes", saved.Quantity),
		zap.Int("remaining", remaining),
	)

	e := events.NewStockChanged(saved.ProductID, remaining, now)
	if err := s.publisher.Publish(ctx, e); err != nil {
		obslogger.WithContext(ctx, s.log).Warn("stock event not published",
			zap.Int64("product_id", saved.ProductID),
			zap.Error(err),
		)
	}

	resp := toResponse(saved, product)
	resp.RemainingStock = &remaining
	return &resp, nil
}

func toResponse(s *domain.Sale, product *productdomain.Product) domain.Response {
	specs := unit.NewSpecs(nil, nil)
	var ref *inventorydomain.ProductRef
	if product != nil {
		specs = product.Specs()
		ref = &inventorydomain.ProductRef{
			ID:     snowflake.ID(product.ID).String(),
			Code:   product.Code,
			Name:   product.Name,
			Series: product.Series,
			Specs:  productdomain.SpecsFrom(specs),
		}
	}
	return domain.Response{
		ID:             snowflake.ID(s.ID).String(),
		SaleTime:       s.SaleTime,
		Sender:         s.Sender,
		Platform:       s.Platform,
		SaleType:       s.SaleType,
		ProductID:      snowflake.ID(s.ProductID).String(),
		Quantity:       s.Quantity,
		Display:        unit.Format(s.Quantity, specs),
		SalePrice:      s.SalePrice.Round(4),
		ShippingFee:    s.ShippingFee.Round(2),
		Profit:         s.Profit.Round(2),
		CustomerName:   s.CustomerName,
		ReceiveMethod:  s.ReceiveMethod,
		ExpressCompany: s.ExpressCompany,
		TrackingNo:     s.TrackingNo,
		Notes:          s.Notes,
		UserID:         snowflake.ID(s.UserID).String(),
		CreatedAt:      s.CreatedAt,
		Product:        ref,
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
