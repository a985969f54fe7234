package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/events"
	"github.com/smallbiznis/stockroom/internal/inventory/domain"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/unit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	ProductRepo productdomain.Repository
	Publisher   events.Publisher
	StockConfig *config.StockConfigHolder
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	productRepo productdomain.Repository
	publisher   events.Publisher
	stockConfig *config.StockConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("inventory.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
		publisher:   p.Publisher,
		stockConfig: p.StockConfig,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{
		Search: strings.TrimSpace(req.Search),
	}
	if series := strings.TrimSpace(req.Series); series != "" && series != domain.StatusAll {
		filter.SeriesSlug = slug.Make(series)
	}

	switch strings.TrimSpace(req.Status) {
	case "", domain.StatusAll:
	case domain.StatusInStock:
		filter.MinQty = intPtr(1)
	case domain.StatusOutOfStock:
		filter.MaxQty = intPtr(0)
	case domain.StatusLowStock:
		filter.MinQty = intPtr(1)
		filter.MaxQty = intPtr(s.stockConfig.Get().LowStockCeiling)
	default:
		return nil, domain.ErrInvalidStatus
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, ToResponse(&items[i]))
	}
	return resp, nil
}

// Upsert sets a product's stock level and publishes stock.changed once the
// write has committed.
func (s *Service) Upsert(ctx context.Context, req domain.UpsertRequest) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil || productID == 0 {
		return nil, domain.ErrInvalidProduct
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.AvgCost.IsNegative() {
		return nil, domain.ErrInvalidAvgCost
	}
	u, err := unit.ParseUnit(req.Unit)
	if err != nil {
		return nil, domain.ErrInvalidUnit
	}

	var saved *domain.Inventory
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByID(ctx, tx, productID.Int64())
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}

		specs := product.Specs()
		inv := &domain.Inventory{
			ID:          s.genID.Generate().Int64(),
			ProductID:   product.ID,
			Quantity:    unit.ToBoxesInt(*req.Quantity, u, specs),
			AvgCost:     unit.PerBoxCost(req.AvgCost, u, specs),
			LastUpdated: s.clock.Now().UTC(),
		}
		if err := s.repo.Upsert(ctx, tx, inv); err != nil {
			return err
		}

		saved, err = s.repo.FindByProductID(ctx, tx, product.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, domain.ErrProductNotFound
	}

	s.publishStockChanged(ctx, saved.ProductID, saved.Quantity)

	resp := ToResponse(saved)
	return &resp, nil
}

func (s *Service) ListAtOrBelow(ctx context.Context, threshold int) ([]domain.Inventory, error) {
	return s.repo.ListAtOrBelow(ctx, s.db, threshold)
}

func (s *Service) publishStockChanged(ctx context.Context, productID int64, quantity int) {
	e := events.NewStockChanged(productID, quantity, s.clock.Now())
	if err := s.publisher.Publish(ctx, e); err != nil {
		obslogger.WithContext(ctx, s.log).Warn("stock event not published",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
	}
}

// ToResponse renders an inventory row with its formatted quantity.
func ToResponse(inv *domain.Inventory) domain.Response {
	var specs unit.Specs
	var product *domain.ProductRef
	if inv.Product != nil {
		specs = inv.Product.Specs()
		product = &domain.ProductRef{
			ID:     snowflake.ID(inv.Product.ID).String(),
			Code:   inv.Product.Code,
			Name:   inv.Product.Name,
			Series: inv.Product.Series,
			Specs:  productdomain.SpecsFrom(specs),
		}
	} else {
		specs = unit.NewSpecs(nil, nil)
	}

	return domain.Response{
		ID:          snowflake.ID(inv.ID).String(),
		ProductID:   snowflake.ID(inv.ProductID).String(),
		Quantity:    inv.Quantity,
		Breakdown:   unit.BreakdownOf(inv.Quantity, specs),
		Display:     unit.Format(inv.Quantity, specs),
		AvgCost:     inv.AvgCost.Round(4),
		LastUpdated: inv.LastUpdated,
		Product:     product,
	}
}

func intPtr(v int) *int { return &v }
