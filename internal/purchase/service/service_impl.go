package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/clock"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/purchase/domain"
	"github.com/smallbiznis/stockroom/internal/unit"
	"github.com/smallbiznis/stockroom/pkg/db"
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
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	productRepo   productdomain.Repository
	inventoryRepo inventorydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("purchase.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		productRepo:   p.ProductRepo,
		inventoryRepo: p.InventoryRepo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		From:     req.StartDate,
		To:       req.EndDate,
		Supplier: req.Supplier,
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

// Create records a purchase. Purchases that arrive on creation are added to
// inventory in the same transaction using a weighted average cost.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil || productID == 0 {
		return nil, domain.ErrInvalidProduct
	}
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidUnitCost
	}
	if req.TotalCost != nil && req.TotalCost.IsNegative() {
		return nil, domain.ErrInvalidTotalCost
	}
	u, err := unit.ParseUnit(req.Unit)
	if err != nil {
		return nil, domain.ErrInvalidUnit
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.StatusPending
	}
	if !domain.IsValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	now := s.clock.Now().UTC()
	purchaseNo := strings.TrimSpace(req.PurchaseNo)
	if purchaseNo == "" {
		purchaseNo = fmt.Sprintf("PO%d", now.UnixMilli())
	}
	purchaseTime := now
	if req.PurchaseTime != nil && !req.PurchaseTime.IsZero() {
		purchaseTime = req.PurchaseTime.UTC()
	}

	var (
		saved   *domain.Purchase
		product *productdomain.Product
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByPurchaseNo(ctx, tx, purchaseNo)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrPurchaseNoExists
		}

		product, err = s.productRepo.FindByID(ctx, tx, productID.Int64())
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}

		specs := product.Specs()
		boxes := unit.ToBoxesInt(req.Quantity, u, specs)
		unitCost := unit.PerBoxCost(req.UnitCost, u, specs)
		totalCost := req.UnitCost.Mul(decimal.NewFromInt(int64(req.Quantity)))
		if req.TotalCost != nil {
			totalCost = *req.TotalCost
		}

		p := &domain.Purchase{
			ID:           s.genID.Generate().Int64(),
			PurchaseNo:   purchaseNo,
			Supplier:     strings.TrimSpace(req.Supplier),
			Manager:      strings.TrimSpace(req.Manager),
			PurchaseTime: purchaseTime,
			PurchaseType: strings.TrimSpace(req.PurchaseType),
			ProductID:    product.ID,
			Quantity:     boxes,
			UnitCost:     unitCost,
			TotalCost:    totalCost,
			BatchNo:      trimmedOrNil(req.BatchNo),
			Status:       status,
			Notes:        trimmedOrNil(req.Notes),
			CreatedAt:    now,
		}
		if err := s.repo.Create(ctx, tx, p); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrPurchaseNoExists
			}
			return err
		}

		if domain.IsReceivedStatus(status) {
			if err := s.receive(ctx, tx, p, now); err != nil {
				return err
			}
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase recorded",
		zap.Int64("purchase_id", saved.ID),
		zap.Int64("product_id", saved.ProductID),
		zap.Int("boxes", saved.Quantity),
		zap.Bool("received", saved.Received),
	)

	resp := toResponse(saved, product)
	return &resp, nil
}

// UpdateStatus moves a purchase through its lifecycle. The first transition
// into arrived or listed adds the goods to inventory.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (*domain.Response, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	status := strings.TrimSpace(req.Status)
	if !domain.IsValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	var saved *domain.Purchase
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.repo.FindByID(ctx, tx, id.Int64())
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}

		p.Status = status
		if domain.IsReceivedStatus(status) && !p.Received {
			if err := s.receive(ctx, tx, p, s.clock.Now().UTC()); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateStatus(ctx, tx, p.ID, p.Status, p.Received); err != nil {
			return err
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(saved, saved.Product)
	return &resp, nil
}

// receive adds p to inventory and marks it received.
// New average cost is (avg*q + total) / (q + qty), or the unit cost when the
// shelf was empty. The quantity is incremented in place so a sale committed
// after the read is kept.
func (s *Service) receive(ctx context.Context, tx *gorm.DB, p *domain.Purchase, at time.Time) error {
	inv, err := s.inventoryRepo.FindByProductID(ctx, tx, p.ProductID)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrInventoryMissing
	}

	newQty := inv.Quantity + p.Quantity
	newAvg := p.UnitCost
	if inv.Quantity > 0 {
		newAvg = inv.AvgCost.
			Mul(decimal.NewFromInt(int64(inv.Quantity))).
			Add(p.TotalCost).
			Div(decimal.NewFromInt(int64(newQty)))
	}

	if err := s.inventoryRepo.AddStock(ctx, tx, p.ProductID, p.Quantity, newAvg.Round(4), at); err != nil {
		return err
	}
	p.Received = true
	return nil
}

func toResponse(p *domain.Purchase, product *productdomain.Product) domain.Response {
	resp := domain.Response{
		ID:           snowflake.ID(p.ID).String(),
		PurchaseNo:   p.PurchaseNo,
		Supplier:     p.Supplier,
		Manager:      p.Manager,
		PurchaseTime: p.PurchaseTime,
		PurchaseType: p.PurchaseType,
		ProductID:    snowflake.ID(p.ProductID).String(),
		Quantity:     p.Quantity,
		Display:      unit.Format(p.Quantity, unit.NewSpecs(nil, nil)),
		UnitCost:     p.UnitCost.Round(4),
		TotalCost:    p.TotalCost.Round(2),
		BatchNo:      p.BatchNo,
		Status:       p.Status,
		Received:     p.Received,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
	}
	if product != nil {
		specs := product.Specs()
		resp.Display = unit.Format(p.Quantity, specs)
		resp.Product = &inventorydomain.ProductRef{
			ID:     snowflake.ID(product.ID).String(),
			Code:   product.Code,
			Name:   product.Name,
			Series: product.Series,
			Specs:  productdomain.SpecsFrom(specs),
		}
	}
	return resp
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
