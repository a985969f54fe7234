package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	"github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/unit"
	"github.com/smallbiznis/stockroom/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	InventoryRepo inventorydomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	repo          domain.Repository
	inventoryRepo inventorydomain.Repository
	genID         *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("product.service"),
		repo:          p.Repo,
		inventoryRepo: p.InventoryRepo,
		genID:         p.GenID,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{
		Search: strings.TrimSpace(req.Search),
	}
	if series := strings.TrimSpace(req.Series); series != "" && series != "all" {
		filter.SeriesSlug = slug.Make(series)
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	stock, err := s.inventoryRepo.FindByProductIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[int64]*inventorydomain.Inventory, len(stock))
	for i := range stock {
		byProduct[stock[i].ProductID] = &stock[i]
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i], byProduct[items[i].ID]))
	}
	return resp, nil
}

// Create registers a product together with an empty inventory row.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.HiddenRatio != nil && *req.HiddenRatio < 0 {
		return nil, domain.ErrInvalidRatio
	}

	series := strings.TrimSpace(req.Series)
	now := time.Now().UTC()
	p := &domain.Product{
		ID:           s.genID.Generate().Int64(),
		Code:         code,
		Name:         name,
		Series:       series,
		SeriesSlug:   slug.Make(series),
		Size:         trimmedOrNil(req.Size),
		Style:        trimmedOrNil(req.Style),
		HiddenRatio:  req.HiddenRatio,
		Version:      trimmedOrNil(req.Version),
		Image:        trimmedOrNil(req.Image),
		BoxesPerCase: positiveOrNil(req.BoxesPerCase),
		BoxesPerSet:  positiveOrNil(req.BoxesPerSet),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}

	inv := &inventorydomain.Inventory{
		ID:          s.genID.Generate().Int64(),
		ProductID:   p.ID,
		Quantity:    0,
		AvgCost:     decimal.Zero,
		LastUpdated: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrCodeExists
		}
		if err := s.repo.Create(ctx, tx, p); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrCodeExists
			}
			return err
		}
		return s.inventoryRepo.Create(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product created", zap.Int64("product_id", p.ID), zap.String("code", p.Code))
	resp := s.toResponse(p, inv)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	inv, err := s.inventoryRepo.FindByProductID(ctx, s.db, item.ID)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(item, inv)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Series != nil {
		item.Series = strings.TrimSpace(*req.Series)
		item.SeriesSlug = slug.Make(item.Series)
	}
	if req.Size != nil {
		item.Size = trimmedOrNil(req.Size)
	}
	if req.Style != nil {
		item.Style = trimmedOrNil(req.Style)
	}
	if req.HiddenRatio != nil {
		if *req.HiddenRatio < 0 {
			return nil, domain.ErrInvalidRatio
		}
		item.HiddenRatio = req.HiddenRatio
	}
	if req.Version != nil {
		item.Version = trimmedOrNil(req.Version)
	}
	if req.Image != nil {
		item.Image = trimmedOrNil(req.Image)
	}
	if req.BoxesPerCase != nil {
		item.BoxesPerCase = positiveOrNil(req.BoxesPerCase)
	}
	if req.BoxesPerSet != nil {
		item.BoxesPerSet = positiveOrNil(req.BoxesPerSet)
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}
	inv, err := s.inventoryRepo.FindByProductID(ctx, s.db, item.ID)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(item, inv)
	return &resp, nil
}

func (s *Service) toResponse(p *domain.Product, inv *inventorydomain.Inventory) domain.Response {
	specs := p.Specs()
	resp := domain.Response{
		ID:          snowflake.ID(p.ID).String(),
		Code:        p.Code,
		Name:        p.Name,
		Series:      p.Series,
		Size:        p.Size,
		Style:       p.Style,
		HiddenRatio: p.HiddenRatio,
		Version:     p.Version,
		Image:       p.Image,
		Specs:       domain.SpecsFrom(specs),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}
	if inv != nil {
		resp.Inventory = &domain.InventorySummary{
			Quantity:    inv.Quantity,
			AvgCost:     inv.AvgCost.StringFixed(2),
			Display:     unit.Format(inv.Quantity, specs),
			LastUpdated: inv.LastUpdated,
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

func positiveOrNil(value *int) *int {
	if value == nil || *value <= 0 {
		return nil
	}
	v := *value
	return &v
}
