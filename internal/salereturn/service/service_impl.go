package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/clock"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	saledomain "github.com/smallbiznis/stockroom/internal/sale/domain"
	"github.com/smallbiznis/stockroom/internal/salereturn/domain"
	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// returnNoAttempts bounds retries when a generated return number collides.
const returnNoAttempts = 5

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	SaleRepo saledomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	saleRepo saledomain.Repository
	suffix   func() int
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("salereturn.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		saleRepo: p.SaleRepo,
		suffix:   func() int { return rand.IntN(1000) },
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	if req.UserID == 0 {
		return nil, domain.ErrMissingUser
	}
	saleID, err := snowflake.ParseString(strings.TrimSpace(req.SaleID))
	if err != nil || saleID == 0 {
		return nil, domain.ErrInvalidSale
	}
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if !req.ReturnPrice.IsPositive() {
		return nil, domain.ErrInvalidPrice
	}

	sale, err := s.saleRepo.FindByID(ctx, s.db, saleID.Int64())
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}

	now := s.clock.Now()
	ret := &domain.Return{
		ID:            s.genID.Generate().Int64(),
		SaleID:        sale.ID,
		Quantity:      req.Quantity,
		ReturnPrice:   req.ReturnPrice,
		TotalAmount:   req.ReturnPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2),
		PackageIntact: boolOrDefault(req.PackageIntact, true),
		Resalable:     boolOrDefault(req.Resalable, true),
		Reason:        trimmedOrNil(req.Reason),
		Notes:         trimmedOrNil(req.Notes),
		Status:        domain.StatusPending,
		UserID:        req.UserID,
		ReturnTime:    now.UTC(),
	}

	for attempt := 0; ; attempt++ {
		ret.ReturnNo = fmt.Sprintf("RT%s%03d", now.Format("20060102"), s.suffix())
		err = s.repo.Create(ctx, s.db, ret)
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		if attempt+1 >= returnNoAttempts {
			return nil, domain.ErrReturnNoExhausted
		}
	}

	obslogger.WithContext(ctx, s.log).Info("return created",
		zap.String("return_no", ret.ReturnNo),
		zap.Int64("sale_id", ret.SaleID),
	)

	ret.Sale = sale
	resp := toResponse(ret)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	status := strings.TrimSpace(req.Status)
	if status == "all" {
		status = ""
	}
	if status != "" && !domain.IsValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	page := req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, s.db, domain.ListFilter{Status: status}, page)
	if err != nil {
		return nil, err
	}

	data := make([]domain.Response, 0, len(items))
	for i := range items {
		data = append(data, toResponse(&items[i]))
	}
	return &domain.ListResponse{
		Data:       data,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (*domain.Response, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	status := strings.TrimSpace(req.Status)
	if !domain.IsValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := s.repo.UpdateStatus(ctx, s.db, id, status); err != nil {
		return nil, err
	}
	existing.Status = status

	resp := toResponse(existing)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func toResponse(r *domain.Return) domain.Response {
	resp := domain.Response{
		ID:            snowflake.ID(r.ID).String(),
		ReturnNo:      r.ReturnNo,
		SaleID:        snowflake.ID(r.SaleID).String(),
		Quantity:      r.Quantity,
		ReturnPrice:   r.ReturnPrice.Round(4),
		TotalAmount:   r.TotalAmount.Round(2),
		PackageIntact: r.PackageIntact,
		Resalable:     r.Resalable,
		Reason:        r.Reason,
		Notes:         r.Notes,
		Status:        r.Status,
		UserID:        snowflake.ID(r.UserID).String(),
		ReturnTime:    r.ReturnTime,
	}
	if sale := r.Sale; sale != nil {
		ref := &domain.SaleRef{
			ID:           snowflake.ID(sale.ID).String(),
			SaleTime:     sale.SaleTime,
			Platform:     sale.Platform,
			ProductID:    snowflake.ID(sale.ProductID).String(),
			Quantity:     sale.Quantity,
			SalePrice:    sale.SalePrice.Round(4),
			CustomerName: sale.CustomerName,
		}
		if sale.Product != nil {
			ref.ProductName = sale.Product.Name
			ref.ProductCode = sale.Product.Code
		}
		resp.Sale = ref
	}
	return resp
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
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
