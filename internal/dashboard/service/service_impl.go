package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/dashboard/domain"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	purchasedomain "github.com/smallbiznis/stockroom/internal/purchase/domain"
	saledomain "github.com/smallbiznis/stockroom/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Cfg           config.Config
	Clock         clock.Clock
	ProductRepo   productdomain.Repository
	InventoryRepo inventorydomain.Repository
	PurchaseRepo  purchasedomain.Repository
	SaleRepo      saledomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	loc           *time.Location
	productRepo   productdomain.Repository
	inventoryRepo inventorydomain.Repository
	purchaseRepo  purchasedomain.Repository
	saleRepo      saledomain.Repository
}

func New(p Params) domain.Service {
	log := p.Log.Named("dashboard.service")
	loc := time.Local
	if name := strings.TrimSpace(p.Cfg.Alert.Timezone); name != "" {
		if loaded, err := time.LoadLocation(name); err == nil {
			loc = loaded
		} else {
			log.Warn("unknown timezone, using local", zap.String("timezone", name), zap.Error(err))
		}
	}
	return &Service{
		db:            p.DB,
		log:           log,
		clock:         p.Clock,
		loc:           loc,
		productRepo:   p.ProductRepo,
		inventoryRepo: p.InventoryRepo,
		purchaseRepo:  p.PurchaseRepo,
		saleRepo:      p.SaleRepo,
	}
}

func (s *Service) Stats(ctx context.Context, day *time.Time) (*domain.Stats, error) {
	ref := s.clock.Now()
	if day != nil {
		ref = *day
	}
	ref = ref.In(s.loc)
	from := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)

	products, err := s.productRepo.Count(ctx, s.db)
	if err != nil {
		return nil, err
	}
	onHand, err := s.inventoryRepo.SumQuantity(ctx, s.db)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchaseRepo.Summarize(ctx, s.db, &from, &to)
	if err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.Summarize(ctx, s.db, &from, &to)
	if err != nil {
		return nil, err
	}

	return &domain.Stats{
		Date:              from.Format(dateLayout),
		TotalProducts:     products,
		TotalInventory:    onHand,
		TodayPurchases:    purchases.Count,
		TodaySales:        sales.Count,
		TodayPurchaseCost: purchases.TotalCost.Round(2),
		TodayRevenue:      sales.Revenue.Round(2),
		TodayProfit:       sales.Profit.Round(2),
	}, nil
}

func (s *Service) Records(ctx context.Context, req domain.RecordsRequest) ([]domain.Record, error) {
	kind := strings.ToLower(strings.TrimSpace(req.Type))
	if kind != "" && kind != domain.RecordTypePurchase && kind != domain.RecordTypeSale {
		return nil, domain.ErrInvalidRecordType
	}

	var records []domain.Record
	if kind == "" || kind == domain.RecordTypePurchase {
		items, err := s.purchaseRepo.List(ctx, s.db, purchasedomain.ListFilter{
			From:   req.StartDate,
			To:     req.EndDate,
			Search: req.Search,
		})
		if err != nil {
			return nil, err
		}
		for i := range items {
			records = append(records, fromPurchase(&items[i]))
		}
	}
	if kind == "" || kind == domain.RecordTypeSale {
		items, err := s.saleRepo.List(ctx, s.db, saledomain.ListFilter{
			From:   req.StartDate,
			To:     req.EndDate,
			Search: req.Search,
		})
		if err != nil {
			return nil, err
		}
		for i := range items {
			records = append(records, fromSale(&items[i]))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})

	obslogger.WithContext(ctx, s.log).Debug("records listed",
		zap.String("type", kind),
		zap.Int("count", len(records)),
	)
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

func fromPurchase(p *purchasedomain.Purchase) domain.Record {
	rec := domain.Record{
		ID:          snowflake.ID(p.ID).String(),
		Type:        domain.RecordTypePurchase,
		Quantity:    p.Quantity,
		Price:       p.UnitCost,
		TotalAmount: p.TotalCost,
		Date:        p.PurchaseTime,
		Operator:    p.Manager,
	}
	if p.Product != nil {
		rec.ProductName = p.Product.Name
		rec.ProductCode = p.Product.Code
	}
	return rec
}

func fromSale(s *saledomain.Sale) domain.Record {
	rec := domain.Record{
		ID:           snowflake.ID(s.ID).String(),
		Type:         domain.RecordTypeSale,
		Quantity:     s.Quantity,
		Price:        s.SalePrice,
		TotalAmount:  s.SalePrice.Mul(decimal.NewFromInt(int64(s.Quantity))).Round(2),
		Date:         s.SaleTime,
		Operator:     s.Sender,
		Platform:     s.Platform,
		CustomerName: s.CustomerName,
	}
	if s.Product != nil {
		rec.ProductName = s.Product.Name
		rec.ProductCode = s.Product.Code
	}
	return rec
}
