package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// SaleUseCase alta y consulta de ventas. Las líneas se registran con ledger.Engine.AddSaleItem.
type SaleUseCase struct {
	repo  repository.SaleRepository
	shops repository.ShopReader
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(repo repository.SaleRepository, shops repository.ShopReader) *SaleUseCase {
	return &SaleUseCase{repo: repo, shops: shops}
}

// Create abre una venta con total 0 en una farmacia existente.
func (uc *SaleUseCase) Create(ctx context.Context, userID string, in dto.CreateSaleRequest) (*entity.Sale, error) {
	if in.ShopID == "" {
		return nil, fmt.Errorf("%w: shop_id requerido", domain.ErrInvalidInput)
	}
	if !entity.IsValidPaymentMode(in.PaymentMode) {
		return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, in.PaymentMode)
	}
	shop, err := uc.shops.GetByID(ctx, in.ShopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, fmt.Errorf("%w: farmacia %s", domain.ErrNotFound, in.ShopID)
	}
	sale := &entity.Sale{
		ShopID:       in.ShopID,
		TotalAmount:  decimal.Zero,
		PaymentMode:  in.PaymentMode,
		CustomerName: entity.StringPtr(strings.TrimSpace(in.CustomerName)),
		UserID:       entity.StringPtr(userID),
	}
	if err := uc.repo.Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// GetByID devuelve la venta con sus líneas y su farmacia, o ErrNotFound.
func (uc *SaleUseCase) GetByID(ctx context.Context, id string) (*dto.SaleView, error) {
	sale, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	return uc.view(ctx, sale, map[string]*entity.Shop{})
}

// List ventas filtradas por farmacia y rango de fechas, la más reciente primero.
func (uc *SaleUseCase) List(ctx context.Context, q dto.SaleQuery) ([]*dto.SaleView, error) {
	filter, err := parseSaleQuery(q)
	if err != nil {
		return nil, err
	}
	sales, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	shops := map[string]*entity.Shop{}
	out := make([]*dto.SaleView, 0, len(sales))
	for _, s := range sales {
		v, err := uc.view(ctx, s, shops)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (uc *SaleUseCase) view(ctx context.Context, sale *entity.Sale, shops map[string]*entity.Shop) (*dto.SaleView, error) {
	items, err := uc.repo.ListItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	shop, ok := shops[sale.ShopID]
	if !ok {
		if shop, err = uc.shops.GetByID(ctx, sale.ShopID); err != nil {
			return nil, err
		}
		shops[sale.ShopID] = shop
	}
	return &dto.SaleView{Sale: *sale, Shop: shop}, nil
}

// parseSaleQuery convierte los filtros de texto. Una fecha AAAA-MM-DD como fin abarca el día completo.
func parseSaleQuery(q dto.SaleQuery) (repository.SaleFilter, error) {
	f := repository.SaleFilter{ShopID: q.ShopID}
	if q.StartDate != "" {
		from, _, err := parseDate(q.StartDate)
		if err != nil {
			return f, fmt.Errorf("%w: start_date %q", domain.ErrInvalidInput, q.StartDate)
		}
		f.From = &from
	}
	if q.EndDate != "" {
		to, dayOnly, err := parseDate(q.EndDate)
		if err != nil {
			return f, fmt.Errorf("%w: end_date %q", domain.ErrInvalidInput, q.EndDate)
		}
		if dayOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput)
	}
	return f, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	return t, true, err
}
