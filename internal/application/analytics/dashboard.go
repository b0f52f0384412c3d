package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

const dashboardTopProducts = 5 // productos que cuentan como "alta rotación"

// DashboardKPIs indicadores del panel calculados sobre una única snapshot:
//  1. valor total del stock (Σ stock × precio unitario)
//  2. lotes con stock bajo y agotados
//  3. productos de alta rotación (top 5 en ventas)
//  4. farmacias en línea y totales
func (p *Projector) DashboardKPIs(ctx context.Context) (*dto.DashboardKPIsDTO, error) {
	ds, err := p.load(ctx, true)
	if err != nil {
		return nil, err
	}

	kpis := &dto.DashboardKPIsDTO{TotalStockValue: decimal.Zero}
	for _, b := range ds.batches {
		if pr, ok := ds.products[b.ProductID]; ok {
			kpis.TotalStockValue = kpis.TotalStockValue.Add(pr.UnitPrice.Mul(decimal.NewFromInt(int64(b.CurrentStock))))
		}
		switch {
		case b.CurrentStock == 0:
			kpis.OutOfStockItems++
		case ds.isLow(b):
			kpis.LowStockItems++
		}
	}
	kpis.TotalStockValue = kpis.TotalStockValue.Round(2)
	kpis.FastMovingItems = len(ds.topSelling(dashboardTopProducts))

	kpis.TotalShops = len(ds.shops)
	for _, s := range ds.shops {
		if s.Status == entity.ShopStatusOnline {
			kpis.OnlineShops++
		}
	}
	return kpis, nil
}
