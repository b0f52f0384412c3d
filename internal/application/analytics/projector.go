// Package analytics contiene las proyecciones de solo lectura sobre lotes y movimientos:
// stock bajo, agotados, próximos a vencer, más vendidos, resumen por farmacia y KPIs.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

const (
	defaultTopLimit = 10
	// DefaultExpiringDays ventana usada por la API cuando no se indica days.
	DefaultExpiringDays = 30
)

// Projector calcula las vistas analíticas. No guarda caché: cada llamada lee una snapshot nueva.
type Projector struct {
	snap SnapshotRunner
	now  func() time.Time
}

// NewProjector construye el proyector.
func NewProjector(snap SnapshotRunner) *Projector {
	return &Projector{snap: snap, now: time.Now}
}

// dataset estado leído dentro de una única snapshot.
type dataset struct {
	batches  []*entity.Batch
	products map[string]*entity.Product
	shops    []*entity.Shop
	shopByID map[string]*entity.Shop
	sales    []*entity.Movement
}

func (p *Projector) load(ctx context.Context, withSales bool) (*dataset, error) {
	ds := &dataset{products: map[string]*entity.Product{}, shopByID: map[string]*entity.Shop{}}
	err := p.snap.Snapshot(ctx, func(
		batches repository.BatchReader,
		movements repository.MovementReader,
		products repository.ProductReader,
		shops repository.ShopReader,
	) error {
		var err error
		if ds.batches, err = batches.List(ctx); err != nil {
			return fmt.Errorf("lotes: %w", err)
		}
		prods, err := products.List(ctx)
		if err != nil {
			return fmt.Errorf("productos: %w", err)
		}
		for _, pr := range prods {
			ds.products[pr.ID] = pr
		}
		if ds.shops, err = shops.List(ctx); err != nil {
			return fmt.Errorf("farmacias: %w", err)
		}
		for _, s := range ds.shops {
			ds.shopByID[s.ID] = s
		}
		if !withSales {
			return nil
		}
		outs, err := movements.ListByType(ctx, entity.MovementTypeOut)
		if err != nil {
			return fmt.Errorf("movimientos: %w", err)
		}
		for _, m := range outs {
			if m.Reason != nil && *m.Reason == entity.ReasonSale {
				ds.sales = append(ds.sales, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	return ds, nil
}

func (ds *dataset) view(b *entity.Batch) dto.BatchView {
	return dto.BatchView{Batch: *b, Product: ds.products[b.ProductID], Shop: ds.shopByID[b.ShopID]}
}

func (ds *dataset) isLow(b *entity.Batch) bool {
	p, ok := ds.products[b.ProductID]
	return ok && b.CurrentStock > 0 && b.CurrentStock <= p.ReorderPoint
}

// LowStock lotes con 0 < stock <= punto de reorden del producto, de menor a mayor stock.
func (p *Projector) LowStock(ctx context.Context) ([]dto.BatchView, error) {
	ds, err := p.load(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchView, 0)
	for _, b := range ds.batches {
		if ds.isLow(b) {
			out = append(out, ds.view(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CurrentStock != out[j].CurrentStock {
			return out[i].CurrentStock < out[j].CurrentStock
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// OutOfStock lotes con stock 0, el actualizado más recientemente primero.
func (p *Projector) OutOfStock(ctx context.Context) ([]dto.BatchView, error) {
	ds, err := p.load(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchView, 0)
	for _, b := range ds.batches {
		if b.CurrentStock == 0 {
			out = append(out, ds.view(b))
		}
	}
	return out, nil
}

// Expiring lotes con fecha de vencimiento <= ahora + days (incluye los ya vencidos),
// ordenados por vencimiento ascendente.
func (p *Projector) Expiring(ctx context.Context, days int) ([]dto.BatchView, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days no puede ser negativo (%d)", domain.ErrInvalidInput, days)
	}
	ds, err := p.load(ctx, false)
	if err != nil {
		return nil, err
	}
	cutoff := p.now().AddDate(0, 0, days)
	out := make([]dto.BatchView, 0)
	for _, b := range ds.batches {
		if b.ExpiryDate != nil && !b.ExpiryDate.After(cutoff) {
			out = append(out, ds.view(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(*out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(*out[j].ExpiryDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// TopSelling productos por unidades vendidas (salidas con motivo "Sale"), de mayor a menor;
// empates por ID de producto. limit <= 0 usa 10. Productos sin ventas no aparecen.
func (p *Projector) TopSelling(ctx context.Context, limit int) ([]dto.TopProductDTO, error) {
	ds, err := p.load(ctx, true)
	if err != nil {
		return nil, err
	}
	return ds.topSelling(limit), nil
}

func (ds *dataset) topSelling(limit int) []dto.TopProductDTO {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	productOf := make(map[string]string, len(ds.batches))
	for _, b := range ds.batches {
		productOf[b.ID] = b.ProductID
	}
	sold := map[string]int{}
	for _, m := range ds.sales {
		if pid, ok := productOf[m.BatchID]; ok {
			sold[pid] += m.Quantity
		}
	}

	out := make([]dto.TopProductDTO, 0, len(sold))
	for pid, total := range sold {
		row := dto.TopProductDTO{ProductID: pid, TotalSold: total}
		if pr, ok := ds.products[pid]; ok {
			row.ProductName, row.SKU, row.Category = pr.Name, pr.SKU, pr.Category
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSold != out[j].TotalSold {
			return out[i].TotalSold > out[j].TotalSold
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ShopSummary conteo de lotes por farmacia (ordenadas por nombre); incluye farmacias sin lotes.
func (p *Projector) ShopSummary(ctx context.Context) ([]dto.ShopSummaryDTO, error) {
	ds, err := p.load(ctx, false)
	if err != nil {
		return nil, err
	}
	byShop := make(map[string]*dto.ShopSummaryDTO, len(ds.shops))
	out := make([]dto.ShopSummaryDTO, len(ds.shops))
	for i, s := range ds.shops {
		out[i] = dto.ShopSummaryDTO{ShopID: s.ID, ShopName: s.Name, Status: s.Status}
		byShop[s.ID] = &out[i]
	}
	for _, b := range ds.batches {
		row, ok := byShop[b.ShopID]
		if !ok {
			continue
		}
		row.TotalBatches++
		switch {
		case b.CurrentStock == 0:
			row.OutOfStock++
		case ds.isLow(b):
			row.LowStockCount++
		}
	}
	return out, nil
}
