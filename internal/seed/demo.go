// Package seed carga un conjunto de datos de demostración: usuarios, farmacias,
// productos, lotes y ventas. Lotes y líneas de venta entran por el libro, así cada stock
// tiene su historial.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/auth"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
	"github.com/jhoicas/Farmacia-api/internal/application/usecase"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// Deps casos de uso que usa la carga.
type Deps struct {
	Auth     *auth.AuthUseCase
	Products *usecase.ProductUseCase
	Shops    *usecase.ShopUseCase
	Sales    *usecase.SaleUseCase
	Ledger   *ledger.Engine
	Log      *logger.Logger
}

// Summary lo que se creó.
type Summary struct {
	Users     int
	Shops     int
	Products  int
	Batches   int
	Movements int
	Sales     int
}

type demoUser struct {
	username, email, password, role string
}

var demoUsers = []demoUser{
	{"admin", "admin@farmacia.local", "admin12345", entity.RoleAdmin},
	{"consulta", "consulta@farmacia.local", "consulta12345", entity.RoleViewer},
}

var demoShops = []dto.CreateShopRequest{
	{Name: "Farmacia Centro", Address: "Calle 10 #5-20", Status: entity.ShopStatusOnline, AppVersion: "2.4.1"},
	{Name: "Farmacia Norte", Address: "Av. 68 #12-30", Status: entity.ShopStatusOnline, AppVersion: "2.4.1"},
	{Name: "Farmacia Sur", Address: "Cra. 30 #45-10", Status: entity.ShopStatusOffline, AppVersion: "2.3.0"},
}

var demoProducts = []dto.CreateProductRequest{
	{Name: "Acetaminofén 500mg", SKU: "ACE-500", Category: "Analgésicos", UnitPrice: decimal.RequireFromString("350"), ReorderPoint: 50},
	{Name: "Ibuprofeno 400mg", SKU: "IBU-400", Category: "Analgésicos", UnitPrice: decimal.RequireFromString("420"), ReorderPoint: 40},
	{Name: "Amoxicilina 500mg", SKU: "AMX-500", Category: "Antibióticos", UnitPrice: decimal.RequireFromString("1200"), ReorderPoint: 20},
	{Name: "Loratadina 10mg", SKU: "LOR-10", Category: "Antialérgicos", UnitPrice: decimal.RequireFromString("600"), ReorderPoint: 15},
	{Name: "Omeprazol 20mg", SKU: "OME-20", Category: "Gastrointestinales", UnitPrice: decimal.RequireFromString("800"), ReorderPoint: 25},
}

// Demo carga los datos. Si ya existen productos no hace nada (la carga no es incremental).
func Demo(ctx context.Context, d Deps) (*Summary, error) {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("seed")

	existing, err := d.Products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	sum := &Summary{}
	if len(existing) > 0 {
		log.Info().Int("products", len(existing)).Msg("ya hay datos, se omite la carga")
		return sum, nil
	}

	for _, u := range demoUsers {
		_, err := d.Auth.RegisterUser(ctx, u.username, u.email, u.password, u.role)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			log.Debug().Str("username", u.username).Msg("usuario ya existe")
		case err != nil:
			return nil, fmt.Errorf("usuario %s: %w", u.username, err)
		default:
			sum.Users++
		}
	}

	shops := make([]*entity.Shop, 0, len(demoShops))
	for _, in := range demoShops {
		shop, err := d.Shops.Create(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("farmacia %s: %w", in.Name, err)
		}
		shops = append(shops, shop)
		sum.Shops++
	}

	products := make([]*entity.Product, 0, len(demoProducts))
	for _, in := range demoProducts {
		product, err := d.Products.Create(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", in.SKU, err)
		}
		products = append(products, product)
		sum.Products++
	}

	now := time.Now().UTC()
	seq := 0
	for si, shop := range shops {
		// Una venta de mostrador por farmacia con una línea por lote vendido.
		sale, err := d.Sales.Create(ctx, "", dto.CreateSaleRequest{ShopID: shop.ID, PaymentMode: entity.PaymentModeCash})
		if err != nil {
			return nil, fmt.Errorf("venta %s: %w", shop.Name, err)
		}
		sum.Sales++
		for pi, product := range products {
			seq++
			// Cantidades y vencimientos variados para que todas las vistas analíticas tengan filas.
			qty := (pi+1)*20 + si*15
			if (si+pi)%4 == 3 {
				qty = 0
			}
			expiry := now.AddDate(0, 0, 10+(seq*23)%360)
			batch, mov, err := d.Ledger.ReceiveBatch(ctx, ledger.ReceiveBatchInput{
				ProductID:   product.ID,
				ShopID:      shop.ID,
				BatchNumber: fmt.Sprintf("L%s-%03d", now.Format("0601"), seq),
				Quantity:    qty,
				ExpiryDate:  &expiry,
				SupplierID:  "PROV-001",
			})
			if err != nil {
				return nil, fmt.Errorf("lote %s/%s: %w", shop.Name, product.SKU, err)
			}
			sum.Batches++
			if mov != nil {
				sum.Movements++
			}
			if sold := qty / 3; sold > 0 {
				if _, err := d.Ledger.AddSaleItem(ctx, ledger.SaleItemInput{SaleID: sale.ID, BatchID: batch.ID, QuantitySold: sold}); err != nil {
					return nil, fmt.Errorf("venta %s: %w", sale.ID, err)
				}
				sum.Movements++
			}
		}
	}

	log.Info().
		Int("users", sum.Users).
		Int("shops", sum.Shops).
		Int("products", sum.Products).
		Int("batches", sum.Batches).
		Int("movements", sum.Movements).
		Int("sales", sum.Sales).
		Msg("datos de demostración cargados")
	return sum, nil
}
