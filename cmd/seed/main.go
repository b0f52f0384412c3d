// seed carga en PostgreSQL los datos de demostración (usuarios, farmacias, productos, lotes y ventas).
//
// Uso: go run ./cmd/seed
// Lee la misma configuración que la API (DATABASE_URL o DB_*); aplica las migraciones antes.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/application/auth"
	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
	"github.com/jhoicas/Farmacia-api/internal/application/usecase"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Farmacia-api/internal/seed"
	"github.com/jhoicas/Farmacia-api/pkg/config"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

type noPublish struct{}

func (noPublish) Publish(entity.Event) {}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, log); err != nil {
		return err
	}

	products := postgres.NewProductRepository(pool)
	shops := postgres.NewShopRepository(pool)
	engine := ledger.NewEngine(
		postgres.NewTxRunner(pool),
		postgres.NewBatchRepository(pool),
		postgres.NewMovementRepository(pool),
		products, shops, noPublish{},
		ledger.Config{MaxRetries: cfg.Ledger.MaxRetries, RetryBackoff: cfg.Ledger.RetryBackoff},
		log,
	)

	sum, err := seed.Demo(ctx, seed.Deps{
		Auth: auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
			Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
		}),
		Products: usecase.NewProductUseCase(products),
		Shops:    usecase.NewShopUseCase(shops, noPublish{}),
		Sales:    usecase.NewSaleUseCase(postgres.NewSaleRepository(pool), shops),
		Ledger:   engine,
		Log:      log,
	})
	if err != nil {
		return err
	}
	fmt.Printf("usuarios=%d farmacias=%d productos=%d lotes=%d movimientos=%d ventas=%d\n",
		sum.Users, sum.Shops, sum.Products, sum.Batches, sum.Movements, sum.Sales)
	return nil
}
