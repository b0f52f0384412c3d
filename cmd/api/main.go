package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Farmacia-api/internal/application/analytics"
	"github.com/jhoicas/Farmacia-api/internal/application/auth"
	"github.com/jhoicas/Farmacia-api/internal/application/ledger"
	"github.com/jhoicas/Farmacia-api/internal/application/usecase"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Farmacia-api/internal/interfaces/http"
	"github.com/jhoicas/Farmacia-api/internal/realtime"
	"github.com/jhoicas/Farmacia-api/internal/seed"
	"github.com/jhoicas/Farmacia-api/pkg/config"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// backend repositorios y ejecutores de transacción de un almacenamiento concreto.
type backend struct {
	tx       ledger.TxRunner
	snapshot analytics.SnapshotRunner
	batches  repository.BatchReader
	moves    repository.MovementReader
	products repository.ProductRepository
	shops    repository.ShopRepository
	sales    repository.SaleRepository
	users    repository.UserRepository
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Ledger.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Ledger.Store).Msg("inicializar almacenamiento")
	}
	defer be.close()

	hub := realtime.NewHub(cfg.Hub.BufferSize, log)
	engine := ledger.NewEngine(be.tx, be.batches, be.moves, be.products, be.shops, hub, ledger.Config{
		MaxRetries:   cfg.Ledger.MaxRetries,
		RetryBackoff: cfg.Ledger.RetryBackoff,
	}, log)
	projector := analytics.NewProjector(be.snapshot)
	productUC := usecase.NewProductUseCase(be.products)
	shopUC := usecase.NewShopUseCase(be.shops, hub)
	saleUC := usecase.NewSaleUseCase(be.sales, be.shops)
	authUC := auth.NewAuthUseCase(be.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// En memoria no hay nada persistido: se carga la demo para poder iniciar sesión.
	if cfg.Ledger.Store == config.StoreMemory {
		if _, err := seed.Demo(ctx, seed.Deps{Auth: authUC, Products: productUC, Shops: shopUC, Sales: saleUC, Ledger: engine, Log: log}); err != nil {
			log.Fatal().Err(err).Msg("carga de datos de demostración")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Farmacia API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: no se encontró la especificación")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:         engine,
		Analytics:      projector,
		ProductUC:      productUC,
		ShopUC:         shopUC,
		SaleUC:         saleUC,
		AuthUC:         authUC,
		Hub:            hub,
		JWTSecret:      cfg.JWT.Secret,
		WSWriteTimeout: cfg.Hub.WriteTimeout,
		ServiceName:    cfg.App.Name,
		Store:          cfg.Ledger.Store,
		Log:            log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// Cierra las conexiones WebSocket antes del apagado HTTP.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Ledger.Store == config.StoreMemory {
		store := memory.NewStore()
		return &backend{
			tx:       store,
			snapshot: store,
			batches:  store.Batches(),
			moves:    store.Movements(),
			products: store.Products(),
			shops:    store.Shops(),
			sales:    store.Sales(),
			users:    store.Users(),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}
	txRunner := postgres.NewTxRunner(pool)
	return &backend{
		tx:       txRunner,
		snapshot: txRunner,
		batches:  postgres.NewBatchRepository(pool),
		moves:    postgres.NewMovementRepository(pool),
		products: postgres.NewProductRepository(pool),
		shops:    postgres.NewShopRepository(pool),
		sales:    postgres.NewSaleRepository(pool),
		users:    postgres.NewUserRepository(pool),
		close:    pool.Close,
	}, nil
}
