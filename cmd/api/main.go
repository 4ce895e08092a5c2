package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stockledger/internal/application/auth"
	"github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/application/usecase"
	domaininv "github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/internal/infrastructure/cache"
	"github.com/jhoicas/stockledger/internal/infrastructure/memory"
	"github.com/jhoicas/stockledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stockledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stockledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stockledger/internal/interfaces/http"
	"github.com/jhoicas/stockledger/pkg/config"
	"github.com/jhoicas/stockledger/pkg/logger"
)

// storage adaptadores de persistencia según el driver configurado.
type storage struct {
	tx        inventory.TxRunner
	products  repository.ProductRepository
	merchants repository.MerchantRepository
	movements repository.MovementRepository
	reports   repository.ReportRepository
	users     repository.UserRepository
	close     func()
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
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Caché de reportes (opcional)
	var reportCache inventory.ReportCache = inventory.NoopCache{}
	if cfg.Redis.Enabled() {
		client, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, reportes sin caché")
		} else {
			defer client.Close()
			reportCache = cache.NewRedisCache(client, cfg.Redis.TTL)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMetrics := metrics.New(registry)

	alertPolicy := domaininv.AlertPolicy{
		WindowMonths:   cfg.Policy.AlertWindowMonths,
		ThresholdRatio: cfg.Policy.AlertThresholdRatio,
		MinThreshold:   cfg.Policy.AlertMinThreshold,
		CoverageMonths: cfg.Policy.AlertCoverageMonths,
	}
	trendPolicy := domaininv.TrendPolicy{
		WindowMonths:     cfg.Policy.TrendWindowMonths,
		HighVolumeFactor: cfg.Policy.TrendHighVolumeFactor,
	}

	ledgerWriter := inventory.NewLedgerWriter(store.tx, store.products, store.merchants, reportCache, promMetrics, log)
	batchInbound := inventory.NewBatchInboundUseCase(ledgerWriter)
	reportUC := inventory.NewReportUseCase(
		store.reports, store.products, store.merchants, store.movements,
		reportCache, infrapdf.NewMarotoAlertRenderer("Sugerencia de compra"),
		alertPolicy, trendPolicy, log,
	)
	productUC := usecase.NewProductUseCase(store.products, reportUC).WithReportCache(reportCache)
	merchantUC := usecase.NewMerchantUseCase(store.merchants, store.movements, reportUC).WithReportCache(reportCache)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
		if created {
			log.Info().Str("username", cfg.Admin.Username).Msg("administrador inicial creado")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http"), promMetrics))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerWriter: ledgerWriter,
		BatchInbound: batchInbound,
		Reports:      reportUC,
		ProductUC:    productUC,
		MerchantUC:   merchantUC,
		AuthUC:       authUC,
		JWTSecret:    cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage conecta el driver configurado. Con postgres aplica las migraciones si DB_AUTO_MIGRATE=true.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		mem := memory.NewStore()
		repos := mem.Repositories()
		return &storage{
			tx:        mem,
			products:  repos.Products,
			merchants: repos.Merchants,
			movements: repos.Movements,
			reports:   repos.Reports,
			users:     repos.Users,
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
	}
	return &storage{
		tx:        postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
		products:  postgres.NewProductRepository(pool),
		merchants: postgres.NewMerchantRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		reports:   postgres.NewReportRepository(pool),
		users:     postgres.NewUserRepository(pool),
		close:     pool.Close,
	}, nil
}
