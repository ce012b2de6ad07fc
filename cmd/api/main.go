package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/api/routes"
	"github.com/angelmondragon/tableside-backend/internal/auth"
	"github.com/angelmondragon/tableside-backend/internal/cart"
	"github.com/angelmondragon/tableside-backend/internal/members"
	"github.com/angelmondragon/tableside-backend/internal/orders"
	"github.com/angelmondragon/tableside-backend/internal/posts"
	"github.com/angelmondragon/tableside-backend/internal/products"
	"github.com/angelmondragon/tableside-backend/internal/queue"
	"github.com/angelmondragon/tableside-backend/internal/restaurants"
	"github.com/angelmondragon/tableside-backend/internal/tables"
	"github.com/angelmondragon/tableside-backend/internal/users"
	"github.com/angelmondragon/tableside-backend/pkg/config"
	"github.com/angelmondragon/tableside-backend/pkg/db"
	"github.com/angelmondragon/tableside-backend/pkg/logger"
	"github.com/angelmondragon/tableside-backend/pkg/metrics"
	"github.com/angelmondragon/tableside-backend/pkg/migrate"
	"github.com/angelmondragon/tableside-backend/pkg/outbox"
	"github.com/angelmondragon/tableside-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	services, err := buildServices(cfg, logg, dbClient, metrics.NewDomainMetrics(reg))
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Infra{
			DB:       dbClient,
			Redis:    redisClient,
			Metrics:  metrics.NewHTTPMetrics(reg),
			Gatherer: reg,
		}, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(shutdownCtx, "shutting down api server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, domainMetrics *metrics.DomainMetrics) (routes.Services, error) {
	conn := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	restaurantRepo := restaurants.NewRepository(conn)
	memberRepo := members.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	queueRepo := queue.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}
	memberService, err := members.NewService(memberRepo)
	if err != nil {
		return routes.Services{}, err
	}
	restaurantService, err := restaurants.NewService(restaurantRepo)
	if err != nil {
		return routes.Services{}, err
	}
	productService, err := products.NewService(productRepo, restaurantRepo, restaurantService)
	if err != nil {
		return routes.Services{}, err
	}
	tableService, err := tables.NewService(tables.ServiceParams{
		Repo:        tables.NewRepository(conn),
		Tx:          dbClient,
		Restaurants: restaurantRepo,
		Owners:      restaurantService,
		Queue:       queue.NewReader(queueRepo, logg),
		QRCode:      cfg.QRCode,
	})
	if err != nil {
		return routes.Services{}, err
	}
	queueService, err := queue.NewService(queue.ServiceParams{
		Repo:    queueRepo,
		Tx:      dbClient,
		Members: memberRepo,
		Owners:  restaurantService,
		Outbox:  emitter,
		Metrics: domainMetrics,
		Logger:  logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:        cartRepo,
		Restaurants: restaurantRepo,
		Members:     memberRepo,
		Products:    productRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:        orders.NewRepository(conn),
		Carts:       cartRepo,
		CartsTx:     func(tx *gorm.DB) orders.CartStore { return cartRepo.WithTx(tx) },
		Tx:          dbClient,
		Restaurants: restaurantRepo,
		Members:     memberRepo,
		Owners:      restaurantService,
		Outbox:      emitter,
		Metrics:     domainMetrics,
		Logger:      logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	postService, err := posts.NewService(posts.NewRepository(conn), dbClient, memberRepo, restaurantRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:        authService,
		Members:     memberService,
		Restaurants: restaurantService,
		Products:    productService,
		Tables:      tableService,
		Queue:       queueService,
		Cart:        cartService,
		Orders:      orderService,
		Posts:       postService,
	}, nil
}
