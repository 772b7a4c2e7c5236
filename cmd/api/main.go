package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fkhayef/settleup/docs"
	"github.com/fkhayef/settleup/internal/auth"
	"github.com/fkhayef/settleup/internal/balance"
	"github.com/fkhayef/settleup/internal/cache"
	"github.com/fkhayef/settleup/internal/config"
	"github.com/fkhayef/settleup/internal/database"
	"github.com/fkhayef/settleup/internal/expense"
	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/lock"
	"github.com/fkhayef/settleup/internal/notification"
	"github.com/fkhayef/settleup/internal/settlement"
	"github.com/fkhayef/settleup/internal/user"
	"github.com/fkhayef/settleup/pkg/logging"
	mw "github.com/fkhayef/settleup/pkg/middleware"
)

// lockWait is how long a write waits for its group's write lock
const lockWait = 3 * time.Second

// @title                       SettleUp API
// @version                     1.0
// @description                 Shared expenses and settle-up balances for groups.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	if envErr != nil {
		slog.Info("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Summary cache and group write locks live in Redis when configured
	var (
		summaryCache cache.Cache
		locker       lock.Locker
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		summaryCache = cache.NewRedisCache(rdb)
		locker = lock.NewRedisLocker(redislock.New(rdb), lockWait)
		slog.Info("connected to redis", "addr", cfg.RedisAddr)
	} else {
		summaryCache = cache.NewMemoryCache()
		locker = lock.NewLocalLocker(lockWait)
		slog.Info("redis not configured, using in-process cache and locks")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, jwtManager)
	userHandler := user.NewHandler(userService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, notificationService)
	groupHandler := group.NewHandler(groupService)

	// Balances are computed from the expense and settlement ledgers
	expenseRepo := expense.NewRepository(db)
	settlementRepo := settlement.NewRepository(db)
	balanceService := balance.NewService(groupService, expenseRepo, settlementRepo, userService, summaryCache, cfg.SummaryCacheTTL)
	balanceHandler := balance.NewHandler(balanceService)
	groupService.UseBalances(balanceService, locker)

	// Expense feature
	expenseService := expense.NewService(expenseRepo, groupService, balanceService, locker, notificationService)
	expenseHandler := expense.NewHandler(expenseService)

	// Settlement feature
	settlementService := settlement.NewService(settlementRepo, groupService, balanceService, locker, notificationService)
	settlementHandler := settlement.NewHandler(settlementService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	docs.SwaggerInfo.BasePath = "/api/v1"

	authMiddleware := mw.Auth(jwtManager)
	if cfg.DevAuth {
		slog.Warn("DEV_AUTH is enabled; X-Test-User-ID is trusted")
		authMiddleware = mw.RequireUser(authMiddleware)
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", userHandler.AuthRoutes())

		r.Group(func(r chi.Router) {
			if cfg.DevAuth {
				r.Use(mw.TestUserMiddleware)
			}
			r.Use(authMiddleware)

			groupRouter := groupHandler.Routes()
			groupRouter.Mount("/{groupId}/expenses", expenseHandler.Routes())
			groupRouter.Mount("/{groupId}/settlements", settlementHandler.Routes())
			groupRouter.Get("/{groupId}/summary", balanceHandler.Summary)

			r.Mount("/users", userHandler.Routes())
			r.Mount("/groups", groupRouter)
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
