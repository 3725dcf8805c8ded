package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"yurt/internal/broadcast"
	"yurt/internal/config"
	"yurt/internal/database"
	"yurt/internal/handler"
	"yurt/internal/mw"
	"yurt/internal/service"
	"yurt/internal/storage"
	"yurt/internal/worker"
)

func main() {
	cfg := config.New()

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	publisher, err := broadcast.Connect(cfg.AMQPURI)
	if err != nil {
		slog.Error("failed to connect to broker", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	store := storage.New(db)

	// Services
	authSvc := service.NewAuthService(db)
	loyaltySvc := service.NewLoyaltyService(store)
	notifySvc := service.NewNotificationService(store)
	locationSvc := service.NewLocationService(store)
	orderSvc := service.NewOrderService(store, store, store, notifySvc, loyaltySvc)

	// Worker
	outboxWorker := worker.NewOutboxWorker(store, publisher)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/user/register", handler.RegisterHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/user/login", handler.LoginHandler(authSvc, cfg.JWTSecret))
	r.Get("/api/locations/{id}/availability", handler.LocationAvailabilityHandler(locationSvc))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/api/orders", handler.CreateOrderHandler(orderSvc))
		r.Get("/api/orders", handler.ListOrdersHandler(orderSvc))
		r.Get("/api/orders/{id}", handler.GetOrderHandler(orderSvc))

		r.Get("/api/loyalty/status", handler.LoyaltyStatusHandler(loyaltySvc))
		r.Post("/api/loyalty/award", handler.LoyaltyAwardHandler(loyaltySvc))
		r.Post("/api/loyalty/redeem", handler.LoyaltyRedeemHandler(loyaltySvc))
		r.Post("/api/loyalty/birthday-bonus", handler.LoyaltyBirthdayBonusHandler(loyaltySvc))

		r.Get("/api/notifications", handler.ListNotificationsHandler(notifySvc))
		r.Put("/api/notifications/{id}/read", handler.MarkNotificationReadHandler(notifySvc))

		// Staff routes
		r.Group(func(r chi.Router) {
			r.Use(mw.AdminOnly)

			r.Get("/api/admin/orders", handler.AdminListOrdersHandler(orderSvc))
			r.Put("/api/admin/orders/{id}", handler.AdminUpdateOrderHandler(orderSvc))
		})
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go outboxWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
