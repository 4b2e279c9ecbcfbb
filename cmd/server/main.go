package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vendorr/restaurant-backend/internal/config"
	"github.com/vendorr/restaurant-backend/internal/es"
	"github.com/vendorr/restaurant-backend/internal/handlers"
	"github.com/vendorr/restaurant-backend/internal/logging"
	"github.com/vendorr/restaurant-backend/internal/middleware/auth"
	"github.com/vendorr/restaurant-backend/internal/middleware/loggingmw"
	"github.com/vendorr/restaurant-backend/internal/mykafka"
	"github.com/vendorr/restaurant-backend/internal/notify"
	"github.com/vendorr/restaurant-backend/internal/service"
	"github.com/vendorr/restaurant-backend/internal/token"
	httpserver "github.com/vendorr/restaurant-backend/internal/transport/http"
	"github.com/vendorr/restaurant-backend/internal/ws"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	brokers := []string{configuration.KAFKA_ADDRESS}
	prod, err := mykafka.NewProducer(brokers)
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		logger.Warn("elasticsearch unavailable, menu search degrades to database", "error", err)
		esClient = nil
	}

	hub := ws.NewHub(logger)
	notifier := notify.New(db, hub, logger)

	tokens := &token.Service{
		DB:            db,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}
	guard := &auth.Guard{DB: db, Tokens: tokens}

	orders := &service.OrderService{
		DB:       db,
		Notifier: notifier,
		Producer: prod,
		TaxRate:  configuration.TAX_RATE,
		Logger:   logger,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	if len(configuration.ALLOWED_ORIGINS) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     configuration.ALLOWED_ORIGINS,
			AllowCredentials: true,
		}))
	}

	deps := httpserver.Deps{
		DB:                  db,
		Guard:               guard,
		AuthHandler:         &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: prod},
		MenuHandler:         &handlers.MenuHandler{DB: db, ES: esClient},
		MenuAdminHandler:    &handlers.MenuAdminHandler{DB: db, ES: esClient, Producer: prod},
		OrderHandler:        &handlers.OrderHandler{DB: db, Orders: orders, UploadDir: configuration.UPLOAD_DIR, MaxFileSize: configuration.MAX_FILE_SIZE},
		AdminHandler:        &handlers.AdminHandler{DB: db, Orders: orders},
		SettingsHandler:     &handlers.SettingsHandler{DB: db, Cfg: configuration},
		ReviewHandler:       &handlers.ReviewHandler{DB: db},
		NotificationHandler: &handlers.NotificationHandler{DB: db},
		WSHandler:           handlers.NewWSHandler(db, tokens, hub, configuration.ALLOWED_ORIGINS),
		UploadDir:           configuration.UPLOAD_DIR,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
