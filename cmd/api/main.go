package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lushhair/storefront/internal/auth"
	"github.com/lushhair/storefront/internal/cart"
	"github.com/lushhair/storefront/internal/catalog"
	"github.com/lushhair/storefront/internal/config"
	"github.com/lushhair/storefront/internal/db"
	"github.com/lushhair/storefront/internal/handler"
	"github.com/lushhair/storefront/internal/order"
	"github.com/lushhair/storefront/internal/transport"
	"github.com/lushhair/storefront/internal/user"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbConn, err := db.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	sqlxConn, err := db.NewSQLX(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database via sqlx")
	}
	defer sqlxConn.Close()

	cartStorage, err := cart.NewBoltStorage(cfg.App.CartDBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.App.CartDBPath).Msg("Failed to open cart storage")
	}
	defer cartStorage.Close()

	userService := user.NewService(user.NewRepository(dbConn.Pool))
	sessionService := auth.NewService(auth.NewSessionRepository(dbConn.Pool), userService, cfg.App.SessionTTL)
	cartService := cart.NewService(cartStorage)
	catalogService := catalog.NewService(catalog.NewRepository(sqlxConn))
	orderService := order.NewService(order.NewRepository(dbConn.Pool))

	router := transport.NewRouter(
		handler.NewAuthHandler(userService, sessionService, cfg.App.CookieHTTPS),
		handler.NewCartHandler(cartService, cfg.App.CookieHTTPS),
		handler.NewProductHandler(catalogService),
		handler.NewOrderHandler(orderService, cartService),
		handler.NewUserHandler(userService),
		sessionService,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
