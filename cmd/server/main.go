package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/stagepass/ticketing/internal/config"
	"github.com/stagepass/ticketing/internal/database"
	"github.com/stagepass/ticketing/internal/handler"
	"github.com/stagepass/ticketing/internal/ledger"
	"github.com/stagepass/ticketing/internal/middleware"
	"github.com/stagepass/ticketing/internal/queue"
	"github.com/stagepass/ticketing/internal/repository"
	"github.com/stagepass/ticketing/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: a nil client disables rate limiting and the
	// public response cache but the API stays fully functional.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	tenantRepo := repository.NewTenantRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	venueRepo := repository.NewVenueRepo(db)
	actRepo := repository.NewActRepo(db)
	showRepo := repository.NewShowRepo(db)
	offerRepo := repository.NewOfferRepo(db)

	led := ledger.New(repository.NewCapacityStore(db))

	authHandler := handler.NewAuthHandler(cfg, tenantRepo, userRepo, tokenRepo)
	tenantHandler := handler.NewTenantHandler(venueRepo, actRepo, showRepo, offerRepo, led)
	publicHandler := handler.NewPublicHandler(tenantRepo, showRepo, offerRepo, led)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterTenant(e, tenantHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	// Allocation events land in a durable queue; the consumer writes
	// them to an audit log and reconnects on broker failure.
	go func() {
		if err := queue.StartOfferConsumer(); err != nil {
			log.Printf("offer consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
