package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/stepperslife/ticketing/internal/config"
    "github.com/stepperslife/ticketing/internal/database"
    "github.com/stepperslife/ticketing/internal/handler"
    "github.com/stepperslife/ticketing/internal/middleware"
    "github.com/stepperslife/ticketing/internal/queue"
    "github.com/stepperslife/ticketing/internal/repository"
    "github.com/stepperslife/ticketing/internal/router"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    if err := godotenv.Load(); err == nil {
        log.Println("loaded configuration from .env")
    }
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database connection failed: %v", err)
    }
    defer db.Close()

    // Redis backs rate limiting and response caching.  A nil client
    // disables both; the middlewares degrade to pass-through.
    rdb := config.NewRedisClient()

    userRepo := repository.NewUserRepo(db)
    tokenRepo := repository.NewTokenRepo(db)
    eventRepo := repository.NewEventRepo(db)
    ticketRepo := repository.NewTicketRepo(db)
    claimRepo := repository.NewClaimRepo(db)
    txRepo := repository.NewTransactionRepo(db)
    balanceRepo := repository.NewBalanceRepo(db)

    authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
    eventHandler := handler.NewEventHandler(eventRepo, ticketRepo)
    saleHandler := handler.NewSaleHandler(db, cfg, eventRepo, ticketRepo, txRepo, balanceRepo, userRepo)
    claimHandler := handler.NewClaimHandler(db, cfg, ticketRepo, eventRepo, claimRepo)
    checkinHandler := handler.NewCheckinHandler(db, ticketRepo, eventRepo)
    txHandler := handler.NewTransactionHandler(db, eventRepo, userRepo, txRepo, balanceRepo)
    ticketHandler := handler.NewTicketHandler(cfg, ticketRepo, eventRepo, claimRepo)

    e := echo.New()
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authHandler, cfg.JWTSecret)
    router.RegisterPublic(e, claimHandler)
    router.RegisterOrganizer(e, eventHandler, saleHandler, txHandler, cfg.JWTSecret)
    router.RegisterTickets(e, ticketHandler, claimHandler, cfg.JWTSecret)
    router.RegisterCheckin(e, checkinHandler, eventHandler, cfg.JWTSecret)

    // Background consumers append domain events to logs/ticketing.log.
    queue.StartTicketingConsumers()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
