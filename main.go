package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gundu/cache"
	"gundu/controllers/admin"
	"gundu/controllers/play"
	"gundu/database"
	"gundu/game"
	"gundu/log"
	"gundu/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.L.Warn("no .env file loaded")
	}

	database.Connect()

	cfg := game.NewConfigStore(database.DB)
	if err := cfg.Seed(); err != nil {
		log.L.Fatal("failed to seed game settings", zap.Error(err))
	}

	hub := game.NewHub()
	ledger := game.NewLedger(database.DB, cfg)
	resolver := game.NewResolver(database.DB)
	payout := game.NewPayout(database.DB, cfg)
	scheduler := game.NewScheduler(database.DB, cfg, ledger, resolver, payout, hub, tickInterval())

	if err := scheduler.EnsureRound(context.Background()); err != nil {
		log.L.Fatal("failed to bootstrap first round", zap.Error(err))
	}
	scheduler.Start()

	app := fiber.New()
	store := cache.New(time.Second, 5*time.Minute)
	routes.Setup(app,
		play.NewHandler(database.DB, ledger, cfg, hub, store),
		admin.NewHandler(database.DB, resolver, cfg, ledger),
	)

	host := os.Getenv("HOST")
	port := os.Getenv("PORT")
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3000"
	}
	addr := fmt.Sprintf("%s:%s", host, port)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.L.Panic("failed to start server", zap.Error(err))
		}
	}()
	log.L.Info("server running", zap.String("addr", addr))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.L.Info("gracefully shutting down...")
	scheduler.Stop()
	if err := app.Shutdown(); err != nil {
		log.L.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.L.Info("server exited cleanly")
}

func tickInterval() time.Duration {
	raw := os.Getenv("TICK_INTERVAL_MS")
	if raw == "" {
		return 500 * time.Millisecond
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		log.L.Warn("invalid value for TICK_INTERVAL_MS", zap.String("value", raw))
		return 500 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
