package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spacegame-combat/internal/catalog"
	"spacegame-combat/internal/combat"
	"spacegame-combat/internal/config"
	"spacegame-combat/internal/database"
	"spacegame-combat/internal/discord"
	"spacegame-combat/internal/handler"
	"spacegame-combat/internal/logging"
	"spacegame-combat/internal/middleware"
	"spacegame-combat/internal/repository"
	"spacegame-combat/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("load catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}
	log.Info("catalog loaded", zap.Int("missions", len(cat.Missions)), zap.Int("raids", len(cat.Raids)))

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db, log); err != nil {
		log.Fatal("run migrations", zap.Error(err))
	}

	// Repositories
	playerRepo := repository.NewPlayerRepository(db)
	eventRepo := repository.NewEventRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Services
	authSvc := service.NewAuthService(playerRepo, cfg.JWTSecret)
	progression := service.NewProgressionService(playerRepo, log.Named("progression"))
	webhooks := service.NewDiscordWebhookService(cfg.DiscordWebhookKills, cfg.DiscordWebhookEvents, log.Named("webhook"))
	events := service.NewEventService(eventRepo, webhooks, log.Named("events"))
	wsHub := service.NewWSHub(log.Named("ws"))
	battles := service.NewBattleService(cat, snapshotRepo, progression, events, wsHub, log.Named("battle"), service.BattleOptions{
		TickInterval: cfg.TickInterval,
		NewRoller:    func(string) combat.Roller { return combat.NewPRNG(cfg.RNGSeed) },
	})

	progressCtx, stopProgression := context.WithCancel(context.Background())
	go progression.Run(progressCtx)
	go wsHub.Run()

	// Discord bot
	commands := discord.NewCommandHandler(progression, battles, wsHub, cat, log.Named("discord"))
	bot, err := discord.NewBot(cfg.DiscordBotToken, cfg.DiscordGuildID, commands, log.Named("discord"))
	if err != nil {
		log.Error("create discord bot", zap.Error(err))
	} else if err := bot.Start(); err != nil {
		log.Error("start discord bot", zap.Error(err))
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           30 * time.Second,
		BodyLimit:             1 * 1024 * 1024, // 1MB
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(recover.New())
	app.Use(middleware.Logger(log.Named("http")))
	app.Use(middleware.CORS())

	// Health
	healthH := handler.NewHealthHandler(db)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Auth (public)
	authH := handler.NewAuthHandler(authSvc)
	auth := v1.Group("/auth")
	auth.Post("/register", middleware.RateLimit(5, time.Minute), authH.Register)
	auth.Post("/login", middleware.RateLimit(10, time.Minute), authH.Login)

	// Public reads
	v1.Get("/catalog", handler.NewCatalogHandler(cat).List)
	v1.Get("/events", middleware.RateLimit(60, time.Minute), handler.NewEventHandler(eventRepo).Feed)
	v1.Get("/public/stats", middleware.RateLimit(60, time.Minute), handler.NewPublicHandler(playerRepo, eventRepo, battles, wsHub).Stats)

	// Admin, registered before the JWT group
	admin := v1.Group("/admin", middleware.AdminKey(cfg.AdminKey))
	adminH := handler.NewAdminHandler(playerRepo, snapshotRepo, eventRepo, battles, wsHub, log.Named("admin"))
	admin.Get("/stats", adminH.Stats)
	admin.Post("/announce", adminH.Announce)

	// JWT-protected routes (catch-all, must be last)
	protected := v1.Group("", middleware.Auth(cfg.JWTSecret), middleware.RateLimit(600, time.Minute))

	pilotH := handler.NewPilotHandler(progression)
	protected.Get("/pilot", pilotH.Me)

	battleH := handler.NewBattleHandler(battles)
	battle := protected.Group("/battle")
	battle.Get("/", battleH.State)
	battle.Post("/missions/:id/start", battleH.StartMission)
	battle.Post("/raids/:id/start", battleH.StartRaid)
	battle.Post("/target", battleH.Target)
	battle.Post("/fire", battleH.Fire)
	battle.Post("/auto-attack", battleH.AutoAttack)
	battle.Post("/stop", battleH.Stop)
	battle.Post("/resume", battleH.Resume)

	// WebSocket
	wsH := handler.NewWSHandler(wsHub, battles, cfg.JWTSecret, log.Named("ws"))
	app.Get("/ws", wsH.Upgrade)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	log.Info("spacegame combat server running",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.Duration("tick", cfg.TickInterval))

	<-quit
	log.Info("shutting down")
	_ = app.ShutdownWithTimeout(5 * time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	battles.Shutdown(shutdownCtx)
	stopProgression()
	progression.Wait()

	bot.Stop()
	wsHub.Shutdown()
	log.Info("server stopped")
}
