package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"macro-meal-planner/internal/config"
	"macro-meal-planner/internal/database"
	"macro-meal-planner/internal/importer"
	"macro-meal-planner/internal/logger"
	"macro-meal-planner/internal/planner"
	"macro-meal-planner/internal/profile"
	"macro-meal-planner/internal/recipe"
	"macro-meal-planner/internal/shopping"
	"macro-meal-planner/internal/telegram"
	"macro-meal-planner/internal/tracker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramWebhookURL == "" {
		os.Stderr.WriteString("TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_URL are required\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	recipeRepo := recipe.NewRepository(db.SQL)
	planRepo := planner.NewPlanRepository(db.SQL, recipeRepo)
	profileRepo := profile.NewRepository(db.SQL)
	trackStore := tracker.NewStore(db.SQL, recipeRepo)
	shopRepo := shopping.NewRepository(db.SQL)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	generator := planner.NewGenerator(recipeRepo, planRepo, rng, log)
	generator.VarietyWindowDays = cfg.VarietyWindowDays

	imp := importer.NewImporter(log)

	bot, err := telegram.NewBot(cfg, log, generator, planRepo, recipeRepo, profileRepo, trackStore, shopRepo, imp)
	if err != nil {
		log.Fatal("failed to initialize telegram bot", zap.Error(err))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Info("telegram bot server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
