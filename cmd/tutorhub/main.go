package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/tutorhub/internal/app"
	"github.com/Freeeeeet/tutorhub/internal/config"
	"github.com/Freeeeeet/tutorhub/internal/controller/rest"
	"github.com/Freeeeeet/tutorhub/internal/controller/telegram"
	"github.com/Freeeeeet/tutorhub/internal/repository"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/Freeeeeet/tutorhub/internal/storage"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting tutorhub",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("bot_enabled", cfg.BotEnabled()))

	pool, err := app.NewPool(ctx, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.MigrationsEnabled {
		migrator, err := app.NewMigrator(pool, logger)
		if err != nil {
			return err
		}
		err = migrator.Run(ctx)
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("Failed to close migrator", zap.Error(closeErr))
		}
		if err != nil {
			return err
		}
	}

	baseRepo := base.NewRepository(pool)
	txManager := base.NewTxManager(pool)

	userRepo := repository.NewUserRepository(baseRepo)
	childRepo := repository.NewChildRepository(baseRepo)
	bookingRepo := repository.NewBookingRepository(baseRepo)
	dbsRepo := repository.NewDBSRepository(baseRepo)
	notificationRepo := repository.NewNotificationRepository(baseRepo)
	reviewRepo := repository.NewReviewRepository(baseRepo)

	blobs, err := storage.NewFileStore(cfg.BlobDir)
	if err != nil {
		return err
	}

	userService := service.NewUserService(txManager, userRepo, logger)
	childService := service.NewChildService(childRepo, logger)
	bookingService := service.NewBookingService(txManager, bookingRepo, childRepo, userRepo, notificationRepo, logger)
	dbsService := service.NewDBSService(txManager, dbsRepo, blobs, notificationRepo, logger, cfg.MaxUploadBytes)
	notificationService := service.NewNotificationService(notificationRepo, logger)
	reviewService := service.NewReviewService(txManager, reviewRepo, bookingRepo, notificationRepo, logger)
	tutorService := service.NewTutorService(userRepo, reviewRepo, dbsRepo, logger)

	handler := rest.NewHandler(rest.Services{
		Bookings:      bookingService,
		Children:      childService,
		DBS:           dbsService,
		Notifications: notificationService,
		Reviews:       reviewService,
		Tutors:        tutorService,
		Users:         userService,
	}, logger, cfg.MaxUploadBytes)
	router := rest.NewRouter(handler, rest.NewAuthenticator(cfg.JWTSecret), logger)
	server := rest.NewServer(cfg.HTTPAddr, router, cfg.ShutdownTimeout, logger)

	var tgBot *bot.Bot
	if cfg.BotEnabled() {
		tgBot, err = bot.New(cfg.TelegramToken, bot.WithErrorsHandler(func(err error) {
			logger.Warn("Telegram client error", zap.Error(err))
		}))
		if err != nil {
			return err
		}

		controller := telegram.NewController(tgBot, userService, bookingService, notificationService, logger.Named("bot"))
		if err := controller.Register(ctx, tgBot); err != nil {
			logger.Warn("Bot commands menu not updated", zap.Error(err))
		}
		notificationService.SetSender(telegram.NewNotifier(tgBot))
	} else {
		logger.Info("TELEGRAM_TOKEN not set, bot and notification delivery disabled")
	}

	scheduler := app.NewScheduler(dbsService, notificationService, cfg.DBSExpiryCron, cfg.NotifyCron, logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(ctx)
	})

	if tgBot != nil {
		g.Go(func() error {
			return telegram.Run(ctx, tgBot, logger)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		scheduler.Stop()
		return nil
	})

	return g.Wait()
}
