package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/auth"
	"github.com/Freeeeeet/tutor_market/internal/config"
	"github.com/Freeeeeet/tutor_market/internal/controller"
	"github.com/Freeeeeet/tutor_market/internal/controller/api"
	"github.com/Freeeeeet/tutor_market/internal/controller/pages"
	"github.com/Freeeeeet/tutor_market/internal/events"
	"github.com/Freeeeeet/tutor_market/internal/notify"
	"github.com/Freeeeeet/tutor_market/internal/payment"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/Freeeeeet/tutor_market/migrations"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Run поднимает все зависимости и обслуживает HTTP до сигнала остановки
func Run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Подключаемся к базе данных
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Connected to database")

	migrator, err := NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		_ = migrator.Close()
		return err
	}
	_ = migrator.Close()

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	tutorRepo := repository.NewTutorRepository(pool)
	courseRepo := repository.NewCourseRepository(pool, logger)
	sessionRepo := repository.NewSessionRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool, logger)
	requestRepo := repository.NewActionRequestRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	notifier := newNotifier(cfg, logger)

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	gateway := payment.NewOmiseGateway()
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Сервисы
	catalog := service.NewCatalogService(courseRepo, tutorRepo, sessionRepo, resourceRepo, logger)
	enrollments := service.NewEnrollmentService(courseRepo, enrollmentRepo, logger)
	bookings := service.NewBookingService(bookingRepo, publisher, logger)
	cancellation := service.NewCancellationService(bookingRepo, requestRepo, notifier, publisher, logger)
	payments := service.NewPaymentService(
		enrollmentRepo,
		paymentRepo,
		settingsRepo,
		gateway,
		payment.Keys{PublicKey: cfg.GatewayPublicKey, SecretKey: cfg.GatewaySecretKey},
		cfg.PaymentCurrency,
		publisher,
		logger,
	)
	accounts := service.NewAccountService(userRepo, issuer, logger)
	dashboard := service.NewDashboardService(userRepo, tutorRepo, courseRepo, sessionRepo,
		enrollmentRepo, bookingRepo, paymentRepo, requestRepo)

	pagesHandler := pages.NewHandler(pages.Deps{
		Catalog:      catalog,
		Enrollments:  enrollments,
		Bookings:     bookings,
		Cancellation: cancellation,
		Payments:     payments,
		Accounts:     accounts,
		Dashboard:    dashboard,
	}, pages.Options{
		CookieSecure: cfg.CookieSecure,
		SessionTTL:   issuer.AccessTTL(),
	}, logger)

	apiHandler := api.NewHandler(api.Deps{
		Catalog:      catalog,
		Enrollments:  enrollments,
		Bookings:     bookings,
		Cancellation: cancellation,
		Payments:     payments,
		Accounts:     accounts,
	}, logger)

	engine, err := controller.NewHTTPController(pagesHandler, apiHandler, accounts, logger).Engine()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func newNotifier(cfg *config.Config, logger *zap.Logger) notify.Notifier {
	if cfg.TelegramToken == "" || cfg.TelegramAdminChatID == 0 {
		logger.Info("Telegram notifications disabled")
		return notify.Noop{}
	}

	n, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramAdminChatID, logger)
	if err != nil {
		logger.Warn("Failed to create Telegram notifier, notifications disabled", zap.Error(err))
		return notify.Noop{}
	}
	return n
}

func newPublisher(cfg *config.Config, logger *zap.Logger) (events.Publisher, func()) {
	if cfg.AMQPURL == "" {
		logger.Info("Event publishing disabled")
		return events.Noop{}, func() {}
	}

	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsExchange, logger)
	if err != nil {
		logger.Warn("Failed to connect to RabbitMQ, events disabled", zap.Error(err))
		return events.Noop{}, func() {}
	}

	logger.Info("Publishing events", zap.String("exchange", cfg.EventsExchange))
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}
}
