package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MusicStoreAPI/external/abstractapi"
	"MusicStoreAPI/external/kafka"
	"MusicStoreAPI/external/paypal"
	"MusicStoreAPI/external/resend"

	"MusicStoreAPI/internal/config"
	"MusicStoreAPI/internal/db"
	"MusicStoreAPI/internal/middleware"
	"MusicStoreAPI/internal/repository"
	"MusicStoreAPI/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// janitorInterval is how often idle session state is swept.
const janitorInterval = 5 * time.Minute

type app struct {
	tokens       *middleware.SessionTokens
	limiter      *middleware.RateLimiter
	carts        *services.CartService
	checkout     *services.CheckoutService
	confirmation *services.ConfirmationService
	logger       *zap.Logger
}

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ======================
	// INFRA
	// ======================
	slots, closeSlots, err := openSlots(ctx, cfg)
	if err != nil {
		logger.Fatal("slot store unavailable", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeSlots()

	// ======================
	// EXTERNALS
	// ======================
	var events services.OrderEventPublisher = services.NewLogPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		client, err := kafka.NewClient(kafka.Options{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		})
		if err != nil {
			logger.Fatal("kafka unavailable", zap.Error(err))
		}
		defer client.Close()
		events = kafka.NewOrderPublisher(client, cfg.KafkaTopic, logger)
	}

	var emailValidator services.EmailValidator = services.NewLocalValidator()
	if cfg.UseEmailReputation {
		emailValidator, err = abstractapi.NewAbstractReputationValidator(cfg.AbstractAPIKey)
		if err != nil {
			logger.Fatal("email reputation check misconfigured", zap.Error(err))
		}
	}

	var notifier services.PaymentNotifier = &services.LogNotifier{Logger: logger}
	if cfg.ResendAPIKey != "" {
		notifier, err = resend.NewResendMailer(cfg.ResendAPIKey, cfg.NoticeFrom, cfg.NoticeTo)
		if err != nil {
			logger.Fatal("mailer misconfigured", zap.Error(err))
		}
	}

	links := paypal.NewLinkBuilder(cfg.PaypalBaseURL, cfg.PaypalAccount)

	// ======================
	// SERVICES
	// ======================
	cartSvc := services.NewCartService(slots, logger)
	orderSvc := services.NewOrderService(slots, events, logger)
	paymentSvc := services.NewPaymentService(links)
	checkoutSvc := services.NewCheckoutService(cartSvc, orderSvc, paymentSvc, emailValidator, cfg.PaymentDelay, logger)
	confirmationSvc := services.NewConfirmationService(orderSvc, notifier, logger)

	a := &app{
		tokens:       middleware.NewSessionTokens(cfg.JWTSecret, cfg.SessionTTL),
		limiter:      middleware.NewRateLimiter(cfg.SessionRatePerMinute, cfg.SessionRateBurst),
		carts:        cartSvc,
		checkout:     checkoutSvc,
		confirmation: confirmationSvc,
		logger:       logger,
	}
	e := a.echo()

	go services.RunJanitor(ctx, cfg.SessionTTL, janitorInterval, logger,
		cartSvc, checkoutSvc, orderSvc, a.limiter)

	// ======================
	// SERVER
	// ======================
	for _, r := range e.Routes() {
		logger.Debug("route", zap.String("method", r.Method), zap.String("path", r.Path))
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	logger.Info("storefront api started", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// echo builds the HTTP surface. Route registration lives in the *_endpoint.go files.
func (a *app) echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(a.logger))
	e.Use(echomw.Recover())

	api := e.Group("/storefront")

	var sessionMW []echo.MiddlewareFunc
	if a.limiter != nil {
		sessionMW = append(sessionMW, a.limiter.Middleware())
	}
	registerSessionRoutes(api, a.tokens, sessionMW...)

	protected := api.Group("", a.tokens.SessionMiddleware())
	registerCartRoutes(protected, a.carts)
	registerCheckoutRoutes(protected, a.checkout)
	registerConfirmationRoutes(protected, a.confirmation)

	return e
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openSlots(ctx context.Context, cfg config.Config) (repository.SlotStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresSlotRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	case config.StoreSQLite:
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewSQLiteSlotRepository(conn)
		if err := repo.EnsureSchema(ctx); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return repo, func() { conn.Close() }, nil
	case config.StoreMemory:
		return repository.NewMemorySlotRepository(), func() {}, nil
	default:
		return nil, nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
	}
}
