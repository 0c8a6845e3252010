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

	"chesslounge/backend/internal/ai"
	"chesslounge/backend/internal/auth"
	"chesslounge/backend/internal/background"
	"chesslounge/backend/internal/chat"
	"chesslounge/backend/internal/config"
	"chesslounge/backend/internal/database"
	"chesslounge/backend/internal/handler"
	"chesslounge/backend/internal/hub"
	"chesslounge/backend/internal/logging"
	"chesslounge/backend/internal/metrics"
	"chesslounge/backend/internal/middleware"
	"chesslounge/backend/internal/realtime"
	"chesslounge/backend/internal/scheduler"
	"chesslounge/backend/internal/store"
	"chesslounge/backend/internal/streak"
	"chesslounge/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	// Swagger imports
	_ "chesslounge/backend/docs" // This is important for swag to find the generated docs
)

const (
	backgroundTimeout = 90 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// @title           Chess Lounge API
// @version         1.0
// @description     Global chat room, daily check-in rewards and OAuth login for the chess community.
// @host            localhost:5000
// @BasePath        /api
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	db, err := database.Init(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Shutdown(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	accounts := store.NewAccountStore(db, cfg.StoreTimeout)
	messages := store.NewMessageStore(db, cfg.StoreTimeout)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	ttl, err := cfg.TokenTTL()
	if err != nil {
		return err
	}
	signer := jwt.NewSigner(cfg.JWTSecret, ttl)

	runner := background.NewRunner(logger, backgroundTimeout)

	channel := cfg.ChatChannel()
	chatHub := hub.NewHub()
	centrifugo := realtime.NewCentrifugo(realtime.CentrifugoConfig{
		Host:       cfg.CentrifugoHost,
		APIKey:     cfg.CentrifugoAPIKey,
		HMACSecret: cfg.CentrifugoHMACSecret,
		Namespace:  channel,
	}, nil)
	publishers := realtime.MultiPublisher{hub.Publisher{Hub: chatHub, Channel: channel}}
	if cfg.CentrifugoHost != "" {
		publishers = append(publishers, centrifugo)
	} else {
		logger.Warn("CENTRIFUGO_HOST is not set, messages are only streamed over SSE")
	}

	completer, err := ai.New(ctx, ai.Config{
		Provider:        cfg.AIProvider,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		OpenRouterKey:   cfg.OpenRouterKey,
		OpenRouterModel: cfg.OpenRouterModel,
	})
	if err != nil {
		logger.Warn("AI responder disabled", zap.Error(err))
		completer = nil
	}

	streaks := streak.NewService(accounts, recorder, logger)
	accountService := auth.NewService(accounts, signer, logger)
	feed := chat.NewFeed(messages, accounts, logger)
	pipeline := chat.NewPipeline(chat.Deps{
		Messages:  messages,
		Accounts:  accounts,
		Publisher: publishers,
		Completer: completer,
		Runner:    runner,
		Recorder:  recorder,
		Logger:    logger,
	})

	oauthClient := &http.Client{Timeout: 15 * time.Second}
	google := auth.NewGoogle(auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		FrontendURL:  cfg.FrontendBase(),
		AuthURL:      cfg.GoogleOAuthEndpoint,
	}, oauthClient)
	lichess := auth.NewLichess(auth.LichessConfig{
		ClientID:     cfg.LichessClientID,
		CodeVerifier: cfg.LichessOAuthKey,
		FrontendURL:  cfg.FrontendBase(),
	}, oauthClient)

	limiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.MessageRatePerMinute), logger)
	defer limiter.Stop()

	router := handler.NewRouter(handler.Handlers{
		Auth: handler.NewAuthHandler(google, lichess, accountService, logger),
		Chat: handler.NewChatHandler(feed, pipeline, centrifugo, chatHub, channel, logger),
		User: handler.NewUserHandler(streaks, accountService, logger),
	}, handler.RouterConfig{
		Signer:         signer,
		AllowedOrigins: cfg.FrontendOrigins(),
		RefreshSecret:  cfg.RefreshSecret,
		ScheduledReset: cfg.ScheduledReset(),
		AppVersion:     cfg.AppVersion,
		MessageLimiter: limiter,
		Metrics:        metrics.Handler(registry),
		Logger:         logger,
	})

	var dailyReset *scheduler.DailyReset
	if cfg.ScheduledReset() {
		dailyReset, err = newDailyReset(cfg, streaks, logger)
		if err != nil {
			return err
		}
		dailyReset.Start()
	} else {
		logger.Info("CHECKIN_RESET_AT is not set, the daily reset is triggered through /api/refresh")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Open event streams would otherwise hold Shutdown until its deadline.
	srv.RegisterOnShutdown(chatHub.Close)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server is running", zap.String("addr", srv.Addr))
		logger.Info("Swagger UI is available at /swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		errs := []error{srv.Shutdown(shutdownCtx)}
		if dailyReset != nil {
			errs = append(errs, dailyReset.Shutdown())
		}
		errs = append(errs, runner.Shutdown(shutdownCtx))
		return errors.Join(errs...)
	})
	return g.Wait()
}

func newDailyReset(cfg *config.Config, resetter scheduler.Resetter, logger *zap.Logger) (*scheduler.DailyReset, error) {
	hour, minute, err := cfg.ResetTime()
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(cfg.CheckinTimezone)
	if err != nil {
		return nil, err
	}
	return scheduler.NewDailyReset(scheduler.Config{
		Hour:     hour,
		Minute:   minute,
		Location: location,
	}, resetter, logger)
}
