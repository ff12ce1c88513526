package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/polywallet/adapters/chain"
	"github.com/layer-3/polywallet/adapters/events"
	"github.com/layer-3/polywallet/adapters/store"
	"github.com/layer-3/polywallet/adapters/tokenizer"
	"github.com/layer-3/polywallet/adapters/verifier"
	"github.com/layer-3/polywallet/internal/config"
	"github.com/layer-3/polywallet/internal/logger"
	"github.com/layer-3/polywallet/service"
	transport "github.com/layer-3/polywallet/transport/http"
	"github.com/rs/zerolog"
)

const appName = "polywallet"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	log := logger.New(cfg.Env, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	displayAppname(appName)

	if cfg.UsesDefaultSecret() {
		if cfg.IsProduction() {
			log.Warn().Msg("WARNING: using the default JWT secret in production, set JWT_SECRET")
		} else {
			log.Warn().Msg("using the default JWT secret")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(ctx, store.Kind(cfg.Store.Backend), cfg.Store.RedisURL, log)
	if err != nil {
		return fmt.Errorf("store.Open: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	wmLogger := events.NewZerologAdapter(log)
	var eventPub *events.WatermillPublisher
	if backend.Redis != nil {
		if eventPub, err = events.NewRedisStreamPublisher(backend.Redis, wmLogger); err != nil {
			return err
		}
	} else {
		eventPub, _ = events.NewInProcessPublisher(wmLogger)
	}
	defer func() {
		if err := eventPub.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	chainClient, ethClient, err := chain.Dial(ctx, cfg.Chain.RPCURL)
	if err != nil {
		return err
	}
	defer ethClient.Close()

	nonces := service.NewNonceService(backend.Store, cfg.Auth.NonceTTL)
	authService := service.NewAuthService(
		nonces,
		verifier.NewEthVerifier(),
		tokenizer.NewJWTTokenizer([]byte(cfg.Auth.JWTSecret)),
		eventPub,
		log,
		service.AuthConfig{
			SessionTTL:    cfg.Auth.SessionTTL,
			Domain:        cfg.SIWE.Domain,
			URI:           cfg.SIWE.URI,
			Statement:     cfg.SIWE.Statement,
			EnforceDomain: cfg.SIWE.EnforceDomain,
		},
	)
	walletService := service.NewWalletService(chainClient)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.SetupRouter(transport.RouterConfig{
		AuthService:   authService,
		WalletService: walletService,
		Log:           log,
		FrontendURL:   cfg.HTTP.FrontendURL,
		StoreKind:     string(backend.Kind),
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           http.TimeoutHandler(router, cfg.Timeouts.Request, "request timed out"),
		ReadHeaderTimeout: cfg.Timeouts.Request,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Int64("chain_id", cfg.ChainID()).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("server.ListenAndServe: %w", err)
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	return shutdown(server, cfg)
}

func shutdown(server *http.Server, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
