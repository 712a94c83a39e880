package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/magefree/hearth-server-go/internal/catalogue"
	"github.com/magefree/hearth-server-go/internal/config"
	"github.com/magefree/hearth-server-go/internal/match"
	"github.com/magefree/hearth-server-go/internal/repository"
	"github.com/magefree/hearth-server-go/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

const pruneInterval = time.Minute

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting hearth server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Load card catalogue
	cards, err := loadCatalogue(cfg.Game.CataloguePath)
	if err != nil {
		logger.Fatal("failed to load card catalogue", zap.Error(err))
	}
	logger.Info("card catalogue loaded",
		zap.Int("cards", len(cards.Cards())),
		zap.Strings("heroes", cards.Classes()),
	)

	// Initialize result store
	store, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open result store", zap.Error(err))
	}
	defer store.Close()

	// Initialize match manager
	matchMgr := match.NewManager(cards, store, match.Options{
		TurnTimeout: cfg.Game.TurnTimeout,
		LogCapacity: cfg.Game.LogCapacity,
		LogLines:    cfg.Game.LogLines,
		MaxMatches:  cfg.Server.MaxMatches,
		Seed:        cfg.Game.Seed,
		DefaultDeck: catalogue.DeckKind(cfg.Game.DefaultDeck),
		DefaultHero: cfg.Game.DefaultHero,
	}, logger)
	defer matchMgr.Close()
	logger.Info("match manager initialized",
		zap.Duration("turn_timeout", cfg.Game.TurnTimeout),
		zap.Int("max_matches", cfg.Server.MaxMatches),
	)

	// Start finished match cleanup goroutine
	go pruneFinished(ctx, matchMgr, cfg.Game.RetainFinished)

	// Initialize websocket hub
	hub := server.NewHub(matchMgr, cfg.Server.WebSocket, logger)
	go hub.Run(ctx)

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(server.ChainUnaryInterceptors(
			server.RecoveryInterceptor(logger),
			server.LoggingInterceptor(logger),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    cfg.Server.GRPC.KeepaliveTime,
			Timeout: cfg.Server.GRPC.KeepaliveTimeout,
		}),
		grpc.MaxConcurrentStreams(uint32(cfg.Server.GRPC.MaxConcurrentStreams)),
	)
	healthServer := server.RegisterGameService(grpcServer, server.NewGameService(matchMgr, logger))

	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}

	// Start gRPC server
	go func() {
		logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
		if serveErr := grpcServer.Serve(lis); serveErr != nil {
			logger.Error("gRPC server error", zap.Error(serveErr))
		}
	}()

	// Start HTTP and WebSocket server
	gin.SetMode(ginMode(cfg.Server.HTTP.Mode))
	router := server.NewRouter(server.NewHandler(matchMgr, cards, store, logger), hub, cfg.Server.WebSocket.Path, logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTP.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
	}
	go func() {
		logger.Info("starting HTTP server",
			zap.String("address", cfg.Server.HTTP.Address),
			zap.String("websocket_path", cfg.Server.WebSocket.Path),
		)
		if httpErr := httpServer.ListenAndServe(); httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(httpErr))
		}
	}()

	logger.Info("hearth server initialized",
		zap.String("version", version),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.String("http_address", cfg.Server.HTTP.Address),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	cancel()

	grpcServer.GracefulStop()

	logger.Info("hearth server stopped")
}

func loadCatalogue(path string) (*catalogue.Catalogue, error) {
	if path == "" {
		return catalogue.Default()
	}
	return catalogue.LoadFile(path)
}

// openStore connects to Postgres when enabled and falls back to memory.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repository.ResultStore, error) {
	if !cfg.Enabled {
		logger.Info("database disabled; keeping match results in memory")
		return repository.NewMemoryStore(repository.DefaultMemoryCapacity), nil
	}
	return repository.NewPostgresStore(ctx, repository.DatabaseConfig{
		URL:             cfg.URL,
		MaxConns:        cfg.MaxConns,
		MinConns:        cfg.MinConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
		ConnectTimeout:  cfg.ConnectTimeout,
	}, logger)
}

// pruneFinished drops finished matches older than retain until ctx ends.
func pruneFinished(ctx context.Context, mgr *match.Manager, retain time.Duration) {
	if retain <= 0 {
		return
	}
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			mgr.Prune(now.Add(-retain))
		}
	}
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
