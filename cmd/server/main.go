package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koacards/koa-server-go/internal/config"
	"github.com/koacards/koa-server-go/internal/game"
	"github.com/koacards/koa-server-go/internal/repository"
	"github.com/koacards/koa-server-go/internal/server"
	"github.com/koacards/koa-server-go/internal/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

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

	logger.Info("starting Koa server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize player repository
	repo, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open player repository", zap.Error(err))
	}
	defer repo.Close()
	logger.Info("player repository initialized", zap.String("driver", cfg.Database.Driver))

	// Initialize session manager
	sessionMgr := session.NewManager(sessionConfig(cfg), logger, sessionOptions(cfg, repo, logger)...)
	logger.Info("session manager initialized",
		zap.Duration("lease_period", cfg.Server.LeasePeriod),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	// Start session cleanup goroutine
	go sessionMgr.CleanupExpiredSessions(ctx)

	grpcServer := server.NewGRPCServer(cfg.Server, sessionMgr, logger)
	go grpcServer.WatchSessions(ctx, 10*time.Second)

	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}

	// Start gRPC server
	go func() {
		if serveErr := grpcServer.Serve(lis); serveErr != nil {
			logger.Error("gRPC server error", zap.Error(serveErr))
		}
	}()

	// Start WebSocket server
	wsServer := server.NewWebSocketServer(cfg.Server.WebSocket, sessionMgr, logger)
	go func() {
		if wsErr := wsServer.ListenAndServe(ctx); wsErr != nil {
			logger.Error("WebSocket server error", zap.Error(wsErr))
		}
	}()

	logger.Info("Koa server initialized",
		zap.String("version", version),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	cancel()

	// Close all active sessions
	sessionMgr.CloseAll()

	grpcServer.Stop()

	logger.Info("Koa server stopped")
}

func sessionConfig(cfg *config.Config) session.Config {
	sc := session.DefaultConfig()
	sc.Combat = game.Config{
		MoveDelay:   cfg.Combat.MoveDelay,
		BurnDelay:   cfg.Combat.BurnDelay,
		CastDelay:   cfg.Combat.DefaultCastDelay,
		PacingDelay: cfg.Combat.PacingDelay,
		Reshuffles:  cfg.Combat.Reshuffles,
	}
	sc.LeasePeriod = cfg.Server.LeasePeriod
	sc.MaxSessions = cfg.Server.MaxSessions
	sc.DefaultPlayer = cfg.Player.Profile
	sc.Seed = cfg.Combat.Seed
	return sc
}

func sessionOptions(cfg *config.Config, repo repository.PlayerRepository, logger *zap.Logger) []session.Option {
	opts := []session.Option{session.WithRepository(repo)}
	if cfg.Player.DeckFile != "" {
		opts = append(opts, session.WithProfiles(session.DeckListProfiles(cfg.Player.DeckFile)))
		logger.Info("using deck list", zap.String("deck_file", cfg.Player.DeckFile))
	}
	if cfg.Combat.ReplayDir != "" {
		opts = append(opts, session.WithReplays(game.NewReplayRecorder(logger, cfg.Combat.ReplayDir)))
		logger.Info("recording replays", zap.String("replay_dir", cfg.Combat.ReplayDir))
	}
	return opts
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
