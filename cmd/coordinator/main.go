package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"messenger-lab/infrastructure/ws"
	"messenger-lab/internal"
	"messenger-lab/observability"
	"messenger-lab/repositories"
	"messenger-lab/runtime"
	"messenger-lab/runtime/workers"
	"messenger-lab/services"

	authpkg "messenger-lab/auth"
)

// Exit codes provide meaningful status to the operating system or a
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Coordinator terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. This pattern is preferred over calling
// os.Exit or panic directly because it ensures all 'defer' statements
// (like database cleanup) execute before the program exits, and it
// keeps initialization testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := internal.NewLogger(config.LogLevel)
	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are
		// flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & owner bootstrap
	accountRepository := repositories.NewAccountRepository(db)
	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)

	if err := ensureOwnerAccount(logger, accountRepository, config); err != nil {
		return exitRuntime, fmt.Errorf("owner bootstrap failed: %w", err)
	}

	// 4. Coordinator core
	monitor := observability.NewMonitor()
	registry := runtime.NewRegistry()
	presence := runtime.NewBroadcaster(logger, accountRepository, registry, monitor)
	router := runtime.NewRouter(logger, accountRepository, messageRepository, registry, monitor)

	issuer := authpkg.NewTokenIssuer(config.AuthTokenSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(accountRepository, issuer)
	accountService := services.NewAccountService(accountRepository)

	server := ws.NewServer(logger, authService, accountService, router, registry, presence,
		monitor, config.WriteTimeout)

	// 5. Context & Signals
	// NotifyContext captures OS signals and cancels the context to
	// trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	// 6. Background workers under supervision
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewHeartbeatWorker(logger, monitor, config.MetricInterval),
		workers.NewStorageGCWorker(logger, db, config.GCInterval),
	)
	go sup.Run(ctx)

	// 7. HTTP server hosting the WebSocket endpoint
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:    address,
		Handler: server.Handler(),
	}

	go func() {
		logger.Info("Starting coordinator", "address", address, "path", "/ws")
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 9. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	return options
}
