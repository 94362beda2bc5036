package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"gatekeeper/contract"
	"gatekeeper/domain"
	"gatekeeper/domain/action"
	"gatekeeper/domain/event"
	"gatekeeper/engine"
	"gatekeeper/internal"
	"gatekeeper/membership"
	"gatekeeper/observability"
	"gatekeeper/pairing"
	"gatekeeper/runtime"
	"gatekeeper/runtime/workers"
	"gatekeeper/sink"
	"gatekeeper/storage"
)

// Exit codes to provide meaningful status to the operating system or
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
		fmt.Fprintf(os.Stderr, "Gatekeeper terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components and manages the process lifecycle.
// Keeping the logic out of main ensures deferred cleanup (database
// close) executes before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := internal.NewLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLogger(nil))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. State reconstruction. A store that cannot be read at startup
	// is the one unrecoverable condition the design allows to be fatal.
	store := storage.NewDiskStore(db, logger)
	registry := pairing.NewRegistry(store, logger)
	if err := registry.Load(); err != nil {
		return exitRuntime, fmt.Errorf("pairing reload failed: %w", err)
	}
	tracker := membership.NewTracker(store, logger)
	if err := tracker.Load(); err != nil {
		return exitRuntime, fmt.Errorf("membership reload failed: %w", err)
	}

	// 4. Core pipeline
	metrics := observability.NewMetrics()
	actions := make(chan action.Action, config.ActionQueueSize)
	notices := make(chan event.Notice, config.BufferSize)

	eng := engine.NewEngine(logger, registry, tracker, store, metrics,
		actions, notices,
		config.GracePeriod, config.KickBanWindow,
		domain.UserID(config.BotUserID))
	if err := eng.Recover(); err != nil {
		return exitRuntime, fmt.Errorf("pending join recovery failed: %w", err)
	}

	// The platform transport pushes its typed events into the
	// dispatcher via Submit; nothing above this line knows the wire.
	dispatcher := runtime.NewDispatcher(logger, registry, eng, metrics,
		config.BufferSize, config.LaneBufferSize)

	sinks := []contract.NoticeSink{sink.NewLogSink(logger)}
	if config.MailErrorsTo != "" {
		sinks = append(sinks, sink.NewMailSink(
			config.MailFrom,
			strings.Split(config.MailErrorsTo, ";"),
			"gatekeeper",
			config.MailMinGap,
			logger,
		))
	}

	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		dispatcher,
		workers.NewActionWorker(newLogClient(logger), actions, notices, metrics, config.ActionTimeout, logger),
		workers.NewNoticeFanout(logger, notices, sinks...),
		workers.NewReporterWorker(metrics, config.MetricInterval, logger),
	)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting gatekeeper", "grace", config.GracePeriod)
	sup.Run(ctx)
	logger.Info("Gatekeeper stopped")
	return exitOK, nil
}
