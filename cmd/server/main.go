package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gpudex/a100-index-backend/internal/api"
	"github.com/gpudex/a100-index-backend/internal/config"
	"github.com/gpudex/a100-index-backend/internal/db"
	"github.com/gpudex/a100-index-backend/internal/external"
	"github.com/gpudex/a100-index-backend/internal/index"
	"github.com/gpudex/a100-index-backend/internal/notifications"
	"github.com/gpudex/a100-index-backend/internal/oracle"
	"github.com/gpudex/a100-index-backend/internal/providers"
	"github.com/gpudex/a100-index-backend/internal/publisher"
	"github.com/gpudex/a100-index-backend/internal/repository"
	"github.com/gpudex/a100-index-backend/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║     A100 GPU Price Index v0.3        ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}
	if err := db.Migrate(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Migration failed: %v\n", err)
		os.Exit(1)
	}

	// Ledger store
	store := repository.NewIndexRepo(pool)

	// Index pipeline
	fx := external.NewFXClient()
	calc := index.NewCalculator(fx)
	pub := publisher.New(store, cfg.ValidationThresholdPercent)

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)

	// Oracle (optional)
	var oracleUpdater scheduler.PriceOracle
	if cfg.EthereumRPCURL != "" {
		upd, err := oracle.NewUpdater(cfg.EthereumRPCURL, cfg.PrivateKey,
			cfg.OracleAddress, cfg.OracleAssetID, int64(cfg.ChainID), cfg.OracleGasLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ORACLE] Init failed: %v\n", err)
			os.Exit(1)
		}
		defer upd.Close()
		fmt.Printf("[ORACLE] Updater wallet: %s\n", upd.WalletAddress().Hex())
		oracleUpdater = upd
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	srv := api.NewServer(pool, store, cfg.APIPort, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Index scheduler
	sched := scheduler.NewIndexScheduler(providers.All(), calc, pub, oracleUpdater, notify,
		scheduler.IndexSchedulerConfig{
			Interval:     time.Duration(cfg.ScrapeIntervalMinutes) * time.Minute,
			ForcePublish: cfg.ForcePublish,
		})
	sched.Start()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
