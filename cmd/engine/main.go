package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"outreach-engine/internal/config"
	"outreach-engine/internal/events"
	"outreach-engine/internal/httpapi"
	"outreach-engine/internal/pipeline"
	"outreach-engine/internal/secrets"
	"outreach-engine/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	once := flag.Bool("once", false, "run one pipeline pass and exit")
	interval := flag.Duration("interval", 24*time.Hour, "scheduled run interval")
	flag.Parse()

	// .env is optional; real deployments use the environment or keychain.
	_ = godotenv.Load()

	dataDir := os.Getenv("OUTREACH_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		cfg.App.DataDir = dataDir
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, wmsg := range vr.Warnings {
			log.Printf("[config] warning: %s", wmsg)
		}
		if !vr.OK() {
			return cfg, fmt.Errorf("config invalid: %v", vr.Errors)
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "outreach.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()
	runner := pipeline.NewRunner(db, &cfgVal, hub)

	if *once {
		if err := runner.RunOnce(context.Background()); err != nil {
			log.Fatalf("run failed: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runner.Start(ctx, *interval)

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		Runner:      runner,
		UnsubSecret: secrets.GetOptional(secrets.UnsubscribeSecret),
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog, httpapi.Cors),
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(srv))

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
