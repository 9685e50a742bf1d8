package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvraj/mandi/internal/catalog"
	"github.com/nvraj/mandi/internal/config"
	"github.com/nvraj/mandi/internal/engine"
	"github.com/nvraj/mandi/internal/persona"
	"github.com/nvraj/mandi/internal/storage"
	"github.com/nvraj/mandi/web/handlers"
)

func main() {
	port := flag.Int("port", 0, "Server port (default: from config, 8193)")
	dbPath := flag.String("db", "", "Database path (default: ~/.mandi/mandi.db)")
	configPath := flag.String("config", "", "Config file path (default: ~/.mandi/config.yaml)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Initialize slog
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if *debug {
		opts.Level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	path := *dbPath
	if path == "" {
		path = storage.DefaultDBPath()
	}

	slog.Info("Initializing storage", "path", path)
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Initialize provider registry
	registry, err := cfg.CreateRegistry()
	if err != nil {
		slog.Error("Failed to initialize provider registry", "error", err)
		os.Exit(1)
	}

	// Product catalog: builtins plus any products declared in the config
	products := catalog.New(cfg.Products...)

	// Create handler
	h := handlers.New(store, registry, products, engine.Config{
		MaxRounds:            cfg.Defaults.MaxRounds,
		MinRounds:            cfg.Defaults.MinRounds,
		MaxDuration:          cfg.Defaults.MaxDuration,
		DefaultProvider:      cfg.Defaults.Provider,
		DefaultBuyerPersona:  persona.ID(cfg.Defaults.BuyerPersona),
		DefaultSellerPersona: persona.ID(cfg.Defaults.SellerPersona),
	})

	// Start server
	listenPort := *port
	if listenPort == 0 {
		listenPort = cfg.Server.Port
	}
	addr := fmt.Sprintf(":%d", listenPort)
	server := &http.Server{
		Addr:    addr,
		Handler: h.Router(),
	}

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		slog.Info("Shutting down...")
		server.Close()
	}()

	slog.Info("Starting mandi server", "url", fmt.Sprintf("http://localhost%s", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
