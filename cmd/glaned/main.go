// Command glaned is the glane daemon: an HTTP API for triggering scans
// and reading results, with an optional MCP stdio surface for agent
// clients.
//
// Usage:
//
//	glaned -addr :8086 -config glane.yaml
//	glaned -mcp                              # serve MCP over stdio instead
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/glane/api"
	"github.com/hazyhaar/glane/classify"
	"github.com/hazyhaar/glane/collect"
	"github.com/hazyhaar/glane/config"
	"github.com/hazyhaar/glane/dbopen"
	"github.com/hazyhaar/glane/harvest"
)

func main() {
	addr := flag.String("addr", ":8086", "HTTP listen address")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	configPath := flag.String("config", "", "path to glane.yaml")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var lvl slog.Level
	switch *logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *addr, *configPath, *mcpMode); err != nil {
		logger.Error("glaned: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, addr, configPath string, mcpMode bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.Collect.Headless = true
	cfg.Collect.Username = os.Getenv("IG_USERNAME")
	cfg.Collect.Password = os.Getenv("IG_PASSWORD")

	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	svc, err := harvest.New(db, cfg.HarvestService(), logger)
	if err != nil {
		return err
	}
	factory := collect.NewFactory(cfg.Collect, logger)

	if mcpMode {
		return runMCP(ctx, logger, svc, factory)
	}

	var classifier *classify.Classifier
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cc := cfg.Classify
		cc.APIKey = key
		classifier = classify.New(cc, logger)
	}

	server := api.New(svc, factory, classifier, cfg.DataDir, logger)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("glaned: HTTP listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}

func runMCP(ctx context.Context, logger *slog.Logger, svc *harvest.Service, factory harvest.SourceFactory) error {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "glane",
		Version: "1.0.0",
	}, nil)
	svc.RegisterMCP(srv, factory)

	logger.Info("glaned: MCP serving on stdio")
	return srv.Run(ctx, &mcp.StdioTransport{})
}
