// Command glane runs one-shot content scans.
//
// Usage:
//
//	glane -handle someplace -posts 30            # chronological profile scan
//	glane -handle someplace -deep                # page until 30 new posts or exhaustion
//	glane -category restaurant -max-hours 72     # engagement trend scan
//	glane -classify-file data/someplace/someplace_20260831_0900.json
//
// Credentials come from the environment (IG_USERNAME, IG_PASSWORD,
// OPENAI_API_KEY), loaded from a .env file when present.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/glane/classify"
	"github.com/hazyhaar/glane/collect"
	"github.com/hazyhaar/glane/content"
	"github.com/hazyhaar/glane/config"
	"github.com/hazyhaar/glane/dbopen"
	"github.com/hazyhaar/glane/harvest"
)

// Quick profile scans stop after a handful of paging rounds; -deep
// lifts the cap to the service default.
const quickRoundCap = 12

func main() {
	handle := flag.String("handle", "", "profile handle to scan (chronological mode)")
	category := flag.String("category", "", "business category to scan (engagement mode)")
	posts := flag.Int("posts", 30, "number of new posts to target")
	maxItems := flag.Int("max-items", 40, "result cap for trend scans")
	maxHours := flag.Float64("max-hours", 72, "recency window in hours for trend scans")
	deep := flag.Bool("deep", false, "page deep until the target is met or the source is exhausted")
	dryRun := flag.Bool("dry-run", false, "skip all dedup store reads and writes")
	login := flag.Bool("login", false, "run the browser with a window for manual login")
	doClassify := flag.Bool("classify", false, "annotate results with sentiment and themes")
	classifyFile := flag.String("classify-file", "", "annotate an existing result file instead of scanning")
	classifyMode := flag.String("classify-mode", "basic", "classification mode: basic or pro")
	configPath := flag.String("config", "", "path to glane.yaml")
	dataDir := flag.String("data-dir", "", "override the result output directory")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := newLogger(*logLevel)

	if *classifyFile == "" && (*handle == "") == (*category == "") {
		fmt.Fprintln(os.Stderr, "usage: glane -handle <name> | -category <name> | -classify-file <path> [flags]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, options{
		handle:       *handle,
		category:     *category,
		posts:        *posts,
		maxItems:     *maxItems,
		maxHours:     *maxHours,
		deep:         *deep,
		dryRun:       *dryRun,
		login:        *login,
		classify:     *doClassify,
		classifyFile: *classifyFile,
		classifyMode: *classifyMode,
		configPath:   *configPath,
		dataDir:      *dataDir,
	}); err != nil {
		logger.Error("glane: fatal", "error", err)
		os.Exit(1)
	}
}

type options struct {
	handle       string
	category     string
	posts        int
	maxItems     int
	maxHours     float64
	deep         bool
	dryRun       bool
	login        bool
	classify     bool
	classifyFile string
	classifyMode string
	configPath   string
	dataDir      string
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	// .env is optional; a missing file just means plain env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}

	if opts.classifyFile != "" {
		return annotateFile(ctx, logger, cfg, opts)
	}

	cfg.Collect.Headless = !opts.login
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

	var rs *content.ResultSet
	switch {
	case opts.handle != "":
		profileOpts := harvest.ProfileOptions{Posts: opts.posts, DryRun: opts.dryRun}
		if !opts.deep {
			profileOpts.RoundCap = quickRoundCap
		}
		rs, err = svc.ScanHandle(ctx, factory, opts.handle, profileOpts)
	default:
		rs, err = svc.ScanCategory(ctx, factory, opts.category, harvest.TrendsOptions{
			MaxItems: opts.maxItems,
			MaxAge:   time.Duration(opts.maxHours * float64(time.Hour)),
			DryRun:   opts.dryRun,
		})
	}
	if err != nil {
		return err
	}

	if opts.classify {
		cc := cfg.Classify
		cc.APIKey = os.Getenv("OPENAI_API_KEY")
		cc.Mode = classify.Mode(opts.classifyMode)
		annotated := classify.New(cc, logger).Annotate(ctx, rs.Records)
		return emit(logger, cfg.DataDir, rs, map[string]any{
			"source_entity": rs.SourceEntity,
			"generated_at":  rs.GeneratedAt,
			"strategy":      rs.Strategy,
			"params":        rs.Params,
			"records":       annotated,
		}, opts.dryRun)
	}
	return emit(logger, cfg.DataDir, rs, rs, opts.dryRun)
}

// annotateFile re-reads a previously written result file, classifies
// its records and writes the annotated set next to the input. No
// browser or dedup store is touched.
func annotateFile(ctx context.Context, logger *slog.Logger, cfg *config.File, opts options) error {
	data, err := os.ReadFile(opts.classifyFile)
	if err != nil {
		return fmt.Errorf("read result file: %w", err)
	}
	var rs content.ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return fmt.Errorf("parse result file: %w", err)
	}

	cc := cfg.Classify
	cc.APIKey = os.Getenv("OPENAI_API_KEY")
	cc.Mode = classify.Mode(opts.classifyMode)
	annotated := classify.New(cc, logger).Annotate(ctx, rs.Records)

	payload := map[string]any{
		"source_entity": rs.SourceEntity,
		"generated_at":  rs.GeneratedAt,
		"strategy":      rs.Strategy,
		"params":        rs.Params,
		"records":       annotated,
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	if !opts.dryRun {
		outPath := strings.TrimSuffix(opts.classifyFile, ".json") + "_classified.json"
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return fmt.Errorf("write annotated file: %w", err)
		}
		logger.Info("glane: annotated result written", "path", outPath, "records", len(annotated))
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
	return nil
}

// emit writes the result file (unless dry-run) and prints the payload
// to stdout.
func emit(logger *slog.Logger, dataDir string, rs *content.ResultSet, payload any, dryRun bool) error {
	if !dryRun {
		path, err := harvest.WriteResult(dataDir, rs)
		if err != nil {
			return err
		}
		logger.Info("glane: result written", "path", path, "records", len(rs.Records))
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
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
	return logger
}
