package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"svgod/internal/cache"
	"svgod/internal/common/fsutil"
	"svgod/internal/config"
	"svgod/internal/httpapi"
	"svgod/internal/orchestrator"
	"svgod/internal/preview"
	"svgod/internal/registry"
	"svgod/internal/store"
	"svgod/internal/worker"
	"svgod/pkg/types"
)

type runOpts struct {
	addr            string
	workerBin       string
	workerArgs      string
	samplesDir      string
	cacheCapacity   int
	settingsDB      string
	configPath      string
	corsOrigins     string
	logLevel        string
	optimizeTimeout int64
}

func main() {
	opts := &runOpts{}

	root := &cobra.Command{
		Use:           "svgod",
		Short:         "Interactive SVG optimization daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	// Flags with environment variable defaults
	f := root.Flags()
	f.StringVar(&opts.addr, "addr", envOr("SVGOD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	f.StringVar(&opts.workerBin, "worker-bin", envOr("SVGOD_WORKER_BIN", "svgo-worker"), "Optimizer worker binary spawned per generation")
	f.StringVar(&opts.workerArgs, "worker-args", envOr("SVGOD_WORKER_ARGS", ""), "Comma-separated arguments passed to the worker binary")
	f.StringVar(&opts.samplesDir, "samples-dir", envOr("SVGOD_SAMPLES_DIR", ""), "Directory to scan for *.svg sample documents")
	f.IntVar(&opts.cacheCapacity, "cache-capacity", envOrInt("SVGOD_CACHE_CAPACITY", cache.DefaultCapacity), "Result cache capacity")
	f.StringVar(&opts.settingsDB, "settings-db", envOr("SVGOD_SETTINGS_DB", ""), "SQLite file for persisted settings (empty disables persistence)")
	f.StringVar(&opts.configPath, "config", envOr("SVGOD_CONFIG", ""), "Config file (.yaml/.json/.toml); flags take precedence")
	f.StringVar(&opts.corsOrigins, "cors-origins", envOr("SVGOD_CORS_ORIGINS", ""), "Comma-separated allowed CORS origins (empty disables CORS)")
	f.StringVar(&opts.logLevel, "log-level", envOr("SVGOD_LOG_LEVEL", "info"), "Log level: trace|debug|info|warn|error")
	f.Int64Var(&opts.optimizeTimeout, "optimize-timeout-seconds", int64(envOrInt("SVGOD_OPTIMIZE_TIMEOUT_SECONDS", 0)), "Per-request optimize timeout in seconds (0 disables)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, opts *runOpts) error {
	workerArgs := splitCSV(opts.workerArgs)
	corsOrigins := splitCSV(opts.corsOrigins)

	// Config file fills in whatever the user did not set explicitly.
	if opts.configPath != "" {
		fileCfg, err := config.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		f := cmd.Flags()
		if !f.Changed("addr") && fileCfg.Addr != "" {
			opts.addr = fileCfg.Addr
		}
		if !f.Changed("worker-bin") && fileCfg.WorkerBin != "" {
			opts.workerBin = fileCfg.WorkerBin
		}
		if !f.Changed("worker-args") && len(fileCfg.WorkerArgs) > 0 {
			workerArgs = fileCfg.WorkerArgs
		}
		if !f.Changed("samples-dir") && fileCfg.SamplesDir != "" {
			opts.samplesDir = fileCfg.SamplesDir
		}
		if !f.Changed("cache-capacity") && fileCfg.CacheCapacity > 0 {
			opts.cacheCapacity = fileCfg.CacheCapacity
		}
		if !f.Changed("settings-db") && fileCfg.SettingsDB != "" {
			opts.settingsDB = fileCfg.SettingsDB
		}
		if !f.Changed("cors-origins") && len(fileCfg.CORSOrigins) > 0 {
			corsOrigins = fileCfg.CORSOrigins
		}
		if !f.Changed("log-level") && fileCfg.LogLevel != "" {
			opts.logLevel = fileCfg.LogLevel
		}
	}

	lvl, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Str("service", "svgod").Logger()
	httpapi.SetLogger(log)

	var samples []types.SampleDocument
	if opts.samplesDir != "" {
		samples, err = registry.LoadDir(opts.samplesDir)
		if err != nil {
			log.Warn().Err(err).Str("dir", opts.samplesDir).Msg("sample scan failed, continuing without samples")
		} else {
			log.Info().Int("count", len(samples)).Str("dir", opts.samplesDir).Msg("samples loaded")
		}
	}

	// The worker spawns lazily on the first cycle; a missing binary would
	// otherwise only surface then.
	if strings.ContainsRune(opts.workerBin, os.PathSeparator) && !fsutil.PathExists(opts.workerBin) {
		log.Warn().Str("bin", opts.workerBin).Msg("worker binary not found at startup")
	}

	hub := orchestrator.NewHub()
	previews := preview.NewStore()
	cfg := orchestrator.Config{
		Engine:        &worker.ProcEngine{Bin: opts.workerBin, Args: workerArgs, Log: log},
		Previews:      previews,
		CacheCapacity: opts.cacheCapacity,
		Publisher:     hub,
		Log:           log,
	}
	if opts.settingsDB != "" {
		st, err := store.Open(opts.settingsDB)
		if err != nil {
			return fmt.Errorf("open settings store: %w", err)
		}
		defer st.Close()
		cfg.Store = st
	}
	orch := orchestrator.New(cfg)
	defer orch.Close()

	if len(corsOrigins) > 0 {
		httpapi.SetCORSOptions(true, corsOrigins,
			[]string{"GET", "POST", "PUT", "OPTIONS"},
			[]string{"Content-Type", "X-Log-Level"})
	}
	httpapi.SetOptimizeTimeoutSeconds(opts.optimizeTimeout)

	baseCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(orch, httpapi.Options{Previews: previews, Samples: samples, Events: hub})
	srv := &http.Server{Addr: opts.addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(baseCtx)
	g.Go(func() error {
		log.Info().Str("addr", opts.addr).Str("worker", opts.workerBin).Msg("svgod listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(stop)
		select {
		case <-gctx.Done():
		case sig := <-stop:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
		}
		cancel()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
