package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pthm-cable/spacetime/config"
	"github.com/pthm-cable/spacetime/game"
	"github.com/pthm-cable/spacetime/renderer"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always happens.
func run() int {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	backendName := flag.String("backend", renderer.NameAuto, "Render backend: auto, scene, canvas or headless")
	headless := flag.Bool("headless", false, "Run without a surface (same as -backend headless)")
	reduced := flag.Bool("reduced-motion", false, "Throttle processed frames (overrides motion.reduced)")
	logStats := flag.Bool("log-stats", false, "Output session and perf stats via slog")
	logFile := flag.String("log-file", "", "Write logs to this rotating file instead of stdout")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N processed frames (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var logOut io.Writer = os.Stdout
	if *logFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   *logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
		defer rotating.Close()
		logOut = rotating
	}
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := renderer.Options{
		Backend: *backendName,
		Reduced: cfg.Motion.Reduced || *reduced,
	}
	if *headless {
		opts.Backend = renderer.NameHeadless
	}

	candidates, err := renderer.Candidates(cfg, opts)
	if err != nil {
		slog.Error("invalid backend", "error", err)
		return 1
	}
	backend, err := renderer.Select(candidates)
	if errors.Is(err, renderer.ErrNoMount) {
		slog.Info("no display surface, not starting", "reason", err)
		return 0
	}
	if err != nil {
		slog.Error("failed to open backend", "error", err)
		return 1
	}

	// The terminal canvas owns stdout from here on
	if backend.Name() == renderer.NameCanvas && *logFile == "" {
		slog.SetDefault(slog.New(slog.DiscardHandler))
	}
	slog.Info("backend selected", "backend", backend.Name())

	g, err := game.New(cfg, backend, game.Options{
		Seed:      rngSeed,
		Reduced:   opts.Reduced,
		MaxFrames: *maxFrames,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	})
	if err != nil {
		backend.Close()
		slog.SetDefault(logger)
		slog.Error("failed to start session", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := g.Run(ctx)
	closeErr := g.Close()
	// The surface is released; log to the original sink again
	slog.SetDefault(logger)
	if closeErr != nil {
		slog.Error("failed to close session", "error", closeErr)
	}
	if runErr != nil {
		slog.Error("session failed", "error", runErr)
		return 1
	}
	return 0
}
