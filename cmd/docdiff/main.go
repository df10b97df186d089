package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docdiff/internal/config"
	"github.com/ironsheep/docdiff/internal/httpapi"
	"github.com/ironsheep/docdiff/internal/imaging"
	"github.com/ironsheep/docdiff/internal/logging"
	"github.com/ironsheep/docdiff/internal/reasoning"
	"github.com/ironsheep/docdiff/internal/reconcile"
	"github.com/ironsheep/docdiff/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownGrace = 10 * time.Second

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("docdiff %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "docdiff: %v\n", err)
		os.Exit(2)
	}

	// stdout is the MCP channel
	log := logging.New(cfg.LogLevel, os.Stderr)
	log.WithFields(logrus.Fields{"version": Version, "commit": GitCommit}).Debug("docdiff starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "":
		err = runMCP(ctx, cfg, log)
	case "serve":
		err = runServe(ctx, cfg, log, args)
	case "compare":
		err = runCompare(ctx, cfg, log, args)
	default:
		fmt.Fprintf(os.Stderr, "docdiff: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).Error("docdiff failed")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("docdiff - find text that differs between two OCR'd documents")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  docdiff                               Serve MCP over stdin/stdout")
	fmt.Println("  docdiff serve [-port :3000]           Serve the HTTP API")
	fmt.Println("  docdiff compare first.json second.json  Print the differences as JSON")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from .env):")
	fmt.Println("  DOCDIFF_REASONING_URL        Reasoning service endpoint (required to compare)")
	fmt.Println("  DOCDIFF_REASONING_TOKEN      Bearer token for the reasoning service")
	fmt.Println("  DOCDIFF_SESSION_ID           Session id sent with each call")
	fmt.Println("  DOCDIFF_SESSION_SCOPE        fixed | request")
	fmt.Println("  DOCDIFF_REASONING_TIMEOUT    Per-comparison deadline (default 60s)")
	fmt.Println("  DOCDIFF_FALLBACK             empty | residual, used when a reply cannot be parsed")
	fmt.Println("  DOCDIFF_CLOSE_THRESHOLD      Pairing distance for differences_pair (default 100)")
	fmt.Println("  DOCDIFF_OCR_LANGUAGE         Tesseract language (default eng)")
	fmt.Println("  DOCDIFF_IMAGE_CACHE_SIZE     Decoded images kept in memory (default 32)")
	fmt.Println("  DOCDIFF_LOG_LEVEL            debug | info | warn | error")
	fmt.Println("  PORT                         HTTP API listen address (default :3000)")
}

// newEngine builds the reconciliation engine from cfg. It returns
// config.ErrNoReasoningURL when no service is configured.
func newEngine(cfg *config.Config, log logrus.FieldLogger) (*reconcile.Engine, error) {
	opts, err := cfg.ReasoningOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = log
	client, err := reasoning.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return reconcile.NewEngine(client,
		reconcile.WithFallback(cfg.Fallback),
		reconcile.WithLogger(log),
	)
}

func runMCP(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	engine, err := newEngine(cfg, log)
	switch {
	case errors.Is(err, config.ErrNoReasoningURL):
		log.Warn("DOCDIFF_REASONING_URL is not set; compare tools are disabled")
	case err != nil:
		return err
	}

	cache, err := imaging.NewImageCache(cfg.ImageCacheSize)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Engine:         engine,
		Cache:          cache,
		Timeout:        cfg.ReasoningTimeout,
		CloseThreshold: cfg.CloseThreshold,
		OCRLanguage:    cfg.OCRLanguage,
		Version:        Version,
		Logger:         log,
	})
	if err != nil {
		return err
	}
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.String("port", cfg.Port, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	engine, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	handler, err := httpapi.NewHandler(engine, httpapi.Options{
		Timeout: cfg.ReasoningTimeout,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(config.NormalizePort(*port), handler, log)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func runCompare(ctx context.Context, cfg *config.Config, log *logrus.Logger, args []string) error {
	if len(args) != 2 {
		return errors.New("compare: want exactly two detection files")
	}

	sets := make([][]reconcile.TextDetection, 2)
	for i, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}
		if sets[i], err = reconcile.DecodeDetections(data); err != nil {
			return fmt.Errorf("compare: %s: %w", path, err)
		}
	}

	engine, err := newEngine(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ReasoningTimeout)
	defer cancel()
	diffs, err := engine.Reconcile(ctx, sets[0], sets[1])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"differences": diffs})
}
