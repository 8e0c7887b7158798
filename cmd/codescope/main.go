// # cmd/codescope/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zach-fau/codescope/internal/core/app"
	"github.com/zach-fau/codescope/internal/core/config"
	"github.com/zach-fau/codescope/internal/engine/bundle"
	"github.com/zach-fau/codescope/internal/shared/observability"
	"github.com/zach-fau/codescope/internal/ui/tui"
)

var (
	configPath = flag.String("config", "./codescope.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single analysis and exit")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode")
	watch      = flag.Bool("watch", false, "Re-run analysis on file changes")
	export     = flag.Bool("export", false, "Write configured report files")
	statsPath  = flag.String("stats", "", "Path to webpack stats.json (overrides config)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("codescope v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err == nil {
				output = f
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config; a missing default config falls back to defaults.
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./codescope.toml" && errors.Is(err, os.ErrNotExist) {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	if flag.NArg() > 0 {
		cfg.Paths.ProjectRoot = flag.Arg(0)
	}
	if *statsPath != "" {
		cfg.Paths.Stats = *statsPath
	}

	ctx := context.Background()

	if cfg.Observability.Enabled && cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.SetupTracing(ctx, cfg.Observability.ServiceName, cfg.Observability.OTLPEndpoint)
		if err != nil {
			slog.Warn("failed to set up tracing", "error", err)
		} else {
			defer func() {
				if err := shutdown(ctx); err != nil {
					slog.Warn("failed to shut down tracing", "error", err)
				}
			}()
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if cfg.Observability.Enabled {
		server := observability.NewServer(cfg.Observability.Address, a)
		if err := server.Start(ctx); err != nil {
			slog.Warn("failed to start observability server", "error", err)
		} else {
			defer server.Stop(ctx)
		}
	}

	result, err := a.RunAnalysis(ctx)
	if err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	if *export || cfg.Export.JSON || cfg.Export.CSV || cfg.Export.Markdown {
		if *export && !cfg.Export.JSON && !cfg.Export.CSV && !cfg.Export.Markdown {
			// -export with nothing configured defaults to JSON.
			cfg.Export.JSON = true
		}
		written, err := a.ExportReports(result)
		if err != nil {
			slog.Error("failed to write reports", "error", err)
		} else {
			for _, path := range written {
				slog.Info("report written", "path", path)
			}
		}
	}

	if !*ui {
		printSummary(result)
	}

	if *once || (!*watch && !*ui) {
		os.Exit(0)
	}

	if *watch || *ui {
		if err := a.StartWatcher(ctx); err != nil {
			slog.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
	}

	if *ui {
		if err := tui.Run(a); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
	} else {
		// Block forever
		select {}
	}
}

func printSummary(result *app.Result) {
	fmt.Printf("Project: %s\n", result.ProjectName)
	fmt.Printf("Packages: %d (%d edges)\n", result.Graph.NodeCount(), result.Graph.EdgeCount())
	fmt.Printf("Files analyzed: %d", result.FilesScanned)
	if result.Imports != nil && result.Imports.ParseErrorCount() > 0 {
		fmt.Printf(" (%d parse errors)", result.Imports.ParseErrorCount())
	}
	fmt.Println()

	cycles := result.Graph.CycleDetails()
	if len(cycles) == 0 {
		fmt.Println("No circular dependencies.")
	} else {
		fmt.Printf("Circular dependencies (%d):\n", len(cycles))
		for _, cycle := range cycles {
			fmt.Printf("  %s\n", cycle.CyclePath())
		}
	}

	conflicts := result.Graph.DetectVersionConflicts()
	if len(conflicts) == 0 {
		fmt.Println("No version conflicts.")
	} else {
		fmt.Printf("Version conflicts (%d):\n", len(conflicts))
		for _, conflict := range conflicts {
			fmt.Printf("  %s:\n", conflict.Package)
			for _, req := range conflict.Requirements {
				fmt.Printf("    %s required by %s\n", req.Version, req.RequiredBy)
			}
		}
	}

	if result.Savings != nil && len(result.Savings.Opportunities) > 0 {
		fmt.Printf("Savings opportunities (%d, up to %s):\n",
			len(result.Savings.Opportunities), bundle.FormatSize(result.Savings.TotalSavings))
		for _, opp := range result.Savings.Opportunities {
			fmt.Printf("  %s: %s (%s)\n", opp.Package, bundle.FormatSize(opp.EstimatedSavings), opp.Suggestion)
		}
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "codescope", "codescope.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "codescope", "codescope.log")
	}

	return "codescope.log"
}
