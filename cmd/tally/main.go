// Package main is the entry point for the dhikr tally application.
// Without arguments it runs the Bubble Tea program; subcommands script the
// counters from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/dhikr-tally/internal/app"
	"github.com/j-veylop/dhikr-tally/internal/config"
	"github.com/j-veylop/dhikr-tally/internal/logger"
	"github.com/j-veylop/dhikr-tally/internal/metrics"
	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/services"
	"github.com/j-veylop/dhikr-tally/internal/ui/tabs/history"
	"github.com/j-veylop/dhikr-tally/internal/ui/tabs/info"
	"github.com/j-veylop/dhikr-tally/internal/ui/tabs/tally"
	"github.com/j-veylop/dhikr-tally/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	var err error
	if len(os.Args) > 1 {
		err = runCLI(os.Args[1:])
	} else {
		err = run()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runCLI executes one scripting subcommand against the configured storage.
func runCLI(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// Subcommands never watch the voice inbox, and report storage errors on
	// stderr instead of the desktop.
	cfg.VoiceInbox = ""
	cfg.DesktopNotify = false

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A subcommand writes once, so one failed write is enough to report.
	svcManager, err := services.NewManagerWithOptions(cfg, services.Options{FailureThreshold: 1})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	return runCommand(ctx, svcManager, args, os.Stdout)
}

// run contains the TUI logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Move logging off the terminal, which the TUI owns
	logCloser, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Expose metrics when configured
	go func() {
		if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
			logger.Error("metrics endpoint failed", "addr", cfg.MetricsAddr, "error", err)
		}
	}()

	// 4. Initialize the service manager: storage, stores and the voice inbox
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 5. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 6. Initialize tabs with shared state and commands, in TabID order
	state := model.GetState()
	commands := app.NewCommands(svcManager)
	catalogue := svcManager.Catalogue()

	tabs := make([]app.Tab, 0, len(models.Kinds)+2)
	for _, kind := range models.Kinds {
		tabs = append(tabs, tally.New(state, commands, catalogue, tally.OptionsFor(kind, cfg.TasbeehTarget)))
	}
	tabs = append(tabs,
		history.New(state, cfg.HistoryDays),
		info.New(state, cfg, svcManager.BackendName()),
	)
	model.SetTabs(tabs)

	// 7. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 8. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer (full terminal)
		tea.WithMouseCellMotion(), // Enable mouse wheel scrolling
	)

	// 9. Handle signals in a separate goroutine
	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 10. Run the TUI program
	// This blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Dhikr Tally - daily tasbeeh, dhikr, istighfar and durood counters

Usage:
  tally [flags]
  tally <command> [args]

Commands:
  inc <kind> [category]    Count one repetition (kind: tasbeeh, dhikr, istighfar, durood)
  today <kind>             Show today's count and breakdown
  history <kind> [days]    Show the last days of counts (default: HISTORY_DAYS)
  import <file>            Import an AsyncStorage JSON export without overwriting

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-6             Switch between tabs
  Tab/Shift+Tab   Navigate between tabs
  Space/Enter     Count
  Left/Right      Change phrase
  r               Reset session
  t               Set tasbeeh target
  Ctrl+R          Reload counts
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  DATABASE_PATH       SQLite database path
  STORAGE_BACKEND     sqlite, redis or memory (default: sqlite)
  REDIS_ADDR          Redis address when STORAGE_BACKEND=redis
  REDIS_PASSWORD      Redis password
  REDIS_DB            Redis database number
  VOICE_INBOX         Directory watched for transcripts and audio files
  TRANSCRIBE_URL      Transcription endpoint for audio files
  TRANSCRIBE_TIMEOUT  Transcription request timeout (default: 30s)
  PHRASES_PATH        JSON phrase catalogue replacing the built-in phrases
  TASBEEH_TARGET      Tasbeeh session target (default: 100)
  HISTORY_DAYS        History window in days (default: 7)
  DESKTOP_NOTIFY      Desktop notifications on target and storage errors (default: true)
  METRICS_ADDR        Address for the Prometheus /metrics endpoint
  LOG_PATH            Log file path
  LOG_LEVEL           debug, info, warn or error (default: info)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/dhikr-tally/.env
  - ~/.dhikr-tally/.env`)
}
