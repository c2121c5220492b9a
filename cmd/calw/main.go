// Package main is the entry point for the calendar widget. Without arguments
// it runs the Bubble Tea widget; the subcommands are the host-side tools that
// write the shared counts document and inspect the setup.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/calendar-widget-tui/internal/app"
	"github.com/j-veylop/calendar-widget-tui/internal/config"
	"github.com/j-veylop/calendar-widget-tui/internal/logger"
	"github.com/j-veylop/calendar-widget-tui/internal/services"
	"github.com/j-veylop/calendar-widget-tui/internal/ui/tabs/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/ui/tabs/history"
	"github.com/j-veylop/calendar-widget-tui/internal/ui/tabs/info"
	"github.com/j-veylop/calendar-widget-tui/internal/version"
)

func main() {
	args := os.Args[1:]

	var err error
	switch {
	case len(args) == 0:
		err = run()
	case args[0] == "-v" || args[0] == "--version":
		fmt.Println(version.Info())
	case args[0] == "-h" || args[0] == "--help" || args[0] == "help":
		printUsage()
	case args[0] == "save":
		err = withConfig(func(cfg *config.Config) error {
			return runSave(cfg, args[1:], os.Stdin, os.Stdout)
		})
	case args[0] == "grid":
		err = runGrid(args[1:], os.Stdout, isTerminal(os.Stdout))
	case args[0] == "check":
		err = withConfig(func(cfg *config.Config) error {
			return runCheck(cfg, args[1:], os.Stdout)
		})
	default:
		err = fmt.Errorf("unknown command %q (see --help)", args[0])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func withConfig(fn func(cfg *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return fn(cfg)
}

// run contains the widget logic, separated for cleaner error handling.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	// Starts the document watcher, the timeline refresh loop and, when
	// configured, the AMQP listener.
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	state.SetGridOptions(cfg.GridOptions())
	model.SetTabs([]app.Tab{
		calendar.New(state),
		history.New(state, svcManager),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	logger.Info("widget started", "counts", cfg.CountsPath, "version", version.GetVersion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`calw - appointment calendar widget for the terminal

Usage:
  calw                    Run the widget
  calw save [FILE|-]      Validate a date->count JSON mapping and publish it
                          to the shared document (stdin when FILE is - or omitted)
  calw grid [flags]       Print a month grid
      -year Y -month M    Month to print (default: current)
      -first DAY          monday or sunday (default: monday)
      -filler MODE        next-month or legacy (default: next-month)
      -counts FILE        Shade days from a counts document
  calw check [-vacuum]    Probe the shared directory and report the data source

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Calendar, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  ←/→, h/l        Previous/next month
  t               Back to the current month (Calendar), time range (History)
  w               Toggle first weekday
  f               Toggle filler days
  r               Reload counts
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  SHARED_DIR                 Directory shared between writer and widget
  COUNTS_PATH                Shared counts document (default: SHARED_DIR/appointmentCounts.json)
  DATABASE_PATH              SQLite cache and refresh log
  LOG_PATH, LOG_LEVEL        Widget log file and level
  TIMELINE_REFRESH_INTERVAL  Scheduled reload interval (default: 1h)
  FIRST_WEEKDAY              monday or sunday
  FILLER_MODE                next-month or legacy
  NOTIFICATIONS              Desktop notifications on fallback/recovery (default: true)
  AMQP_URL, AMQP_EXCHANGE    Optional remote refresh signal
  CALW_CONFIG_PATH           Optional YAML configuration file

Configuration:
  .env files are read from the current directory and ~/.config/calendar-widget/.env.`)
}
