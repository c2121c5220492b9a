package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"

	"github.com/j-veylop/calendar-widget-tui/internal/calendar"
	"github.com/j-veylop/calendar-widget-tui/internal/config"
	"github.com/j-veylop/calendar-widget-tui/internal/db"
	"github.com/j-veylop/calendar-widget-tui/internal/models"
	"github.com/j-veylop/calendar-widget-tui/internal/services/counts"
	"github.com/j-veylop/calendar-widget-tui/internal/shared"
	"github.com/j-veylop/calendar-widget-tui/internal/signal"
	"github.com/j-veylop/calendar-widget-tui/internal/ui/components"
)

const probeFileName = ".calw-probe"

// publishFunc sends the refresh signal; replaced in tests.
var publishFunc = func(ctx context.Context, url, exchange string, msg *signal.Message) error {
	pub, err := signal.NewPublisher(url, exchange)
	if err != nil {
		return err
	}
	defer func() { _ = pub.Close() }()
	return pub.Publish(ctx, msg)
}

// runSave validates a counts mapping, writes it to the shared document and
// signals listening widgets.
func runSave(cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) > 1 {
		return errors.New("save takes at most one FILE argument")
	}

	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	mapping, err := shared.Decode(data)
	if err != nil {
		return fmt.Errorf("invalid counts mapping: %w", err)
	}

	if err := shared.WriteFile(cfg.CountsPath, mapping); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved %d days (%d appointments) to %s\n", len(mapping), mapping.Total(), cfg.CountsPath)

	if cfg.AMQPURL == "" {
		return nil
	}
	if err := publishFunc(context.Background(), cfg.AMQPURL, cfg.AMQPExchange, signal.NewCountsUpdated(len(mapping))); err != nil {
		// The document is written; local widgets still pick it up through the file watch.
		fmt.Fprintf(stdout, "Warning: refresh signal not sent: %v\n", err)
		return nil
	}
	fmt.Fprintf(stdout, "Signalled widgets on exchange %s\n", cfg.AMQPExchange)
	return nil
}

// runGrid prints one month. Colors are used only when styled is true.
func runGrid(args []string, stdout io.Writer, styled bool) error {
	now := time.Now()

	fs := flag.NewFlagSet("grid", flag.ContinueOnError)
	fs.SetOutput(stdout)
	year := fs.Int("year", now.Year(), "year")
	month := fs.Int("month", int(now.Month()), "month (1-12)")
	first := fs.String("first", calendar.Monday.String(), "first weekday: monday or sunday")
	filler := fs.String("filler", calendar.FillerNextMonth.String(), "filler mode: next-month or legacy")
	countsPath := fs.String("counts", "", "counts document used for shading")
	if err := fs.Parse(args); err != nil {
		return err
	}

	weekday, err := calendar.ParseWeekday(*first)
	if err != nil {
		return err
	}
	mode, err := calendar.ParseFillerMode(*filler)
	if err != nil {
		return err
	}

	grid, err := calendar.Build(*year, *month, calendar.Options{FirstWeekday: weekday, Filler: mode})
	if err != nil {
		return err
	}

	var mapping models.CountsByDate
	if *countsPath != "" {
		if mapping, err = shared.ReadFile(*countsPath); err != nil {
			return err
		}
	}

	fmt.Fprintln(stdout, components.RenderMonth(components.MonthView{
		Grid:   grid,
		Counts: mapping,
		Today:  now,
		Plain:  !styled,
	}))
	return nil
}

// fileSource reads the shared document without watching it.
type fileSource string

func (f fileSource) Read() (models.CountsByDate, error) {
	return shared.ReadFile(string(f))
}

// runCheck probes the shared directory and reports which source the widget
// would display.
func runCheck(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stdout)
	vacuum := fs.Bool("vacuum", false, "compact the database afterwards")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dir := filepath.Dir(cfg.CountsPath)
	if err := probeDir(dir); err != nil {
		fmt.Fprintf(stdout, "shared dir   %s: FAIL (%v)\n", dir, err)
		return err
	}
	fmt.Fprintf(stdout, "shared dir   %s: ok\n", dir)

	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(stdout, "database     %s: FAIL (%v)\n", cfg.DatabasePath, err)
		return err
	}
	defer func() { _ = database.Close() }()
	fmt.Fprintf(stdout, "database     %s: ok\n", cfg.DatabasePath)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := counts.NewLoader(fileSource(cfg.CountsPath), database).Load(ctx)
	fmt.Fprintf(stdout, "data source  %s (%d days, %d appointments)\n",
		result.Origin, len(result.Counts), result.Counts.Total())
	if result.Err != nil {
		fmt.Fprintf(stdout, "note         %v\n", result.Err)
	}

	if cachedAt, ok, err := database.CachedAt(ctx); err == nil && ok {
		fmt.Fprintf(stdout, "cache saved  %s\n", cachedAt.Local().Format("2006-01-02 15:04:05"))
	}

	if *vacuum {
		if err := database.Vacuum(); err != nil {
			return fmt.Errorf("vacuum: %w", err)
		}
		fmt.Fprintln(stdout, "database     vacuumed")
	}
	return nil
}

// probeDir writes, reads back and removes a small file in dir.
func probeDir(dir string) error {
	path := filepath.Join(dir, probeFileName)
	want := []byte(time.Now().UTC().Format(time.RFC3339Nano))

	if err := os.WriteFile(path, want, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	defer func() { _ = os.Remove(path) }()

	got, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if string(got) != string(want) {
		return errors.New("read back different content")
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
