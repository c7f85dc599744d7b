package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/state-econ/internal/config"
	"github.com/pfrederiksen/state-econ/internal/dataset"
	"github.com/pfrederiksen/state-econ/internal/fetch"
	"github.com/pfrederiksen/state-econ/internal/logger"
	"github.com/pfrederiksen/state-econ/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitChanges = 2
)

// ErrChangesFound is returned when --diff finds differences from the last run.
var ErrChangesFound = errors.New("dataset changed since last run")

// options holds the persistent flags
type options struct {
	format  string
	output  string
	dataDir string
	save    bool
	diff    bool
	sqlite  string
	verbose bool
}

// app is what every subcommand needs once flags and config are resolved
type app struct {
	opts    *options
	cfg     *config.Config
	format  OutputFormat
	log     *logger.Logger
	metrics *logger.Metrics
	client  *fetch.Client
	stdout  io.Writer
	stderr  io.Writer
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{opts: &options{}})
}

func newRootCmd(a *app) *cobra.Command {
	opts := a.opts

	cmd := &cobra.Command{
		Use:   "state-econ",
		Short: "Extract US state economic and demographic tables",
		Long: `A CLI tool to extract state-level tables from FRED release pages, the
Census ACS API, the Census ANSI state code list and the BTS airport list.
Tables can be printed, exported to CSV or SQLite, and compared across runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.format, "format", "text", "Output format: text, json or csv")
	flags.StringVarP(&opts.output, "output", "o", "", "Write output to a file instead of stdout")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Data directory for snapshots (env: DATA_DIR)")
	flags.BoolVar(&opts.save, "save", false, "Save a snapshot of the dataset")
	flags.BoolVar(&opts.diff, "diff", false, "Report changes since the last saved snapshot (exit 2 when changed)")
	flags.StringVar(&opts.sqlite, "sqlite", "", "Also export the dataset to this SQLite database")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging and print fetch metrics")

	cmd.AddCommand(
		newFREDCmd(a),
		newACSCmd(a),
		newStatesCmd(a),
		newAirportsCmd(a),
	)

	return cmd
}

// init loads config and builds the shared fetch client
func (a *app) init(cmd *cobra.Command) error {
	format, err := ParseFormat(a.opts.format)
	if err != nil {
		return err
	}
	if a.opts.diff && format == FormatCSV {
		return fmt.Errorf("--diff supports text and json output only")
	}
	a.format = format

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if a.opts.dataDir != "" {
		cfg.DataDir = a.opts.dataDir
	}
	a.cfg = cfg

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if a.opts.verbose {
		level = logger.LevelDebug
	}

	a.stdout = cmd.OutOrStdout()
	a.stderr = cmd.ErrOrStderr()
	a.log = logger.New(level, a.stderr)
	logger.SetDefault(a.log)
	a.metrics = logger.NewMetrics()

	a.client = fetch.New(fetch.Options{
		Timeout:           cfg.HTTPTimeout,
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            a.log,
		Metrics:           a.metrics,
	})
	return nil
}

// emit writes d (or its diff), then saves and exports it as requested.
func (a *app) emit(ctx context.Context, d *dataset.Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}

	var (
		store  *storage.Storage
		report *DiffReport
		err    error
	)
	if a.opts.save || a.opts.diff {
		store, err = storage.New(a.cfg.DataDir)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
	}

	if a.opts.diff {
		previous, err := store.LoadSnapshot(d.Name)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		report = &DiffReport{
			Dataset:     d.Name,
			Source:      d.Source,
			PreviousRun: previous.UpdatedAt,
			Diff:        dataset.Diff(previous, d),
		}
	}

	if err := a.write(d, report); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if store != nil {
		if err := store.SaveDataset(d); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		a.log.Debug("saved snapshot", logger.Fields{"dataset": d.Name, "dir": store.DataDir()})
	}

	if a.opts.sqlite != "" {
		if err := a.exportSQLite(ctx, d); err != nil {
			return err
		}
	}

	if report != nil && !report.Diff.Empty() {
		return ErrChangesFound
	}
	return nil
}

func (a *app) write(d *dataset.Dataset, report *DiffReport) error {
	w := a.stdout
	if a.opts.output != "" {
		f, err := os.Create(a.opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if report != nil {
		return WriteDiff(w, report, a.format)
	}
	return WriteDataset(w, d, a.format)
}

func (a *app) exportSQLite(ctx context.Context, d *dataset.Dataset) error {
	db, err := storage.OpenSQLite(a.opts.sqlite)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.ExportSQLite(ctx, db, d); err != nil {
		return fmt.Errorf("exporting to SQLite: %w", err)
	}
	a.log.Info("exported dataset", logger.Fields{"dataset": d.Name, "rows": len(d.Rows), "path": a.opts.sqlite})
	return nil
}

// printMetrics writes the metrics snapshot to stderr when --verbose is set
// and the client was built.
func (a *app) printMetrics() {
	if a.opts.verbose && a.metrics != nil {
		a.metrics.Snapshot().Write(a.stderr)
	}
}

// Execute runs the CLI
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command tree with args and returns the process exit code.
// With --verbose the fetch metrics are printed whether or not the command failed.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{opts: &options{}}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	a.printMetrics()
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrChangesFound):
		return ExitChanges
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
}
