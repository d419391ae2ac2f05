// Command scanalign registers 3D beacon scanners into one frame and reports
// the beacon map.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/banshee-data/scanalign/internal/config"
	"github.com/banshee-data/scanalign/internal/fsutil"
	"github.com/banshee-data/scanalign/internal/geom"
	"github.com/banshee-data/scanalign/internal/monitoring"
	"github.com/banshee-data/scanalign/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		monitoring.Opsf("error: %v", err)
		return 1
	}
	return 0
}

// options holds raw flag values. They override the config file only when
// the flag was set on the command line.
type options struct {
	configPath string
	dbPath     string
	logLevel   string
	logJSON    bool

	minOverlap int
	workers    int
	plotPath   string
	htmlPath   string
	alignedOut string
	jsonOut    bool
	watch      bool

	limit int
}

type app struct {
	stdout io.Writer
	stderr io.Writer
	fs     fsutil.FileSystem
	group  geom.RotationGroup

	opts options
	cfg  *config.Config

	// mu serializes registrations in watch mode.
	mu sync.Mutex
}

func newApp(stdout, stderr io.Writer) *app {
	monitoring.SetLogWriters(monitoring.LogWriters{Ops: stderr, Diag: stderr, Trace: stderr})
	return &app{
		stdout: stdout,
		stderr: stderr,
		fs:     fsutil.OSFileSystem{},
		cfg:    &config.Config{},
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scanalign",
		Short:         "Register overlapping 3D beacon scans into one coordinate frame",
		Version:       version.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.opts.configPath, "config", "", "config file (.json, .toml, .yaml)")
	pf.StringVar(&a.opts.dbPath, "db", "", "sqlite database for run history")
	pf.StringVar(&a.opts.logLevel, "log-level", config.DefaultLogLevel, "log level: trace, debug, info, warn, error")
	pf.BoolVar(&a.opts.logJSON, "log-json", false, "log one JSON object per line")

	root.AddCommand(a.solveCmd(), a.runsCmd(), a.versionCmd())
	return root
}

// setup resolves the configuration and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := &config.Config{}
	if a.opts.configPath != "" {
		loaded, err := config.Load(a.fs, a.opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	applyFlags(cfg, cmd.Flags(), &a.opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	a.cfg = cfg

	monitoring.SetLogWriters(monitoring.LogWriters{
		Ops:   a.stderr,
		Diag:  a.stderr,
		Trace: a.stderr,
		JSON:  cfg.GetLogJSON(),
	})
	return monitoring.SetLevel(cfg.GetLogLevel())
}

// applyFlags copies explicitly set flags over the file configuration.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet, o *options) {
	if flags.Changed("db") {
		cfg.DBPath = &o.dbPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = &o.logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = &o.logJSON
	}
	if flags.Changed("min-overlap") {
		cfg.MinOverlap = &o.minOverlap
	}
	if flags.Changed("workers") {
		cfg.Workers = &o.workers
	}
}

func (a *app) rotationGroup() (geom.RotationGroup, error) {
	if a.group == nil {
		g, err := geom.NewRotationGroup()
		if err != nil {
			return nil, err
		}
		a.group = g
	}
	return a.group, nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(a.stdout, version.String())
			return err
		},
	}
}
