package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/scanalign/internal/config"
	"github.com/banshee-data/scanalign/internal/fsutil"
	"github.com/banshee-data/scanalign/internal/monitoring"
	"github.com/banshee-data/scanalign/internal/registration"
	"github.com/banshee-data/scanalign/internal/report"
	"github.com/banshee-data/scanalign/internal/scanfile"
	"github.com/banshee-data/scanalign/internal/store/sqlite"
	"github.com/banshee-data/scanalign/internal/watch"
)

func (a *app) solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <scan-file>",
		Short: "Align every scanner in a scan file and report the beacon map",
		Example: `  scanalign solve input.txt
  scanalign solve --json --db runs.db input.txt
  scanalign solve --plot layout.png --html layout.html --watch input.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSolve(cmd.Context(), args[0])
		},
	}

	f := cmd.Flags()
	f.IntVar(&a.opts.minOverlap, "min-overlap", registration.DefaultMinOverlap, "coincident beacons required to align two scanners")
	f.IntVar(&a.opts.workers, "workers", config.DefaultWorkers, "rotation trials evaluated concurrently per scanner")
	f.StringVar(&a.opts.plotPath, "plot", "", "write a PNG layout plot to this path")
	f.StringVar(&a.opts.htmlPath, "html", "", "write an interactive HTML report to this path")
	f.StringVar(&a.opts.alignedOut, "aligned-out", "", "write beacons in global coordinates to this path")
	f.BoolVar(&a.opts.jsonOut, "json", false, "print the summary as JSON")
	f.BoolVar(&a.opts.watch, "watch", false, "re-run whenever the scan file changes")
	return cmd
}

func (a *app) runSolve(ctx context.Context, path string) error {
	if !a.opts.watch {
		return a.solveOnce(ctx, path)
	}

	if err := a.solveOnce(ctx, path); err != nil {
		monitoring.Opsf("solve %s: %v", path, err)
	}
	w := watch.New(path, func(p string) {
		if err := a.solveOnce(ctx, p); err != nil {
			monitoring.Opsf("solve %s: %v", p, err)
		}
	}).WithDebounce(a.cfg.GetWatchDebounce())
	return w.Watch(ctx)
}

// solveOnce runs one registration. Nothing is printed or stored unless every
// scanner aligns.
func (a *app) solveOnce(ctx context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	scanners, err := scanfile.Load(a.fs, path)
	if err != nil {
		return err
	}
	group, err := a.rotationGroup()
	if err != nil {
		return err
	}
	engine, err := registration.NewEngine(group, a.cfg.EngineConfig())
	if err != nil {
		return err
	}

	monitoring.Diagf("solving %s: %d scanners, min overlap %d, workers %d",
		path, len(scanners), a.cfg.GetMinOverlap(), a.cfg.GetWorkers())
	res, err := engine.Align(ctx, scanners)
	if err != nil {
		return err
	}
	sum := registration.Summarize(res)

	if a.opts.jsonOut {
		err = report.WriteJSON(a.stdout, sum)
	} else {
		err = report.WriteText(a.stdout, sum)
	}
	if err != nil {
		return err
	}

	if a.opts.plotPath != "" {
		if err := report.WritePNG(a.fs, a.opts.plotPath, sum, a.cfg.GetPlotWidthCm()); err != nil {
			return err
		}
		monitoring.Diagf("wrote plot %s", a.opts.plotPath)
	}
	if a.opts.htmlPath != "" {
		var buf bytes.Buffer
		if err := report.WriteHTML(&buf, sum); err != nil {
			return err
		}
		if err := fsutil.WriteFileAll(a.fs, a.opts.htmlPath, buf.Bytes()); err != nil {
			return fmt.Errorf("write %s: %w", a.opts.htmlPath, err)
		}
		monitoring.Diagf("wrote html report %s", a.opts.htmlPath)
	}
	if a.opts.alignedOut != "" {
		var buf bytes.Buffer
		if err := report.WriteAligned(&buf, res.Aligned); err != nil {
			return err
		}
		if err := fsutil.WriteFileAll(a.fs, a.opts.alignedOut, buf.Bytes()); err != nil {
			return fmt.Errorf("write %s: %w", a.opts.alignedOut, err)
		}
	}

	if a.cfg.GetDBPath() != "" {
		store, closeDB, err := a.openStore()
		if err != nil {
			return err
		}
		defer closeDB()
		run := sqlite.NewRun(path, a.cfg.GetMinOverlap(), res, sum)
		if err := store.Insert(run); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		monitoring.Opsf("saved run %s", run.RunID)
	}
	return nil
}

func (a *app) openStore() (*sqlite.RunStore, func(), error) {
	path := a.cfg.GetDBPath()
	if path == "" {
		return nil, nil, fmt.Errorf("no database configured: pass --db or set db_path")
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return sqlite.NewRunStore(db), func() { db.Close() }, nil
}
