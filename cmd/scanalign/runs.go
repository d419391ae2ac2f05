package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/scanalign/internal/monitoring"
)

func (a *app) runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored registration runs",
	}
	cmd.AddCommand(a.runsListCmd(), a.runsShowCmd(), a.runsDeleteCmd())
	return cmd
}

func (a *app) runsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			runs, err := store.List(a.opts.limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN ID\tCREATED\tSOURCE\tSCANNERS\tBEACONS\tMAX DIST\tSWEEPS\tDURATION")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
					r.RunID, time.Unix(0, r.CreatedAt).UTC().Format(time.RFC3339), r.SourcePath,
					r.ScannerCount, r.UniqueBeacons, r.MaxDistance, r.Sweeps, r.Duration.Round(time.Microsecond))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&a.opts.limit, "limit", 20, "maximum number of runs to list (0 for all)")
	return cmd
}

func (a *app) runsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a stored run with its scanner poses as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			run, err := store.Get(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		},
	}
}

func (a *app) runsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := store.Delete(args[0]); err != nil {
				return err
			}
			monitoring.Opsf("deleted run %s", args[0])
			return nil
		},
	}
}
