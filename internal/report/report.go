// Package report renders a registration summary as text, JSON, a PNG layout
// plot or an interactive HTML page.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/banshee-data/scanalign/internal/registration"
	"github.com/banshee-data/scanalign/internal/scanfile"
)

// WriteText writes the two headline numbers followed by a per-scanner table.
func WriteText(w io.Writer, sum registration.Summary) error {
	if _, err := fmt.Fprintf(w, "unique beacons: %d\nmax scanner distance: %d\n\n",
		sum.UniqueBeacons, sum.MaxDistance); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "scanner\tx\ty\tz\trotation\tvia\tbeacons\t")
	for _, s := range sum.Scanners {
		via := "-"
		if s.ReferenceID >= 0 {
			via = fmt.Sprint(s.ReferenceID)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%s\t%d\t\n",
			s.ID, s.Position.X, s.Position.Y, s.Position.Z, s.RotationIndex, via, s.BeaconCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nsweeps: %d, trials: %d\n", sum.Sweeps, sum.Trials)
	return err
}

// WriteJSON writes the summary as indented JSON.
func WriteJSON(w io.Writer, sum registration.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteAligned writes every aligned scanner's beacons in global coordinates,
// in the scan file format, ordered by scanner id.
func WriteAligned(w io.Writer, aligned []registration.AlignedScanner) error {
	out := make([]registration.Scanner, len(aligned))
	for i, s := range aligned {
		out[i] = registration.Scanner{ID: s.ID, Beacons: s.GlobalBeacons()}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return scanfile.Format(w, out)
}
