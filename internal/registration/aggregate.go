package registration

import (
	"sort"

	"github.com/banshee-data/scanalign/internal/geom"
)

// UniqueBeacons returns the union of every aligned scanner's global beacons,
// deduplicated by exact coordinate and sorted lexicographically.
func UniqueBeacons(aligned []AlignedScanner) []geom.Point {
	set := make(map[geom.Point]struct{})
	for _, s := range aligned {
		for _, b := range s.Beacons {
			set[s.Position.Add(b)] = struct{}{}
		}
	}
	out := make([]geom.Point, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// UniqueBeaconCount returns len(UniqueBeacons(aligned)).
func UniqueBeaconCount(aligned []AlignedScanner) int {
	return len(UniqueBeacons(aligned))
}

// MaxScannerDistance returns the largest Manhattan distance between any two
// scanner positions, or 0 for fewer than two scanners.
func MaxScannerDistance(aligned []AlignedScanner) int {
	best := 0
	for i := range aligned {
		for j := i + 1; j < len(aligned); j++ {
			if d := aligned[i].Position.Manhattan(aligned[j].Position); d > best {
				best = d
			}
		}
	}
	return best
}

// ScannerPose is the reportable pose of one aligned scanner.
type ScannerPose struct {
	ID            int        `json:"id"`
	Position      geom.Point `json:"position"`
	RotationIndex int        `json:"rotation_index"`
	ReferenceID   int        `json:"reference_id"`
	BeaconCount   int        `json:"beacon_count"`
}

// Summary holds the reportable quantities of a registration.
type Summary struct {
	Scanners      []ScannerPose `json:"scanners"`
	UniqueBeacons int           `json:"unique_beacons"`
	MaxDistance   int           `json:"max_distance"`
	Beacons       []geom.Point  `json:"beacons,omitempty"`
	Sweeps        int           `json:"sweeps"`
	Trials        int64         `json:"trials"`
}

// Summarize aggregates a result. Scanners are listed by id.
func Summarize(r *Result) Summary {
	beacons := UniqueBeacons(r.Aligned)
	poses := make([]ScannerPose, len(r.Aligned))
	for i, s := range r.Aligned {
		poses[i] = ScannerPose{
			ID:            s.ID,
			Position:      s.Position,
			RotationIndex: s.RotationIndex,
			ReferenceID:   s.ReferenceID,
			BeaconCount:   len(s.Beacons),
		}
	}
	sort.Slice(poses, func(i, j int) bool { return poses[i].ID < poses[j].ID })
	return Summary{
		Scanners:      poses,
		UniqueBeacons: len(beacons),
		MaxDistance:   MaxScannerDistance(r.Aligned),
		Beacons:       beacons,
		Sweeps:        r.Sweeps,
		Trials:        r.Trials,
	}
}
