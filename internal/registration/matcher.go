package registration

import "github.com/banshee-data/scanalign/internal/geom"

// DefaultMinOverlap is the number of coincident beacons that declares two
// scanners overlapping when no threshold is configured.
const DefaultMinOverlap = 12

// Matcher decides whether a rotated candidate set overlaps a reference set.
type Matcher struct {
	MinOverlap int
}

// Match votes over every (reference, candidate) pair on the translation
// reference - candidate. The translation with the most votes wins, ties going
// to the lexicographically smallest (x, y, z). It returns the translation,
// its vote count, and whether the count reaches MinOverlap.
//
// Adding the translation to a candidate point gives its coordinates in the
// reference's frame.
func (m Matcher) Match(reference, candidate []geom.Point) (geom.Point, int, bool) {
	if len(reference) == 0 || len(candidate) == 0 {
		return geom.Point{}, 0, false
	}
	votes := make(map[geom.Point]int, len(reference)*len(candidate))
	for _, r := range reference {
		for _, c := range candidate {
			votes[r.Sub(c)]++
		}
	}

	var best geom.Point
	bestCount := 0
	for v, n := range votes {
		if n > bestCount || (n == bestCount && v.Less(best)) {
			best, bestCount = v, n
		}
	}
	return best, bestCount, bestCount >= m.MinOverlap
}
