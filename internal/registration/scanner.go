package registration

import "github.com/banshee-data/scanalign/internal/geom"

// Scanner is an unaligned scanner: beacons in its own local frame.
type Scanner struct {
	ID      int          `json:"id"`
	Beacons []geom.Point `json:"beacons"`
}

// AlignedScanner is a scanner with a known global position. Beacons are
// rotated into the global orientation but kept relative to Position.
type AlignedScanner struct {
	ID       int          `json:"id"`
	Position geom.Point   `json:"position"`
	Rotation geom.Matrix  `json:"rotation"`
	Beacons  []geom.Point `json:"beacons"`

	// RotationIndex is the index of Rotation in the engine's group.
	RotationIndex int `json:"rotation_index"`
	// ReferenceID is the aligned scanner the match was found against, or -1
	// for the anchor.
	ReferenceID int `json:"reference_id"`
}

// IsAnchor reports whether s defines the global origin.
func (s AlignedScanner) IsAnchor() bool {
	return s.ReferenceID < 0
}

// GlobalBeacons returns Position + beacon for every beacon.
func (s AlignedScanner) GlobalBeacons() []geom.Point {
	return geom.TranslateAll(s.Beacons, s.Position)
}

func anchorOf(s Scanner) AlignedScanner {
	beacons := make([]geom.Point, len(s.Beacons))
	copy(beacons, s.Beacons)
	return AlignedScanner{
		ID:          s.ID,
		Position:    geom.Origin,
		Rotation:    geom.Identity,
		Beacons:     beacons,
		ReferenceID: -1,
	}
}
