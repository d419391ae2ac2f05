package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/scanalign/internal/geom"
)

func TestUniqueBeacons(t *testing.T) {
	t.Parallel()

	aligned := []AlignedScanner{
		{ID: 0, Position: geom.Origin, Beacons: []geom.Point{{X: 1}, {X: 2}, {X: 3}}, ReferenceID: -1},
		// Shifted by +1 in X: local 0 and 1 land on global 1 and 2.
		{ID: 1, Position: geom.Point{X: 1}, Beacons: []geom.Point{{X: 0}, {X: 1}, {X: 9, Y: -1}}},
	}

	got := UniqueBeacons(aligned)
	assert.Equal(t, []geom.Point{{X: 1}, {X: 2}, {X: 3}, {X: 10, Y: -1}}, got)
	assert.Equal(t, 4, UniqueBeaconCount(aligned))
	assert.Empty(t, UniqueBeacons(nil))
}

func TestMaxScannerDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		positions []geom.Point
		want      int
	}{
		{name: "none", want: 0},
		{name: "one", positions: []geom.Point{{X: 5, Y: 5, Z: 5}}, want: 0},
		{name: "coincident", positions: []geom.Point{{X: 5}, {X: 5}}, want: 0},
		{
			name:      "worked example",
			positions: []geom.Point{{}, {X: 68, Y: -1246, Z: -43}, {X: 1105, Y: -1205, Z: 1229}, {X: -92, Y: -2380, Z: -20}, {X: -20, Y: -1133, Z: 1061}},
			want:      3621,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			aligned := make([]AlignedScanner, len(tt.positions))
			for i, p := range tt.positions {
				aligned[i] = AlignedScanner{ID: i, Position: p}
			}
			assert.Equal(t, tt.want, MaxScannerDistance(aligned))
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	res := &Result{
		Aligned: []AlignedScanner{
			{ID: 0, Position: geom.Origin, Beacons: []geom.Point{{X: 1}}, ReferenceID: -1},
			{ID: 2, Position: geom.Point{Z: 4}, Beacons: []geom.Point{{X: 1}, {Y: 1}}, RotationIndex: 7, ReferenceID: 0},
			{ID: 1, Position: geom.Point{X: -3}, Beacons: []geom.Point{{X: 4}}, RotationIndex: 3, ReferenceID: 2},
		},
		Sweeps: 2,
		Trials: 99,
	}

	s := Summarize(res)
	require.Len(t, s.Scanners, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{s.Scanners[0].ID, s.Scanners[1].ID, s.Scanners[2].ID})
	assert.Equal(t, ScannerPose{ID: 2, Position: geom.Point{Z: 4}, RotationIndex: 7, ReferenceID: 0, BeaconCount: 2}, s.Scanners[2])
	// Global beacons: (1,0,0), (1,0,4), (0,1,4), (1,0,0) again.
	assert.Equal(t, 3, s.UniqueBeacons)
	assert.Equal(t, 7, s.MaxDistance)
	assert.Equal(t, 2, s.Sweeps)
	assert.Equal(t, int64(99), s.Trials)
}

func TestAlignedScanner_GlobalBeacons(t *testing.T) {
	t.Parallel()

	s := AlignedScanner{Position: geom.Point{X: 10, Y: 20, Z: 30}, Beacons: []geom.Point{{X: 1}, {Y: -1}}}
	assert.Equal(t, []geom.Point{{X: 11, Y: 20, Z: 30}, {X: 10, Y: 19, Z: 30}}, s.GlobalBeacons())
	assert.False(t, s.IsAnchor())
	assert.True(t, anchorOf(Scanner{ID: 3, Beacons: []geom.Point{{X: 1}}}).IsAnchor())
}
