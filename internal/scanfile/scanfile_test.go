package scanfile

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/scanalign/internal/fsutil"
	"github.com/banshee-data/scanalign/internal/geom"
	"github.com/banshee-data/scanalign/internal/registration"
	"github.com/banshee-data/scanalign/internal/testutil"
)

func TestParse_Example(t *testing.T) {
	t.Parallel()

	scanners, err := ParseString(testutil.ExampleScan())
	require.NoError(t, err)
	require.Len(t, scanners, testutil.ExampleScannerCount)

	for i, s := range scanners {
		assert.Equal(t, i, s.ID)
		assert.Len(t, s.Beacons, testutil.ExampleBeaconCounts[i], "scanner %d", i)
	}
	assert.Equal(t, geom.Point{X: 404, Y: -588, Z: -901}, scanners[0].Beacons[0])
	assert.Equal(t, geom.Point{X: 459, Y: -707, Z: 401}, scanners[0].Beacons[24])
	assert.Equal(t, geom.Point{X: 30, Y: -46, Z: -14}, scanners[4].Beacons[25])
}

func TestParse_Tolerance(t *testing.T) {
	t.Parallel()

	input := "\r\n--- scanner 0 ---\r\n1,2,3\r\n -4, 5 ,-6 \r\n\r\n\r\n--- scanner 1 ---\r\n7,8,9"
	scanners, err := ParseString(input)
	require.NoError(t, err)

	want := []registration.Scanner{
		{ID: 0, Beacons: []geom.Point{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 5, Z: -6}}},
		{ID: 1, Beacons: []geom.Point{{X: 7, Y: 8, Z: 9}}},
	}
	if diff := cmp.Diff(want, scanners); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantLine int
		wantIs   error
	}{
		{
			name:     "beacon before header",
			input:    "1,2,3\n",
			wantLine: 1,
		},
		{
			name:     "bad coordinate",
			input:    "--- scanner 0 ---\n1,2,3\n1,x,3\n",
			wantLine: 3,
		},
		{
			name:     "two coordinates",
			input:    "--- scanner 0 ---\n1,2\n",
			wantLine: 2,
		},
		{
			name:     "bad header",
			input:    "--- scanner zero ---\n1,2,3\n",
			wantLine: 1,
		},
		{
			name:     "header without suffix",
			input:    "--- scanner 0\n1,2,3\n",
			wantLine: 1,
		},
		{
			name:     "skipped id",
			input:    "--- scanner 0 ---\n1,2,3\n\n--- scanner 2 ---\n1,2,3\n",
			wantLine: 4,
			wantIs:   ErrNonConsecutiveID,
		},
		{
			name:     "empty block",
			input:    "--- scanner 0 ---\n1,2,3\n\n--- scanner 1 ---\n\n--- scanner 2 ---\n1,1,1\n",
			wantLine: 4,
		},
		{
			name:     "empty trailing block",
			input:    "--- scanner 0 ---\n1,2,3\n\n--- scanner 1 ---\n",
			wantLine: 4,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseString(tt.input)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T: %v", err, err)
			assert.Equal(t, tt.wantLine, perr.Line)
			assert.True(t, strings.HasPrefix(err.Error(), "line "))
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "\n\n  \n"} {
		_, err := ParseString(input)
		assert.ErrorIs(t, err, ErrEmpty)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("scans/example.txt", []byte(testutil.ExampleScan()), 0o644))

	scanners, err := Load(fsys, "scans/example.txt")
	require.NoError(t, err)
	assert.Len(t, scanners, testutil.ExampleScannerCount)

	_, err = Load(fsys, "scans/missing.txt")
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "scan file scans/missing.txt does not exist")

	require.NoError(t, fsys.MkdirAll("scans/dir.txt", 0o755))
	_, err = Load(fsys, "scans/dir.txt")
	assert.ErrorContains(t, err, "is a directory")

	require.NoError(t, fsys.WriteFile("scans/bad.txt", []byte("--- scanner 1 ---\n1,2,3\n"), 0o644))
	_, err = Load(fsys, "scans/bad.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scans/bad.txt")
	assert.ErrorIs(t, err, ErrNonConsecutiveID)
}

func TestFormat(t *testing.T) {
	t.Parallel()

	scanners, err := ParseString(testutil.ExampleScan())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, scanners))
	assert.Equal(t, testutil.ExampleScan(), buf.String())
}
