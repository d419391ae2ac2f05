package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/scanalign/internal/fsutil"
	"github.com/banshee-data/scanalign/internal/geom"
	"github.com/banshee-data/scanalign/internal/registration"
	"github.com/banshee-data/scanalign/internal/scanfile"
	"github.com/banshee-data/scanalign/internal/testutil"
)

func exampleResult(t *testing.T) *registration.Result {
	t.Helper()
	scanners, err := scanfile.ParseString(testutil.ExampleScan())
	require.NoError(t, err)
	engine, err := registration.NewEngine(geom.MustRotationGroup(), registration.DefaultConfig())
	require.NoError(t, err)
	res, err := engine.Align(context.Background(), scanners)
	require.NoError(t, err)
	return res
}

func TestWriteText(t *testing.T) {
	sum := registration.Summarize(exampleResult(t))

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sum))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "unique beacons: 79\nmax scanner distance: 3621\n"), out)
	assert.Contains(t, out, "sweeps: 2")
	// Header plus one row per scanner.
	var rows int
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "1105") && strings.Contains(line, "-1205") {
			rows++
		}
	}
	assert.Equal(t, 1, rows, "scanner 2 row not found:\n%s", out)
}

func TestWriteJSON(t *testing.T) {
	sum := registration.Summarize(exampleResult(t))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sum))

	var got registration.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	if diff := cmp.Diff(sum, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteAligned(t *testing.T) {
	res := exampleResult(t)

	var buf bytes.Buffer
	require.NoError(t, WriteAligned(&buf, res.Aligned))

	scanners, err := scanfile.ParseString(buf.String())
	require.NoError(t, err)
	require.Len(t, scanners, testutil.ExampleScannerCount)

	// Every exported beacon is in the global set.
	global := make(map[geom.Point]bool)
	for _, b := range registration.UniqueBeacons(res.Aligned) {
		global[b] = true
	}
	for _, s := range scanners {
		assert.Len(t, s.Beacons, testutil.ExampleBeaconCounts[s.ID])
		for _, b := range s.Beacons {
			assert.True(t, global[b], "beacon %s of scanner %d not in global set", b, s.ID)
		}
	}
}

func TestWritePNG(t *testing.T) {
	sum := registration.Summarize(exampleResult(t))
	fsys := fsutil.NewMemoryFileSystem()

	require.NoError(t, WritePNG(fsys, "out/layout.png", sum, 10))

	data, err := fsys.ReadFile("out/layout.png")
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), data[:8])
}

func TestWritePNG_InvalidWidth(t *testing.T) {
	err := WritePNG(fsutil.NewMemoryFileSystem(), "layout.png", registration.Summary{}, 0)
	assert.Error(t, err)
}

func TestWriteHTML(t *testing.T) {
	sum := registration.Summarize(exampleResult(t))

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sum))
	out := buf.String()

	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Beacon map")
	assert.Contains(t, out, "scatter3D")
	assert.Contains(t, out, "Beacons per scanner")
}
