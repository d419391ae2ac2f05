package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/scanalign/internal/fsutil"
	"github.com/banshee-data/scanalign/internal/registration"
)

var (
	beaconColor  = color.RGBA{R: 49, G: 104, B: 142, A: 255}
	scannerColor = color.RGBA{R: 220, G: 50, B: 47, A: 255}
)

// WritePNG renders a top-down (x, y) projection of the beacons and scanner
// positions to path. The image is square, widthCm on each side.
func WritePNG(fsys fsutil.FileSystem, path string, sum registration.Summary, widthCm float64) error {
	if widthCm <= 0 {
		return fmt.Errorf("plot width must be positive, got %g", widthCm)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Scanner layout (%d beacons, max distance %d)", sum.UniqueBeacons, sum.MaxDistance)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(plotter.NewGrid())

	beaconPts := make(plotter.XYs, len(sum.Beacons))
	for i, b := range sum.Beacons {
		beaconPts[i] = plotter.XY{X: float64(b.X), Y: float64(b.Y)}
	}
	scannerPts := make(plotter.XYs, len(sum.Scanners))
	for i, s := range sum.Scanners {
		scannerPts[i] = plotter.XY{X: float64(s.Position.X), Y: float64(s.Position.Y)}
	}

	if len(beaconPts) > 0 {
		beacons, err := plotter.NewScatter(beaconPts)
		if err != nil {
			return fmt.Errorf("beacon scatter: %w", err)
		}
		beacons.GlyphStyle.Color = beaconColor
		beacons.GlyphStyle.Radius = vg.Points(1.5)
		beacons.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(beacons)
		p.Legend.Add("beacons", beacons)
	}
	if len(scannerPts) > 0 {
		scanners, err := plotter.NewScatter(scannerPts)
		if err != nil {
			return fmt.Errorf("scanner scatter: %w", err)
		}
		scanners.GlyphStyle.Color = scannerColor
		scanners.GlyphStyle.Radius = vg.Points(4)
		scanners.GlyphStyle.Shape = draw.PyramidGlyph{}
		p.Add(scanners)
		p.Legend.Add("scanners", scanners)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	side := vg.Length(widthCm) * vg.Centimeter
	wt, err := p.WriterTo(side, side, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err := fsutil.WriteFileAll(fsys, path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
