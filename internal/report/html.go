package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/scanalign/internal/registration"
)

// WriteHTML renders an interactive page: a 3D scatter of beacons and
// scanners, and a bar chart of beacons seen per scanner.
func WriteHTML(w io.Writer, sum registration.Summary) error {
	beacons := make([]opts.Chart3DData, 0, len(sum.Beacons))
	for _, b := range sum.Beacons {
		beacons = append(beacons, opts.Chart3DData{Value: []interface{}{b.X, b.Y, b.Z}})
	}
	scanners := make([]opts.Chart3DData, 0, len(sum.Scanners))
	for _, s := range sum.Scanners {
		scanners = append(scanners, opts.Chart3DData{
			Name:  fmt.Sprintf("scanner %d", s.ID),
			Value: []interface{}{s.Position.X, s.Position.Y, s.Position.Z},
		})
	}

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Scanner registration", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Beacon map",
			Subtitle: fmt.Sprintf("beacons=%d scanners=%d max distance=%d", sum.UniqueBeacons, len(sum.Scanners), sum.MaxDistance),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z"}),
	)
	scatter.AddSeries("beacons", beacons, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#31688e"}))
	scatter.AddSeries("scanners", scanners, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#dc322f"}))

	ids := make([]string, len(sum.Scanners))
	counts := make([]opts.BarData, len(sum.Scanners))
	for i, s := range sum.Scanners {
		ids[i] = fmt.Sprint(s.ID)
		counts[i] = opts.BarData{Value: s.BeaconCount}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Beacons per scanner"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(ids).AddSeries("beacons", counts,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)

	page := components.NewPage()
	page.SetPageTitle("Scanner registration")
	page.AddCharts(scatter, bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
