package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coincast/logger"
	"coincast/models"
)

// Chart layout constants. The plot area is the canvas minus the reserved
// margins; the zero baseline sits at its vertical center so half the plot
// height represents the largest absolute mover in the set.
const (
	chartMarginTop    = 70.0
	chartMarginBottom = 90.0
	chartMarginLeft   = 70.0
	chartMarginRight  = 30.0

	plotWidth  = canvasWidth - chartMarginLeft - chartMarginRight
	plotHeight = canvasHeight - chartMarginTop - chartMarginBottom
	baselineY  = chartMarginTop + plotHeight/2

	barSlotRatio = 0.7 // bar width as a fraction of its slot

	maxNameRunes = 10
)

// ChartOptions carries the per-run knobs for the chart renderer.
type ChartOptions struct {
	OutputDir string
	Now       func() time.Time
}

// Bar is the computed geometry for one asset's bar, measured from the
// baseline. Up bars grow toward the top margin, down bars toward the bottom.
type Bar struct {
	X, W   float64
	Height float64
	Up     bool
	Change float64
}

// ChartGeometry computes per-asset bar geometry for the chart. The scale is
// relative to the largest absolute change in the set; when every change is
// zero all bars degrade to zero height instead of dividing by zero.
func ChartGeometry(snaps []models.AssetSnapshot) ([]Bar, float64, error) {
	if len(snaps) == 0 {
		return nil, 0, fmt.Errorf("cannot chart an empty snapshot list")
	}

	maxAbs := 0.0
	for _, s := range snaps {
		if v := math.Abs(sanitize(s.PercentChange24)); v > maxAbs {
			maxAbs = v
		}
	}

	slot := plotWidth / float64(len(snaps))
	barW := slot * barSlotRatio

	bars := make([]Bar, 0, len(snaps))
	for i, s := range snaps {
		change := sanitize(s.PercentChange24)
		height := 0.0
		if maxAbs > 0 {
			height = math.Abs(change) / maxAbs * (plotHeight / 2)
		}
		bars = append(bars, Bar{
			X:      chartMarginLeft + slot*float64(i) + (slot-barW)/2,
			W:      barW,
			Height: height,
			Up:     change >= 0,
			Change: change,
		})
	}
	return bars, maxAbs, nil
}

// truncateName shortens display names to at most maxNameRunes runes, with an
// ellipsis when something was cut.
func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxNameRunes {
		return name
	}
	return string(runes[:maxNameRunes]) + "…"
}

// BuildChartScene lays out the full bar chart: title with the generation
// date, y-axis ticks, zero baseline, one bar per asset with its value label,
// and symbol/name captions in the bottom margin. Pure layout, no I/O.
func BuildChartScene(snaps []models.AssetSnapshot, now time.Time) (*Scene, error) {
	bars, maxAbs, err := ChartGeometry(snaps)
	if err != nil {
		return nil, err
	}

	scene := NewScene(canvasWidth, canvasHeight, canvasColor)

	scene.Add(Text{
		X: canvasWidth / 2, Y: 42,
		Value:  fmt.Sprintf("Trending Crypto: 24h Change (%s)", now.Format("2006-01-02")),
		Size:   26, Fill: inkColor, Anchor: "middle", Weight: "bold",
	})

	// Y axis with three tick labels, rounded to whole percent.
	scene.Add(
		Line{X1: chartMarginLeft, Y1: chartMarginTop, X2: chartMarginLeft, Y2: chartMarginTop + plotHeight, Stroke: mutedColor, StrokeWidth: 1.5},
		Text{X: chartMarginLeft - 10, Y: chartMarginTop + 6, Value: fmt.Sprintf("%+.0f%%", maxAbs), Size: 16, Fill: mutedColor, Anchor: "end"},
		Text{X: chartMarginLeft - 10, Y: baselineY + 6, Value: "0%", Size: 16, Fill: mutedColor, Anchor: "end"},
		Text{X: chartMarginLeft - 10, Y: chartMarginTop + plotHeight + 6, Value: fmt.Sprintf("%+.0f%%", -maxAbs), Size: 16, Fill: mutedColor, Anchor: "end"},
	)

	// Zero baseline across the plot area.
	scene.Add(Line{X1: chartMarginLeft, Y1: baselineY, X2: chartMarginLeft + plotWidth, Y2: baselineY, Stroke: inkColor, StrokeWidth: 1.5, Dash: "4 3"})

	for i, bar := range bars {
		snap := snaps[i]
		fill, stroke := risingLight, risingFill
		if !bar.Up {
			fill, stroke = fallingLight, fallingFill
		}

		y := baselineY - bar.Height
		labelY := y - 8
		if !bar.Up {
			y = baselineY
			labelY = baselineY + bar.Height + 18
		}

		scene.Add(
			Rect{X: bar.X, Y: y, W: bar.W, H: bar.Height, Fill: fill, Stroke: stroke, StrokeWidth: 2},
			Text{X: bar.X + bar.W/2, Y: labelY, Value: FormatChange(bar.Change), Size: 15, Fill: stroke, Anchor: "middle"},
			Text{X: bar.X + bar.W/2, Y: chartMarginTop + plotHeight + 28, Value: strings.ToUpper(snap.Symbol), Size: 17, Fill: inkColor, Anchor: "middle", Weight: "bold"},
			Text{X: bar.X + bar.W/2, Y: chartMarginTop + plotHeight + 50, Value: truncateName(snap.Name), Size: 14, Fill: mutedColor, Anchor: "middle"},
		)
	}

	return scene, nil
}

// RenderChart renders exactly one chart document for the run and writes it to
// opts.OutputDir, creating the directory if missing. Metadata is returned
// only after the write fully succeeds.
func RenderChart(snaps []models.AssetSnapshot, opts ChartOptions) (models.RenderedChart, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	ts := now()

	log := logger.GetLogger().WithComponent("chart_render").WithFields(logger.Fields{
		"assets": len(snaps),
	})

	scene, err := BuildChartScene(snaps, ts)
	if err != nil {
		return models.RenderedChart{}, err
	}
	doc := scene.SVG()

	fileName := fmt.Sprintf("coincast-chart-%d.svg", ts.Unix())
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return models.RenderedChart{}, fmt.Errorf("failed to create chart output dir: %w", err)
	}
	path := filepath.Join(opts.OutputDir, fileName)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return models.RenderedChart{}, fmt.Errorf("failed to write chart %s: %w", fileName, err)
	}

	logger.IncrementArtifactRendered(len(doc))
	log.WithFields(logger.Fields{"file": fileName, "bytes": len(doc)}).Info("chart rendered")

	return models.RenderedChart{
		FileName:    fileName,
		FilePath:    path,
		Description: fmt.Sprintf("Bar chart of 24h change for %d trending assets", len(snaps)),
		Type:        "bar",
	}, nil
}
