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

const (
	canvasWidth  = 800.0
	canvasHeight = 600.0
)

// Palette shared by the card and chart renderers so artifacts from one run
// stay visually coherent.
const (
	risingFill    = "#16a34a"
	risingLight   = "#dcfce7"
	fallingFill   = "#dc2626"
	fallingLight  = "#fee2e2"
	inkColor      = "#111827"
	mutedColor    = "#6b7280"
	canvasColor   = "#f9fafb"
	footerCaption = "coincast | daily trending snapshot"
)

// PlaceholderSnapshot is rendered when the caller asks for an index outside
// the snapshot list.
var PlaceholderSnapshot = models.AssetSnapshot{Name: "Crypto", Symbol: "BTC", PercentChange24: 0}

// SnapshotAt returns the snapshot at index i, or the placeholder when i is
// out of range, keeping a fixed-count card loop total.
func SnapshotAt(snaps []models.AssetSnapshot, i int) models.AssetSnapshot {
	if i < 0 || i >= len(snaps) {
		return PlaceholderSnapshot
	}
	return snaps[i]
}

// CardOptions carries the per-run knobs for the card renderer. Now is a seam
// for the timestamp used in file names; nil means time.Now.
type CardOptions struct {
	OutputDir string
	Now       func() time.Time
}

// Classify maps a 24h change to its qualitative trend. Zero classifies as
// falling, and so does a non-finite value.
func Classify(change float64) models.Trend {
	if change > 0 {
		return models.TrendRising
	}
	return models.TrendFalling
}

// FormatChange renders a signed percentage to one decimal place using Go's
// default rounding (round half to even). Non-finite input degrades to "+0.0%".
func FormatChange(change float64) string {
	if math.IsNaN(change) || math.IsInf(change, 0) {
		change = 0
	}
	return fmt.Sprintf("%+.1f%%", change)
}

// sanitize replaces non-finite changes with zero so layout math stays total.
func sanitize(change float64) float64 {
	if math.IsNaN(change) || math.IsInf(change, 0) {
		return 0
	}
	return change
}

// BuildCardScene lays out the fixed 800x600 card for one asset: a circular
// symbol badge, the 24h change panel, two decorative polygons, a trend title
// and a static footer. Pure layout, no I/O.
func BuildCardScene(snap models.AssetSnapshot) *Scene {
	change := sanitize(snap.PercentChange24)
	trend := Classify(change)

	accent, light := risingFill, risingLight
	if trend == models.TrendFalling {
		accent, light = fallingFill, fallingLight
	}

	scene := NewScene(canvasWidth, canvasHeight, canvasColor)

	// Decorative corner polygons.
	scene.Add(
		Polygon{Points: [][2]float64{{0, 0}, {180, 0}, {0, 180}}, Fill: light, Opacity: 0.8},
		Polygon{Points: [][2]float64{{800, 600}, {620, 600}, {800, 420}}, Fill: light, Opacity: 0.8},
	)

	// Title: name plus the uppercased trend word.
	scene.Add(Text{
		X: 400, Y: 70,
		Value:  fmt.Sprintf("%s is %s", snap.Name, strings.ToUpper(string(trend))),
		Size:   34, Fill: inkColor, Anchor: "middle", Weight: "bold",
	})

	// Symbol badge, centered upper-middle.
	scene.Add(
		Circle{CX: 400, CY: 200, R: 90, Fill: accent},
		Text{X: 400, Y: 215, Value: strings.ToUpper(snap.Symbol), Size: 44, Fill: "#ffffff", Anchor: "middle", Weight: "bold"},
	)

	// Change panel below the badge.
	scene.Add(
		Rect{X: 250, Y: 330, W: 300, H: 120, Rx: 14, Fill: "#ffffff", Stroke: accent, StrokeWidth: 3},
		Text{X: 400, Y: 375, Value: "24h Change", Size: 22, Fill: mutedColor, Anchor: "middle"},
		Text{X: 400, Y: 425, Value: FormatChange(change), Size: 40, Fill: accent, Anchor: "middle", Weight: "bold"},
	)

	// Static footer caption.
	scene.Add(Text{X: 400, Y: 570, Value: footerCaption, Size: 16, Fill: mutedColor, Anchor: "middle"})

	return scene
}

// RenderCard renders one asset card and writes it to opts.OutputDir, creating
// the directory if missing. Metadata is returned only after the write fully
// succeeds. The index keeps file names distinct within a batch.
func RenderCard(snap models.AssetSnapshot, index int, opts CardOptions) (models.RenderedAsset, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	log := logger.GetLogger().WithComponent("card_render").WithFields(logger.Fields{
		"symbol": snap.Symbol,
		"index":  index,
	})

	change := sanitize(snap.PercentChange24)
	trend := Classify(change)
	doc := BuildCardScene(snap).SVG()

	fileName := fmt.Sprintf("coincast-card-%s-%d-%d.svg", strings.ToLower(snap.Symbol), now().Unix(), index)
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return models.RenderedAsset{}, fmt.Errorf("failed to create card output dir: %w", err)
	}
	path := filepath.Join(opts.OutputDir, fileName)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return models.RenderedAsset{}, fmt.Errorf("failed to write card %s: %w", fileName, err)
	}

	logger.IncrementArtifactRendered(len(doc))
	log.WithFields(logger.Fields{"file": fileName, "bytes": len(doc)}).Info("card rendered")

	return models.RenderedAsset{
		FileName: fileName,
		FilePath: path,
		Description: fmt.Sprintf("%s (%s) is %s with a 24h change of %s",
			snap.Name, strings.ToUpper(snap.Symbol), string(trend), FormatChange(change)),
		Project: snap.Name,
		Symbol:  strings.ToUpper(snap.Symbol),
		Trend:   trend,
	}, nil
}
