package render

import (
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"coincast/models"
)

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestClassify(t *testing.T) {
	cases := []struct {
		change float64
		want   models.Trend
	}{
		{3.2, models.TrendRising},
		{-1.8, models.TrendFalling},
		{0, models.TrendFalling}, // zero is falling, boundary policy
		{math.NaN(), models.TrendFalling},
	}
	for _, c := range cases {
		if got := Classify(c.change); got != c.want {
			t.Errorf("Classify(%v) = %s, want %s", c.change, got, c.want)
		}
	}
}

func TestFormatChange(t *testing.T) {
	cases := []struct {
		change float64
		want   string
	}{
		{3.2, "+3.2%"},
		{-1.8, "-1.8%"},
		{0, "+0.0%"},
		// Go's fmt rounds half to even: 3.25 formats to 3.2, not 3.3.
		{3.25, "+3.2%"},
		{math.NaN(), "+0.0%"},
		{math.Inf(1), "+0.0%"},
	}
	for _, c := range cases {
		if got := FormatChange(c.change); got != c.want {
			t.Errorf("FormatChange(%v) = %q, want %q", c.change, got, c.want)
		}
	}
}

func TestBuildCardScene(t *testing.T) {
	scene := BuildCardScene(models.AssetSnapshot{Name: "Solana", Symbol: "sol", PercentChange24: -3.1})
	if scene.Width != 800 || scene.Height != 600 {
		t.Fatalf("unexpected canvas: %vx%v", scene.Width, scene.Height)
	}

	doc := scene.SVG()
	for _, want := range []string{"SOL", "24h Change", "-3.1%", "FALLING", fallingFill} {
		if !strings.Contains(doc, want) {
			t.Errorf("card SVG missing %q", want)
		}
	}
	if strings.Contains(doc, risingFill) {
		t.Error("falling card should not use the rising accent color")
	}
}

func TestRenderCardWritesFile(t *testing.T) {
	dir := t.TempDir()

	asset, err := RenderCard(models.AssetSnapshot{Name: "Bitcoin", Symbol: "btc", PercentChange24: 3.2}, 0,
		CardOptions{OutputDir: dir, Now: fixedClock(t)})
	if err != nil {
		t.Fatalf("RenderCard failed: %v", err)
	}

	if asset.Trend != models.TrendRising {
		t.Errorf("trend = %s, want rising", asset.Trend)
	}
	if asset.Symbol != "BTC" {
		t.Errorf("symbol = %s, want BTC", asset.Symbol)
	}
	if !strings.Contains(asset.Description, "+3.2%") {
		t.Errorf("description missing signed change: %s", asset.Description)
	}
	if _, err := os.Stat(asset.FilePath); err != nil {
		t.Fatalf("artifact not on disk: %v", err)
	}
}

func TestRenderCardFileNameUniqueness(t *testing.T) {
	dir := t.TempDir()
	clock := fixedClock(t)
	snap := models.AssetSnapshot{Name: "Bitcoin", Symbol: "btc", PercentChange24: 1}

	first, err := RenderCard(snap, 0, CardOptions{OutputDir: dir, Now: clock})
	if err != nil {
		t.Fatalf("first RenderCard failed: %v", err)
	}
	second, err := RenderCard(snap, 1, CardOptions{OutputDir: dir, Now: clock})
	if err != nil {
		t.Fatalf("second RenderCard failed: %v", err)
	}
	if first.FileName == second.FileName {
		t.Errorf("sequential renders for the same symbol collided: %s", first.FileName)
	}
}

func TestSnapshotAt(t *testing.T) {
	snaps := []models.AssetSnapshot{{Name: "Bitcoin", Symbol: "btc", PercentChange24: 1}}

	if got := SnapshotAt(snaps, 0); got.Symbol != "btc" {
		t.Errorf("in-range index returned %+v", got)
	}
	if got := SnapshotAt(snaps, 1); got != PlaceholderSnapshot {
		t.Errorf("out-of-range index should return placeholder, got %+v", got)
	}
	if got := SnapshotAt(snaps, -1); got != PlaceholderSnapshot {
		t.Errorf("negative index should return placeholder, got %+v", got)
	}
}

func TestRenderCardNaN(t *testing.T) {
	dir := t.TempDir()

	asset, err := RenderCard(models.AssetSnapshot{Name: "Broken", Symbol: "bad", PercentChange24: math.NaN()}, 0,
		CardOptions{OutputDir: dir, Now: fixedClock(t)})
	if err != nil {
		t.Fatalf("RenderCard should be total over NaN input: %v", err)
	}
	if asset.Trend != models.TrendFalling {
		t.Errorf("NaN should classify falling, got %s", asset.Trend)
	}
	if !strings.Contains(asset.Description, "+0.0%") {
		t.Errorf("NaN should render as zero change: %s", asset.Description)
	}
}
