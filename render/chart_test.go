package render

import (
	"os"
	"strings"
	"testing"
	"time"

	"coincast/models"
)

func TestChartGeometryEmpty(t *testing.T) {
	if _, _, err := ChartGeometry(nil); err == nil {
		t.Fatal("expected error for empty snapshot list")
	}
}

func TestChartGeometryScale(t *testing.T) {
	snaps := []models.AssetSnapshot{
		{Symbol: "X", PercentChange24: 10},
		{Symbol: "Y", PercentChange24: -5},
	}

	bars, maxAbs, err := ChartGeometry(snaps)
	if err != nil {
		t.Fatalf("ChartGeometry failed: %v", err)
	}
	if maxAbs != 10 {
		t.Fatalf("maxAbs = %v, want 10", maxAbs)
	}
	if bars[0].Height != plotHeight/2 {
		t.Errorf("largest mover should span half the plot height, got %v", bars[0].Height)
	}
	if bars[0].Height != 2*bars[1].Height {
		t.Errorf("bar heights %v and %v should be in 2:1 ratio", bars[0].Height, bars[1].Height)
	}
	if !bars[0].Up || bars[1].Up {
		t.Errorf("bar directions wrong: %+v", bars)
	}
}

func TestChartGeometryAllZero(t *testing.T) {
	snaps := []models.AssetSnapshot{
		{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"},
	}

	bars, maxAbs, err := ChartGeometry(snaps)
	if err != nil {
		t.Fatalf("all-zero input must not fail: %v", err)
	}
	if maxAbs != 0 {
		t.Fatalf("maxAbs = %v, want 0", maxAbs)
	}
	for i, b := range bars {
		if b.Height != 0 {
			t.Errorf("bar %d height = %v, want 0", i, b.Height)
		}
	}
}

func TestChartGeometrySlots(t *testing.T) {
	snaps := []models.AssetSnapshot{
		{Symbol: "A", PercentChange24: 1},
		{Symbol: "B", PercentChange24: 2},
		{Symbol: "C", PercentChange24: 3},
		{Symbol: "D", PercentChange24: 4},
	}

	bars, _, err := ChartGeometry(snaps)
	if err != nil {
		t.Fatalf("ChartGeometry failed: %v", err)
	}

	slot := plotWidth / 4
	for i, b := range bars {
		if b.W != slot*barSlotRatio {
			t.Errorf("bar %d width = %v, want %v", i, b.W, slot*barSlotRatio)
		}
		slotStart := chartMarginLeft + slot*float64(i)
		if b.X < slotStart || b.X+b.W > slotStart+slot {
			t.Errorf("bar %d escapes its slot: x=%v w=%v", i, b.X, b.W)
		}
	}
}

func TestBuildChartSceneLabels(t *testing.T) {
	snaps := []models.AssetSnapshot{
		{Name: "Bitcoin", Symbol: "btc", PercentChange24: 3.2},
		{Name: "Ethereum", Symbol: "eth", PercentChange24: -1.8},
		{Name: "Solana", Symbol: "sol", PercentChange24: 8.5},
		{Name: "Avalanche", Symbol: "avax", PercentChange24: 4.1},
		{Name: "Dogecoin", Symbol: "doge", PercentChange24: -2.3},
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scene, err := BuildChartScene(snaps, now)
	if err != nil {
		t.Fatalf("BuildChartScene failed: %v", err)
	}
	doc := scene.SVG()

	// 8.5 rounds half to even: the top tick reads +8%.
	for _, want := range []string{"+8%", "0%", "-8%", "2025-06-01", "BTC", "DOGE", "+8.5%", "-2.3%"} {
		if !strings.Contains(doc, want) {
			t.Errorf("chart SVG missing %q", want)
		}
	}
}

func TestBuildChartSceneTruncatesNames(t *testing.T) {
	snaps := []models.AssetSnapshot{
		{Name: "Internet Computer Protocol", Symbol: "icp", PercentChange24: 1},
	}

	scene, err := BuildChartScene(snaps, time.Now())
	if err != nil {
		t.Fatalf("BuildChartScene failed: %v", err)
	}
	doc := scene.SVG()
	if !strings.Contains(doc, "Internet C…") {
		t.Error("long name should be truncated to 10 runes plus ellipsis")
	}
	if strings.Contains(doc, "Internet Computer Protocol") {
		t.Error("full name should not appear in the chart")
	}
}

func TestRenderChartWritesFile(t *testing.T) {
	dir := t.TempDir()
	snaps := []models.AssetSnapshot{
		{Name: "Bitcoin", Symbol: "btc", PercentChange24: 2.4},
		{Name: "Solana", Symbol: "sol", PercentChange24: -3.1},
	}

	chart, err := RenderChart(snaps, ChartOptions{OutputDir: dir, Now: func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}})
	if err != nil {
		t.Fatalf("RenderChart failed: %v", err)
	}
	if chart.Type != "bar" {
		t.Errorf("type = %s, want bar", chart.Type)
	}
	if !strings.Contains(chart.Description, "2 trending assets") {
		t.Errorf("description missing asset count: %s", chart.Description)
	}
	if _, err := os.Stat(chart.FilePath); err != nil {
		t.Fatalf("artifact not on disk: %v", err)
	}
}

func TestRenderChartEmpty(t *testing.T) {
	if _, err := RenderChart(nil, ChartOptions{OutputDir: t.TempDir()}); err == nil {
		t.Fatal("expected error for empty snapshot list")
	}
}

func TestTruncateName(t *testing.T) {
	if got := truncateName("Bitcoin"); got != "Bitcoin" {
		t.Errorf("short name changed: %s", got)
	}
	if got := truncateName("Ethereummm"); got != "Ethereummm" {
		t.Errorf("10-rune name should be untouched: %s", got)
	}
	if got := truncateName("Ethereummmm"); got != "Ethereummm…" {
		t.Errorf("11-rune name should truncate: %s", got)
	}
}
