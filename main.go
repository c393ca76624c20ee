package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"coincast/config"
	"coincast/delivery"
	"coincast/generator"
	"coincast/logger"
	"coincast/market"
	"coincast/models"
	"coincast/processor"
	"coincast/render"
	"coincast/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	if cfg.Logging.DashboardName != "" {
		logger.InitCloudWatch("", "", cfg.Logging.DashboardName)
	}

	run := models.Run{ID: uuid.New().String(), StartedAt: time.Now()}

	log.WithFields(logger.Fields{
		"service":     cfg.Coincast.Name,
		"version":     cfg.Coincast.Version,
		"environment": config.AppEnvironment(),
		"run_id":      run.ID,
	}).Info("starting coincast run")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	if err := runPipeline(ctx, cfg, log, run); err != nil {
		log.WithError(err).WithFields(logger.Fields{"run_id": run.ID}).Error("coincast run failed")
		logger.FlushReport(ctx, log)
		os.Exit(1)
	}

	logger.FlushReport(ctx, log)
	log.WithFields(logger.Fields{
		"run_id":      run.ID,
		"duration_ms": time.Since(run.StartedAt).Milliseconds(),
	}).Info("coincast run completed")
}

// runPipeline executes one linear fetch -> summarize -> generate -> render ->
// deliver pass. Render and I/O failures abort the run; delivery failures
// degrade to the text-only path and are logged, not fatal.
func runPipeline(ctx context.Context, cfg *config.Config, log *logger.Log, run models.Run) error {
	records, err := market.FetchTrending(cfg)
	if err != nil {
		log.WithError(err).Warn("trending source unreachable, using static fallback list")
		records = market.StaticTrending()
	}

	snaps := market.BuildSnapshots(records, cfg.Market.Limit, market.DefaultRand())
	if len(snaps) == 0 {
		return fmt.Errorf("no snapshots to process")
	}
	logger.RecordStageItem("snapshots", len(snaps))
	logger.LogDataFlowEntry(log.WithComponent("market"), "trending_source", "snapshot_builder", len(records), "trending_record")

	summary, err := processor.Summarize(snaps)
	if err != nil {
		return err
	}
	positive, negative := processor.Partition(snaps)
	log.WithFields(logger.Fields{
		"run_id":     run.ID,
		"assets":     len(snaps),
		"positive":   len(positive),
		"negative":   len(negative),
		"top_gainer": summary.TopGainer.Symbol,
		"top_loser":  summary.TopLoser.Symbol,
	}).Info("market summary derived")

	thread := generator.New(cfg).Thread(snaps, summary)
	logger.RecordStageItem("thread", len(thread))

	cardCount := cfg.Render.CardCount
	if cardCount <= 0 {
		cardCount = len(snaps)
	}
	renderStart := time.Now()
	cards := make([]models.RenderedAsset, 0, cardCount)
	for i := 0; i < cardCount; i++ {
		card, err := render.RenderCard(render.SnapshotAt(snaps, i), i, render.CardOptions{OutputDir: cfg.Render.CardDir})
		if err != nil {
			return err
		}
		cards = append(cards, card)
	}

	chart, err := render.RenderChart(snaps, render.ChartOptions{OutputDir: cfg.Render.ChartDir})
	if err != nil {
		return err
	}
	logger.RecordStageItem("artifacts", len(cards)+1)
	logger.LogPerformanceEntry(log.WithFields(logger.Fields{"run_id": run.ID}), "render", "render_artifacts", time.Since(renderStart), logger.Fields{
		"cards":  len(cards),
		"charts": 1,
	})

	deliverStart := time.Now()
	deliverRun(cfg, log, run, thread, cards, chart)
	logger.LogPerformanceEntry(log.WithFields(logger.Fields{"run_id": run.ID}), "delivery", "deliver_run", time.Since(deliverStart), nil)

	log.LogMetric("pipeline", "assets_processed", len(snaps), "counter", logger.Fields{"run_id": run.ID})

	if cfg.Storage.S3.Enabled {
		mirror, err := writer.NewArtifactMirror(cfg)
		if err != nil {
			log.WithError(err).Warn("artifact mirror unavailable, skipping upload")
			return nil
		}
		paths := make([]string, 0, len(cards)+1)
		for _, c := range cards {
			paths = append(paths, c.FilePath)
		}
		paths = append(paths, chart.FilePath)
		if err := mirror.UploadAll(ctx, run.StartedAt.Format("2006-01-02"), paths); err != nil {
			log.WithError(err).Warn("artifact mirroring failed")
		}
	}

	return nil
}

// deliverRun posts the thread and uploads the artifacts. When document
// uploads fail the run degrades to the already-sent text; when the text
// itself fails there is nothing left to degrade to and the failure is logged.
func deliverRun(cfg *config.Config, log *logger.Log, run models.Run, thread string, cards []models.RenderedAsset, chart models.RenderedChart) {
	client := delivery.New(cfg)
	if !client.Enabled() {
		log.WithComponent("delivery").Info("delivery not configured, artifacts left on disk")
		return
	}

	if err := client.SendMessage(thread); err != nil {
		log.WithComponent("delivery").WithError(err).Error("thread delivery failed")
		return
	}

	if cfg.Delivery.DisableDocs {
		return
	}

	for _, card := range cards {
		if cfg.Delivery.UploadDelay > 0 {
			time.Sleep(cfg.Delivery.UploadDelay)
		}
		if err := client.SendDocument(card.FilePath, card.Description); err != nil {
			log.WithComponent("delivery").WithError(err).WithFields(logger.Fields{
				"file": card.FileName,
			}).Warn("card upload failed, continuing with text-only delivery")
			return
		}
	}

	if cfg.Delivery.UploadDelay > 0 {
		time.Sleep(cfg.Delivery.UploadDelay)
	}
	if err := client.SendDocument(chart.FilePath, chart.Description); err != nil {
		log.WithComponent("delivery").WithError(err).WithFields(logger.Fields{
			"file": chart.FileName,
		}).Warn("chart upload failed, continuing with text-only delivery")
	}
}
