package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type stageStat struct {
	items int64
	bytes int64
}

var (
	errorsFetch     int64
	errorsRender    int64
	errorsDelivery  int64
	warnsFetch      int64
	warnsRender     int64
	warnsDelivery   int64
	trendingFetches int64
	artifactsDrawn  int64
	deliveries      int64
	mirrorUploads   int64
	stages          sync.Map // map[string]*stageStat
)

func recordWarn(component string) {
	switch {
	case strings.Contains(component, "fetch") || strings.Contains(component, "market"):
		atomic.AddInt64(&warnsFetch, 1)
	case strings.Contains(component, "render"):
		atomic.AddInt64(&warnsRender, 1)
	case strings.Contains(component, "delivery"):
		atomic.AddInt64(&warnsDelivery, 1)
	}
}

func recordError(component string) {
	switch {
	case strings.Contains(component, "fetch") || strings.Contains(component, "market"):
		atomic.AddInt64(&errorsFetch, 1)
	case strings.Contains(component, "render"):
		atomic.AddInt64(&errorsRender, 1)
	case strings.Contains(component, "delivery"):
		atomic.AddInt64(&errorsDelivery, 1)
	}
}

// IncrementTrendingFetch records one completed trending fetch of size bytes.
func IncrementTrendingFetch(size int) {
	atomic.AddInt64(&trendingFetches, 1)
	recordStage("trending_fetch", size)
}

// IncrementArtifactRendered records one rendered artifact of size bytes.
func IncrementArtifactRendered(size int) {
	atomic.AddInt64(&artifactsDrawn, 1)
	recordStage("artifact_render", size)
}

// IncrementDelivery records one outbound delivery of size bytes.
func IncrementDelivery(size int) {
	atomic.AddInt64(&deliveries, 1)
	recordStage("delivery", size)
}

// IncrementMirrorUpload records one artifact mirrored to object storage.
func IncrementMirrorUpload(size int64) {
	atomic.AddInt64(&mirrorUploads, 1)
	recordStage("mirror_upload", int(size))
}

// RecordStageItem accumulates arbitrary per-stage counters for the report.
func RecordStageItem(name string, size int) {
	recordStage(name, size)
}

func recordStage(name string, size int) {
	v, _ := stages.LoadOrStore(name, &stageStat{})
	cs := v.(*stageStat)
	atomic.AddInt64(&cs.items, 1)
	atomic.AddInt64(&cs.bytes, int64(size))
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and stage statistics.
// It exposes the internal startReport function for use by other packages.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

// FlushReport emits one final report synchronously. One-shot runs call this
// before exiting so short pipelines still produce a report line.
func FlushReport(ctx context.Context, log *Log) {
	logReport(ctx, log)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	netStats, _ := gnet.IOCounters(false)
	stageData := map[string]map[string]int64{}
	stages.Range(func(k, v any) bool {
		name := k.(string)
		cs := v.(*stageStat)
		stageData[name] = map[string]int64{
			"items": atomic.LoadInt64(&cs.items),
			"bytes": atomic.LoadInt64(&cs.bytes),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	bytesSent := uint64(0)
	bytesRecv := uint64(0)
	if len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}

	fields := Fields{
		"errors_fetch":       atomic.LoadInt64(&errorsFetch),
		"errors_render":      atomic.LoadInt64(&errorsRender),
		"errors_delivery":    atomic.LoadInt64(&errorsDelivery),
		"warns_fetch":        atomic.LoadInt64(&warnsFetch),
		"warns_render":       atomic.LoadInt64(&warnsRender),
		"warns_delivery":     atomic.LoadInt64(&warnsDelivery),
		"trending_fetches":   atomic.LoadInt64(&trendingFetches),
		"artifacts_rendered": atomic.LoadInt64(&artifactsDrawn),
		"deliveries":         atomic.LoadInt64(&deliveries),
		"mirror_uploads":     atomic.LoadInt64(&mirrorUploads),
		"goroutines":         runtime.NumGoroutine(),
		"cpu_percent":        cpuPct,
		"memory_mb":          int64(memStats.Used) / 1024 / 1024,
		"disk_mb":            int64(diskStats.Used) / 1024 / 1024,
		"stages":             stageData,
		"net_bytes_sent":     int64(bytesSent),
		"net_bytes_recv":     int64(bytesRecv),
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-TrendingFetches"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["trending_fetches"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-ArtifactsRendered"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["artifacts_rendered"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-Deliveries"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["deliveries"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-MirrorUploads"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["mirror_uploads"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-ErrorsFetch"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_fetch"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-ErrorsRender"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_render"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-ErrorsDelivery"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_delivery"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		cwtypes.MetricDatum{MetricName: aws.String("Coincast-NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
	)

	for name, stats := range stageData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("Coincast-StageItems"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Stage"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["items"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("Coincast-StageBytes"),
				Unit:       cwtypes.StandardUnitBytes,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Stage"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["bytes"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
