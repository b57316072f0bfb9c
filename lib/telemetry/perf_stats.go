package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type perfGauges struct {
	cpuUsage    metric.Float64Gauge
	allocatedMb metric.Int64Gauge
	liveObjects metric.Int64Gauge
	goroutines  metric.Int64Gauge
}

func newPerfGauges() perfGauges {
	meter := otel.Meter("go.perf_stats")
	cpuUsage, _ := meter.Float64Gauge("cpu_usage")
	allocatedMb, _ := meter.Int64Gauge("allocated_mb")
	liveObjects, _ := meter.Int64Gauge("live_objects")
	goroutines, _ := meter.Int64Gauge("goroutine_count")
	return perfGauges{cpuUsage, allocatedMb, liveObjects, goroutines}
}

func (g perfGauges) sample(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	g.allocatedMb.Record(ctx, int64(memStats.Alloc/1_000_000))
	g.liveObjects.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
	g.goroutines.Record(ctx, int64(runtime.NumGoroutine()))

	// a one second window keeps the sampler responsive during short runs
	usage, err := cpu.Percent(time.Second, false)
	if err != nil {
		slog.Warn("failed to read cpu usage", "err", err)
		return
	}
	g.cpuUsage.Record(ctx, usage[0])
}

// InstrumentPerfStats samples runtime and cpu gauges every 10 seconds until
// ctx is cancelled. The gauges go nowhere unless telemetry was set up.
func InstrumentPerfStats(ctx context.Context) {
	gauges := newPerfGauges()
	go func() {
		ticker := time.NewTicker(time.Second * 10)
		defer ticker.Stop()
		for {
			gauges.sample(ctx)
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
}
