package run

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tlstats/tlstats/monitor"
	"github.com/tlstats/tlstats/stats"
)

// workload runs synthetic stat producers: each worker goroutine owns a
// guarded container and keeps recording into a counter, a timeseries, and a
// histogram until the context is cancelled, while the monitor aggregates
// from its own goroutine.
type workload struct {
	config WorkloadConfig
	mon    *monitor.Monitor
	logger *zap.Logger
}

func (w *workload) run(ctx context.Context) error {
	if w.config.Workers == 0 {
		<-ctx.Done()
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.config.Workers; i++ {
		id := i
		g.Go(func() error { return w.worker(ctx, id) })
	}
	return g.Wait()
}

func (w *workload) worker(ctx context.Context, id int) error {
	c := stats.NewContainer(w.mon.Registry(), stats.Guarded)
	name := fmt.Sprintf("worker.%d", id)
	w.mon.Register(name, c)
	defer func() {
		w.mon.Deregister(name)
		c.Close()
	}()

	requests := stats.NewCounter(c, "workload.requests")
	latency := stats.NewTimeseries(c, "workload.latency_us",
		stats.Sum, stats.Count, stats.Avg, stats.Rate)
	payload, err := stats.NewHistogram(c, "workload.payload_bytes", 64, 0, 8192,
		stats.Sum, stats.Count, stats.Avg,
		stats.Percentile(50), stats.Percentile(95), stats.Percentile(99))
	if err != nil {
		return err
	}
	defer requests.Close()
	defer latency.Close()
	defer payload.Close()

	w.logger.Debug("Workload worker started", zap.Int("worker", id))

	rnd := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))
	ticker := time.NewTicker(time.Duration(w.config.UpdateInterval))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			requests.Increment(1)
			latency.AddValue(int64(rnd.Intn(2000)))
			payload.AddValue(int64(rnd.Intn(10000)))
		}
	}
}
