package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"go.uber.org/zap"
)

// Metric names recorded by the application.
const (
	MetricApiRequests     = "api_requests"
	MetricPageViews       = "page_views"
	MetricOrdersCreated   = "orders_created"
	MetricOrdersProcessed = "orders_processed"
	MetricSystemCpuUse    = "system_cpuuse"
	MetricSystemMemUse    = "system_memuse"
	MetricProcessCpuUse   = "storefront_cpuuse"
	MetricProcessMemUse   = "storefront_memuse"
)

var (
	storage tstorage.Storage
	mu      sync.RWMutex
)

// InitMetrics opens the embedded time-series store under workdir.
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// CounterInc records one counter sample with value v at the current time.
func CounterInc(name string, v int64) {
	insert(name, float64(v))
}

// SetGauge records a gauge sample at the current time.
func SetGauge(name string, v int64) {
	insert(name, float64(v))
}

func insert(name string, v float64) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	err := s.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: v},
		},
	})
	if err != nil {
		zap.L().Debug("metrics insert failed", zap.String("metric", name), zap.Error(err))
	}
}

// QueryRange returns the raw data points for a metric between start and end.
func QueryRange(name string, start, end time.Time) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return nil, nil
	}
	points, err := s.Select(name, nil, start.Unix(), end.Unix())
	if err != nil {
		if err == tstorage.ErrNoDataPoints {
			return nil, nil
		}
		return nil, err
	}
	return points, nil
}

// SumRange sums a counter metric over the given window.
func SumRange(name string, start, end time.Time) (int64, error) {
	points, err := QueryRange(name, start, end)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, p := range points {
		total += int64(p.Value)
	}
	return total, nil
}

// Close flushes and closes the metrics store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
