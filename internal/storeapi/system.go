package storeapi

import (
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/strandtech/storefront/internal/catalog"
	"github.com/strandtech/storefront/pkg/metrics"
)

type systemStatusView struct {
	CpuPercent      float64             `json:"cpu_percent"`
	MemUsedMb       uint64              `json:"mem_used_mb"`
	ProcCpuPercent  float64             `json:"proc_cpu_percent"`
	ProcMemMb       uint64              `json:"proc_mem_mb"`
	ApiRequests     int64               `json:"api_requests_24h"`
	PageViews       int64               `json:"page_views_24h"`
	OrdersCreated   int64               `json:"orders_created_24h"`
	OrdersProcessed int64               `json:"orders_processed_24h"`
	ProductCount    int64               `json:"product_count"`
	PriceStats      *catalog.PriceStats `json:"price_stats"`
}

// systemStatus reports host and process usage plus 24h business counters.
func systemStatus(c echo.Context) error {
	view := systemStatusView{}

	if cpuuse, err := cpu.Percent(0, false); err == nil && len(cpuuse) > 0 {
		view.CpuPercent = cpuuse[0]
	}
	if meminfo, err := mem.VirtualMemory(); err == nil {
		view.MemUsedMb = meminfo.Used / 1024 / 1024
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if cpuuse, err := p.CPUPercent(); err == nil {
			view.ProcCpuPercent = cpuuse
		}
		if meminfo, err := p.MemoryInfo(); err == nil {
			view.ProcMemMb = meminfo.RSS / 1024 / 1024
		}
	}

	end := time.Now()
	start := end.Add(-24 * time.Hour)
	view.ApiRequests, _ = metrics.SumRange(metrics.MetricApiRequests, start, end)
	view.PageViews, _ = metrics.SumRange(metrics.MetricPageViews, start, end)
	view.OrdersCreated, _ = metrics.SumRange(metrics.MetricOrdersCreated, start, end)
	view.OrdersProcessed, _ = metrics.SumRange(metrics.MetricOrdersProcessed, start, end)

	ctx := c.Request().Context()
	if count, err := catalogService.Count(ctx); err == nil {
		view.ProductCount = count
	}
	if stats, err := catalogService.PriceStats(ctx); err == nil {
		view.PriceStats = stats
	}

	return c.JSON(http.StatusOK, view)
}
