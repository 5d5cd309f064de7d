package app

import (
	"go.uber.org/zap"

	"github.com/strandtech/storefront/internal/ordering"
	"github.com/strandtech/storefront/pkg/metrics"
)

// initEventHandlers subscribes the metrics counters to the order lifecycle
// topics published by the ordering service.
func (a *Application) initEventHandlers() {
	err := a.bus.Subscribe(ordering.TopicOrderCreated, func(orderID int64) {
		metrics.CounterInc(metrics.MetricOrdersCreated, 1)
		zap.L().Debug("order created", zap.Int64("order_id", orderID))
	})
	if err != nil {
		zap.S().Errorf("event subscribe error %s", err.Error())
	}

	err = a.bus.Subscribe(ordering.TopicOrderProcessed, func(orderID int64) {
		metrics.CounterInc(metrics.MetricOrdersProcessed, 1)
		zap.L().Info("order processed", zap.Int64("order_id", orderID))
	})
	if err != nil {
		zap.S().Errorf("event subscribe error %s", err.Error())
	}
}
