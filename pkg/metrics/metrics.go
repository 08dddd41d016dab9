// Package metrics — Prometheus-метрики сервиса (namespace voltcart).
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "voltcart"

func counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

// Kafka: команды статуса (consumer) и события order.placed (producer).
var (
	KafkaMessagesConsumed  = counterVec("kafka", "messages_consumed_total", "Status commands fetched from Kafka.", "topic")
	KafkaMessagesProcessed = counterVec("kafka", "messages_processed_total", "Status commands applied.", "topic")
	KafkaMessagesFailed    = counterVec("kafka", "messages_failed_total", "Status commands rejected or failed temporarily.", "topic")
	OrderEventsPublished   = counterVec("kafka", "order_events_published_total", "order.placed events written.", "topic", "result")
)

// Кэш заказов.
var (
	CacheOps  = counterVec("order_cache", "operations_total", "Order cache lookups and evictions.", "op") // hit|miss|evicted|expired
	CacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "order_cache", Name: "entries", Help: "Orders currently cached.",
	})
)

// Корзина и заказы.
var (
	CartOperations     = counterVec("cart", "operations_total", "Server-side cart operations.", "op", "result")
	OrdersPlaced       = counterVec("orders", "placed_total", "Checkout attempts by outcome.", "result") // ok|empty_cart|invalid|error
	OrderStatusUpdates = counterVec("orders", "status_updates_total", "Applied status changes by target status.", "status")
	OrderPlaceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "orders", Name: "place_duration_seconds",
		Help:    "Checkout transaction latency.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})
)

var registerOnce sync.Once

// MustRegister регистрирует метрики в глобальном реестре один раз.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed, OrderEventsPublished,
			CacheOps, CacheSize,
			CartOperations, OrdersPlaced, OrderStatusUpdates, OrderPlaceDuration,
		)
	})
}

// Result — метка ok|error.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
