package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gunvolt24/voltcart/config"
	"github.com/Gunvolt24/voltcart/internal/auth"
	cachemem "github.com/Gunvolt24/voltcart/internal/cache/memory"
	"github.com/Gunvolt24/voltcart/internal/kafka"
	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/internal/repo/postgres"
	rest "github.com/Gunvolt24/voltcart/internal/transport/http"
	"github.com/Gunvolt24/voltcart/internal/usecase"
	"github.com/Gunvolt24/voltcart/pkg/logger"
	"github.com/Gunvolt24/voltcart/pkg/metrics"
	"github.com/Gunvolt24/voltcart/pkg/telemetry"
	"github.com/Gunvolt24/voltcart/pkg/validate"
)

// App — собранный сервер корзины: HTTP API, опциональные /metrics и
// потребитель команд смены статуса.
type App struct {
	Logger          ports.Logger
	HTTPServer      *http.Server
	MetricsServer   *http.Server          // nil — метрики отдаёт основной роутер
	KafkaConsumer   ports.MessageConsumer // nil — Kafka не настроена
	gracefulTimeout time.Duration
}

// Cleanup освобождает ресурсы, захваченные Bootstrap.
type Cleanup func()

// closers — стек освобождения ресурсов, выполняется в обратном порядке.
type closers struct {
	ctx context.Context
	log ports.Logger
	fns []func() error
	tag []string
}

func (c *closers) push(tag string, fn func() error) {
	c.tag = append(c.tag, tag)
	c.fns = append(c.fns, fn)
}

func (c *closers) run() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil && c.log != nil {
			c.log.Warnf(c.ctx, "close %s: %v", c.tag[i], err)
		}
	}
	c.fns, c.tag = nil, nil
}

// Bootstrap собирает сервер: Postgres (+миграции), кэш заказов, сервисы,
// HTTP и, если заданы брокеры, Kafka-продюсер order.placed и потребитель статусов.
// При ошибке всё уже открытое закрывается.
func Bootstrap(ctx context.Context, cfg *config.Config) (_ *App, _ Cleanup, err error) {
	logg, syncLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}
	cl := &closers{ctx: ctx, log: logg}
	cl.push("logger", syncLogger)
	defer func() {
		if err != nil {
			cl.run()
		}
	}()

	metrics.MustRegister()

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TTL)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, nil, err
	}
	cl.push("postgres", func() error { pool.Close(); return nil })
	if cfg.Postgres.AutoMigrate {
		if err = postgres.Migrate(ctx, pool); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logg.Infof(ctx, "postgres schema is up to date")
	}

	setupTracing(ctx, cfg.Tracing, logg, cl)

	var orderOpts []usecase.OrderOption
	withKafka := kafkaEnabled(cfg.Kafka.Brokers)
	if withKafka && cfg.Kafka.EventsTopic != "" {
		producer := kafka.NewProducer(&kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.EventsTopic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}, logg)
		cl.push("kafka producer", producer.Close)
		orderOpts = append(orderOpts, usecase.WithPublisher(producer))
	}

	checkout := validate.NewCheckoutValidator()
	carts := usecase.NewCartService(postgres.NewCartRepository(pool), checkout, logg)
	orders := usecase.NewOrderService(
		postgres.NewOrderRepository(pool),
		cachemem.NewOrderCache(cfg.Cache.Capacity, cfg.Cache.TTL),
		logg, checkout, orderOpts...,
	)
	if cfg.Cache.WarmUpN > 0 {
		if wErr := orders.WarmUpCache(ctx, cfg.Cache.WarmUpN); wErr != nil {
			logg.Warnf(ctx, "order cache warm-up: %v", wErr)
		}
	}

	applyGinMode(ctx, cfg.HTTP.GinMode, logg)
	otelName := ""
	if cfg.Tracing.Enabled {
		otelName = cfg.Tracing.ServiceName
	}
	router := rest.NewRouter(rest.NewHandler(carts, orders, logg, cfg.HTTP.HandlerTimeout), tokens, otelName)

	a := &App{
		Logger: logg,
		HTTPServer: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           router,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		},
		MetricsServer:   newMetricsServer(cfg),
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	if withKafka && cfg.Kafka.StatusTopic != "" {
		consumer := kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.StatusTopic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}, orders, logg)
		cl.push("kafka consumer", consumer.Close)
		a.KafkaConsumer = consumer
	} else {
		logg.Warnf(ctx, "kafka disabled: order status changes only via PATCH /admin/orders/:id/status")
	}

	return a, cl.run, nil
}

// setupTracing — OTLP-экспорт при включённой трассировке; сбой не фатален.
func setupTracing(ctx context.Context, cfg config.Tracing, log ports.Logger, cl *closers) {
	if !cfg.Enabled {
		return
	}
	shutdown, err := telemetry.SetupTracing(ctx, cfg.ServiceName, cfg.Endpoint, cfg.SampleRatio)
	if err != nil {
		log.Warnf(ctx, "tracing disabled: %v", err)
		return
	}
	log.Infof(ctx, "tracing to %s as %s (ratio %.2f)", cfg.Endpoint, cfg.ServiceName, cfg.SampleRatio)
	cl.push("tracing", func() error {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdown(sctx)
	})
}

// applyGinMode — режим Gin из конфигурации; неизвестное значение → debug.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch m := strings.ToLower(strings.TrimSpace(mode)); m {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(m)
	default:
		if m != "" && m != gin.DebugMode {
			log.Warnf(ctx, "unknown gin mode %q, using debug", mode)
		}
		gin.SetMode(gin.DebugMode)
	}
}

// kafkaEnabled — есть хотя бы один непустой брокер.
func kafkaEnabled(brokers []string) bool {
	for _, b := range brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

// newMetricsServer — отдельный листенер /metrics, если адрес задан и не совпадает с API.
func newMetricsServer(cfg *config.Config) *http.Server {
	addr := strings.TrimSpace(cfg.Metrics.Addr)
	if addr == "" || addr == cfg.HTTP.Addr {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout}
}
