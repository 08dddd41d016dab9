package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/pkg/metrics"
)

var _ ports.MessageConsumer = (*Consumer)(nil)

const (
	defaultProcessTimeout = 5 * time.Second
	defaultRetryInitial   = time.Second
	defaultRetryMax       = 30 * time.Second
)

// reader — часть *kafka.Reader, нужная потребителю.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// statusApplier разбирает команду смены статуса и применяет её к заказу.
type statusApplier interface {
	ApplyStatusMessage(ctx context.Context, raw []byte) error
}

// Consumer читает команды смены статуса заказа. Оффсет коммитится вручную
// только после того, как команда применена или признана неприменимой.
type Consumer struct {
	reader         reader
	service        statusApplier
	log            ports.Logger
	processTimeout time.Duration
	retry          backoff
	closeOnce      sync.Once
}

func NewConsumer(cfg *ConsumerConfig, service statusApplier, log ports.Logger) *Consumer {
	orDefault := func(v, def time.Duration) time.Duration {
		if v <= 0 {
			return def
		}
		return v
	}
	return &Consumer{
		reader:         kafka.NewReader(cfg.ReaderConfig()),
		service:        service,
		log:            log,
		processTimeout: orDefault(cfg.ProcessTimeout, defaultProcessTimeout),
		retry: newBackoff(
			orDefault(cfg.RetryInitial, defaultRetryInitial),
			orDefault(cfg.RetryMax, defaultRetryMax),
			time.Now().UnixNano(),
		),
	}
}

// Run читает топик до отмены ctx. Сбой чтения повторяется с backoff.
// Временный сбой применения повторяется на том же сообщении, пока оно
// не будет применено: следующие команды того же заказа не обгоняют его.
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "status consumer started topic=%s group=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	delay := c.retry.initial
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait := c.retry.jitter(delay)
			c.log.Warnf(ctx, "fetch status command: %v (retry in %s)", err, wait)
			if !sleepCtx(ctx, wait) {
				return ctx.Err()
			}
			delay = c.retry.next(delay)
			continue
		}
		delay = c.retry.initial
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		if !c.process(ctx, rc.Topic, &msg) {
			// оффсет не закоммичен: после рестарта сообщение придёт снова
			return ctx.Err()
		}
	}
}

// process доводит сообщение до коммита. false — ctx отменён раньше.
func (c *Consumer) process(ctx context.Context, topic string, msg *kafka.Message) bool {
	delay := c.retry.initial
	for attempt := 1; ; attempt++ {
		if c.handleMessage(ctx, topic, msg) {
			c.commitSafely(ctx, msg)
			return true
		}
		wait := c.retry.jitter(delay)
		c.log.Warnf(ctx, "status command offset=%d attempt=%d failed, retry in %s", msg.Offset, attempt, wait)
		if !sleepCtx(ctx, wait) {
			return false
		}
		delay = c.retry.next(delay)
	}
}

// Close закрывает reader; повторные вызовы безопасны.
func (c *Consumer) Close() (err error) {
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
