package kafka

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/Gunvolt24/voltcart/pkg/metrics"
	"github.com/Gunvolt24/voltcart/pkg/validate"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// handleMessage обрабатывает одно сообщение и определяет нужно ли коммитить оффсет.
func (c *Consumer) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier(msg.Headers))
	ctxTimeout, cancel := context.WithTimeout(ctx, c.processTimeout)
	err := c.service.ApplyStatusMessage(ctxTimeout, msg.Value)
	cancel()

	switch {
	case err == nil:
		// Успешная обработка: фиксируем метрику и коммитим оффсет
		metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
		return true
	case errors.Is(err, validate.ErrInvalidStatusUpdate):
		// Команду применить нельзя никогда: коммитим, чтобы не крутить её по кругу
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "status command rejected offset=%d key=%s: %v (skipped)", msg.Offset, msg.Key, err)
		return true
	default:
		// Временная ошибка(БД/сеть/таймаут): НЕ коммитим - будем обрабатывать повторно
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "process failed offset=%d: %v (will retry without commit)", msg.Offset, err)
		return false
	}
}

// headerCarrier — заголовки сообщения как TextMapCarrier (только чтение).
type headerCarrier []kafka.Header

func (h headerCarrier) Get(key string) string {
	for _, hd := range h {
		if hd.Key == key {
			return string(hd.Value)
		}
	}
	return ""
}

func (h headerCarrier) Set(string, string) {}

func (h headerCarrier) Keys() []string {
	keys := make([]string, 0, len(h))
	for _, hd := range h {
		keys = append(keys, hd.Key)
	}
	return keys
}

// commitSafely пытается закоммитить оффсет и залогировать ошибку.
func (c *Consumer) commitSafely(ctx context.Context, msg *kafka.Message) {
	if commitErr := c.reader.CommitMessages(ctx, *msg); commitErr != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, commitErr)
	}
}

// sleepCtx ждёт d или останавливается по контексту.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// backoff — экспоненциальная задержка повторов, ограниченная max.
type backoff struct {
	initial time.Duration
	max     time.Duration
	rnd     *rand.Rand
}

func newBackoff(initial, max time.Duration, seed int64) backoff {
	return backoff{initial: initial, max: max, rnd: rand.New(rand.NewSource(seed))}
}

// next — удвоение с потолком max.
func (b backoff) next(current time.Duration) time.Duration {
	if current *= 2; current > b.max {
		return b.max
	}
	return current
}

// jitter — equal-jitter: половина задержки фиксирована, вторая случайна в [0, d/2].
// Рассинхронизирует повторы нескольких консьюмеров группы.
func (b backoff) jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(b.rnd.Int63n(int64(d-half)+1))
}
