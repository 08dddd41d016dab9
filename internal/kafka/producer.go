package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/pkg/metrics"
	"github.com/Gunvolt24/voltcart/pkg/telemetry"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

var _ ports.OrderEventPublisher = (*Producer)(nil)

// EventOrderPlaced — тип события об оформлении заказа.
const EventOrderPlaced = "order.placed"

// writer — минимальный контракт над kafka.Writer.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerConfig — параметры публикации событий о заказах.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// OrderPlacedEvent — тело события order.placed.
type OrderPlacedEvent struct {
	Type       string             `json:"type"`
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	Status     domain.OrderStatus `json:"status"`
	Total      float64            `json:"total"`
	ItemsCount int                `json:"items_count"`
	PlacedAt   time.Time          `json:"placed_at"`
}

// Producer — публикует события о заказах в топик.
type Producer struct {
	writer    writer
	topic     string
	timeout   time.Duration
	log       ports.Logger
	closeOnce sync.Once
}

// NewProducer — writer с хешированием по ключу: события одного пользователя
// попадают в одну партицию.
func NewProducer(cfg *ProducerConfig, log ports.Logger) *Producer {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cleanBrokers(cfg.Brokers)...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           timeout,
	}
	return newProducer(w, cfg.Topic, timeout, log)
}

func newProducer(w writer, topic string, timeout time.Duration, log ports.Logger) *Producer {
	return &Producer{writer: w, topic: topic, timeout: timeout, log: log}
}

// PublishOrderPlaced — событие об оформленном заказе; ключ сообщения — userID.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) (err error) {
	if order == nil {
		return fmt.Errorf("publish %s: nil order", EventOrderPlaced)
	}
	ctx, span := telemetry.StartSpan(ctx, "kafka.publish "+EventOrderPlaced,
		attribute.String("messaging.destination", p.topic),
		attribute.String("order.id", order.ID),
	)
	defer func() { telemetry.End(span, err) }()

	payload, err := json.Marshal(OrderPlacedEvent{
		Type:       EventOrderPlaced,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.Total,
		ItemsCount: len(order.Items),
		PlacedAt:   order.Date.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", EventOrderPlaced, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	headers := []kafka.Header{
		{Key: "event-type", Value: []byte(EventOrderPlaced)},
		{Key: "order-id", Value: []byte(order.ID)},
	}
	// trace-контекст едет в заголовках: потребитель события продолжит трассу
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(order.UserID),
		Value:   payload,
		Headers: headers,
	})
	metrics.OrderEventsPublished.WithLabelValues(p.topic, metrics.Result(err)).Inc()
	if err != nil {
		p.log.Warnf(ctx, "publish %s failed order=%s topic=%s: %v", EventOrderPlaced, order.ID, p.topic, err)
		return fmt.Errorf("publish %s: %w", EventOrderPlaced, err)
	}
	return nil
}

// Close — закрывает writer, дожидаясь отправки буфера.
func (p *Producer) Close() (retErr error) {
	p.closeOnce.Do(func() {
		retErr = p.writer.Close()
	})
	return retErr
}
