//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	cachemem "github.com/Gunvolt24/voltcart/internal/cache/memory"
	"github.com/Gunvolt24/voltcart/internal/domain"
	ikafka "github.com/Gunvolt24/voltcart/internal/kafka"
	"github.com/Gunvolt24/voltcart/internal/ports"
	pgrepo "github.com/Gunvolt24/voltcart/internal/repo/postgres"
	"github.com/Gunvolt24/voltcart/internal/testutil"
	"github.com/Gunvolt24/voltcart/internal/usecase"
	"github.com/Gunvolt24/voltcart/pkg/logger"
	"github.com/Gunvolt24/voltcart/pkg/validate"
)

var reUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func safe(t *testing.T) string { return reUnsafe.ReplaceAllString(t.Name(), "-") }

type stack struct {
	ctx     context.Context
	kf      *testutil.KafkaEnv
	carts   *pgrepo.CartRepository
	orders  *pgrepo.OrderRepository
	service *usecase.OrderService
	log     ports.Logger
}

// newStack поднимает Postgres (с миграциями) и Redpanda; сервис заказов публикует
// order.placed в eventsTopic, если он задан.
func newStack(t *testing.T, eventsTopic string) *stack {
	t.Helper()

	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancelStart)

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })
	require.NoError(t, pgrepo.Migrate(ctxStart, pg.Pool))

	kf, stopKF, err := testutil.StartKafkaTC(ctxStart, "voltcart-itc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopKF(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	t.Cleanup(cancel)

	logg, closer, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })

	var opts []usecase.OrderOption
	if eventsTopic != "" {
		require.NoError(t, testutil.EnsureTopic(ctx, kf.Brokers[0], eventsTopic))
		producer := ikafka.NewProducer(&ikafka.ProducerConfig{Brokers: kf.Brokers, Topic: eventsTopic}, logg)
		t.Cleanup(func() { _ = producer.Close() })
		opts = append(opts, usecase.WithPublisher(producer))
	}

	orders := pgrepo.NewOrderRepository(pg.Pool)
	return &stack{
		ctx:     ctx,
		kf:      kf,
		carts:   pgrepo.NewCartRepository(pg.Pool),
		orders:  orders,
		service: usecase.NewOrderService(orders, cachemem.NewOrderCache(100, time.Minute), logg, validate.NewCheckoutValidator(), opts...),
		log:     logg,
	}
}

// placeOrder оформляет заказ из свежей корзины на n позиций.
func (s *stack) placeOrder(t *testing.T, n int) *domain.Order {
	t.Helper()
	cart := testutil.MakeCart(n)
	require.NoError(t, s.carts.Save(s.ctx, cart))
	order, err := s.service.PlaceOrder(s.ctx, cart.UserID, testutil.Shipping(), testutil.Payment())
	require.NoError(t, err)
	return order
}

// startConsumer запускает читателя команд на новом топике и возвращает топик.
func (s *stack) startConsumer(t *testing.T, applier interface {
	ApplyStatusMessage(context.Context, []byte) error
}, startOffset string) (topic, group string) {
	t.Helper()
	topic, group = testutil.UniqueTopicAndGroup(s.kf.BaseTopic + "-" + safe(t))
	require.NoError(t, testutil.EnsureTopic(s.ctx, s.kf.Brokers[0], topic))
	s.runConsumer(t, applier, topic, group, startOffset)
	return topic, group
}

func (s *stack) runConsumer(t *testing.T, applier interface {
	ApplyStatusMessage(context.Context, []byte) error
}, topic, group, startOffset string) context.CancelFunc {
	t.Helper()
	consumer := ikafka.NewConsumer(&ikafka.ConsumerConfig{
		Brokers:        s.kf.Brokers,
		Topic:          topic,
		GroupID:        group,
		StartOffset:    startOffset,
		ProcessTimeout: 3 * time.Second,
		RetryInitial:   100 * time.Millisecond,
		RetryMax:       time.Second,
	}, applier, s.log)

	runCtx, cancel := context.WithCancel(s.ctx)
	t.Cleanup(cancel)
	go func() { _ = consumer.Run(runCtx) }()
	// даём консьюмеру получить assignment
	time.Sleep(1500 * time.Millisecond)
	return cancel
}

func (s *stack) waitStatus(t *testing.T, orderID string, want domain.OrderStatus) {
	t.Helper()
	deadline := time.Now().Add(25 * time.Second)
	for {
		got, err := s.orders.GetByID(s.ctx, orderID)
		require.NoError(t, err)
		require.NotNil(t, got)
		if got.Status == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("order %s: status %s, want %s", orderID, got.Status, want)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func statusCommand(orderID string, status domain.OrderStatus) []byte {
	raw, _ := json.Marshal(map[string]string{"order_id": orderID, "status": string(status)})
	return raw
}

func writeMsg(t *testing.T, ctx context.Context, brokers []string, topic string, payloads ...[]byte) {
	t.Helper()
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.LeastBytes{},
	}
	defer w.Close()
	msgs := make([]kafka.Message, 0, len(payloads))
	for _, p := range payloads {
		msgs = append(msgs, kafka.Message{Value: p})
	}
	require.NoError(t, w.WriteMessages(ctx, msgs...))
}

func TestKafka_OrderPlacedEventPublished_TC(t *testing.T) {
	eventsTopic, group := testutil.UniqueTopicAndGroup("order-events-" + safe(t))
	s := newStack(t, eventsTopic)

	order := s.placeOrder(t, 2)

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     s.kf.Brokers,
		Topic:       eventsTopic,
		GroupID:     group,
		StartOffset: kafka.FirstOffset,
	})
	defer r.Close()

	readCtx, cancel := context.WithTimeout(s.ctx, 20*time.Second)
	defer cancel()
	msg, err := r.ReadMessage(readCtx)
	require.NoError(t, err)

	var ev ikafka.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	require.Equal(t, ikafka.EventOrderPlaced, ev.Type)
	require.Equal(t, order.ID, ev.OrderID)
	require.Equal(t, order.UserID, string(msg.Key))
	require.Equal(t, order.Total, ev.Total)
	require.Equal(t, domain.StatusPending, ev.Status)
}

func TestKafka_StatusCommandApplied_TC(t *testing.T) {
	s := newStack(t, "")
	order := s.placeOrder(t, 1)

	topic, _ := s.startConsumer(t, s.service, "first")
	writeMsg(t, s.ctx, s.kf.Brokers, topic, statusCommand(order.ID, domain.StatusProcessing))

	s.waitStatus(t, order.ID, domain.StatusProcessing)
}

// Мусор, неизвестный заказ и запрещённый переход пропускаются; следующая команда применяется.
func TestKafka_RejectedCommandsSkipped_TC(t *testing.T) {
	s := newStack(t, "")
	order := s.placeOrder(t, 2)

	topic, _ := s.startConsumer(t, s.service, "first")
	writeMsg(t, s.ctx, s.kf.Brokers, topic,
		[]byte("not-a-json"),
		statusCommand("no-such-order", domain.StatusShipped),
		statusCommand(order.ID, domain.StatusDelivered), // Pending -> Delivered запрещён
		statusCommand(order.ID, domain.StatusCancelled),
	)

	s.waitStatus(t, order.ID, domain.StatusCancelled)
}

// StartOffset="last": команды, опубликованные до старта, игнорируются.
func TestKafka_StartOffset_Last_IgnoresOld_TC(t *testing.T) {
	s := newStack(t, "")
	order := s.placeOrder(t, 1)

	topic, group := testutil.UniqueTopicAndGroup(s.kf.BaseTopic + "-last-" + safe(t))
	require.NoError(t, testutil.EnsureTopic(s.ctx, s.kf.Brokers[0], topic))
	writeMsg(t, s.ctx, s.kf.Brokers, topic, statusCommand(order.ID, domain.StatusCancelled))

	s.runConsumer(t, s.service, topic, group, "last")

	// повторяем до применения: одна из копий окажется после стартовой позиции
	deadline := time.Now().Add(20 * time.Second)
	for {
		writeMsg(t, s.ctx, s.kf.Brokers, topic, statusCommand(order.ID, domain.StatusProcessing))
		got, err := s.orders.GetByID(s.ctx, order.ID)
		require.NoError(t, err)
		require.NotEqual(t, domain.StatusCancelled, got.Status, "old command must not be applied")
		if got.Status == domain.StatusProcessing {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("order %s not updated in time", order.ID)
		}
		time.Sleep(300 * time.Millisecond)
	}
}

// At-least-once: после временной ошибки без коммита команда передоставляется той же группе.
func TestKafka_Redelivery_AfterRestart_NoCommit_TC(t *testing.T) {
	s := newStack(t, "")
	order := s.placeOrder(t, 1)

	topic, group := testutil.UniqueTopicAndGroup(s.kf.BaseTopic + "-redelivery-" + safe(t))
	require.NoError(t, testutil.EnsureTopic(s.ctx, s.kf.Brokers[0], topic))
	writeMsg(t, s.ctx, s.kf.Brokers, topic, statusCommand(order.ID, domain.StatusProcessing))

	stopFailing := s.runConsumer(t, alwaysTempFail{}, topic, group, "first")
	time.Sleep(time.Second)
	stopFailing()

	s.runConsumer(t, s.service, topic, group, "first")
	s.waitStatus(t, order.ID, domain.StatusProcessing)
}

// Повтор одной и той же команды идемпотентен.
func TestKafka_DuplicateCommandIdempotent_TC(t *testing.T) {
	s := newStack(t, "")
	order := s.placeOrder(t, 3)

	topic, _ := s.startConsumer(t, s.service, "first")
	cmd := statusCommand(order.ID, domain.StatusProcessing)
	writeMsg(t, s.ctx, s.kf.Brokers, topic, cmd, cmd)

	s.waitStatus(t, order.ID, domain.StatusProcessing)
	got, err := s.orders.GetByID(s.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	require.Equal(t, order.Total, got.Total)
}

type alwaysTempFail struct{}

func (alwaysTempFail) ApplyStatusMessage(context.Context, []byte) error {
	return errors.New("temporary failure")
}
