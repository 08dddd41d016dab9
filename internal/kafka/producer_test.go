package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/kafka/mocks"
)

func placedOrder() *domain.Order {
	cart := domain.NewCart("u1")
	cart.Add(domain.CartItem{ProductID: "lamp", Name: "Lamp", Price: 99.99, Quantity: 2})
	cart.Add(domain.CartItem{ProductID: "cable", Name: "Cable", Price: 49.99, Quantity: 1})
	return domain.NewOrder("01JORDER", cart, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		domain.ShippingDetails{FullName: "Ivan"}, domain.PaymentDetails{Method: "card"})
}

func TestPublishOrderPlaced_WritesKeyedEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mocks.NewMockwriter(ctrl)
	p := newProducer(w, "order-events", time.Second, nopLogger{})

	w.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msgs ...kafka.Message) error {
			require.Len(t, msgs, 1)
			_, hasDeadline := ctx.Deadline()
			require.True(t, hasDeadline)

			msg := msgs[0]
			require.Equal(t, "u1", string(msg.Key))

			var ev OrderPlacedEvent
			require.NoError(t, json.Unmarshal(msg.Value, &ev))
			require.Equal(t, EventOrderPlaced, ev.Type)
			require.Equal(t, "01JORDER", ev.OrderID)
			require.Equal(t, domain.StatusPending, ev.Status)
			require.Equal(t, 249.97, ev.Total)
			require.Equal(t, 2, ev.ItemsCount)

			require.Contains(t, msg.Headers, kafka.Header{Key: "order-id", Value: []byte("01JORDER")})
			return nil
		})

	require.NoError(t, p.PublishOrderPlaced(context.Background(), placedOrder()))
}

func TestPublishOrderPlaced_WriteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mocks.NewMockwriter(ctrl)
	p := newProducer(w, "order-events", time.Second, nopLogger{})

	boom := errors.New("leader not available")
	w.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(boom)

	err := p.PublishOrderPlaced(context.Background(), placedOrder())
	require.ErrorIs(t, err, boom)
}

func TestPublishOrderPlaced_NilOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := newProducer(mocks.NewMockwriter(ctrl), "order-events", time.Second, nopLogger{})

	require.Error(t, p.PublishOrderPlaced(context.Background(), nil))
}

func TestProducerClose_Once(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mocks.NewMockwriter(ctrl)
	w.EXPECT().Close().Return(nil).Times(1)

	p := newProducer(w, "order-events", time.Second, nopLogger{})
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
}
