package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerConfig — параметры потребителя команд смены статуса.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string // "first" — с начала топика, иначе только новые

	ProcessTimeout time.Duration
	RetryInitial   time.Duration
	RetryMax       time.Duration
}

// команды статуса мелкие и редкие: не ждём накопления батча
const statusMaxWait = 500 * time.Millisecond

// ReaderConfig — kafka.ReaderConfig без автокоммита (CommitInterval 0).
// Пустые адреса брокеров отбрасываются.
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	start := kafka.LastOffset
	if strings.EqualFold(strings.TrimSpace(c.StartOffset), "first") {
		start = kafka.FirstOffset
	}
	return kafka.ReaderConfig{
		Brokers:     cleanBrokers(c.Brokers),
		GroupID:     c.GroupID,
		Topic:       c.Topic,
		StartOffset: start,
		MaxWait:     statusMaxWait,
	}
}

func cleanBrokers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, b := range in {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
