package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventvenue/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer drains the notification topic and dispatches to the email sender
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

// ConsumerConfig contains configuration for the consumer group
type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topics           []string
	SessionTimeoutMs int
	HeartbeatMs      int
	OffsetOldest     bool
	MaxRetries       int
	RetryBackoff     time.Duration
}

// DefaultConsumerConfig returns a default consumer configuration
func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:          []string{"localhost:9092"},
		GroupID:          "eventvenue-notification-workers",
		Topics:           []string{"booking-notifications"},
		SessionTimeoutMs: 30000,
		HeartbeatMs:      3000,
		OffsetOldest:     false,
		MaxRetries:       3,
		RetryBackoff:     time.Second,
	}
}

type kafkaConsumer struct {
	group  sarama.ConsumerGroup
	config *ConsumerConfig
	sender EmailSender

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewKafkaConsumer creates a new Kafka notification consumer
func NewKafkaConsumer(config *ConsumerConfig, sender EmailSender) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{group: group, config: config, sender: sender}, nil
}

func (kc *kafkaConsumer) Start(ctx context.Context) error {
	ctx, kc.cancel = context.WithCancel(ctx)
	log := logger.GetDefault()

	handler := &notificationHandler{
		sender:       kc.sender,
		maxRetries:   kc.config.MaxRetries,
		retryBackoff: kc.config.RetryBackoff,
	}

	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		for {
			if err := kc.group.Consume(ctx, kc.config.Topics, handler); err != nil {
				log.Error("consumer group error", "error", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		for {
			select {
			case err, ok := <-kc.group.Errors():
				if !ok {
					return
				}
				log.Error("consumer error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("notification consumer started",
		"group", kc.config.GroupID, "topics", kc.config.Topics)
	return nil
}

func (kc *kafkaConsumer) Stop() error {
	if kc.cancel != nil {
		kc.cancel()
	}
	kc.wg.Wait()
	return kc.group.Close()
}

// notificationHandler implements sarama.ConsumerGroupHandler
type notificationHandler struct {
	sender       EmailSender
	maxRetries   int
	retryBackoff time.Duration
}

func (h *notificationHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *notificationHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *notificationHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log := logger.GetDefault()

	for message := range claim.Messages() {
		notification, err := FromJSON(message.Value)
		if err != nil {
			log.Error("dropping undecodable notification",
				"topic", message.Topic, "offset", message.Offset, "error", err)
			session.MarkMessage(message, "")
			continue
		}

		if err := h.deliver(session.Context(), notification); err != nil {
			// Delivery is best effort: mark and move on rather than
			// blocking the partition.
			log.Error("notification delivery failed",
				"notification_id", notification.ID,
				"type", notification.Type,
				"error", err)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *notificationHandler) deliver(ctx context.Context, notification *Notification) error {
	if notification.RecipientEmail == "" {
		logger.GetDefault().Debug("notification has no recipient email, skipping",
			"notification_id", notification.ID, "recipient_id", notification.RecipientID)
		return nil
	}

	var err error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(h.retryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = h.sender.Send(ctx, notification); err == nil {
			notification.Status = StatusSent
			return nil
		}
	}
	notification.Status = StatusFailed
	notification.LastError = err.Error()
	return err
}
