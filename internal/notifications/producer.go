package notifications

import (
	"context"
	"fmt"
	"time"

	"eventvenue/internal/bookings"
	"eventvenue/internal/cancellation"
	"eventvenue/pkg/logger"

	"github.com/IBM/sarama"
)

// Producer publishes notifications to Kafka
type Producer interface {
	Publish(ctx context.Context, notification *Notification) error
	Close() error
}

// ProducerConfig contains configuration for the Kafka notification producer
type ProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultProducerConfig returns a default producer configuration
func DefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "booking-notifications",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
}

// NewKafkaProducer creates a new Kafka notification producer
func NewKafkaProducer(config *ProducerConfig) (Producer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps a recipient's notifications ordered.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.GetDefault().Info("Kafka notification producer created", "topic", config.Topic)
	return &kafkaProducer{producer: producer, config: config}, nil
}

func (kp *kafkaProducer) Publish(ctx context.Context, notification *Notification) error {
	notification.Status = StatusQueued

	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.Topic,
		Key:       sarama.StringEncoder(notification.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   kp.createHeaders(notification),
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		notification.Status = StatusFailed
		notification.LastError = err.Error()
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	logger.GetDefault().Debug("notification published",
		"topic", kp.config.Topic,
		"partition", partition,
		"offset", offset,
		"type", notification.Type,
		"recipient_id", notification.RecipientID)

	return nil
}

func (kp *kafkaProducer) createHeaders(notification *Notification) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(notification.Type)},
		{Key: []byte("recipient_id"), Value: []byte(notification.RecipientID.String())},
		{Key: []byte("created_at"), Value: []byte(notification.CreatedAt.Format(time.RFC3339))},
	}
	if notification.BookingID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("booking_id"),
			Value: []byte(notification.BookingID.String()),
		})
	}
	if notification.EventID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("event_id"),
			Value: []byte(notification.EventID.String()),
		})
	}
	return headers
}

func (kp *kafkaProducer) Close() error {
	if kp.producer != nil {
		if err := kp.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// Publisher builds and publishes booking lifecycle notifications. It
// satisfies the Notifier interfaces of the booking and cancellation
// services.
type Publisher struct {
	producer Producer
}

func NewPublisher(producer Producer) *Publisher {
	return &Publisher{producer: producer}
}

func (p *Publisher) BookingConfirmed(ctx context.Context, booking *bookings.Booking) error {
	n := NewNotification(TypeBookingConfirmed, booking.UserID)
	bookingID := booking.ID
	n.BookingID = &bookingID
	n.EventID = booking.EventID
	n.Subject = fmt.Sprintf("Booking %s confirmed", booking.BookingRef)
	n.Data["booking_ref"] = booking.BookingRef
	n.Data["target_type"] = string(booking.TargetType)
	n.Data["total_amount"] = booking.TotalAmount
	n.Data["points_used"] = booking.PointsUsed
	n.Data["fee_points"] = booking.FeePoints
	return p.producer.Publish(ctx, n)
}

func (p *Publisher) BookingCancelled(ctx context.Context, booking *bookings.Booking, result *cancellation.CancellationResult) error {
	n := NewNotification(TypeBookingCancelled, booking.UserID)
	bookingID := booking.ID
	n.BookingID = &bookingID
	n.EventID = booking.EventID
	n.Subject = fmt.Sprintf("Booking %s cancelled", booking.BookingRef)
	n.Data["booking_ref"] = booking.BookingRef
	n.Data["refund_percentage"] = result.RefundPercentage
	n.Data["refund_amount"] = result.RefundAmount
	n.Data["points_refunded"] = result.PointsRefunded
	n.Data["cause"] = string(result.Cause)
	return p.producer.Publish(ctx, n)
}
