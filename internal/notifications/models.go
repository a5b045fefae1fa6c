package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what happened
type NotificationType string

const (
	TypeBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	TypeBookingCancelled NotificationType = "BOOKING_CANCELLED"
	TypeEventCancelled   NotificationType = "EVENT_CANCELLED"
	TypeEventRescheduled NotificationType = "EVENT_RESCHEDULED"
)

// NotificationStatus tracks delivery progress
type NotificationStatus string

const (
	StatusQueued NotificationStatus = "QUEUED"
	StatusSent   NotificationStatus = "SENT"
	StatusFailed NotificationStatus = "FAILED"
)

// Notification is the message published to Kafka after a booking-affecting
// operation commits. Data carries type-specific fields (amounts, refund
// percentages, dates) for the email templates.
type Notification struct {
	ID          uuid.UUID          `json:"id"`
	Type        NotificationType   `json:"type"`
	RecipientID uuid.UUID          `json:"recipient_id"`
	// RecipientEmail may be empty when the identity provider has no address
	// on file; the consumer logs and skips such messages.
	RecipientEmail string     `json:"recipient_email,omitempty"`
	BookingID      *uuid.UUID `json:"booking_id,omitempty"`
	EventID        *uuid.UUID `json:"event_id,omitempty"`

	Subject string                 `json:"subject"`
	Data    map[string]interface{} `json:"data,omitempty"`

	Status    NotificationStatus `json:"status"`
	LastError string             `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func NewNotification(t NotificationType, recipientID uuid.UUID) *Notification {
	return &Notification{
		ID:          uuid.New(),
		Type:        t,
		RecipientID: recipientID,
		Data:        make(map[string]interface{}),
		Status:      StatusQueued,
		CreatedAt:   time.Now(),
	}
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func FromJSON(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// PartitionKey keeps all of a recipient's notifications on one partition
// so they are delivered in order.
func (n *Notification) PartitionKey() string {
	return n.RecipientID.String()
}
