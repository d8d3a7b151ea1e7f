package domain

import "time"

type NotificationKind string

const (
	NotificationRentalRequest      NotificationKind = "rental_request"
	NotificationRentalApproved     NotificationKind = "rental_approved"
	NotificationRentalRejected     NotificationKind = "rental_rejected"
	NotificationRentalCompleted    NotificationKind = "rental_completed"
	NotificationRentalReturned     NotificationKind = "rental_returned"
	NotificationRentalCancelled    NotificationKind = "rental_cancelled"
	NotificationRentalReminder     NotificationKind = "rental_reminder"
	NotificationOrderUpdate        NotificationKind = "order_update"
	NotificationSystemAnnouncement NotificationKind = "system_announcement"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

type Notification struct {
	ID         int32                `json:"id"`
	UserID     int32                `json:"user_id"`
	FromUserID *int32               `json:"from_user_id,omitempty"`
	Kind       NotificationKind     `json:"kind"`
	Priority   NotificationPriority `json:"priority"`
	Title      string               `json:"title"`
	Message    string               `json:"message"`
	IsRead     bool                 `json:"is_read"`
	Attributes map[string]string    `json:"attributes"`
	ReadOn     *time.Time           `json:"read_on,omitempty"`
	DeletedOn  *time.Time           `json:"-"`
	CreatedOn  time.Time            `json:"created_on"`
}

// NotificationEvent is what business code hands to the notification sink.
// It is delivered after the originating write has committed.
type NotificationEvent struct {
	ID          string               `json:"id"`
	Kind        NotificationKind     `json:"kind"`
	RecipientID int32                `json:"recipient_id"`
	FromUserID  int32                `json:"from_user_id,omitempty"`
	Priority    NotificationPriority `json:"priority"`
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	Attributes  map[string]string    `json:"attributes,omitempty"`
	OccurredAt  time.Time            `json:"occurred_at"`
}
