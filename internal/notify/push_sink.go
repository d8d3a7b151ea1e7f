package notify

import (
	"context"
	"fmt"
	"strconv"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushSink sends events to the recipient's FCM topic, user-<id>.
type PushSink struct {
	client messenger
}

func NewPushSink(ctx context.Context, credentialsFile string) (*PushSink, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &PushSink{client: client}, nil
}

func (s *PushSink) Name() string { return "push" }

func userTopic(userID int32) string {
	return "user-" + strconv.Itoa(int(userID))
}

func (s *PushSink) Deliver(ctx context.Context, event domain.NotificationEvent) error {
	data := map[string]string{
		"event_id": event.ID,
		"kind":     string(event.Kind),
		"priority": string(event.Priority),
	}
	for k, v := range event.Attributes {
		data[k] = v
	}
	msg := &messaging.Message{
		Topic: userTopic(event.RecipientID),
		Notification: &messaging.Notification{
			Title: event.Title,
			Body:  event.Message,
		},
		Data: data,
	}
	if event.Priority == domain.PriorityHigh || event.Priority == domain.PriorityUrgent {
		msg.Android = &messaging.AndroidConfig{Priority: "high"}
	}

	logger.ExternalServiceCall("FCM", "Send", "topic", msg.Topic, "kind", event.Kind)
	id, err := s.client.Send(ctx, msg)
	logger.ExternalServiceResult("FCM", "Send", err, "messageID", id)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
