package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository/memory"

	"firebase.google.com/go/v4/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSink(t *testing.T) {
	store := memory.NewStore()
	sink := NewStoreSink(store.NotificationRepository)
	ctx := context.Background()

	err := sink.Deliver(ctx, domain.NotificationEvent{
		Kind: domain.NotificationRentalRequest, RecipientID: 4, FromUserID: 9,
		Title: "New Rental Request", Message: "m", Attributes: map[string]string{"rental_request_id": "1"},
	})
	require.NoError(t, err)

	notes, total, err := store.NotificationRepository.List(ctx, 4, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int32(1), total)
	assert.Equal(t, domain.PriorityMedium, notes[0].Priority)
	require.NotNil(t, notes[0].FromUserID)
	assert.Equal(t, int32(9), *notes[0].FromUserID)
	assert.Equal(t, "1", notes[0].Attributes["rental_request_id"])
	assert.False(t, notes[0].IsRead)
}

type fakeMailer struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (m *fakeMailer) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	m.sent = append(m.sent, email)
	if m.err != nil {
		return nil, m.err
	}
	return &rest.Response{StatusCode: m.status}, nil
}

func TestEmailSink(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	user := &domain.User{Email: "owner@example.com", Name: "Owner"}
	require.NoError(t, store.UserRepository.Create(ctx, user))

	t.Run("High priority is mailed", func(t *testing.T) {
		mailer := &fakeMailer{status: 202}
		sink := &EmailSink{client: mailer, users: store.UserRepository, fromEmail: "noreply@example.com", fromName: "Rent Market"}

		err := sink.Deliver(ctx, domain.NotificationEvent{RecipientID: user.ID, Priority: domain.PriorityHigh, Title: "Approved", Message: "<b>ok</b>"})
		require.NoError(t, err)
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "Approved", mailer.sent[0].Subject)
		assert.Equal(t, "owner@example.com", mailer.sent[0].Personalizations[0].To[0].Address)
	})

	t.Run("Medium priority is skipped", func(t *testing.T) {
		mailer := &fakeMailer{status: 202}
		sink := &EmailSink{client: mailer, users: store.UserRepository}
		require.NoError(t, sink.Deliver(ctx, domain.NotificationEvent{RecipientID: user.ID, Priority: domain.PriorityMedium}))
		assert.Empty(t, mailer.sent)
	})

	t.Run("Provider rejection", func(t *testing.T) {
		sink := &EmailSink{client: &fakeMailer{status: 401}, users: store.UserRepository}
		err := sink.Deliver(ctx, domain.NotificationEvent{RecipientID: user.ID, Priority: domain.PriorityUrgent})
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("Unknown recipient", func(t *testing.T) {
		sink := &EmailSink{client: &fakeMailer{status: 202}, users: store.UserRepository}
		err := sink.Deliver(ctx, domain.NotificationEvent{RecipientID: 404, Priority: domain.PriorityHigh})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

type fakePublisher struct {
	key string
	msg amqp.Publishing
	err error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	p.key, p.msg = key, msg
	return p.err
}

func TestBrokerSink(t *testing.T) {
	pub := &fakePublisher{}
	sink := &BrokerSink{queue: "marketplace.notifications", ch: pub}

	ev := domain.NotificationEvent{ID: "ev-1", Kind: domain.NotificationOrderUpdate, RecipientID: 3}
	require.NoError(t, sink.Deliver(context.Background(), ev))
	assert.Equal(t, "marketplace.notifications", pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "application/json", pub.msg.ContentType)

	var decoded domain.NotificationEvent
	require.NoError(t, json.Unmarshal(pub.msg.Body, &decoded))
	assert.Equal(t, ev.ID, decoded.ID)

	pub.err = errors.New("channel closed")
	assert.Error(t, sink.Deliver(context.Background(), ev))
	assert.Nil(t, sink.ch)
}

type fakeMessenger struct {
	msg *messaging.Message
}

func (m *fakeMessenger) Send(_ context.Context, msg *messaging.Message) (string, error) {
	m.msg = msg
	return "projects/p/messages/1", nil
}

func TestPushSink(t *testing.T) {
	fm := &fakeMessenger{}
	sink := &PushSink{client: fm}

	err := sink.Deliver(context.Background(), domain.NotificationEvent{
		ID: "ev-2", Kind: domain.NotificationRentalApproved, RecipientID: 12, Priority: domain.PriorityHigh,
		Title: "Rental Request Approved", Attributes: map[string]string{"rental_request_id": "5"},
	})
	require.NoError(t, err)
	assert.Equal(t, "user-12", fm.msg.Topic)
	assert.Equal(t, "5", fm.msg.Data["rental_request_id"])
	assert.Equal(t, "rental_approved", fm.msg.Data["kind"])
	require.NotNil(t, fm.msg.Android)
	assert.Equal(t, "high", fm.msg.Android.Priority)
}
