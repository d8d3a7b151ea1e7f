package app

import (
	"context"
	"testing"
	"time"

	"rentmarket-backend/internal/config"
	"rentmarket-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Database:      config.DatabaseConfig{Driver: "memory"},
		Notifications: config.NotificationConfig{QueueSize: 8, Workers: 1, DeliveryTimeout: 1},
	}
}

func TestOpenStore_Memory(t *testing.T) {
	repos, db, err := OpenStore(context.Background(), memoryConfig())
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.NotNil(t, repos.Users)
	assert.NotNil(t, repos.Notifications)
}

func TestNewNotifier_PersistsEvents(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	repos, _, err := OpenStore(ctx, cfg)
	require.NoError(t, err)

	d, stop, err := NewNotifier(ctx, cfg, repos)
	require.NoError(t, err)
	d.Emit(ctx, domain.NotificationEvent{
		ID: "evt-1", Kind: domain.NotificationOrderUpdate, RecipientID: 7,
		Priority: domain.PriorityHigh, Title: "New Order", Message: "ORD-1", OccurredAt: time.Now(),
	})
	stop()

	n, err := repos.Notifications.CountUnread(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(1), n)
}

func TestNewNotifier_StoreDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	off := false
	cfg.Notifications.Store = &off
	repos, _, err := OpenStore(ctx, cfg)
	require.NoError(t, err)

	d, stop, err := NewNotifier(ctx, cfg, repos)
	require.NoError(t, err)
	d.Emit(ctx, domain.NotificationEvent{ID: "evt-2", Kind: domain.NotificationSystemAnnouncement, RecipientID: 7, Title: "hi"})
	stop()

	n, err := repos.Notifications.CountUnread(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, n)
}
