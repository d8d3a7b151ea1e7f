// Package app assembles the storage and notification layers shared by the
// server and cronjob binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentmarket-backend/internal/config"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/notify"
	"rentmarket-backend/internal/repository"
	"rentmarket-backend/internal/repository/memory"
	"rentmarket-backend/internal/repository/postgres"
)

// Repositories holds one implementation of every repository.
type Repositories struct {
	Users         repository.UserRepository
	Products      repository.ProductRepository
	Addresses     repository.AddressRepository
	Carts         repository.CartRepository
	Rentals       repository.RentalRequestRepository
	Orders        repository.OrderRepository
	Notifications repository.NotificationRepository
}

// OpenStore returns the repositories selected by cfg.Database.Driver. The
// returned *sql.DB is nil for the memory driver; callers close it otherwise.
func OpenStore(ctx context.Context, cfg *config.Config) (Repositories, *sql.DB, error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("Using in-memory store, data is lost on restart")
		s := memory.NewStore()
		return Repositories{
			Users:         s.UserRepository,
			Products:      s.ProductRepository,
			Addresses:     s.AddressRepository,
			Carts:         s.CartRepository,
			Rentals:       s.RentalRequestRepository,
			Orders:        s.OrderRepository,
			Notifications: s.NotificationRepository,
		}, nil, nil
	}

	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return Repositories{}, nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return Repositories{}, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established", "host", cfg.Database.Host, "database", cfg.Database.Database)

	s := postgres.NewStore(db)
	if cfg.Database.MigrateOnStart {
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return Repositories{}, nil, fmt.Errorf("migrate schema: %w", err)
		}
		logger.Info("Database schema applied")
	}
	return Repositories{
		Users:         s.UserRepository,
		Products:      s.ProductRepository,
		Addresses:     s.AddressRepository,
		Carts:         s.CartRepository,
		Rentals:       s.RentalRequestRepository,
		Orders:        s.OrderRepository,
		Notifications: s.NotificationRepository,
	}, db, nil
}

// NewNotifier starts a dispatcher over every sink enabled in cfg. The
// returned stop func drains the queue and releases sink connections.
func NewNotifier(ctx context.Context, cfg *config.Config, repos Repositories) (*notify.Dispatcher, func(), error) {
	nc := cfg.Notifications
	var sinks []notify.Sink
	var closers []func() error

	if cfg.StoreNotifications() {
		sinks = append(sinks, notify.NewStoreSink(repos.Notifications))
	}
	if nc.Email.Enabled {
		sinks = append(sinks, notify.NewEmailSink(nc.Email.APIKey, nc.Email.FromEmail, nc.Email.FromName, repos.Users))
	}
	if nc.Broker.Enabled {
		broker := notify.NewBrokerSink(nc.Broker.URL, nc.Broker.Queue)
		sinks = append(sinks, broker)
		closers = append(closers, broker.Close)
	}
	if nc.Push.Enabled {
		push, err := notify.NewPushSink(ctx, nc.Push.CredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("init push notifications: %w", err)
		}
		sinks = append(sinks, push)
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logger.Info("Notification sinks enabled", "sinks", names, "workers", nc.Workers, "queue_size", nc.QueueSize)

	d := notify.NewDispatcher(notify.Options{
		QueueSize:       nc.QueueSize,
		Workers:         nc.Workers,
		DeliveryTimeout: time.Duration(nc.DeliveryTimeout) * time.Second,
	}, sinks...)

	stop := func() {
		d.Close()
		st := d.Stats()
		logger.Info("Notification dispatcher stopped", "accepted", st.Accepted, "delivered", st.Delivered, "failed", st.Failed, "dropped", st.Dropped)
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("Failed to close notification sink", "error", err)
			}
		}
	}
	return d, stop, nil
}
