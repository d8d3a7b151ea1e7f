package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, user_id, from_user_id, kind, priority, title, message, is_read, attributes, read_on, created_on`

func scanNotification(s rowScanner) (*domain.Notification, error) {
	n := &domain.Notification{}
	var attrs []byte
	if err := s.Scan(&n.ID, &n.UserID, &n.FromUserID, &n.Kind, &n.Priority, &n.Title, &n.Message, &n.IsRead, &attrs,
		&n.ReadOn, &n.CreatedOn); err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "userID", n.UserID, "kind", n.Kind)

	if n.Attributes == nil {
		n.Attributes = map[string]string{}
	}
	attrs, err := json.Marshal(n.Attributes)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "reason", "failed to marshal attributes")
		return err
	}

	query := `INSERT INTO notifications (user_id, from_user_id, kind, priority, title, message, is_read, attributes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	logger.DatabaseCall("INSERT", "notifications", "userID", n.UserID)

	if n.CreatedOn.IsZero() {
		n.CreatedOn = time.Now().UTC()
	}
	err = r.db.QueryRowContext(ctx, query, n.UserID, n.FromUserID, n.Kind, n.Priority, n.Title, n.Message, n.IsRead, attrs, n.CreatedOn).Scan(&n.ID)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "userID", n.UserID)
		return mapError(err)
	}
	logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE user_id = $1 AND deleted_on IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 AND deleted_on IS NULL
	          ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	notes, err := r.query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return notes, count, nil
}

func (r *notificationRepository) ListUnread(ctx context.Context, userID int32) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 AND NOT is_read AND deleted_on IS NULL
	          ORDER BY created_on DESC, id DESC`
	return r.query(ctx, query, userID)
}

func (r *notificationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID int32) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT is_read AND deleted_on IS NULL`, userID).Scan(&count)
	return count, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query := `UPDATE notifications SET is_read = TRUE, read_on = COALESCE(read_on, $1)
	          WHERE id = $2 AND user_id = $3 AND deleted_on IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return err
	}
	return requireOne(result)
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID int32) error {
	query := `UPDATE notifications SET is_read = TRUE, read_on = $1 WHERE user_id = $2 AND NOT is_read AND deleted_on IS NULL`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID)
	return err
}

func (r *notificationRepository) SoftDelete(ctx context.Context, id, userID int32) error {
	query := `UPDATE notifications SET deleted_on = $1 WHERE id = $2 AND user_id = $3 AND deleted_on IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return err
	}
	return requireOne(result)
}

func (r *notificationRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	logger.DatabaseCall("DELETE", "notifications", "cutoff", cutoff)
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE deleted_on IS NOT NULL AND deleted_on < $1`, cutoff)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err)
		return 0, err
	}
	n, err := result.RowsAffected()
	logger.DatabaseResult("DELETE", n, err)
	return n, err
}
