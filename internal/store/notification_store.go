package store

import (
	"context"

	"bureau/internal/models"
)

type NotificationStore struct {
	db DB
}

func NewNotificationStore(db DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Insert(ctx context.Context, tx Execer, id, notifType, message, recipientRole string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO notifications (id, type, message, recipient_role)
		VALUES ($1, $2, $3, $4)
	`, id, notifType, message, recipientRole)
	return err
}

func (s *NotificationStore) ListByRole(ctx context.Context, recipientRole string, limit, offset int) ([]models.Notification, error) {
	var rows []models.Notification
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, type, message, recipient_role, created_at
		FROM notifications
		WHERE recipient_role = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, recipientRole, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
