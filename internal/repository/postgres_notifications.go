package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/google/uuid"
)

// Notification repository methods
func (r *PostgresRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient, type, title, message, contract_id,
			read, action_required, action_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	// Generate a new UUID if not provided
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		notification.ID, notification.Recipient, notification.Type,
		notification.Title, notification.Message, notification.ContractID,
		notification.Read, notification.ActionRequired, notification.ActionLink,
		notification.CreatedAt)

	return err
}

func (r *PostgresRepository) GetNotification(ctx context.Context, notificationID string) (*models.Notification, error) {
	query := `SELECT * FROM notifications WHERE id = $1`

	var notification models.Notification
	err := r.db.GetContext(ctx, &notification, query, notificationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Notification not found
		}
		return nil, err
	}

	return &notification, nil
}

func (r *PostgresRepository) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	query := `SELECT * FROM notifications WHERE recipient = $1 ORDER BY created_at DESC`

	var notifications []models.Notification
	err := r.db.SelectContext(ctx, &notifications, query, userID)
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, notificationID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, notificationID)
	return err
}

func (r *PostgresRepository) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient = $1 AND read = FALSE`, userID)
	return err
}

func (r *PostgresRepository) DeleteNotification(ctx context.Context, notificationID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1`, notificationID)
	return err
}
