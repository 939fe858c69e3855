package service

import (
	"context"
	"fmt"

	"github.com/covenantlabs/covenant-server/internal/apperrors"
	"github.com/covenantlabs/covenant-server/internal/models"
)

// notify is the fire-and-forget notification sink: failures are logged
// and never propagate into the contract workflow.
func (s *DefaultService) notify(ctx context.Context, notification *models.Notification) {
	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		s.logger.Error("failed to create %s notification for %s: %v",
			notification.Type, notification.Recipient, err)
	}
}

// Notification methods
func (s *DefaultService) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.repo.GetUserNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}

	return notifications, nil
}

func (s *DefaultService) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	notification, err := s.repo.GetNotification(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("error getting notification: %w", err)
	}

	if notification == nil {
		return fmt.Errorf("notification not found: %w", apperrors.ErrNotFound)
	}

	if notification.Recipient != userID {
		return fmt.Errorf("not authorized: %w", apperrors.ErrForbidden)
	}

	if err := s.repo.MarkNotificationRead(ctx, notificationID); err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}

	return nil
}

func (s *DefaultService) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllNotificationsRead(ctx, userID); err != nil {
		return fmt.Errorf("error marking notifications read: %w", err)
	}

	return nil
}

func (s *DefaultService) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	notification, err := s.repo.GetNotification(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("error getting notification: %w", err)
	}

	if notification == nil {
		return fmt.Errorf("notification not found: %w", apperrors.ErrNotFound)
	}

	if notification.Recipient != userID {
		return fmt.Errorf("not authorized: %w", apperrors.ErrForbidden)
	}

	if err := s.repo.DeleteNotification(ctx, notificationID); err != nil {
		return fmt.Errorf("error deleting notification: %w", err)
	}

	return nil
}
