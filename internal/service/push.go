package service

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/config"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"
)

// fcmNotifier persists every notification and best-effort pushes it over FCM.
// Delivery problems are logged and swallowed: a push failure must never roll
// back or abort the payment transition that produced it.
type fcmNotifier struct {
	messaging   *messaging.Client
	noteRepo    repository.NotificationRepository
	accountRepo repository.AccountRepository
}

func NewNotifier(ctx context.Context, cfg config.PushConfig, noteRepo repository.NotificationRepository, accountRepo repository.AccountRepository) (Notifier, error) {
	n := &fcmNotifier{noteRepo: noteRepo, accountRepo: accountRepo}
	if cfg.CredentialsFile == "" {
		logger.Warn("Push credentials not configured, notifications will only be persisted")
		return n, nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	n.messaging = client
	return n, nil
}

func (n *fcmNotifier) Notify(ctx context.Context, userID int64, title, message string, attributes map[string]string) {
	note := &domain.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attributes,
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to persist notification", "user_id", userID, "error", err)
	}

	if n.messaging == nil {
		return
	}
	account, err := n.accountRepo.GetByID(ctx, userID)
	if err != nil || account.DeviceToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: account.DeviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: attributes,
	}
	if _, err := n.messaging.Send(ctx, msg); err != nil {
		logger.Error("Push delivery failed", "user_id", userID, "error", err)
	}
}
