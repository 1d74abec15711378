package service

import (
	"context"

	"homefind/messaging-service/internal/models"
)

// Notifier observes messages after they are durably appended. The
// notification dispatcher hangs off this hook; delivery is its problem, so
// implementations must not block the send path or fail it.
type Notifier interface {
	MessageAppended(ctx context.Context, conv *models.Conversation, msg *models.Message)
}

type noopNotifier struct{}

func (noopNotifier) MessageAppended(context.Context, *models.Conversation, *models.Message) {}
