package service

import (
	"context"

	"github.com/Freeeeeet/tutorhub/internal/model"
)

// TxRunner runs fn as one unit of work
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NotificationWriter is the notification side effect shared by the services
type NotificationWriter interface {
	Create(ctx context.Context, n *model.Notification) error
}
