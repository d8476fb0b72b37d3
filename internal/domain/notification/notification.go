package notification

import (
	"context"
	"time"

	"taxpro/internal/common"
)

type Kind string

const (
	KindConnectionAccepted       Kind = "connection.accepted"
	KindApplicationStatusChanged Kind = "application.status_changed"
	KindBenchInvited             Kind = "bench.invited"
	KindBenchInviteAccepted      Kind = "bench.invite_accepted"
)

type Notification struct {
	ID          common.UUID       `json:"id"`
	Kind        Kind              `json:"kind"`
	RecipientID common.UUID       `json:"recipientProfileId"`
	Payload     map[string]string `json:"payload"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Notifier accepts notifications without reporting delivery errors. Callers
// emit after the state change is persisted.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) {}

func New(kind Kind, recipientID common.UUID, payload map[string]string) Notification {
	return Notification{
		ID:          common.NewUUID(),
		Kind:        kind,
		RecipientID: recipientID,
		Payload:     payload,
		CreatedAt:   time.Now().UTC(),
	}
}
