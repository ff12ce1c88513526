package ports

import (
	"context"

	"github.com/layer-3/polywallet/core"
)

// EventPublisher publishes authentication audit events
type EventPublisher interface {
	PublishLogin(ctx context.Context, session *core.Session) error
	PublishLogout(ctx context.Context, session *core.Session) error
	Close() error
}
