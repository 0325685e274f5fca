package bus

import (
	"context"

	"github.com/yungbote/neurobridge-coursegen/internal/realtime"
)

// Bus moves SSE messages between processes. Every instance forwards what
// it receives into its local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
