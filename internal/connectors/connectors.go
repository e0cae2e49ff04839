package connectors

import "context"

// Connector is a chat platform binding. Start blocks until ctx is cancelled
// and returns nil on a clean shutdown; a non-nil error tears down the whole
// runtime.
type Connector interface {
	Name() string
	Start(ctx context.Context) error
}
