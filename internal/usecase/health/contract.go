package health

import "context"

// Pinger checks the availability of a single downstream dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}
