package ports

import "context"

// HealthChecker verifies connectivity of one dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string
}
