package ports

import (
	"context"
	"errors"
)

// ErrDegraded marks a dependency that works in a reduced mode. Health probes
// report it without failing the instance.
var ErrDegraded = errors.New("degraded")

// HealthChecker abstracts a dependency health probe.
// Implementations should return error if unhealthy.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
