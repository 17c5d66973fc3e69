package core

import (
	"context"
)

// ShutdownFunc releases one resource during teardown. The context carries
// the remaining teardown deadline. Implementations must be safe to call
// more than once.
type ShutdownFunc func(ctx context.Context) error
