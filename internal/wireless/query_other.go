//go:build !darwin

package wireless

import (
	"context"
	"time"
)

// NewSystemQuery returns the query for the running platform.
func NewSystemQuery(time.Duration) WirelessQuery {
	return QueryFunc(func(context.Context) ([]byte, error) {
		return nil, ErrUnsupported
	})
}
