//go:build darwin

package wireless

import (
	"context"
	"time"

	"github.com/user/safeproxy/internal/procutil"
)

// AirportQuery runs `airport -I`.
type AirportQuery struct {
	Path    string
	Timeout time.Duration
}

// NewSystemQuery returns the query for the running platform.
func NewSystemQuery(timeout time.Duration) WirelessQuery {
	return &AirportQuery{Path: AirportPath, Timeout: timeout}
}

// Query runs the tool and returns its output.
func (q *AirportQuery) Query(ctx context.Context) ([]byte, error) {
	res, err := procutil.Run(ctx, q.Timeout, q.Path, "-I")
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}
