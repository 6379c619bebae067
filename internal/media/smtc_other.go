//go:build !windows

package media

import (
	"context"
	"errors"
)

// Poll is only implemented on Windows, where the System Media Transport
// Controls surface exists.
func (s *SMTCSource) Poll(ctx context.Context) (Snapshot, error) {
	return Snapshot{}, errors.New("media session polling requires Windows")
}
