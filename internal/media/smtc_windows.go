//go:build windows

package media

import (
	"context"
	"fmt"
	"os/exec"
)

// Poll runs the WinRT bridge script and parses its output into a Snapshot.
// Returns an empty snapshot when no media session exists or the source app is
// ignored.
func (s *SMTCSource) Poll(ctx context.Context) (Snapshot, error) {
	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", smtcScript)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return Snapshot{}, fmt.Errorf("powershell error: %s", string(exitErr.Stderr))
		}
		return Snapshot{}, fmt.Errorf("failed to execute powershell: %w", err)
	}

	snap, err := parseSessionOutput(string(output))
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse session output: %w", err)
	}

	return s.finish(snap), nil
}
