package dispatch

import (
	"github.com/wolfman30/salon-voice-agent/pkg/logging"
)

// readOr runs a storage read and substitutes the fallback value when it
// fails. Every lookup handler funnels its sub-queries through this so a
// single dead table degrades one field instead of the whole response.
func readOr[T any](logger *logging.Logger, what string, read func() (T, error), fallback T) T {
	v, err := read()
	if err != nil {
		logger.Warn("dispatch: storage read failed, using fallback", "read", what, "error", err)
		return fallback
	}
	return v
}
