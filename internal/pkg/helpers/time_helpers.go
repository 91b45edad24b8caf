package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		// the global logger, as this may run before logging is configured
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ClampAfter returns t, or prev when t would move a timestamp backwards.
func ClampAfter(t time.Time, prev *time.Time) time.Time {
	if prev != nil && t.Before(*prev) {
		return *prev
	}
	return t
}
