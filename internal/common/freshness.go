package common

import "time"

// Freshness TTLs for data components
const (
	// FreshnessTickerData bounds how old fetched quote + history data may be
	// before the next read triggers a refresh from the external source.
	FreshnessTickerData = 24 * time.Hour

	// FreshnessReport bounds report reuse: one generation per reference day.
	FreshnessReport = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
