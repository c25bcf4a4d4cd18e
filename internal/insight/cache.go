package insight

import "time"

const (
	// StalenessWindow is how long a stored insight batch is reused before a
	// regeneration is considered.
	StalenessWindow = 24 * time.Hour

	// NewTransactionThreshold is the number of transactions synced after the
	// last generation that forces a regeneration.
	NewTransactionThreshold = 10
)

// UseCache decides whether stored insights are still served as-is. Stored
// insights are reused while they are younger than the staleness window and
// fewer than ten transactions have arrived since they were generated; either
// a stale batch or a burst of new transactions triggers regeneration. This
// is a heuristic, not a consistency guarantee.
func UseCache(storedCount int, lastGeneratedAt *time.Time, newTransactions int, now time.Time) bool {
	if storedCount == 0 || lastGeneratedAt == nil {
		return false
	}
	if now.Sub(*lastGeneratedAt) >= StalenessWindow {
		return false
	}
	return newTransactions < NewTransactionThreshold
}
