package domain

import "context"

// AnnouncementKey is the fixed cache key the announcement lives under.
const AnnouncementKey = "RECENT_ANNOUNCEMENTS"

// NearlySoldOutThreshold is the seat count at or below which (but above
// zero) a conference is considered nearly sold out.
const NearlySoldOutThreshold = 5

// AnnouncementCache is a keyed cache with explicit lifecycle. Absence of
// the key, not an empty value, is the "no announcement" state.
type AnnouncementCache interface {
	Set(key, value string)
	Get(key string) (string, bool)
	Delete(key string)
}

// AnnouncementService maintains the derived nearly-sold-out announcement.
// Fetch and Recompute are deliberately decoupled: fetch never recomputes,
// and staleness up to one recompute interval is acceptable.
type AnnouncementService interface {
	// Recompute scans conference inventory and rewrites (or deletes) the
	// cached announcement. Returns the announcement, "" when none.
	Recompute(ctx context.Context) (string, error)
	// Fetch returns the cached announcement, "" when absent.
	Fetch(ctx context.Context) string
}
