package cache

import "github.com/google/uuid"

const (
	// KeySettingsSnapshot holds every active commission setting.
	KeySettingsSnapshot = "commission:settings:v1"
	// KeySettingsRefreshLock guards reloading the snapshot from Postgres.
	KeySettingsRefreshLock = "lock:commission:settings"
)

// KeyPartner returns the cache key of a single partner record.
func KeyPartner(id uuid.UUID) string {
	return "commission:partner:v1:" + id.String()
}
