package cache

import "time"

// Entry is a stored value with the time it was written and its TTL.
type Entry struct {
	Value    []byte
	StoredAt time.Time
	TTL      time.Duration
}

// Live reports whether the entry is still readable at now. A non-positive TTL
// never expires.
func (e Entry) Live(now time.Time) bool {
	if e.TTL <= 0 {
		return true
	}
	return now.Before(e.StoredAt.Add(e.TTL))
}

// BackendKind identifies the store a cache manager dispatches to.
type BackendKind string

const (
	BackendRemote   BackendKind = "remote"
	BackendFallback BackendKind = "fallback"
)

// Stats is a diagnostic snapshot; nothing should depend on it for correctness.
type Stats struct {
	KeyCount   int         `json:"key_count"`
	Backend    BackendKind `json:"backend"`
	SampleKeys []string    `json:"sample_keys"`
	InstanceID string      `json:"instance_id"`
	Hits       uint64      `json:"hits"`
	Misses     uint64      `json:"misses"`
}
