package domain

// Freshness labels the cache band a snapshot was served from.
type Freshness string

const (
	// FreshnessMiss indicates no successful fetch has ever occurred.
	FreshnessMiss Freshness = "miss"
	// FreshnessFresh indicates the cache age is within the soft TTL.
	FreshnessFresh Freshness = "fresh"
	// FreshnessStale indicates the age is past the soft TTL but within the hard TTL.
	FreshnessStale Freshness = "stale"
	// FreshnessExpired indicates the age is past the hard TTL. The data is
	// still served; only the metadata changes.
	FreshnessExpired Freshness = "expired"
)

// SnapshotMeta describes how trustworthy the accompanying items are.
type SnapshotMeta struct {
	Cached          bool     `json:"cached"`
	Stale           bool     `json:"stale"`
	Expired         bool     `json:"expired,omitempty"`
	CacheAgeSeconds *float64 `json:"cacheAgeSeconds"`
	ErrorDetail     string   `json:"errorDetail,omitempty"`
}

// Snapshot is the engine's answer to a read: a stable view of the cached
// index plus freshness metadata. Callers never receive an error; upstream
// failure degrades the metadata instead.
type Snapshot struct {
	ChannelTitle string
	Items        []VideoRecord
	Meta         SnapshotMeta
}

// Freshness derives the band from the metadata flags.
func (s Snapshot) Freshness() Freshness {
	switch {
	case !s.Meta.Cached && len(s.Items) == 0 && s.Meta.Stale:
		return FreshnessMiss
	case s.Meta.Expired:
		return FreshnessExpired
	case s.Meta.Stale:
		return FreshnessStale
	default:
		return FreshnessFresh
	}
}
