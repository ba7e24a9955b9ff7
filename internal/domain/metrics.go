package domain

import "time"

// FetchPath labels which cache path issued an upstream fetch.
type FetchPath string

const (
	// FetchPathForeground is the blocking fetch on an empty cache.
	FetchPathForeground FetchPath = "foreground"
	// FetchPathBackground is the detached stale-while-revalidate refresh.
	FetchPathBackground FetchPath = "background"
)

// Metrics abstracts the observability sink so the engine and gateway do not
// depend on a concrete metrics backend.
type Metrics interface {
	ObserveUpstreamFetch(path FetchPath, duration time.Duration, err error)
	ObserveServe(freshness Freshness)
	SetCacheAge(age time.Duration)
	SetCacheSize(size int)
	ObserveToolCall(tool string, duration time.Duration, err error)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveUpstreamFetch(FetchPath, time.Duration, error) {}
func (NopMetrics) ObserveServe(Freshness)                               {}
func (NopMetrics) SetCacheAge(time.Duration)                            {}
func (NopMetrics) SetCacheSize(int)                                     {}
func (NopMetrics) ObserveToolCall(string, time.Duration, error)         {}

var _ Metrics = NopMetrics{}
