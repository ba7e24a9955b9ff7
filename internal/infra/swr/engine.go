package swr

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ytfinder/internal/domain"
)

// Fetcher is the upstream call the engine revalidates through.
type Fetcher interface {
	FetchIndex(ctx context.Context, timeout time.Duration) (domain.Index, error)
}

// Policy holds the freshness and timeout tunables. Soft TTL is the age past
// which a background refresh is triggered; hard TTL is the age past which
// the data is flagged as expired but still served. Values can be swapped at
// runtime via SetPolicy.
type Policy struct {
	SoftTTL           time.Duration
	HardTTL           time.Duration
	ForegroundTimeout time.Duration
	BackgroundTimeout time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		SoftTTL:           domain.DefaultSoftTTLSeconds * time.Second,
		HardTTL:           domain.DefaultHardTTLSeconds * time.Second,
		ForegroundTimeout: domain.DefaultForegroundTimeoutSeconds * time.Second,
		BackgroundTimeout: domain.DefaultBackgroundTimeoutSeconds * time.Second,
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.SoftTTL <= 0 {
		p.SoftTTL = def.SoftTTL
	}
	if p.HardTTL <= 0 {
		p.HardTTL = def.HardTTL
	}
	if p.ForegroundTimeout <= 0 {
		p.ForegroundTimeout = def.ForegroundTimeout
	}
	if p.BackgroundTimeout <= 0 {
		p.BackgroundTimeout = def.BackgroundTimeout
	}
	return p
}

// entry is the single cached index. It is replaced wholesale on every
// successful fetch; a failed refresh never touches it.
type entry struct {
	channelTitle string
	items        []domain.VideoRecord
	fetchedAt    time.Time
}

// Engine owns the in-process index cache and the stale-while-revalidate
// policy around it. Once any fetch has ever succeeded, Get answers from
// memory without blocking on the upstream; staleness only widens the
// metadata, never empties the payload.
type Engine struct {
	fetcher Fetcher
	logger  *zap.Logger
	metrics domain.Metrics
	now     func() time.Time

	mu     sync.RWMutex
	policy Policy
	entry  *entry

	// refreshing guarantees at most one background refresh in flight.
	refreshing atomic.Bool
	// flight coalesces concurrent foreground fetches on an empty cache.
	flight singleflight.Group

	wg sync.WaitGroup
}

type Options struct {
	Fetcher Fetcher
	Policy  Policy
	Logger  *zap.Logger
	Metrics domain.Metrics
	// Now overrides the clock; tests use it to age the cache without sleeping.
	Now func() time.Time
}

func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		fetcher: opts.Fetcher,
		logger:  logger.Named("swr"),
		metrics: metrics,
		now:     now,
		policy:  opts.Policy.withDefaults(),
	}
}

// SetPolicy swaps the freshness tunables; in-flight refreshes keep the
// timeout they started with.
func (e *Engine) SetPolicy(p Policy) {
	e.mu.Lock()
	e.policy = p.withDefaults()
	e.mu.Unlock()
}

func (e *Engine) Policy() Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

// Get returns the current view of the index. It never returns an error:
// with a populated cache it answers immediately (triggering a detached
// refresh past the soft TTL); with an empty cache it attempts one bounded
// foreground fetch and degrades to an empty payload on failure.
func (e *Engine) Get(ctx context.Context) domain.Snapshot {
	e.mu.RLock()
	current := e.entry
	policy := e.policy
	e.mu.RUnlock()

	if current == nil {
		return e.getForeground(ctx, policy)
	}

	age := e.now().Sub(current.fetchedAt)
	e.metrics.SetCacheAge(age)

	meta := domain.SnapshotMeta{
		Cached:          true,
		CacheAgeSeconds: ageSeconds(age),
	}
	switch {
	case age <= policy.SoftTTL:
		// Fresh: no network I/O at all.
	case age <= policy.HardTTL:
		meta.Stale = true
		e.triggerRefresh(policy)
	default:
		// Past the hard TTL the data is still served; only trust drops.
		meta.Stale = true
		meta.Expired = true
		e.triggerRefresh(policy)
	}

	snap := domain.Snapshot{
		ChannelTitle: current.channelTitle,
		Items:        copyItems(current.items),
		Meta:         meta,
	}
	e.metrics.ObserveServe(snap.Freshness())
	return snap
}

// getForeground handles the empty-cache path. Concurrent callers coalesce
// onto a single upstream call; every one of them receives the same outcome.
func (e *Engine) getForeground(ctx context.Context, policy Policy) domain.Snapshot {
	result, err, _ := e.flight.Do("index", func() (any, error) {
		// A fetch that completed between the caller's nil check and this
		// closure already populated the entry; reuse it instead of issuing
		// a second upstream call.
		e.mu.RLock()
		current := e.entry
		e.mu.RUnlock()
		if current != nil {
			return domain.Index{
				ChannelTitle: current.channelTitle,
				Videos:       copyItems(current.items),
			}, nil
		}

		start := time.Now()
		index, err := e.fetcher.FetchIndex(ctx, policy.ForegroundTimeout)
		e.metrics.ObserveUpstreamFetch(domain.FetchPathForeground, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		e.store(index)
		return index, nil
	})
	if err != nil {
		e.logFetchFailure("foreground fetch failed, serving empty payload", err)
		snap := domain.Snapshot{
			Items: []domain.VideoRecord{},
			Meta: domain.SnapshotMeta{
				Cached:      false,
				Stale:       true,
				ErrorDetail: err.Error(),
			},
		}
		e.metrics.ObserveServe(snap.Freshness())
		return snap
	}

	index := result.(domain.Index)
	snap := domain.Snapshot{
		ChannelTitle: index.ChannelTitle,
		Items:        copyItems(index.Videos),
		Meta: domain.SnapshotMeta{
			Cached:          false,
			Stale:           false,
			CacheAgeSeconds: ageSeconds(0),
		},
	}
	e.metrics.ObserveServe(snap.Freshness())
	return snap
}

// triggerRefresh starts one detached revalidation if none is running.
// Concurrent triggers while a refresh is in flight are dropped outright.
func (e *Engine) triggerRefresh(policy Policy) {
	if !e.refreshing.CompareAndSwap(false, true) {
		return
	}

	refreshID := uuid.NewString()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.refreshing.Store(false)

		// Detached from any caller: the refresh outlives the request that
		// triggered it and must not inherit its cancellation.
		ctx := context.Background()

		start := time.Now()
		index, err := e.fetcher.FetchIndex(ctx, policy.BackgroundTimeout)
		e.metrics.ObserveUpstreamFetch(domain.FetchPathBackground, time.Since(start), err)
		if err != nil {
			e.logFetchFailure("background refresh failed, keeping previous entry", err,
				zap.String("refresh_id", refreshID))
			return
		}

		e.store(index)
		e.logger.Info("background refresh completed",
			zap.String("refresh_id", refreshID),
			zap.Int("videos", len(index.Videos)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()
}

// store atomically replaces the cache entry. Items and fetchedAt always
// change together; readers never observe a torn pair.
func (e *Engine) store(index domain.Index) {
	next := &entry{
		channelTitle: index.ChannelTitle,
		items:        copyItems(index.Videos),
		fetchedAt:    e.now(),
	}
	e.mu.Lock()
	e.entry = next
	e.mu.Unlock()
	e.metrics.SetCacheSize(len(next.items))
	e.metrics.SetCacheAge(0)
}

// Stats reports the cache state for the debug surface.
type Stats struct {
	Size         int       `json:"size"`
	ChannelTitle string    `json:"channelTitle,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"`
	AgeSeconds   *float64  `json:"ageSeconds"`
	Refreshing   bool      `json:"refreshing"`
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	current := e.entry
	e.mu.RUnlock()

	stats := Stats{Refreshing: e.refreshing.Load()}
	if current == nil {
		return stats
	}
	stats.Size = len(current.items)
	stats.ChannelTitle = current.channelTitle
	stats.FetchedAt = current.fetchedAt
	stats.AgeSeconds = ageSeconds(e.now().Sub(current.fetchedAt))
	return stats
}

// Close waits for any in-flight background refresh to finish.
func (e *Engine) Close() {
	e.wg.Wait()
}

// logFetchFailure logs expected upstream trouble (timeouts, bad responses)
// at warn and anything else at error.
func (e *Engine) logFetchFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if domain.IsRecoverable(err) {
		e.logger.Warn(msg, fields...)
		return
	}
	e.logger.Error(msg, fields...)
}

func copyItems(items []domain.VideoRecord) []domain.VideoRecord {
	out := make([]domain.VideoRecord, len(items))
	copy(out, items)
	return out
}

func ageSeconds(age time.Duration) *float64 {
	seconds := age.Seconds()
	return &seconds
}
