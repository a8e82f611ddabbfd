// Package listing maintains the company-name to exchange-code directory.
package listing

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"StockLens/internal/model"
)

// Source fetches the full listing table from a provider.
type Source interface {
	FetchListing(ctx context.Context) ([]model.CompanyEntry, error)
	Name() string
}

type snapshot struct {
	entries   []model.CompanyEntry
	byName    map[string]string
	fetchedAt time.Time
}

// DefaultFetchTimeout bounds a shared listing fetch.
const DefaultFetchTimeout = time.Minute

const fetchKey = "listing"

// Directory caches the listing of a Source for the process lifetime or a
// TTL. All callers, including forced refreshes, share at most one in-flight
// fetch; failures are never cached.
type Directory struct {
	source  Source
	ttl     time.Duration // 0 = never expires
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	snap  *snapshot
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithFetchTimeout bounds each shared fetch independently of its callers.
func WithFetchTimeout(d time.Duration) DirectoryOption {
	return func(dir *Directory) {
		if d > 0 {
			dir.timeout = d
		}
	}
}

// NewDirectory creates a Directory over source.
func NewDirectory(source Source, ttl time.Duration, log zerolog.Logger, opts ...DirectoryOption) *Directory {
	d := &Directory{
		source:  source,
		ttl:     ttl,
		timeout: DefaultFetchTimeout,
		now:     time.Now,
		log:     log.With().Str("component", "directory").Str("source", source.Name()).Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Entries returns the listing. A provider failure with no earlier listing
// held yields an empty listing; the cause is logged, not returned.
func (d *Directory) Entries(ctx context.Context) []model.CompanyEntry {
	snap, err := d.load(ctx)
	if err != nil {
		return []model.CompanyEntry{}
	}
	out := make([]model.CompanyEntry, len(snap.entries))
	copy(out, snap.entries)
	return out
}

// Lookup returns the code for an exact display-name match.
func (d *Directory) Lookup(ctx context.Context, name string) (string, bool) {
	snap, err := d.load(ctx)
	if err != nil {
		return "", false
	}
	code, ok := snap.byName[name]
	return code, ok
}

// Load is Entries with the provider error surfaced for diagnostics.
func (d *Directory) Load(ctx context.Context) ([]model.CompanyEntry, error) {
	snap, err := d.load(ctx)
	if err != nil {
		return []model.CompanyEntry{}, err
	}
	out := make([]model.CompanyEntry, len(snap.entries))
	copy(out, snap.entries)
	return out, nil
}

// Refresh fetches a new listing regardless of cache state. On failure the
// previous listing stays in place.
func (d *Directory) Refresh(ctx context.Context) error {
	_, err := d.fetch(ctx, true)
	return err
}

// Invalidate drops the cached listing.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	d.snap = nil
	d.mu.Unlock()
}

// FetchedAt returns when the cached listing was fetched, zero if none.
func (d *Directory) FetchedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.snap == nil {
		return time.Time{}
	}
	return d.snap.fetchedAt
}

func (d *Directory) current() *snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// load serves the cached listing, re-fetching when missing or expired. An
// expired listing is still served when the re-fetch fails.
func (d *Directory) load(ctx context.Context) (*snapshot, error) {
	snap := d.current()
	if snap != nil && !d.expired(snap) {
		return snap, nil
	}
	fresh, err := d.fetch(ctx, false)
	if err != nil && snap != nil {
		d.log.Warn().Err(err).Time("fetched_at", snap.fetchedAt).Msg("listing re-fetch failed, serving stale directory")
		return snap, nil
	}
	return fresh, err
}

func (d *Directory) expired(s *snapshot) bool {
	return d.ttl > 0 && d.now().Sub(s.fetchedAt) >= d.ttl
}

type fetchResult struct {
	snap   *snapshot
	remote bool
}

// fetch waits for the shared fetch or the caller's context, whichever ends
// first. A forced fetch that joined a cache hit starts over so that it
// always observes a remote fetch.
func (d *Directory) fetch(ctx context.Context, force bool) (*snapshot, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, model.NewProviderError(d.source.Name(), err)
		}
		ch := d.group.DoChan(fetchKey, func() (interface{}, error) {
			return d.fetchShared(ctx, force)
		})
		select {
		case <-ctx.Done():
			return nil, model.NewProviderError(d.source.Name(), ctx.Err())
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
			r := res.Val.(fetchResult)
			if force && !r.remote {
				continue
			}
			return r.snap, nil
		}
	}
}

// fetchShared runs once per flight. It is detached from the caller that
// started it and bounded by the directory timeout instead.
func (d *Directory) fetchShared(ctx context.Context, force bool) (fetchResult, error) {
	if !force {
		if snap := d.current(); snap != nil && !d.expired(snap) {
			return fetchResult{snap: snap}, nil
		}
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	entries, err := d.source.FetchListing(fctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("listing fetch failed")
		return fetchResult{}, err
	}
	snap := d.index(entries)
	d.mu.Lock()
	d.snap = snap
	d.mu.Unlock()
	return fetchResult{snap: snap, remote: true}, nil
}

// index builds the lookup table. The first row for a display name wins.
func (d *Directory) index(entries []model.CompanyEntry) *snapshot {
	snap := &snapshot{
		entries:   make([]model.CompanyEntry, 0, len(entries)),
		byName:    make(map[string]string, len(entries)),
		fetchedAt: d.now(),
	}
	dropped := 0
	for _, e := range entries {
		if _, dup := snap.byName[e.Name]; dup {
			dropped++
			d.log.Debug().Str("name", e.Name).Str("code", e.Code).Msg("duplicate display name dropped")
			continue
		}
		snap.byName[e.Name] = e.Code
		snap.entries = append(snap.entries, e)
	}
	if dropped > 0 {
		d.log.Warn().Int("dropped", dropped).Msg("listing contains duplicate display names")
	}
	d.log.Info().Int("entries", len(snap.entries)).Msg("directory loaded")
	return snap
}
