package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"opsboard/internal/cache"
	"opsboard/internal/core"
	"opsboard/internal/sheets"
)

const snapshotKey = "snapshot"

// DashboardServiceConfig holds tuning for DashboardService.
type DashboardServiceConfig struct {
	// CacheTTL is how long a fetched snapshot is served before refetching (default: 1m).
	// Zero or negative disables caching.
	CacheTTL time.Duration

	// FetchTimeout bounds one full snapshot fetch (default: 20s).
	FetchTimeout time.Duration
}

func DefaultDashboardServiceConfig() DashboardServiceConfig {
	return DashboardServiceConfig{
		CacheTTL:     time.Minute,
		FetchTimeout: 20 * time.Second,
	}
}

// DashboardService fetches consistent snapshots from a source and aggregates them.
type DashboardService struct {
	source sheets.Source
	config DashboardServiceConfig
	cache  *cache.LRUCache[core.Snapshot]
	group  singleflight.Group
}

func NewDashboardService(source sheets.Source, config DashboardServiceConfig) *DashboardService {
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultDashboardServiceConfig().FetchTimeout
	}
	s := &DashboardService{source: source, config: config}
	if config.CacheTTL > 0 {
		s.cache = cache.NewLRUCache[core.Snapshot](1, config.CacheTTL)
	}
	return s
}

// Cache exposes the snapshot cache for periodic cleanup. It is nil when caching is off.
func (s *DashboardService) Cache() cache.Cleaner {
	if s.cache == nil {
		return nil
	}
	return s.cache
}

// CacheStats reports snapshot cache counters. All zero when caching is off.
func (s *DashboardService) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}

// Snapshot returns the three collections. Concurrent callers share a single fetch, and
// the three collections are loaded in parallel; any failure fails the whole snapshot.
func (s *DashboardService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	if s.cache != nil {
		if snap, age, ok := s.cache.GetWithAge(snapshotKey); ok {
			slog.DebugContext(ctx, "Snapshot cache hit", "age", age.Round(time.Millisecond))
			return snap, nil
		}
	}

	ch := s.group.DoChan(snapshotKey, func() (interface{}, error) {
		// Detached from the first caller so its cancellation does not fail the others.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.FetchTimeout)
		defer cancel()
		snap, err := s.fetch(fctx)
		if err != nil {
			return core.Snapshot{}, err
		}
		if s.cache != nil {
			s.cache.Set(snapshotKey, snap)
		}
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return core.Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return core.Snapshot{}, res.Err
		}
		return res.Val.(core.Snapshot), nil
	}
}

// Dashboard aggregates the current snapshot.
func (s *DashboardService) Dashboard(ctx context.Context) (core.Dashboard, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return core.Dashboard{}, err
	}
	return core.BuildDashboard(snap), nil
}

func (s *DashboardService) fetch(ctx context.Context) (core.Snapshot, error) {
	start := time.Now()
	var snap core.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cs, err := s.source.ListComponents(gctx)
		if err != nil {
			return fmt.Errorf("list components: %w", err)
		}
		snap.Components = cs
		return nil
	})
	g.Go(func() error {
		ps, err := s.source.ListProjects(gctx)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		snap.Projects = ps
		return nil
	})
	g.Go(func() error {
		ss, err := s.source.ListSuppliers(gctx)
		if err != nil {
			return fmt.Errorf("list suppliers: %w", err)
		}
		snap.Suppliers = ss
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}
	slog.InfoContext(ctx, "Snapshot fetched",
		"components", len(snap.Components),
		"projects", len(snap.Projects),
		"suppliers", len(snap.Suppliers),
		"duration_ms", time.Since(start).Milliseconds())
	return snap, nil
}
