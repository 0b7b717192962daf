package data

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"strarun-gateway/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFacade(nil, cache.NewStore(client), time.Hour)
}

func TestGetOrFetchMissLoadsOnce(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	loads := 0
	got, err := getOrFetch(ctx, f, "k", time.Hour, func(context.Context) (string, error) {
		loads++
		return "fresh", nil
	})
	if err != nil || got != "fresh" {
		t.Fatalf("unexpected result: %q %v", got, err)
	}
	if loads != 1 {
		t.Fatalf("expected exactly one load, got %d", loads)
	}
}

func TestGetOrFetchHitSkipsLoader(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	if _, err := getOrFetch(ctx, f, "k", time.Hour, func(context.Context) (string, error) {
		return "v1", nil
	}); err != nil {
		t.Fatalf("prime: %v", err)
	}

	loads := 0
	got, err := getOrFetch(ctx, f, "k", time.Hour, func(context.Context) (string, error) {
		loads++
		return "v2", nil
	})
	if err != nil || got != "v1" {
		t.Fatalf("expected cached value, got %q %v", got, err)
	}
	if loads != 0 {
		t.Fatalf("valid cache entry must skip the loader, got %d loads", loads)
	}
}

func TestGetOrFetchFailureDoesNotPoison(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()
	boom := errors.New("upstream down")

	if _, err := getOrFetch(ctx, f, "k", time.Hour, func(context.Context) (string, error) {
		return "", boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected loader failure propagated, got %v", err)
	}

	// cache for k must be unchanged: the next call loads again
	loads := 0
	got, err := getOrFetch(ctx, f, "k", time.Hour, func(context.Context) (string, error) {
		loads++
		return "recovered", nil
	})
	if err != nil || got != "recovered" || loads != 1 {
		t.Fatalf("expected fresh load after failure, got %q %v loads=%d", got, err, loads)
	}
}

func TestGetOrFetchExpiredEntryReloads(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	if _, err := getOrFetch(ctx, f, "k", time.Millisecond, func(context.Context) (string, error) {
		return "old", nil
	}); err != nil {
		t.Fatalf("prime: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	got, err := getOrFetch(ctx, f, "k", time.Hour, func(context.Context) (string, error) {
		return "new", nil
	})
	if err != nil || got != "new" {
		t.Fatalf("expected reload after expiry, got %q %v", got, err)
	}
}

func TestGetOrFetchCoalescesConcurrentCallers(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	var loads atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	loader := func(context.Context) (string, error) {
		if loads.Add(1) == 1 {
			close(started)
		}
		<-release
		return "shared", nil
	}

	const callers = 5
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := getOrFetch(ctx, f, "k", time.Hour, loader)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
			}
			results[i] = v
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	if n := loads.Load(); n != 1 {
		t.Fatalf("expected one coalesced load, got %d", n)
	}
	for i, v := range results {
		if v != "shared" {
			t.Fatalf("caller %d got %q", i, v)
		}
	}
}

func TestKeyConstruction(t *testing.T) {
	if activitiesKey(2, 30) != "activities_2_30" {
		t.Fatalf("unexpected activities key")
	}
	if activityDetailKey(9) != "activity_detail_9" {
		t.Fatalf("unexpected detail key")
	}
	if activityLapsKey(9) != "activity_laps_9" {
		t.Fatalf("unexpected laps key")
	}
	if athleteStatsKey(5) != "athlete_stats_5" {
		t.Fatalf("unexpected stats key")
	}
}

func TestRefreshActivityRemovesAllViews(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	store := f.cache
	store.Set(ctx, activityKey(7), "a", time.Hour)
	store.Set(ctx, activityDetailKey(7), "b", time.Hour)
	store.Set(ctx, activityLapsKey(7), "c", time.Hour)
	store.Set(ctx, activityDetailKey(8), "keep", time.Hour)

	f.RefreshActivity(ctx, 7)

	var got string
	if store.Get(ctx, activityKey(7), &got) || store.Get(ctx, activityDetailKey(7), &got) || store.Get(ctx, activityLapsKey(7), &got) {
		t.Fatalf("expected all views of activity 7 invalidated")
	}
	if !store.Get(ctx, activityDetailKey(8), &got) {
		t.Fatalf("expected other activity untouched")
	}
}

func TestRefreshActivitiesInvalidatesPages(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	f.cache.Set(ctx, activitiesKey(1, 30), "p1", time.Hour)
	f.cache.Set(ctx, activitiesKey(2, 30), "p2", time.Hour)
	f.cache.Set(ctx, athleteProfileKey, "me", time.Hour)

	f.RefreshActivities(ctx)

	var got string
	if f.cache.Get(ctx, activitiesKey(1, 30), &got) || f.cache.Get(ctx, activitiesKey(2, 30), &got) {
		t.Fatalf("expected activity pages invalidated")
	}
	if !f.cache.Get(ctx, athleteProfileKey, &got) {
		t.Fatalf("expected unrelated key kept")
	}
}
