package data

import (
	"context"
	"fmt"
	"time"

	"strarun-gateway/internal/cache"
	"strarun-gateway/internal/strava"

	"golang.org/x/sync/singleflight"
)

// Facade is the single point feature code reads domain data through. It
// composes the cache store and the upstream client, owns the cache key
// rules, and coalesces concurrent loads: for a given key at most one
// upstream fetch is in flight and its result is written to the cache once.
type Facade struct {
	api   *strava.Client
	cache *cache.Store
	ttl   time.Duration
	group singleflight.Group
}

func NewFacade(api *strava.Client, store *cache.Store, ttl time.Duration) *Facade {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Facade{api: api, cache: store, ttl: ttl}
}

func activitiesKey(page, perPage int) string {
	return fmt.Sprintf("activities_%d_%d", page, perPage)
}

func activityKey(id int64) string       { return fmt.Sprintf("activity_%d", id) }
func activityDetailKey(id int64) string { return fmt.Sprintf("activity_detail_%d", id) }
func activityLapsKey(id int64) string   { return fmt.Sprintf("activity_laps_%d", id) }
func athleteStatsKey(id int64) string   { return fmt.Sprintf("athlete_stats_%d", id) }

const athleteProfileKey = "athlete_profile"

func (f *Facade) Activities(ctx context.Context, page, perPage int) ([]strava.Activity, error) {
	return getOrFetch(ctx, f, activitiesKey(page, perPage), f.ttl, func(ctx context.Context) ([]strava.Activity, error) {
		return f.api.Activities(ctx, page, perPage)
	})
}

func (f *Facade) Activity(ctx context.Context, id int64) (strava.ActivityDetail, error) {
	return getOrFetch(ctx, f, activityDetailKey(id), f.ttl, func(ctx context.Context) (strava.ActivityDetail, error) {
		return f.api.Activity(ctx, id)
	})
}

func (f *Facade) ActivityLaps(ctx context.Context, id int64) ([]strava.Lap, error) {
	return getOrFetch(ctx, f, activityLapsKey(id), f.ttl, func(ctx context.Context) ([]strava.Lap, error) {
		return f.api.ActivityLaps(ctx, id)
	})
}

func (f *Facade) AthleteStats(ctx context.Context, athleteID int64) (strava.AthleteStats, error) {
	return getOrFetch(ctx, f, athleteStatsKey(athleteID), f.ttl, func(ctx context.Context) (strava.AthleteStats, error) {
		return f.api.AthleteStats(ctx, athleteID)
	})
}

func (f *Facade) Athlete(ctx context.Context) (strava.Athlete, error) {
	return getOrFetch(ctx, f, athleteProfileKey, f.ttl, func(ctx context.Context) (strava.Athlete, error) {
		return f.api.Athlete(ctx)
	})
}

// RefreshActivities drops every cached activities page so the next read
// fetches fresh data.
func (f *Facade) RefreshActivities(ctx context.Context) {
	f.cache.InvalidateMatching(ctx, "activities")
}

// RefreshActivity drops every cached view of one activity.
func (f *Facade) RefreshActivity(ctx context.Context, id int64) {
	f.cache.Remove(ctx, activityKey(id))
	f.cache.Remove(ctx, activityDetailKey(id))
	f.cache.Remove(ctx, activityLapsKey(id))
}

// getOrFetch returns the cached value under key when valid, otherwise runs
// load and writes the result through. A failed load caches nothing and the
// failure is propagated untouched. Concurrent callers with the same key
// share one load via singleflight.
func getOrFetch[T any](ctx context.Context, f *Facade, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if f.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		// a caller that lost the singleflight race may find the winner's
		// write already in place
		var hit T
		if f.cache.Get(ctx, key, &hit) {
			return hit, nil
		}

		fresh, err := load(ctx)
		if err != nil {
			return nil, err
		}
		f.cache.Set(ctx, key, fresh, ttl)
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
