// Package stats folds raw activity lists into weekly and monthly rollups
// and year-to-date summaries. Everything here is pure: no I/O, no state,
// and the output does not depend on input order.
package stats

import (
	"sort"
	"time"

	"strarun-gateway/internal/strava"
)

const (
	weeklyLimit  = 4
	monthlyLimit = 6
)

// Rollup is one time bucket of accumulated activity totals. Key is the ISO
// date of the week's Monday for weekly buckets, or "YYYY-MM" for monthly.
type Rollup struct {
	Key           string  `json:"key"`
	Distance      float64 `json:"distance"`
	MovingTime    int64   `json:"moving_time"`
	ElevationGain float64 `json:"elevation_gain"`
	Activities    int     `json:"activities"`
}

type YearToDate struct {
	TotalDistance   float64 `json:"total_distance"`
	TotalTime       int64   `json:"total_time"`
	TotalActivities int     `json:"total_activities"`
	TotalElevation  float64 `json:"total_elevation"`
}

type Summary struct {
	TotalActivities    int     `json:"total_activities"`
	TotalDistance      float64 `json:"total_distance"`
	TotalTime          int64   `json:"total_time"`
	TotalElevation     float64 `json:"total_elevation"`
	ThisWeekActivities int     `json:"this_week_activities"`
	ThisWeekDistance   float64 `json:"this_week_distance"`
}

// WeeklyRollups buckets activities by the Monday of their local start date
// and returns at most the 4 most recent buckets, newest first.
func WeeklyRollups(activities []strava.Activity) []Rollup {
	return rollups(activities, weeklyLimit, func(t time.Time) string {
		return weekStart(t).Format("2006-01-02")
	})
}

// MonthlyRollups buckets activities by calendar year and month and returns
// at most the 6 most recent buckets, newest first.
func MonthlyRollups(activities []strava.Activity) []Rollup {
	return rollups(activities, monthlyLimit, func(t time.Time) string {
		return t.Format("2006-01")
	})
}

func rollups(activities []strava.Activity, limit int, keyOf func(time.Time) string) []Rollup {
	buckets := map[string]*Rollup{}
	for _, a := range activities {
		key := keyOf(localStart(a))
		b := buckets[key]
		if b == nil {
			b = &Rollup{Key: key}
			buckets[key] = b
		}
		b.Distance += a.Distance
		b.MovingTime += a.MovingTime
		b.ElevationGain += a.TotalElevationGain
		b.Activities++
	}

	out := make([]Rollup, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// YearToDateSummary folds the run and ride year-to-date totals. Other sport
// totals are deliberately excluded from the numeric rollup even though
// their activities still appear in lists.
func YearToDateSummary(s strava.AthleteStats) YearToDate {
	run, ride := s.YTDRunTotals, s.YTDRideTotals
	return YearToDate{
		TotalDistance:   run.Distance + ride.Distance,
		TotalTime:       run.MovingTime + ride.MovingTime,
		TotalActivities: run.Count + ride.Count,
		TotalElevation:  run.ElevationGain + ride.ElevationGain,
	}
}

// Summarize totals the given activities and slices out the trailing seven
// days relative to now.
func Summarize(activities []strava.Activity, now time.Time) Summary {
	weekAgo := now.Add(-7 * 24 * time.Hour)

	var s Summary
	for _, a := range activities {
		s.TotalActivities++
		s.TotalDistance += a.Distance
		s.TotalTime += a.MovingTime
		s.TotalElevation += a.TotalElevationGain

		if !a.StartDate.Before(weekAgo) {
			s.ThisWeekActivities++
			s.ThisWeekDistance += a.Distance
		}
	}
	return s
}

func localStart(a strava.Activity) time.Time {
	if !a.StartDateLocal.IsZero() {
		return a.StartDateLocal
	}
	return a.StartDate
}

// weekStart shifts a date back to its most recent Monday: Sunday moves back
// six days, any other day moves back weekday-1 days.
func weekStart(t time.Time) time.Time {
	shift := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		shift = 6
	}
	return time.Date(t.Year(), t.Month(), t.Day()-shift, 0, 0, 0, 0, t.Location())
}
