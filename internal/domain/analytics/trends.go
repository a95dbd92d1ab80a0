// Package analytics computes pipeline statistics from read-only snapshots.
//
// Every function here is pure: it takes caller-supplied snapshots (plus an
// explicit as-of timestamp where tenure matters) and returns derived records.
// Absence of data is a normal case, never an error: filters that match
// nothing produce empty or zero-valued results.
package analytics

import (
	"sort"
	"time"

	"github.com/stagewise/stagewise/internal/domain/model"
)

// bucketDateLayout is the day-granularity bucket key format.
const bucketDateLayout = "2006-01-02"

// TrendFilter narrows the enrollment set fed into EnrollmentTrends.
// Zero values mean "no constraint". Start/End bound the bucket date
// inclusively; an End before Start simply yields an empty series.
type TrendFilter struct {
	ProgramID string
	Start     time.Time
	End       time.Time
}

// TrendBucket is one day of enrollment activity.
type TrendBucket struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Active    int    `json:"active"`
	Dropped   int    `json:"dropped"`
}

// EnrollmentTrends buckets enrollments by the calendar day they started and
// counts them by status. Trends describe enrollment cohorts, so the bucket
// key comes from StartedAt, not CompletedAt. Days with no enrollments are
// omitted: the series is sparse and callers render it without forward-fill.
func EnrollmentTrends(enrollments []model.Enrollment, filter TrendFilter) []TrendBucket {
	buckets := make(map[string]*TrendBucket)

	for i := range enrollments {
		e := &enrollments[i]
		if filter.ProgramID != "" && e.ProgramID != filter.ProgramID {
			continue
		}
		day := e.StartedAt.Truncate(24 * time.Hour)
		if !filter.Start.IsZero() && day.Before(filter.Start.Truncate(24*time.Hour)) {
			continue
		}
		if !filter.End.IsZero() && day.After(filter.End.Truncate(24*time.Hour)) {
			continue
		}

		key := day.Format(bucketDateLayout)
		b, ok := buckets[key]
		if !ok {
			b = &TrendBucket{Date: key}
			buckets[key] = b
		}
		switch e.Status {
		case model.StatusCompleted:
			b.Completed++
		case model.StatusWithdrawn:
			b.Dropped++
		default:
			b.Active++
		}
	}

	series := make([]TrendBucket, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}
