package review

import (
	"time"

	"github.com/liflo-ai/liflo/internal/model"
)

type Stats struct {
	Total             int     `json:"total"`
	Last7Days         int     `json:"last7Days"`
	Last30Days        int     `json:"last30Days"`
	CurrentStreakDays int     `json:"currentStreakDays"`
	LastRecordedAt    *string `json:"lastRecordedAt"`
	AveragePerWeek    float64 `json:"averagePerWeek"`
}

// ComputeStats summarizes logging activity by record date relative to today.
// The streak counts consecutive days ending today that have a record; a day
// without one (including today) ends it. Records with unparseable dates are skipped.
func ComputeStats(records []*model.Record, now time.Time) Stats {
	today := civilDay(now)
	days := make(map[time.Time]bool, len(records))

	var st Stats
	var first, last time.Time
	for _, r := range records {
		if r == nil {
			continue
		}
		d, err := time.Parse(model.DateLayout, r.Date)
		if err != nil {
			continue
		}
		st.Total++
		days[d] = true

		age := int(today.Sub(d).Hours() / 24)
		if age >= 0 && age < 7 {
			st.Last7Days++
		}
		if age >= 0 && age < 30 {
			st.Last30Days++
		}
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if last.IsZero() || d.After(last) {
			last = d
		}
	}

	if st.Total == 0 {
		return st
	}

	lastDate := last.Format(model.DateLayout)
	st.LastRecordedAt = &lastDate

	for d := today; days[d]; d = d.AddDate(0, 0, -1) {
		st.CurrentStreakDays++
	}

	spanDays := int(last.Sub(first).Hours()/24) + 1
	st.AveragePerWeek = Round(float64(st.Total)/float64(spanDays)*7, 2)

	return st
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
