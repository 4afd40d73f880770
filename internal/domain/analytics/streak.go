package analytics

import (
	"sort"
	"time"

	"github.com/phrazzld/thinkforge-api/internal/domain"
)

// StreakResult is the number of consecutive calendar days, ending today or
// yesterday, with at least one quiz attempt.
type StreakResult struct {
	Days int `json:"days"`
}

// CurrentStreak computes the streak as of now. Calendar days are taken in
// loc; a nil loc means UTC. Attempts with a zero date contribute no day.
func CurrentStreak(attempts []domain.QuizAttempt, now time.Time, loc *time.Location) StreakResult {
	if loc == nil {
		loc = time.UTC
	}

	seen := make(map[time.Time]struct{}, len(attempts))
	days := make([]time.Time, 0, len(attempts))
	for _, a := range attempts {
		if a.Date.IsZero() {
			continue
		}
		d := civilDay(a.Date, loc)
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	if len(days) == 0 {
		return StreakResult{}
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := civilDay(now, loc)
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Equal(today) && !days[0].Equal(yesterday) {
		return StreakResult{}
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if dayDiff(days[i-1], days[i]) != 1 {
			break
		}
		streak++
	}
	return StreakResult{Days: streak}
}

// civilDay maps t to midnight UTC of its calendar date in loc. Consecutive
// civil days are then exactly 24h apart regardless of DST in loc.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayDiff(later, earlier time.Time) int {
	return int(later.Sub(earlier) / (24 * time.Hour))
}
