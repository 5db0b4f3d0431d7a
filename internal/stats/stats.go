// Package stats derives the admin reporting figures from persisted assessment records.
package stats

import (
	"math"
	"time"

	"github.com/dharmapatha/portal/internal/model"
)

// DailyWindow is the number of calendar days, today included, in DailyStats.
const DailyWindow = 7

const dayLayout = "2006-01-02"

// scoreRange is a half-open interval [min, max); the last range also includes max.
type scoreRange struct {
	label    string
	min, max float64
}

var scoreRanges = []scoreRange{
	{"0-20", 0, 20},
	{"20-40", 20, 40},
	{"40-60", 40, 60},
	{"60-80", 60, 80},
	{"80-100", 80, 100},
}

var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// Aggregate computes summary statistics over records. Days are UTC calendar
// days: the window is the DailyWindow days ending at now in UTC, and a record
// belongs to the UTC day of its CreatedAt, whatever location either carries.
func Aggregate(records []model.AssessmentRecord, now time.Time) model.Statistics {
	now = now.UTC()
	st := model.Statistics{
		Total:             len(records),
		ScoreDistribution: make([]model.Bucket, len(scoreRanges)),
		DailyStats:        make([]model.DailyCount, 0, DailyWindow),
	}
	for i, r := range scoreRanges {
		st.ScoreDistribution[i].Range = r.label
	}

	perDay := make(map[string]int)
	var sum float64
	for _, rec := range records {
		sum += rec.Score
		switch rec.AssessmentType {
		case model.AssessmentFreshGraduate:
			st.FreshGradCount++
		case model.AssessmentCareerSwitch:
			st.CareerSwitchCount++
		}
		if i := bucketIndex(rec.Score); i >= 0 {
			st.ScoreDistribution[i].Count++
		}
		perDay[rec.CreatedAt.UTC().Format(dayLayout)]++
	}
	if st.Total > 0 {
		st.AvgScore = math.Round(sum/float64(st.Total)*10) / 10
	}

	y, m, d := now.Date()
	for i := DailyWindow - 1; i >= 0; i-- {
		day := time.Date(y, m, d-i, 0, 0, 0, 0, time.UTC)
		key := day.Format(dayLayout)
		st.DailyStats = append(st.DailyStats, model.DailyCount{
			Date:  key,
			Label: DayLabel(day),
			Count: perDay[key],
		})
	}
	return st
}

// bucketIndex returns the distribution bucket of score, or -1 when the score
// lies outside [0, 100].
func bucketIndex(score float64) int {
	last := len(scoreRanges) - 1
	for i, r := range scoreRanges {
		if score >= r.min && (score < r.max || (i == last && score == r.max)) {
			return i
		}
	}
	return -1
}

// DayLabel formats t as "02 Jan" with Indonesian month abbreviations.
func DayLabel(t time.Time) string {
	return t.Format("02") + " " + monthAbbrev[t.Month()-1]
}

// Percent returns part as a rounded percentage of total, 0 when total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
