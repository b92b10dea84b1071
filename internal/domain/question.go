package domain

import (
	"sort"
	"time"
)

// RecencyWindow is how far back a publication date may lie while the
// question still counts as recently published.
const RecencyWindow = 24 * time.Hour

// Question represents a poll question shown on the index and detail pages.
type Question struct {
	ID        int64
	Text      string
	PubDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	Choices   []Choice
}

// Choice is a single votable answer belonging to a question.
type Choice struct {
	ID         int64
	QuestionID int64
	Text       string
	Votes      int64
}

// IsPublished reports whether the question is visible at the given instant.
// Questions with a publication date in the future are hidden.
func (q Question) IsPublished(now time.Time) bool {
	return !q.PubDate.After(now)
}

// WasPublishedRecently reports whether the question was published within the
// last day relative to now. The window is open at now-24h and closed at now,
// so a question published exactly 24 hours ago is no longer recent while one
// published at this very instant is. Future publication dates are never
// recent.
func (q Question) WasPublishedRecently(now time.Time) bool {
	return q.IsPublished(now) && q.PubDate.After(now.Add(-RecencyWindow))
}

// LatestQuestions returns the questions published at or before now, newest
// first. A limit of zero or less means no limit.
func LatestQuestions(questions []Question, now time.Time, limit int) []Question {
	visible := make([]Question, 0, len(questions))
	for _, q := range questions {
		if q.IsPublished(now) {
			visible = append(visible, q)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].PubDate.After(visible[j].PubDate)
	})
	if limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}
	return visible
}
