package models

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

const (
	BadgeFirstAnswer  = "first_answer"
	BadgeFirstCorrect = "first_correct"
	BadgePoints100    = "points_100"
	BadgePoints500    = "points_500"
)

var streakBadges = map[int]string{
	3:  "streak_3",
	7:  "streak_7",
	30: "streak_30",
}

type User struct {
	ID                string     `json:"id" db:"id"`
	Username          string     `json:"username" db:"username"`
	TotalPoints       int        `json:"total_points" db:"total_points"`
	CurrentStreak     int        `json:"current_streak" db:"current_streak"`
	LongestStreak     int        `json:"longest_streak" db:"longest_streak"`
	Badges            []string   `json:"badges" db:"badges"`
	LastParticipation *time.Time `json:"last_participation,omitempty" db:"last_participation"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

func (u *User) HasBadge(badge string) bool {
	return lo.Contains(u.Badges, badge)
}

func (u *User) addBadge(badge string) {
	if !u.HasBadge(badge) {
		u.Badges = append(u.Badges, badge)
	}
}

// Participation is one user's contribution to a graded session.
type Participation struct {
	UserID       string
	PointsEarned int
	Correct      bool
}

// ApplyParticipation folds a graded answer into the user's totals, streaks
// and badges.
func ApplyParticipation(u *User, p Participation, at time.Time) {
	if u.LastParticipation == nil {
		u.addBadge(BadgeFirstAnswer)
	}

	u.TotalPoints += p.PointsEarned
	u.CurrentStreak++
	if u.CurrentStreak > u.LongestStreak {
		u.LongestStreak = u.CurrentStreak
	}
	u.LastParticipation = &at

	if p.Correct {
		u.addBadge(BadgeFirstCorrect)
	}
	if badge, ok := streakBadges[u.CurrentStreak]; ok {
		u.addBadge(badge)
	}
	if u.TotalPoints >= 100 {
		u.addBadge(BadgePoints100)
	}
	if u.TotalPoints >= 500 {
		u.addBadge(BadgePoints500)
	}
}

func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("user-%s", u.ID)
}
