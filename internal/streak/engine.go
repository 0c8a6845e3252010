// Package streak implements the daily check-in reward cycle.
package streak

import "chesslounge/backend/internal/models"

const (
	basePoints  = 1
	bonusPoints = 5
)

// State is the reward state of one account.
type State struct {
	Points         int
	Streak         int
	CheckedInToday bool
}

// Decision is the outcome of a check-in attempt.
type Decision struct {
	Accepted      bool
	PointsAwarded int
	NewStreak     int
}

// Decide computes the result of checking in from s.
// Streak positions 6 and 7 both earn the bonus before the cycle wraps back to 1.
func Decide(s State) Decision {
	if s.CheckedInToday {
		return Decision{NewStreak: s.Streak}
	}

	award := basePoints
	if s.Streak == models.MaxStreak-1 || s.Streak == models.MaxStreak {
		award = bonusPoints
	}

	next := s.Streak + 1
	if next > models.MaxStreak {
		next = 1
	}

	return Decision{Accepted: true, PointsAwarded: award, NewStreak: next}
}

// Apply returns s after d. Rejected decisions leave s unchanged.
func Apply(s State, d Decision) State {
	if !d.Accepted {
		return s
	}
	return State{
		Points:         s.Points + d.PointsAwarded,
		Streak:         d.NewStreak,
		CheckedInToday: true,
	}
}

// Reset starts a new day-window: a missed day breaks the streak and the flag is cleared.
func Reset(s State) State {
	if !s.CheckedInToday {
		s.Streak = 0
	}
	s.CheckedInToday = false
	return s
}

// StateOf extracts the reward state of an account.
func StateOf(a *models.Account) State {
	return State{Points: a.Points, Streak: a.Streak, CheckedInToday: a.CheckedInToday}
}
