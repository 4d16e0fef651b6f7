// Package scoring computes the two priority scores of a task from its due
// date, importance and effort estimate.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidInput is returned when importance or estimated hours are out of range.
var ErrInvalidInput = errors.New("invalid scoring input")

const (
	MinImportance = 1
	MaxImportance = 10

	urgencyWeight    = 0.5
	importanceWeight = 0.3
	effortWeight     = 0.2
)

// Scores holds both derived priority values, rounded to 3 decimals.
type Scores struct {
	Basic float64
	Smart float64
}

// Compute returns the basic and smart scores evaluated against today.
func Compute(importance, estimatedHours int, dueDate, today time.Time) (Scores, error) {
	if importance < MinImportance || importance > MaxImportance {
		return Scores{}, fmt.Errorf("%w: importance %d outside [%d,%d]",
			ErrInvalidInput, importance, MinImportance, MaxImportance)
	}
	if estimatedHours <= 0 {
		return Scores{}, fmt.Errorf("%w: estimated hours %d must be positive", ErrInvalidInput, estimatedHours)
	}

	days := float64(DaysUntilDue(dueDate, today))
	hours := float64(estimatedHours)
	imp := float64(importance)

	basic := imp * (1 / days) * (1 / hours)
	smart := urgencyWeight*(1/days) + importanceWeight*(imp/10) + effortWeight*(1/hours)

	return Scores{
		Basic: round3(basic),
		Smart: round3(smart),
	}, nil
}

// DaysUntilDue is the whole-day distance from today to the due date, with
// anything due today or overdue counted as one day.
func DaysUntilDue(dueDate, today time.Time) int {
	days := CalendarDays(dueDate, today)
	if days <= 0 {
		return 1
	}
	return days
}

// CalendarDays is the signed number of calendar days from today to dueDate.
// Only the year, month and day of each value are considered.
func CalendarDays(dueDate, today time.Time) int {
	due := civil(dueDate)
	now := civil(today)
	return int(due.Sub(now).Hours() / 24)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// math.Round rounds half away from zero.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
