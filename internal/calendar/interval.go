package calendar

import (
	"errors"
	"time"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// TimeRange представляет временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange создаёт интервал. Нулевые границы и Start >= End отвергаются:
// вырожденный интервал не может быть записью.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrInvalidTimeRange
	}
	if !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// Overlaps проверяет пересечение полуоткрытых интервалов:
// [a.Start, a.End) и [b.Start, b.End) пересекаются, если a.Start < b.End && b.Start < a.End.
// Стык (a.End == b.Start) пересечением не считается.
func (a TimeRange) Overlaps(b TimeRange) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
