// Package dates holds the deadline classifier and the optional date
// range applied to history aggregates.
package dates

import (
	"fmt"
	"time"
)

// OutOfDeadline reports whether deadline falls strictly before today's
// civil date. A task without a deadline is never out of deadline.
// Clock times are ignored: a deadline of today at 00:00 checked at
// 23:59 is still on time.
func OutOfDeadline(deadline *time.Time, today time.Time) bool {
	if deadline == nil {
		return false
	}
	return civil(*deadline).Before(civil(today))
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Range is a closed [From, To] interval over execution dates. Either
// bound may be nil, which leaves that side open.
type Range struct {
	From *time.Time
	To   *time.Time
}

// IsZero reports whether the range has no bounds at all.
func (r Range) IsZero() bool {
	return r.From == nil && r.To == nil
}

// Validate rejects inverted ranges.
func (r Range) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return fmt.Errorf("range start %s is after end %s", r.From.Format(time.DateOnly), r.To.Format(time.DateOnly))
	}
	return nil
}
