// Package cronexpr wraps github.com/adhocore/gronx for cron expression
// validation and next-occurrence computation, following the same
// validate-then-NextTickAfter idiom the teacher used for its own
// cron jobs.
package cronexpr

import (
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

// Validate reports whether expr is a syntactically valid 5 or 6 field
// cron expression.
func Validate(expr string) error {
	if !gronx.New().IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q", expr)
	}
	return nil
}

// Next computes the first occurrence of expr strictly after from. If tz
// is non-empty, from is converted into that IANA zone before the
// expression is evaluated and the result is converted back to UTC, so
// "0 9 * * *" with tz "America/New_York" fires at 9am Eastern
// regardless of the caller's local zone.
func Next(expr string, from time.Time, tz string) (time.Time, error) {
	if err := Validate(expr); err != nil {
		return time.Time{}, err
	}
	eval := from
	var loc *time.Location
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("load timezone %q: %w", tz, err)
		}
		loc = l
		eval = from.In(loc)
	}
	next, err := gronx.NextTickAfter(expr, eval, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("compute next tick for %q: %w", expr, err)
	}
	if loc != nil {
		next = next.In(loc)
	}
	return next.UTC(), nil
}
