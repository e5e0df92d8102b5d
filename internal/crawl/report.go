package crawl

import (
	"fmt"
	"time"
)

// Report accumulates the totals of one crawl run: how many observation rows
// were inserted and how much wall-clock time was spent. The zero value is the
// identity element of Add.
type Report struct {
	Inserted int
	Duration time.Duration
}

// Add folds other into r pointwise and returns r. Adding nil is a no-op, so
// partial results can be folded without guarding. Add is commutative and
// associative; the fold order never changes the totals.
func (r *Report) Add(other *Report) *Report {
	if other == nil {
		return r
	}
	r.Inserted += other.Inserted
	r.Duration += other.Duration
	return r
}

func (r *Report) String() string {
	return fmt.Sprintf("inserted=%d duration=%dms", r.Inserted, r.Duration.Milliseconds())
}
