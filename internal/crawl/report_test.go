package crawl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReportAdd(t *testing.T) {
	t.Parallel()

	r := &Report{Inserted: 3, Duration: 2 * time.Second}
	r.Add(&Report{Inserted: 4, Duration: 500 * time.Millisecond})

	require.Equal(t, 7, r.Inserted)
	require.Equal(t, 2500*time.Millisecond, r.Duration)
}

func TestReportAddNilIsNoOp(t *testing.T) {
	t.Parallel()

	r := &Report{Inserted: 5, Duration: time.Second}
	got := r.Add(nil)

	require.Same(t, r, got)
	require.Equal(t, 5, r.Inserted)
	require.Equal(t, time.Second, r.Duration)
}

func TestReportAddAssociative(t *testing.T) {
	t.Parallel()

	mk := func() (*Report, *Report, *Report) {
		return &Report{Inserted: 1, Duration: 10 * time.Millisecond},
			&Report{Inserted: 2, Duration: 20 * time.Millisecond},
			&Report{Inserted: 4, Duration: 40 * time.Millisecond}
	}

	a1, b1, c1 := mk()
	left := a1.Add(b1).Add(c1)

	a2, b2, c2 := mk()
	right := a2.Add(b2.Add(c2))

	require.Equal(t, *left, *right)
	require.Equal(t, 7, left.Inserted)
	require.Equal(t, 70*time.Millisecond, left.Duration)
}

func TestReportZeroValueIsIdentity(t *testing.T) {
	t.Parallel()

	r := &Report{Inserted: 9, Duration: 3 * time.Second}
	r.Add(&Report{})

	require.Equal(t, 9, r.Inserted)
	require.Equal(t, 3*time.Second, r.Duration)
}
