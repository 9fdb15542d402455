package progress

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestComputeZeroCompleted(t *testing.T) {
	snap := Compute(0, 100, 0, 5*time.Second)
	if snap.Percent != 0 || snap.SecondsPerAttempt != 0 || snap.ETA != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap := Compute(0, 0, 0, 0); snap.Percent != 0 {
		t.Fatalf("unexpected snapshot for empty run %+v", snap)
	}
}

func TestComputeETA(t *testing.T) {
	snap := Compute(50, 200, 1, 100*time.Second)
	if snap.Percent != 25 {
		t.Fatalf("expected 25%%, got %v", snap.Percent)
	}
	if snap.SecondsPerAttempt != 2 {
		t.Fatalf("expected 2s per attempt, got %v", snap.SecondsPerAttempt)
	}
	if snap.ETA != 300*time.Second {
		t.Fatalf("expected 300s ETA, got %v", snap.ETA)
	}
}

func TestReporterFiresOnMultiples(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	r := NewReporter(50, time.Now(), logger.WithField("component", "test"))
	var got []int
	r.OnReport(func(s Snapshot) { got = append(got, s.Completed) })
	for n := 0; n <= 160; n++ {
		r.Observe(n, 160, 0)
	}
	if len(got) != 3 || got[0] != 50 || got[1] != 100 || got[2] != 150 {
		t.Fatalf("unexpected reports %v", got)
	}
}

func TestFormatETA(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m 5s"},
		{2*time.Hour + time.Minute + 9*time.Second, "2h 1m 9s"},
	}
	for _, tc := range cases {
		if got := FormatETA(tc.d); got != tc.want {
			t.Fatalf("FormatETA(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
