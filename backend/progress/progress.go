package progress

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultEvery is how many completed attempts pass between reports.
const DefaultEvery = 50

type Snapshot struct {
	Completed         int           `json:"completed"`
	Total             int           `json:"total"`
	Accepted          int           `json:"accepted"`
	Percent           float64       `json:"percent"`
	SecondsPerAttempt float64       `json:"secondsPerAttempt"`
	Elapsed           time.Duration `json:"elapsed"`
	ETA               time.Duration `json:"eta"`
	Timestamp         time.Time     `json:"timestamp"`
}

// Compute derives throughput figures from the raw counters. It is safe for
// completed == 0 and total == 0.
func Compute(completed, total, accepted int, elapsed time.Duration) Snapshot {
	snap := Snapshot{
		Completed: completed,
		Total:     total,
		Accepted:  accepted,
		Elapsed:   elapsed,
	}
	if total > 0 {
		snap.Percent = float64(completed) / float64(total) * 100
	}
	if completed > 0 {
		snap.SecondsPerAttempt = elapsed.Seconds() / float64(completed)
		if remaining := total - completed; remaining > 0 {
			snap.ETA = time.Duration(float64(remaining) * snap.SecondsPerAttempt * float64(time.Second))
		}
	}
	return snap
}

// Reporter emits a snapshot every Every completions. Which worker reports is
// decided by the freshly incremented count, so each multiple fires once.
type Reporter struct {
	every  int
	start  time.Time
	logger *logrus.Entry
	out    func(Snapshot)
}

func NewReporter(every int, start time.Time, logger *logrus.Entry) *Reporter {
	if every <= 0 {
		every = DefaultEvery
	}
	if logger == nil {
		logger = logrus.New().WithField("component", "progress")
	}
	return &Reporter{every: every, start: start, logger: logger}
}

// OnReport registers an extra consumer for emitted snapshots.
func (r *Reporter) OnReport(fn func(Snapshot)) {
	r.out = fn
}

func (r *Reporter) Due(completed int) bool {
	return completed > 0 && completed%r.every == 0
}

// Observe reports if completed lands on a multiple of the interval.
func (r *Reporter) Observe(completed, total, accepted int) bool {
	if !r.Due(completed) {
		return false
	}
	r.Emit(completed, total, accepted)
	return true
}

func (r *Reporter) Emit(completed, total, accepted int) Snapshot {
	snap := Compute(completed, total, accepted, time.Since(r.start))
	snap.Timestamp = time.Now()
	fields := logrus.Fields{
		"completed": completed,
		"total":     total,
		"accepted":  accepted,
	}
	if completed > 0 {
		fields["eta"] = FormatETA(snap.ETA)
		fields["secPerAttempt"] = fmt.Sprintf("%.2f", snap.SecondsPerAttempt)
	}
	r.logger.WithFields(fields).Infof("progress %d/%d (%.1f%%)", completed, total, snap.Percent)
	if r.out != nil {
		r.out(snap)
	}
	return snap
}

// FormatETA renders d as "1h 2m 3s", dropping leading zero units.
func FormatETA(d time.Duration) string {
	secs := int64(d.Round(time.Second) / time.Second)
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
