package redeemscan

import (
	"time"

	"github.com/klppl/digg-invite-brutforce/backend/state"
	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

// Summary is the final account of a run.
type Summary struct {
	RunID     int64
	StartedAt time.Time
	Elapsed   time.Duration
	Total     int
	Completed int
	// Tested is the number of distinct tokens claimed.
	Tested        int
	Accepted      []state.Record
	LogPath       string
	Workers       []WorkerReport
	PersistErrors []error
	Interrupted   bool
}

func (s *Summary) Confirmed() []state.Record {
	return s.filter(verdict.Accepted)
}

func (s *Summary) LowConfidence() []state.Record {
	return s.filter(verdict.AcceptedLowConfidence)
}

func (s *Summary) filter(v verdict.Verdict) []state.Record {
	out := make([]state.Record, 0, len(s.Accepted))
	for _, rec := range s.Accepted {
		if rec.Verdict == v {
			out = append(out, rec)
		}
	}
	return out
}

// FailedWorkers returns the reports of workers that stopped with an error.
func (s *Summary) FailedWorkers() []WorkerReport {
	var out []WorkerReport
	for _, r := range s.Workers {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Orphaned is the number of tokens left untested by failed or drained workers.
func (s *Summary) Orphaned() int {
	n := 0
	for _, r := range s.Workers {
		n += r.Orphaned
	}
	return n
}
