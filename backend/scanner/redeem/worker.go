package redeemscan

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/klppl/digg-invite-brutforce/backend/fetcher"
	"github.com/klppl/digg-invite-brutforce/backend/progress"
	"github.com/klppl/digg-invite-brutforce/backend/state"
	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

type WorkerState int32

const (
	StateStarting WorkerState = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s WorkerState) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StartupError means the worker never obtained a browser session.
type StartupError struct {
	Worker int
	Err    error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("worker %d: browser startup failed: %v", e.Worker, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// WorkerReport is what a worker hands back once it has stopped.
type WorkerReport struct {
	ID       int
	State    WorkerState
	Assigned int
	Tested   int
	// Orphaned counts assigned tokens never reached because the worker
	// failed or drained early.
	Orphaned int
	Err      error
}

type worker struct {
	id         int
	tokens     []string
	params     Params
	fetcher    fetcher.Fetcher
	classifier *verdict.Classifier
	state      *state.State
	reporter   *progress.Reporter
	limiter    *rate.Limiter
	logger     *logrus.Entry
	now        func() time.Time

	status atomic.Int32
}

func (w *worker) State() WorkerState {
	return WorkerState(w.status.Load())
}

func (w *worker) setState(s WorkerState) {
	w.status.Store(int32(s))
}

// run drives the worker from Starting to Stopped. Cancelling ctx drains the
// worker: an in-flight attempt finishes, no new attempt starts.
func (w *worker) run(ctx context.Context) (report WorkerReport) {
	report = WorkerReport{ID: w.id, Assigned: len(w.tokens)}
	next := 0
	w.setState(StateStarting)
	defer func() {
		if r := recover(); r != nil {
			report.Err = pkgerrors.Errorf("worker %d panic: %v", w.id, r)
			w.logger.WithField("panic", r).Error("worker crashed")
		}
		report.Orphaned = len(w.tokens) - next
		w.setState(StateStopped)
		report.State = StateStopped
		w.logger.WithField("tested", report.Tested).Info("worker finished")
	}()

	sess, err := w.openSession(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return report
		}
		report.Err = &StartupError{Worker: w.id, Err: err}
		w.logger.WithError(err).Error("worker could not start a browser")
		return report
	}
	defer func() {
		if err := sess.Close(); err != nil {
			w.logger.WithError(err).Warn("close browser session")
		}
	}()

	w.setState(StateRunning)
	w.logger.WithField("assigned", len(w.tokens)).Info("worker started")

	// In-flight fetches are not interrupted by a drain; they stay bounded by
	// the page load timeout.
	fetchCtx := context.WithoutCancel(ctx)
	for next < len(w.tokens) {
		if ctx.Err() != nil {
			w.setState(StateDraining)
			return report
		}
		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				w.setState(StateDraining)
				return report
			}
		}
		token := w.tokens[next]
		next++
		if !w.state.ClaimIfUnseen(token) {
			continue
		}

		w.attempt(fetchCtx, sess, token)
		report.Tested++
		if n := w.state.IncrementCompleted(); w.reporter.Due(n) {
			c := w.state.Counters()
			w.reporter.Emit(n, c.Total, c.Accepted)
		}

		if next < len(w.tokens) && !w.pause(ctx) {
			w.setState(StateDraining)
			return report
		}
	}
	return report
}

func (w *worker) openSession(ctx context.Context) (fetcher.Session, error) {
	var sess fetcher.Session
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	attempts := w.params.StartupAttempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(attempts-1)), ctx)
	err := backoff.Retry(func() error {
		s, err := w.fetcher.Open(ctx)
		if err != nil {
			w.logger.WithError(err).Warn("browser start attempt failed")
			return err
		}
		sess = s
		return nil
	}, b)
	return sess, err
}

// attempt fetches and classifies one token. Fetch failures count as rejected
// and are not retried.
func (w *worker) attempt(ctx context.Context, sess fetcher.Session, token string) verdict.Verdict {
	target := w.params.TargetURL(token)
	log := w.logger.WithField("token", token)

	page, err := sess.Fetch(ctx, target)
	if err != nil {
		log.WithError(err).Warn("fetch failed, counted as rejected")
		return verdict.Rejected
	}

	res := w.classifier.Classify(page)
	if !res.Verdict.IsAccepted() {
		log.Debug(res.Reason)
		return res.Verdict
	}

	rec := state.Record{
		Token:   token,
		URL:     target,
		FoundAt: w.now(),
		Verdict: res.Verdict,
		Reason:  res.Reason,
	}
	if err := w.state.RecordAccepted(rec); err != nil {
		log.WithError(err).Error("accepted token not persisted")
	}
	hit := log.WithFields(logrus.Fields{"url": target, "verdict": res.Verdict.String()})
	if res.Verdict == verdict.AcceptedLowConfidence {
		hit.Warn(res.Reason)
	} else {
		hit.Info(res.Reason)
	}
	return res.Verdict
}

func (w *worker) pause(ctx context.Context) bool {
	if w.params.Delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(w.params.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
