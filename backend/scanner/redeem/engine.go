package redeemscan

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yitter/idgenerator-go/idgen"
	"golang.org/x/time/rate"

	"github.com/klppl/digg-invite-brutforce/backend/fetcher"
	"github.com/klppl/digg-invite-brutforce/backend/progress"
	"github.com/klppl/digg-invite-brutforce/backend/state"
	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

func init() {
	idgen.SetIdGenerator(idgen.NewIdGeneratorOptions(1))
}

// Source yields the candidate pool for a run.
type Source interface {
	Generate(count int) (iter.Seq[string], error)
}

// Engine runs one brute-force pass: it generates the pool, deals it to the
// workers and waits for every worker to stop.
type Engine struct {
	fetcher    fetcher.Fetcher
	classifier *verdict.Classifier
	source     Source
	sink       state.Sink
	logger     *logrus.Entry
	onProgress func(progress.Snapshot)

	partition func(tokens []string, n int) [][]string
	now       func() time.Time
	fdLimit   func() int
}

// NewEngine wires the collaborators of a run. sink may be nil.
func NewEngine(f fetcher.Fetcher, classifier *verdict.Classifier, source Source, sink state.Sink, logger *logrus.Entry) *Engine {
	if logger == nil {
		logger = logrus.New().WithField("component", "redeemscan")
	}
	if classifier == nil {
		classifier = verdict.NewClassifier(nil)
	}
	return &Engine{
		fetcher:    f,
		classifier: classifier,
		source:     source,
		sink:       sink,
		logger:     logger,
		partition:  partitionRoundRobin,
		now:        time.Now,
		fdLimit:    fdSoftLimit,
	}
}

// OnProgress registers a consumer for periodic progress snapshots.
func (e *Engine) OnProgress(fn func(progress.Snapshot)) {
	e.onProgress = fn
}

// Run blocks until all workers have stopped. Cancelling ctx drains the run;
// the summary is still returned. Errors are returned only for problems that
// prevent any worker from starting.
func (e *Engine) Run(ctx context.Context, params Params) (*Summary, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if e.fetcher == nil || e.source == nil {
		return nil, pkgerrors.New("engine is missing a fetcher or candidate source")
	}

	total := params.Workers * params.TokensPerWorker
	seq, err := e.source.Generate(total)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "generate candidates")
	}
	tokens := make([]string, 0, total)
	for token := range seq {
		tokens = append(tokens, token)
	}
	parts := e.partition(tokens, params.Workers)

	runID := idgen.NextId()
	log := e.logger.WithField("run", runID)
	start := e.now()
	st := state.New(len(tokens), e.sink)
	reporter := progress.NewReporter(params.ProgressEvery, start, log.WithField("component", "progress"))
	if e.onProgress != nil {
		reporter.OnReport(e.onProgress)
	}
	var limiter *rate.Limiter
	if params.MaxRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(params.MaxRate), 1)
	}

	log.WithFields(logrus.Fields{
		"workers": len(parts),
		"tokens":  len(tokens),
	}).Info("run started")
	if limit := e.fdLimit(); windowCap(limit) > 0 && len(parts) > windowCap(limit) {
		log.WithFields(logrus.Fields{
			"workers": len(parts),
			"fdLimit": limit,
		}).Warn("open file limit is low for this many browser windows, startups may fail")
	}

	reports := make([]WorkerReport, len(parts))
	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(len(parts), func(item interface{}) {
		w := item.(*worker)
		defer wg.Done()
		reports[w.id-1] = w.run(ctx)
	}, ants.WithPanicHandler(func(r interface{}) {
		log.WithField("panic", r).Error("worker pool panic")
	}))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	for i, part := range parts {
		w := &worker{
			id:         i + 1,
			tokens:     part,
			params:     params,
			fetcher:    e.fetcher,
			classifier: e.classifier,
			state:      st,
			reporter:   reporter,
			limiter:    limiter,
			logger:     log.WithField("worker", i+1),
			now:        e.now,
		}
		wg.Add(1)
		if err := pool.Invoke(w); err != nil {
			wg.Done()
			reports[i] = WorkerReport{ID: w.id, State: StateStopped, Assigned: len(part), Orphaned: len(part), Err: err}
		}
	}
	wg.Wait()

	counters := st.Counters()
	summary := &Summary{
		RunID:         runID,
		StartedAt:     start,
		Elapsed:       time.Since(start),
		Total:         counters.Total,
		Completed:     counters.Completed,
		Tested:        counters.Tested,
		Accepted:      st.Accepted(),
		Workers:       reports,
		PersistErrors: st.PersistErrors(),
		Interrupted:   ctx.Err() != nil,
	}
	if e.sink != nil {
		summary.LogPath = e.sink.Path()
	}
	log.WithFields(logrus.Fields{
		"completed": summary.Completed,
		"accepted":  len(summary.Accepted),
		"elapsed":   summary.Elapsed.Round(time.Millisecond),
	}).Info("run finished")
	return summary, nil
}
