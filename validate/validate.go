// Package validate evaluates expectation sets against datasets.
package validate

import (
	"context"
	"time"

	"github.com/cockroachdb/dataexpect/dataset"
	"github.com/cockroachdb/dataexpect/expect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

type Opt func(*validateOpts)

type validateOpts struct {
	concurrency int
	logger      zerolog.Logger
}

// WithConcurrency sets how many expectations are evaluated at once.
func WithConcurrency(c int) Opt {
	return func(o *validateOpts) {
		o.concurrency = c
	}
}

func WithLogger(logger zerolog.Logger) Opt {
	return func(o *validateOpts) {
		o.logger = logger
	}
}

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeError   = "error"
)

var (
	expectationsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dataexpect",
		Subsystem: "validate",
		Name:      "expectations_total",
		Help:      "Number of expectations evaluated, by kind and outcome.",
	}, []string{"kind", "outcome"})
	runsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dataexpect",
		Subsystem: "validate",
		Name:      "runs_total",
		Help:      "Number of validation runs, by outcome.",
	}, []string{"outcome"})
)

func init() {
	for _, o := range []string{outcomeSuccess, outcomeFailure} {
		runsMetric.WithLabelValues(o)
	}
}

// Validate evaluates every expectation in set against ds and returns the
// report. Expectations are evaluated independently and never short-circuit;
// a missing column or invalid parameter only fails its own result. ds is
// never modified, so validating the same inputs twice gives equal reports.
//
// If ctx is cancelled, expectations not yet evaluated fail as errored.
func Validate(
	ctx context.Context, ds *dataset.Dataset, set *expect.Set, inOpts ...Opt,
) *Report {
	opts := validateOpts{
		concurrency: DefaultConcurrency,
		logger:      zerolog.Nop(),
	}
	for _, applyOpt := range inOpts {
		applyOpt(&opts)
	}
	start := time.Now()

	results := make([]Result, len(set.Expectations))
	var g errgroup.Group
	if opts.concurrency > 0 {
		g.SetLimit(opts.concurrency)
	}
	for i, e := range set.Expectations {
		i, e := i, e
		g.Go(func() error {
			var res Result
			if err := ctx.Err(); err != nil {
				res = errored(err)
			} else {
				res = evaluate(ds, e)
			}
			res.Index = i
			res.Expectation = e
			results[i] = res
			expectationsMetric.WithLabelValues(string(e.Kind()), outcome(res)).Inc()
			return nil
		})
	}
	// Evaluation never returns an error.
	_ = g.Wait()

	report := newReport(set.Name, results)
	runOutcome := outcomeSuccess
	if !report.Success {
		runOutcome = outcomeFailure
	}
	runsMetric.WithLabelValues(runOutcome).Inc()
	opts.logger.Debug().
		Str("suite", set.Name).
		Int("evaluated", report.Statistics.Evaluated).
		Int("failed", report.Statistics.Failed).
		Dur("took", time.Since(start)).
		Msgf("validated dataset")
	return report
}

func outcome(r Result) string {
	switch {
	case r.Errored:
		return outcomeError
	case r.Success:
		return outcomeSuccess
	default:
		return outcomeFailure
	}
}
