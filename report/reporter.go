// Package report renders and persists validation reports.
package report

import (
	"fmt"
	"io"

	"github.com/cockroachdb/dataexpect/dataset"
	"github.com/cockroachdb/dataexpect/validate"
	"github.com/rs/zerolog"
)

// ReportableObject is an object a Reporter can report.
type ReportableObject interface{}

type Reporter interface {
	Report(obj ReportableObject)
	Close()
}

// StatusReport is a free-form progress message.
type StatusReport struct {
	Info string
}

// FailedExpectation is reported for every failed result of a run.
type FailedExpectation struct {
	validate.Result
}

// Summary is reported once per run, after its failures.
type Summary struct {
	*validate.Report
}

// Emit reports each failure of r followed by its summary.
func Emit(reporter Reporter, r *validate.Report) {
	for _, res := range r.Failures() {
		reporter.Report(FailedExpectation{Result: res})
	}
	reporter.Report(Summary{Report: r})
}

type CombinedReporter struct {
	Reporters []Reporter
}

func (c CombinedReporter) Report(obj ReportableObject) {
	for _, r := range c.Reporters {
		r.Report(obj)
	}
}

func (c CombinedReporter) Close() {
	for _, r := range c.Reporters {
		r.Close()
	}
}

// LogReporter reports to `zerolog`.
type LogReporter struct {
	zerolog.Logger
}

func (l LogReporter) Report(obj ReportableObject) {
	switch obj := obj.(type) {
	case StatusReport:
		l.Info().Msg(obj.Info)
	case FailedExpectation:
		ev := l.Warn().
			Int("index", obj.Index).
			Str("kind", string(obj.Expectation.Kind()))
		if col := obj.Expectation.Column(); col != "" {
			ev = ev.Str("column", col)
		}
		if obj.Observed != nil && obj.Observed.UnexpectedCount > 0 {
			ev = ev.Int("unexpected_count", obj.Observed.UnexpectedCount)
			if len(obj.Observed.UnexpectedSample) > 0 {
				ev = ev.Strs("unexpected_sample", formatSample(obj.Observed.UnexpectedSample))
			}
		}
		ev.Bool("errored", obj.Errored).
			Str("reason", obj.Reason).
			Msgf("expectation failed")
	case Summary:
		lvl := zerolog.InfoLevel
		if !obj.Success {
			lvl = zerolog.WarnLevel
		}
		l.WithLevel(lvl).
			Str("suite", obj.Suite).
			Bool("success", obj.Success).
			Int("evaluated", obj.Statistics.Evaluated).
			Int("successful", obj.Statistics.Successful).
			Int("failed", obj.Statistics.Failed).
			Float64("success_percent", obj.Statistics.SuccessPercent).
			Msgf("validation complete")
	default:
		l.Error().
			Str("type", fmt.Sprintf("%T", obj)).
			Msgf("unknown object type")
	}
}

func (l LogReporter) Close() {
}

// TextReporter writes a human-readable rendering of each summary to W.
type TextReporter struct {
	W io.Writer
}

func (t TextReporter) Report(obj ReportableObject) {
	switch obj := obj.(type) {
	case StatusReport:
		_, _ = fmt.Fprintln(t.W, obj.Info)
	case Summary:
		_ = WriteText(t.W, obj.Report)
	}
}

func (t TextReporter) Close() {
}

func formatSample(sample []any) []string {
	ret := make([]string, len(sample))
	for i, v := range sample {
		ret[i] = dataset.Format(v)
	}
	return ret
}
