package validate

import (
	"encoding/json"
	"math"

	"github.com/cockroachdb/dataexpect/dataset"
	"github.com/cockroachdb/dataexpect/expect"
)

// MaxSampleSize caps the number of offending values kept per result.
const MaxSampleSize = 20

// Observed summarizes what an expectation saw in the dataset.
type Observed struct {
	// Value is the observed aggregate, e.g. a row count, the column names or
	// a column minimum.
	Value             any     `json:"value,omitempty"`
	ElementCount      int     `json:"element_count,omitempty"`
	MissingCount      int     `json:"missing_count,omitempty"`
	UnexpectedCount   int     `json:"unexpected_count,omitempty"`
	UnexpectedPercent float64 `json:"unexpected_percent,omitempty"`
	UnexpectedSample  []any   `json:"unexpected_sample,omitempty"`
}

// MarshalJSON encodes non-finite floats, which JSON cannot represent, as
// their text form.
func (o Observed) MarshalJSON() ([]byte, error) {
	type observed Observed
	out := observed(o)
	out.Value = jsonValue(o.Value)
	if o.UnexpectedSample != nil {
		out.UnexpectedSample = make([]any, len(o.UnexpectedSample))
		for i, v := range o.UnexpectedSample {
			out.UnexpectedSample[i] = jsonValue(v)
		}
	}
	return json.Marshal(out)
}

func jsonValue(v any) any {
	switch f := v.(type) {
	case float64:
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return dataset.Format(f)
		}
	case float32:
		if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
			return dataset.Format(f)
		}
	}
	return v
}

// Result is the outcome of evaluating one expectation.
type Result struct {
	// Index is the position of the expectation in its set.
	Index       int
	Expectation expect.Expectation
	Success     bool
	Observed    *Observed
	// Reason explains a failure.
	Reason string
	// Errored is set if the expectation could not be evaluated, e.g. because
	// its column is missing or its parameters are invalid.
	Errored bool
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index       int         `json:"index"`
		Expectation expect.Spec `json:"expectation"`
		Success     bool        `json:"success"`
		Observed    *Observed   `json:"observed,omitempty"`
		Reason      string      `json:"reason,omitempty"`
		Errored     bool        `json:"errored,omitempty"`
	}{
		Index:       r.Index,
		Expectation: expect.SpecOf(r.Expectation),
		Success:     r.Success,
		Observed:    r.Observed,
		Reason:      r.Reason,
		Errored:     r.Errored,
	})
}

type Statistics struct {
	Evaluated      int     `json:"evaluated"`
	Successful     int     `json:"successful"`
	Failed         int     `json:"failed"`
	SuccessPercent float64 `json:"success_percent"`
}

// Report aggregates the results of validating one dataset against one set.
type Report struct {
	Suite      string     `json:"suite"`
	Success    bool       `json:"success"`
	Statistics Statistics `json:"statistics"`
	Results    []Result   `json:"results"`
}

// Failures returns the failed results in set order.
func (r *Report) Failures() []Result {
	var ret []Result
	for _, res := range r.Results {
		if !res.Success {
			ret = append(ret, res)
		}
	}
	return ret
}

func newReport(suite string, results []Result) *Report {
	r := &Report{Suite: suite, Success: true, Results: results}
	for _, res := range results {
		r.Statistics.Evaluated++
		if res.Success {
			r.Statistics.Successful++
		} else {
			r.Statistics.Failed++
			r.Success = false
		}
	}
	if r.Statistics.Evaluated > 0 {
		r.Statistics.SuccessPercent = percent(r.Statistics.Successful, r.Statistics.Evaluated)
	} else {
		r.Statistics.SuccessPercent = 100
	}
	return r
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
