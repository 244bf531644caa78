package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/dataexpect/validate"
)

// WriteText renders r with its counts, success percentage and each failed
// expectation with its reason and sample of unexpected values.
func WriteText(w io.Writer, r *validate.Report) error {
	var sb strings.Builder
	status := "PASSED"
	if !r.Success {
		status = "FAILED"
	}
	fmt.Fprintf(&sb, "suite %q: %s\n", r.Suite, status)
	fmt.Fprintf(
		&sb,
		"evaluated: %d, successful: %d, failed: %d, success: %s%%\n",
		r.Statistics.Evaluated,
		r.Statistics.Successful,
		r.Statistics.Failed,
		formatPercent(r.Statistics.SuccessPercent),
	)
	failures := r.Failures()
	if len(failures) > 0 {
		sb.WriteString("failed expectations:\n")
	}
	for _, res := range failures {
		label := ""
		if res.Errored {
			label = " (error)"
		}
		fmt.Fprintf(&sb, "  [%d]%s %s\n", res.Index, label, res.Expectation)
		fmt.Fprintf(&sb, "      reason: %s\n", res.Reason)
		if obs := res.Observed; obs != nil && obs.UnexpectedCount > 0 {
			fmt.Fprintf(
				&sb,
				"      unexpected: %d (%s%%)\n",
				obs.UnexpectedCount,
				formatPercent(obs.UnexpectedPercent),
			)
			if len(obs.UnexpectedSample) > 0 {
				fmt.Fprintf(&sb, "      sample: %s\n", strings.Join(quoteSample(obs.UnexpectedSample), ", "))
			}
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func quoteSample(sample []any) []string {
	ret := formatSample(sample)
	for i, v := range sample {
		if _, ok := v.(string); ok {
			ret[i] = strconv.Quote(ret[i])
		}
	}
	return ret
}
