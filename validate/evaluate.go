package validate

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/dataexpect/dataset"
	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/dataexpect/expect"
	"github.com/cockroachdb/errors"
)

func evaluate(ds *dataset.Dataset, e expect.Expectation) Result {
	switch e := e.(type) {
	case expect.TableRowCountEquals:
		return countEquals("row", ds.NumRows(), e.Value)
	case expect.TableRowCountBetween:
		return countBetween("row", ds.NumRows(), e.Min, e.Max)
	case expect.TableColumnCountEquals:
		return countEquals("column", ds.NumColumns(), e.Value)
	case expect.TableColumnCountBetween:
		return countBetween("column", ds.NumColumns(), e.Min, e.Max)
	case expect.TableColumnsMatchSet:
		return columnsMatchSet(ds, e)
	case expect.TableColumnsMatchOrderedList:
		return columnsMatchOrderedList(ds, e)
	case expect.ColumnExists:
		if _, ok := ds.Column(e.ColumnName); !ok {
			return failure(nil, "column %q not found", e.ColumnName)
		}
		return success(nil)
	}

	col, ok := ds.Column(e.Column())
	if !ok {
		return errored(errorutil.NewEvaluationErrorf("column %q not found", e.Column()))
	}
	switch e := e.(type) {
	case expect.ColumnValuesNotNull:
		return valuesNotNull(col)
	case expect.ColumnValuesUnique:
		return valuesUnique(col)
	case expect.ColumnValuesMatchRegex:
		return valuesMatchRegex(col, e)
	case expect.ColumnMinBetween:
		return minBetween(col, e)
	case expect.ColumnValuesOfType:
		return valuesOfType(col, e)
	default:
		return errored(errors.AssertionFailedf("unhandled expectation kind %s", e.Kind()))
	}
}

func success(observed *Observed) Result {
	return Result{Success: true, Observed: observed}
}

func failure(observed *Observed, format string, args ...interface{}) Result {
	return Result{Observed: observed, Reason: fmt.Sprintf(format, args...)}
}

func errored(err error) Result {
	return Result{Reason: err.Error(), Errored: true}
}

func countEquals(what string, n int, expected int) Result {
	observed := &Observed{Value: n}
	if n != expected {
		return failure(observed, "%s count %d does not equal %d", what, n, expected)
	}
	return success(observed)
}

func countBetween(what string, n int, lo, hi *int) Result {
	switch {
	case lo == nil && hi == nil:
		return errored(errorutil.NewEvaluationErrorf("at least one of min and max must be set"))
	case lo != nil && hi != nil && *lo > *hi:
		return errored(errorutil.NewEvaluationErrorf("min %d is greater than max %d", *lo, *hi))
	}
	observed := &Observed{Value: n}
	if lo != nil && n < *lo {
		return failure(observed, "%s count %d is less than %d", what, n, *lo)
	}
	if hi != nil && n > *hi {
		return failure(observed, "%s count %d is greater than %d", what, n, *hi)
	}
	return success(observed)
}

func columnsMatchSet(ds *dataset.Dataset, e expect.TableColumnsMatchSet) Result {
	names := ds.ColumnNames()
	observed := &Observed{Value: names}
	have := make(map[string]struct{}, len(names))
	for _, n := range names {
		have[n] = struct{}{}
	}
	want := make(map[string]struct{}, len(e.Columns))
	var missing []string
	for _, n := range e.Columns {
		if _, ok := want[n]; ok {
			continue
		}
		want[n] = struct{}{}
		if _, ok := have[n]; !ok {
			missing = append(missing, n)
		}
	}
	var extra []string
	for _, n := range names {
		if _, ok := want[n]; !ok {
			extra = append(extra, n)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return success(observed)
	}
	sort.Strings(missing)
	sort.Strings(extra)
	var reasons []string
	if len(missing) > 0 {
		reasons = append(reasons, fmt.Sprintf("missing columns %q", missing))
	}
	if len(extra) > 0 {
		reasons = append(reasons, fmt.Sprintf("unexpected columns %q", extra))
	}
	return failure(observed, "%s", strings.Join(reasons, "; "))
}

func columnsMatchOrderedList(ds *dataset.Dataset, e expect.TableColumnsMatchOrderedList) Result {
	names := ds.ColumnNames()
	observed := &Observed{Value: names}
	for i := 0; i < len(names) || i < len(e.Columns); i++ {
		switch {
		case i >= len(names):
			return failure(observed, "expected column %q at position %d, found no column", e.Columns[i], i)
		case i >= len(e.Columns):
			return failure(observed, "unexpected column %q at position %d", names[i], i)
		case names[i] != e.Columns[i]:
			return failure(observed, "expected column %q at position %d, found %q", e.Columns[i], i, names[i])
		}
	}
	return success(observed)
}

// columnStats tracks the unexpected values of a column-level expectation.
type columnStats struct {
	observed *Observed
	nonNull  int
}

func newColumnStats(col dataset.Column) *columnStats {
	nulls := col.NullCount()
	return &columnStats{
		observed: &Observed{ElementCount: col.Len(), MissingCount: nulls},
		nonNull:  col.Len() - nulls,
	}
}

func (s *columnStats) unexpected(v any) {
	s.observed.UnexpectedCount++
	if len(s.observed.UnexpectedSample) < MaxSampleSize {
		s.observed.UnexpectedSample = append(s.observed.UnexpectedSample, v)
	}
}

// finish computes the unexpected percentage over total values.
func (s *columnStats) finish(total int) *Observed {
	s.observed.UnexpectedPercent = percent(s.observed.UnexpectedCount, total)
	return s.observed
}

func valuesNotNull(col dataset.Column) Result {
	stats := newColumnStats(col)
	stats.observed.UnexpectedCount = stats.observed.MissingCount
	observed := stats.finish(col.Len())
	if observed.UnexpectedCount > 0 {
		return failure(observed, "%d of %d values are null", observed.UnexpectedCount, col.Len())
	}
	return success(observed)
}

func valuesUnique(col dataset.Column) Result {
	stats := newColumnStats(col)
	counts := make(map[string]int, col.Len())
	for i := 0; i < col.Len(); i++ {
		if v := col.Value(i); v != nil {
			counts[dataset.Key(v)]++
		}
	}
	sampled := make(map[string]struct{})
	for i := 0; i < col.Len(); i++ {
		v := col.Value(i)
		if v == nil {
			continue
		}
		k := dataset.Key(v)
		if counts[k] < 2 {
			continue
		}
		stats.observed.UnexpectedCount++
		if _, ok := sampled[k]; !ok && len(stats.observed.UnexpectedSample) < MaxSampleSize {
			sampled[k] = struct{}{}
			stats.observed.UnexpectedSample = append(stats.observed.UnexpectedSample, v)
		}
	}
	observed := stats.finish(stats.nonNull)
	if observed.UnexpectedCount > 0 {
		return failure(observed, "%d of %d non-null values are duplicated", observed.UnexpectedCount, stats.nonNull)
	}
	return success(observed)
}

func valuesMatchRegex(col dataset.Column, e expect.ColumnValuesMatchRegex) Result {
	mostly := e.MostlyOrDefault()
	if math.IsNaN(mostly) || mostly < 0 || mostly > 1 {
		return errored(errorutil.NewEvaluationErrorf("mostly must be between 0 and 1, found %v", mostly))
	}
	re, err := regexp.Compile(e.Regex)
	if err != nil {
		return errored(errorutil.NewEvaluationErrorf("invalid regex %q: %v", e.Regex, err))
	}
	stats := newColumnStats(col)
	for i := 0; i < col.Len(); i++ {
		v := col.Value(i)
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			s = dataset.Format(v)
		}
		if !re.MatchString(s) {
			stats.unexpected(v)
		}
	}
	observed := stats.finish(stats.nonNull)
	if stats.nonNull == 0 {
		return success(observed)
	}
	matched := float64(stats.nonNull-observed.UnexpectedCount) / float64(stats.nonNull)
	if matched < mostly {
		return failure(
			observed,
			"%d of %d non-null values do not match %q",
			observed.UnexpectedCount,
			stats.nonNull,
			e.Regex,
		)
	}
	return success(observed)
}

func minBetween(col dataset.Column, e expect.ColumnMinBetween) Result {
	switch {
	case e.Min == nil && e.Max == nil:
		return errored(errorutil.NewEvaluationErrorf("at least one of min and max must be set"))
	case e.Min != nil && e.Max != nil && *e.Min > *e.Max:
		return errored(errorutil.NewEvaluationErrorf("min %v is greater than max %v", *e.Min, *e.Max))
	}
	lo, err := boundDecimal(e.Min)
	if err != nil {
		return errored(err)
	}
	hi, err := boundDecimal(e.Max)
	if err != nil {
		return errored(err)
	}

	stats := newColumnStats(col)
	var minValue any
	var minDecimal *apd.Decimal
	for i := 0; i < col.Len(); i++ {
		v := col.Value(i)
		if v == nil {
			continue
		}
		d, ok := dataset.Decimal(v)
		if !ok || d.Form == apd.NaN {
			return errored(errorutil.NewEvaluationErrorf(
				"column %q contains non-numeric value %s", col.Name(), dataset.Format(v),
			))
		}
		if minDecimal == nil || d.Cmp(minDecimal) < 0 {
			minValue, minDecimal = v, d
		}
	}
	observed := stats.finish(stats.nonNull)
	if minDecimal == nil {
		return failure(observed, "column %q has no non-null values", col.Name())
	}
	observed.Value = minValue
	if lo != nil && minDecimal.Cmp(lo) < 0 {
		return failure(observed, "minimum %s is less than %s", dataset.Format(minValue), formatBound(*e.Min))
	}
	if hi != nil && minDecimal.Cmp(hi) > 0 {
		return failure(observed, "minimum %s is greater than %s", dataset.Format(minValue), formatBound(*e.Max))
	}
	return success(observed)
}

func boundDecimal(f *float64) (*apd.Decimal, error) {
	if f == nil {
		return nil, nil
	}
	if math.IsNaN(*f) {
		return nil, errorutil.NewEvaluationErrorf("invalid bound %v", *f)
	}
	d, err := new(apd.Decimal).SetFloat64(*f)
	if err != nil {
		return nil, errorutil.NewEvaluationErrorf("invalid bound %v: %v", *f, err)
	}
	return d, nil
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func valuesOfType(col dataset.Column, e expect.ColumnValuesOfType) Result {
	typ, err := dataset.ParseType(string(e.Type))
	if err != nil {
		return errored(errorutil.NewEvaluationErrorf("%v", err))
	}
	stats := newColumnStats(col)
	for i := 0; i < col.Len(); i++ {
		v := col.Value(i)
		if v != nil && dataset.TypeOf(v) != typ {
			stats.unexpected(v)
		}
	}
	observed := stats.finish(stats.nonNull)
	observed.Value = string(col.Type())
	if observed.UnexpectedCount > 0 {
		return failure(
			observed,
			"%d of %d non-null values are not of type %s",
			observed.UnexpectedCount,
			stats.nonNull,
			typ,
		)
	}
	return success(observed)
}
