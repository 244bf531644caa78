package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/dataexpect/dataset"
	"github.com/cockroachdb/dataexpect/expect"
	"github.com/stretchr/testify/require"
)

// posDataset returns a 50 row dataset of 12 digit UPCs and dollar amounts
// between 0 and 490. badUPCs replace the UPCs at the start of the dataset.
func posDataset(badUPCs ...string) *dataset.Dataset {
	const n = 50
	upcs := make([]any, n)
	dollars := make([]any, n)
	for i := 0; i < n; i++ {
		upcs[i] = fmt.Sprintf("%012d", 400000000000+i)
		dollars[i] = float64(i * 10)
	}
	for i, upc := range badUPCs {
		upcs[i] = upc
	}
	return dataset.MustNew(
		dataset.NewColumn("UPC", dataset.String, upcs...),
		dataset.NewColumn("DolOnHandRetailUSD", dataset.Float, dollars...),
	)
}

func posExpectations(mostly float64) *expect.Set {
	return expect.NewSet(
		"pos",
		expect.ColumnExists{ColumnName: "UPC"},
		expect.ColumnValuesMatchRegex{ColumnName: "UPC", Regex: `^\d{11,13}$`, Mostly: expect.Float(mostly)},
		expect.ColumnMinBetween{ColumnName: "DolOnHandRetailUSD", Min: expect.Float(0), Max: expect.Float(1_000_000)},
	)
}

func TestScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("all expectations pass", func(t *testing.T) {
		r := Validate(ctx, posDataset(), posExpectations(0.95))
		require.True(t, r.Success)
		require.Equal(t, Statistics{Evaluated: 3, Successful: 3, SuccessPercent: 100}, r.Statistics)
	})

	t.Run("one bad value within mostly", func(t *testing.T) {
		r := Validate(ctx, posDataset("ABC"), posExpectations(0.95))
		require.True(t, r.Success)
		require.Equal(t, 1, r.Results[1].Observed.UnexpectedCount)
		require.Equal(t, []any{"ABC"}, r.Results[1].Observed.UnexpectedSample)
		require.InDelta(t, 2.0, r.Results[1].Observed.UnexpectedPercent, 1e-9)

		r = Validate(ctx, posDataset("ABC"), posExpectations(1.0))
		require.False(t, r.Success)
		require.False(t, r.Results[1].Success)
		require.Equal(t, `1 of 50 non-null values do not match "^\\d{11,13}$"`, r.Results[1].Reason)
		require.Equal(t, Statistics{Evaluated: 3, Successful: 2, Failed: 1, SuccessPercent: 200.0 / 3}, r.Statistics)
	})

	t.Run("missing column", func(t *testing.T) {
		set := posExpectations(0.95)
		set.Add(expect.ColumnExists{ColumnName: "Nonexistent"}, expect.TableColumnCountEquals{Value: 2})
		r := Validate(ctx, posDataset(), set)
		require.False(t, r.Success)
		require.Len(t, r.Results, 5)
		require.False(t, r.Results[3].Success)
		require.Equal(t, `column "Nonexistent" not found`, r.Results[3].Reason)
		require.True(t, r.Results[4].Success)
		require.Equal(t, []Result{r.Results[3]}, r.Failures())
	})

	t.Run("empty dataset", func(t *testing.T) {
		ds := dataset.MustNew(dataset.NewColumn("UPC", dataset.String))
		r := Validate(ctx, ds, expect.NewSet("empty", expect.TableRowCountBetween{Min: expect.Int(1)}))
		require.False(t, r.Success)
		require.Equal(t, 0, r.Results[0].Observed.Value)
		require.Equal(t, "row count 0 is less than 1", r.Results[0].Reason)
	})
}

func TestProperties(t *testing.T) {
	ctx := context.Background()
	ds := posDataset("ABC", "", "123")
	set := posExpectations(0.9)
	set.Add(
		expect.TableRowCountEquals{Value: 50},
		expect.TableRowCountBetween{Min: expect.Int(50), Max: expect.Int(50)},
		expect.ColumnValuesUnique{ColumnName: "UPC"},
		expect.ColumnValuesNotNull{ColumnName: "missing"},
		expect.ColumnValuesOfType{ColumnName: "DolOnHandRetailUSD", Type: dataset.Integer},
		expect.ColumnExists{ColumnName: "UPC"},
	)

	first := Validate(ctx, ds, set)
	require.Equal(t, len(set.Expectations), first.Statistics.Evaluated)
	require.Equal(t, first.Statistics.Evaluated, len(first.Results))
	allSuccess := true
	for i, r := range first.Results {
		require.Equal(t, i, r.Index)
		require.Equal(t, set.Expectations[i], r.Expectation)
		allSuccess = allSuccess && r.Success
	}
	require.Equal(t, allSuccess, first.Success)
	require.False(t, first.Success)

	for _, c := range []int{1, 2, 16} {
		require.Equal(t, first, Validate(ctx, ds, set, WithConcurrency(c)))
	}

	empty := Validate(ctx, ds, expect.NewSet("empty"))
	require.True(t, empty.Success)
	require.Equal(t, 0, empty.Statistics.Evaluated)
}

func TestBoundaries(t *testing.T) {
	ctx := context.Background()
	ds := posDataset()
	for _, tc := range []struct {
		desc     string
		e        expect.Expectation
		expected bool
	}{
		{desc: "row count between equal bounds", e: expect.TableRowCountBetween{Min: expect.Int(50), Max: expect.Int(50)}, expected: true},
		{desc: "row count between equal bounds off by one", e: expect.TableRowCountBetween{Min: expect.Int(49), Max: expect.Int(49)}, expected: false},
		{desc: "row count unbounded above", e: expect.TableRowCountBetween{Min: expect.Int(1)}, expected: true},
		{desc: "row count unbounded below", e: expect.TableRowCountBetween{Max: expect.Int(10)}, expected: false},
		{desc: "mostly zero with no matches", e: expect.ColumnValuesMatchRegex{ColumnName: "UPC", Regex: `^x$`, Mostly: expect.Float(0)}, expected: true},
		{desc: "default mostly", e: expect.ColumnValuesMatchRegex{ColumnName: "UPC", Regex: `^4`}, expected: true},
		{desc: "regex on numbers", e: expect.ColumnValuesMatchRegex{ColumnName: "DolOnHandRetailUSD", Regex: `0$`}, expected: true},
		{desc: "min at lower bound", e: expect.ColumnMinBetween{ColumnName: "DolOnHandRetailUSD", Min: expect.Float(0), Max: expect.Float(0)}, expected: true},
		{desc: "min above upper bound", e: expect.ColumnMinBetween{ColumnName: "DolOnHandRetailUSD", Min: expect.Float(-10), Max: expect.Float(-1)}, expected: false},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			r := Validate(ctx, ds, expect.NewSet("b", tc.e))
			require.Equal(t, tc.expected, r.Success, "%+v", r.Results[0])
		})
	}
}

func TestKinds(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	ds := dataset.MustNew(
		dataset.NewColumn("id", dataset.Integer, int64(3), int64(1), int64(2), int64(2)),
		dataset.NewColumn("name", dataset.String, "a", nil, "b", "b"),
		dataset.NewColumn("price", dataset.Float, apd.New(150, -2), apd.New(99, -2), nil, 12.5),
		dataset.NewColumn("seen", dataset.Timestamp, ts, ts, ts, "yesterday"),
	)
	for _, tc := range []struct {
		desc     string
		e        expect.Expectation
		success  bool
		errored  bool
		reason   string
		observed *Observed
	}{
		{
			desc:     "column count",
			e:        expect.TableColumnCountEquals{Value: 3},
			reason:   "column count 4 does not equal 3",
			observed: &Observed{Value: 4},
		},
		{
			desc:     "column count between",
			e:        expect.TableColumnCountBetween{Min: expect.Int(1), Max: expect.Int(4)},
			success:  true,
			observed: &Observed{Value: 4},
		},
		{
			desc:    "column count between inverted",
			e:       expect.TableColumnCountBetween{Min: expect.Int(4), Max: expect.Int(1)},
			errored: true,
			reason:  "min 4 is greater than max 1",
		},
		{
			desc:    "row count between unbounded",
			e:       expect.TableRowCountBetween{},
			errored: true,
			reason:  "at least one of min and max must be set",
		},
		{
			desc:     "columns match set",
			e:        expect.TableColumnsMatchSet{Columns: []string{"seen", "price", "name", "id", "id"}},
			success:  true,
			observed: &Observed{Value: []string{"id", "name", "price", "seen"}},
		},
		{
			desc:     "columns match set mismatch",
			e:        expect.TableColumnsMatchSet{Columns: []string{"id", "name", "cost"}},
			reason:   `missing columns ["cost"]; unexpected columns ["price" "seen"]`,
			observed: &Observed{Value: []string{"id", "name", "price", "seen"}},
		},
		{
			desc:     "columns match ordered list",
			e:        expect.TableColumnsMatchOrderedList{Columns: []string{"id", "price", "name", "seen"}},
			reason:   `expected column "price" at position 1, found "name"`,
			observed: &Observed{Value: []string{"id", "name", "price", "seen"}},
		},
		{
			desc:     "columns match ordered list too short",
			e:        expect.TableColumnsMatchOrderedList{Columns: []string{"id", "name", "price"}},
			reason:   `unexpected column "seen" at position 3`,
			observed: &Observed{Value: []string{"id", "name", "price", "seen"}},
		},
		{
			desc:     "not null",
			e:        expect.ColumnValuesNotNull{ColumnName: "name"},
			reason:   "1 of 4 values are null",
			observed: &Observed{ElementCount: 4, MissingCount: 1, UnexpectedCount: 1, UnexpectedPercent: 25},
		},
		{
			desc:     "not null passes",
			e:        expect.ColumnValuesNotNull{ColumnName: "id"},
			success:  true,
			observed: &Observed{ElementCount: 4},
		},
		{
			desc:   "unique",
			e:      expect.ColumnValuesUnique{ColumnName: "id"},
			reason: "2 of 4 non-null values are duplicated",
			observed: &Observed{
				ElementCount:      4,
				UnexpectedCount:   2,
				UnexpectedPercent: 50,
				UnexpectedSample:  []any{int64(2)},
			},
		},
		{
			desc:   "unique ignores nulls",
			e:      expect.ColumnValuesUnique{ColumnName: "name"},
			reason: "2 of 3 non-null values are duplicated",
			observed: &Observed{
				ElementCount:      4,
				MissingCount:      1,
				UnexpectedCount:   2,
				UnexpectedPercent: 200.0 / 3,
				UnexpectedSample:  []any{"b"},
			},
		},
		{
			desc:    "invalid regex",
			e:       expect.ColumnValuesMatchRegex{ColumnName: "name", Regex: `(`},
			errored: true,
			reason:  "invalid regex \"(\": error parsing regexp: missing closing ): `(`",
		},
		{
			desc:    "mostly out of range",
			e:       expect.ColumnValuesMatchRegex{ColumnName: "name", Regex: `a`, Mostly: expect.Float(1.5)},
			errored: true,
			reason:  "mostly must be between 0 and 1, found 1.5",
		},
		{
			desc:    "mostly nan",
			e:       expect.ColumnValuesMatchRegex{ColumnName: "name", Regex: `^x$`, Mostly: expect.Float(math.NaN())},
			errored: true,
			reason:  "mostly must be between 0 and 1, found NaN",
		},
		{
			desc:    "min between nan bound",
			e:       expect.ColumnMinBetween{ColumnName: "price", Min: expect.Float(math.NaN())},
			errored: true,
			reason:  "invalid bound NaN",
		},
		{
			desc:     "min between decimals",
			e:        expect.ColumnMinBetween{ColumnName: "price", Min: expect.Float(1)},
			reason:   "minimum 0.99 is less than 1",
			observed: &Observed{Value: apd.New(99, -2), ElementCount: 4, MissingCount: 1},
		},
		{
			desc:    "min between non-numeric",
			e:       expect.ColumnMinBetween{ColumnName: "name", Min: expect.Float(1)},
			errored: true,
			reason:  `column "name" contains non-numeric value a`,
		},
		{
			desc:    "missing column",
			e:       expect.ColumnValuesUnique{ColumnName: "nope"},
			errored: true,
			reason:  `column "nope" not found`,
		},
		{
			desc:   "of type",
			e:      expect.ColumnValuesOfType{ColumnName: "seen", Type: dataset.Timestamp},
			reason: "1 of 4 non-null values are not of type timestamp",
			observed: &Observed{
				Value:             "timestamp",
				ElementCount:      4,
				UnexpectedCount:   1,
				UnexpectedPercent: 25,
				UnexpectedSample:  []any{"yesterday"},
			},
		},
		{
			desc:    "of unknown type",
			e:       expect.ColumnValuesOfType{ColumnName: "seen", Type: "int64"},
			errored: true,
			reason:  `unknown value type "int64"`,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			r := Validate(ctx, ds, expect.NewSet("kinds", tc.e))
			res := r.Results[0]
			require.Equal(t, tc.success, res.Success)
			require.Equal(t, tc.success, r.Success)
			require.Equal(t, tc.errored, res.Errored)
			require.Equal(t, tc.reason, res.Reason)
			if !tc.errored {
				require.Equal(t, tc.observed, res.Observed)
			}
		})
	}
}

func TestUniqueNumeric(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewColumn("amount", dataset.Float, apd.New(10, -1), apd.New(100, -2), apd.New(2, 0), nil),
	)
	r := Validate(context.Background(), ds, expect.NewSet(
		"unique",
		expect.ColumnValuesUnique{ColumnName: "amount"},
	))
	res := r.Results[0]
	require.False(t, res.Success)
	require.Equal(t, "2 of 3 non-null values are duplicated", res.Reason)
	require.Equal(t, []any{apd.New(10, -1)}, res.Observed.UnexpectedSample)
}

func TestSampleCap(t *testing.T) {
	vals := make([]any, 100)
	for i := range vals {
		vals[i] = fmt.Sprintf("bad%d", i)
	}
	ds := dataset.MustNew(dataset.NewColumn("code", dataset.String, vals...))
	r := Validate(context.Background(), ds, expect.NewSet(
		"cap",
		expect.ColumnValuesMatchRegex{ColumnName: "code", Regex: `^\d+$`},
	))
	obs := r.Results[0].Observed
	require.Equal(t, 100, obs.UnexpectedCount)
	require.Len(t, obs.UnexpectedSample, MaxSampleSize)
	require.Equal(t, "bad0", obs.UnexpectedSample[0])
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := Validate(ctx, posDataset(), posExpectations(1))
	require.False(t, r.Success)
	require.Equal(t, 3, r.Statistics.Evaluated)
	for _, res := range r.Results {
		require.True(t, res.Errored)
		require.Equal(t, "context canceled", res.Reason)
	}
}

func TestResultJSON(t *testing.T) {
	r := Validate(context.Background(), posDataset(), expect.NewSet(
		"json",
		expect.TableRowCountEquals{Value: 49},
	))
	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{
  "suite": "json",
  "success": false,
  "statistics": {"evaluated": 1, "successful": 0, "failed": 1, "success_percent": 0},
  "results": [{
    "index": 0,
    "expectation": {"kind": "table_row_count_equals", "value": 49},
    "success": false,
    "observed": {"value": 50},
    "reason": "row count 50 does not equal 49"
  }]
}`, string(b))
}

func TestResultJSONNonFinite(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewColumn("reading", dataset.Float, math.Inf(-1), 1.0, 2.0),
		dataset.NewColumn("raw", dataset.Float, math.NaN(), math.Inf(1), math.Inf(-1)),
	)
	r := Validate(context.Background(), ds, expect.NewSet(
		"readings",
		expect.ColumnMinBetween{ColumnName: "reading", Min: expect.Float(0)},
		expect.ColumnValuesMatchRegex{ColumnName: "raw", Regex: `^x$`},
	))
	require.Equal(t, "minimum -Inf is less than 0", r.Results[0].Reason)
	b, err := json.Marshal(r.Results)
	require.NoError(t, err)
	require.JSONEq(t, `[
  {
    "index": 0,
    "expectation": {"kind": "column_min_between", "column": "reading", "min": 0},
    "success": false,
    "observed": {"value": "-Inf", "element_count": 3},
    "reason": "minimum -Inf is less than 0"
  },
  {
    "index": 1,
    "expectation": {"kind": "column_values_match_regex", "column": "raw", "regex": "^x$"},
    "success": false,
    "observed": {
      "element_count": 3,
      "unexpected_count": 3,
      "unexpected_percent": 100,
      "unexpected_sample": ["NaN", "+Inf", "-Inf"]
    },
    "reason": "3 of 3 non-null values do not match \"^x$\""
  }
]`, string(b))
}
