package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		desc          string
		columns       []Column
		expectedError string
		expectedRows  int
	}{
		{
			desc: "no columns",
		},
		{
			desc: "equal lengths",
			columns: []Column{
				NewColumn("a", Integer, int64(1), int64(2)),
				NewColumn("b", String, "x", nil),
			},
			expectedRows: 2,
		},
		{
			desc: "columns with no rows",
			columns: []Column{
				NewColumn("a", Integer),
				NewColumn("b", String),
			},
		},
		{
			desc: "duplicate names",
			columns: []Column{
				NewColumn("a", Integer, int64(1)),
				NewColumn("a", String, "x"),
			},
			expectedError: `duplicate column name "a"`,
		},
		{
			desc: "unequal lengths",
			columns: []Column{
				NewColumn("a", Integer, int64(1), int64(2)),
				NewColumn("b", String, "x"),
			},
			expectedError: `column "b" has 1 rows, expected 2`,
		},
		{
			desc: "unknown type",
			columns: []Column{
				NewColumn("a", Type("money"), int64(1)),
			},
			expectedError: `column "a": unknown value type "money"`,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			d, err := New(tc.columns...)
			if tc.expectedError != "" {
				require.EqualError(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectedRows, d.NumRows())
			require.Equal(t, len(tc.columns), d.NumColumns())
		})
	}
}

func TestDatasetAccessors(t *testing.T) {
	d := MustNew(
		NewColumn("UPC", String, "012345678901", nil, "ABC"),
		NewColumn("DolOnHandRetailUSD", Float, 1.5, 2.0, nil),
	)
	require.Equal(t, []string{"UPC", "DolOnHandRetailUSD"}, d.ColumnNames())
	require.Equal(t, []any{nil, 2.0}, d.Row(1))

	col, ok := d.Column("UPC")
	require.True(t, ok)
	require.Equal(t, String, col.Type())
	require.Equal(t, 3, col.Len())
	require.Equal(t, 1, col.NullCount())
	require.Equal(t, "ABC", col.Value(2))

	_, ok = d.Column("upc")
	require.False(t, ok)

	// Mutating the returned names must not affect the dataset.
	names := d.ColumnNames()
	names[0] = "changed"
	require.Equal(t, "UPC", d.ColumnAt(0).Name())
}

func TestTypeOf(t *testing.T) {
	for _, tc := range []struct {
		v        any
		expected Type
	}{
		{v: nil, expected: Null},
		{v: int64(1), expected: Integer},
		{v: int32(1), expected: Integer},
		{v: uint8(1), expected: Integer},
		{v: 1.5, expected: Float},
		{v: apd.New(15, -1), expected: Float},
		{v: "x", expected: String},
		{v: true, expected: Boolean},
		{v: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), expected: Timestamp},
		{v: []string{"x"}, expected: String},
	} {
		require.Equal(t, tc.expected, TypeOf(tc.v), "%T", tc.v)
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		parsed, err := ParseType(string(typ))
		require.NoError(t, err)
		require.Equal(t, typ, parsed)
	}
	_, err := ParseType("int64")
	require.EqualError(t, err, `unknown value type "int64"`)
}

func TestDecimal(t *testing.T) {
	for _, tc := range []struct {
		v        any
		expected string
		ok       bool
	}{
		{v: int64(-5), expected: "-5", ok: true},
		{v: uint64(18446744073709551615), expected: "18446744073709551615", ok: true},
		{v: 2.5, expected: "2.5", ok: true},
		{v: apd.New(12345, -2), expected: "123.45", ok: true},
		{v: "12", ok: false},
		{v: nil, ok: false},
		{v: true, ok: false},
	} {
		d, ok := Decimal(tc.v)
		require.Equal(t, tc.ok, ok, "%v", tc.v)
		if ok {
			require.Equal(t, tc.expected, d.String())
		}
	}
}

func TestFormatAndKey(t *testing.T) {
	require.Equal(t, "NULL", Format(nil))
	require.Equal(t, "12", Format(int64(12)))
	require.Equal(t, "0.1", Format(0.1))
	require.Equal(t, "true", Format(true))
	require.Equal(t, "2024-01-02T03:04:05Z", Format(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	require.Equal(t, Key("1"), Key("1"))
	require.NotEqual(t, Key("1"), Key(int64(1)))
}

func TestKey(t *testing.T) {
	for _, tc := range []struct {
		desc  string
		a, b  any
		equal bool
	}{
		{desc: "decimal scale", a: apd.New(10, -1), b: apd.New(100, -2), equal: true},
		{desc: "decimal and integer", a: apd.New(100, -2), b: int64(1), equal: true},
		{desc: "decimal and float", a: apd.New(15, -1), b: 1.5, equal: true},
		{desc: "negative zero", a: math.Copysign(0, -1), b: apd.New(0, -3), equal: true},
		{desc: "different numbers", a: apd.New(10, -1), b: apd.New(11, -1), equal: false},
		{desc: "infinities", a: math.Inf(1), b: math.Inf(-1), equal: false},
		{desc: "string and number", a: "1", b: int64(1), equal: false},
		{desc: "strings", a: "1.0", b: "1.00", equal: false},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			if tc.equal {
				require.Equal(t, Key(tc.a), Key(tc.b))
			} else {
				require.NotEqual(t, Key(tc.a), Key(tc.b))
			}
		})
	}
}
