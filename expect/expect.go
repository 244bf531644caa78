// Package expect defines the declarative constraints a dataset is validated
// against.
package expect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/dataexpect/dataset"
)

// Kind identifies the type of an expectation.
type Kind string

const (
	KindTableRowCountEquals          Kind = "table_row_count_equals"
	KindTableRowCountBetween         Kind = "table_row_count_between"
	KindTableColumnCountEquals       Kind = "table_column_count_equals"
	KindTableColumnCountBetween      Kind = "table_column_count_between"
	KindTableColumnsMatchSet         Kind = "table_columns_match_set"
	KindTableColumnsMatchOrderedList Kind = "table_columns_match_ordered_list"
	KindColumnExists                 Kind = "column_exists"
	KindColumnValuesNotNull          Kind = "column_values_not_null"
	KindColumnValuesUnique           Kind = "column_values_unique"
	KindColumnValuesMatchRegex       Kind = "column_values_match_regex"
	KindColumnMinBetween             Kind = "column_min_between"
	KindColumnValuesOfType           Kind = "column_values_of_type"
)

// Kinds lists every supported kind.
var Kinds = []Kind{
	KindTableRowCountEquals,
	KindTableRowCountBetween,
	KindTableColumnCountEquals,
	KindTableColumnCountBetween,
	KindTableColumnsMatchSet,
	KindTableColumnsMatchOrderedList,
	KindColumnExists,
	KindColumnValuesNotNull,
	KindColumnValuesUnique,
	KindColumnValuesMatchRegex,
	KindColumnMinBetween,
	KindColumnValuesOfType,
}

// IsColumnLevel reports whether expectations of this kind target a column.
func (k Kind) IsColumnLevel() bool {
	switch k {
	case KindColumnExists, KindColumnValuesNotNull, KindColumnValuesUnique,
		KindColumnValuesMatchRegex, KindColumnMinBetween, KindColumnValuesOfType:
		return true
	}
	return false
}

// Expectation is an immutable constraint over a dataset.
type Expectation interface {
	Kind() Kind
	// Column is the column the expectation targets, or empty for table level
	// expectations.
	Column() string
	fmt.Stringer
}

// DefaultMostly is the fraction of values that must match a regex
// expectation when none is specified.
const DefaultMostly = 1.0

type TableRowCountEquals struct {
	Value int
}

// TableRowCountBetween bounds the row count. A nil bound is unbounded.
type TableRowCountBetween struct {
	Min, Max *int
}

type TableColumnCountEquals struct {
	Value int
}

// TableColumnCountBetween bounds the column count. A nil bound is unbounded.
type TableColumnCountBetween struct {
	Min, Max *int
}

type TableColumnsMatchSet struct {
	Columns []string
}

type TableColumnsMatchOrderedList struct {
	Columns []string
}

type ColumnExists struct {
	ColumnName string
}

type ColumnValuesNotNull struct {
	ColumnName string
}

type ColumnValuesUnique struct {
	ColumnName string
}

// ColumnValuesMatchRegex expects at least Mostly of the column's non-null
// values to match Regex. Values which are not strings are matched against
// their formatted form. A nil Mostly means DefaultMostly.
type ColumnValuesMatchRegex struct {
	ColumnName string
	Regex      string
	Mostly     *float64
}

// ColumnMinBetween bounds the minimum numeric value of a column. A nil bound
// is unbounded.
type ColumnMinBetween struct {
	ColumnName string
	Min, Max   *float64
}

type ColumnValuesOfType struct {
	ColumnName string
	Type       dataset.Type
}

var (
	_ Expectation = TableRowCountEquals{}
	_ Expectation = TableRowCountBetween{}
	_ Expectation = TableColumnCountEquals{}
	_ Expectation = TableColumnCountBetween{}
	_ Expectation = TableColumnsMatchSet{}
	_ Expectation = TableColumnsMatchOrderedList{}
	_ Expectation = ColumnExists{}
	_ Expectation = ColumnValuesNotNull{}
	_ Expectation = ColumnValuesUnique{}
	_ Expectation = ColumnValuesMatchRegex{}
	_ Expectation = ColumnMinBetween{}
	_ Expectation = ColumnValuesOfType{}
)

func (TableRowCountEquals) Kind() Kind          { return KindTableRowCountEquals }
func (TableRowCountBetween) Kind() Kind         { return KindTableRowCountBetween }
func (TableColumnCountEquals) Kind() Kind       { return KindTableColumnCountEquals }
func (TableColumnCountBetween) Kind() Kind      { return KindTableColumnCountBetween }
func (TableColumnsMatchSet) Kind() Kind         { return KindTableColumnsMatchSet }
func (TableColumnsMatchOrderedList) Kind() Kind { return KindTableColumnsMatchOrderedList }
func (ColumnExists) Kind() Kind                 { return KindColumnExists }
func (ColumnValuesNotNull) Kind() Kind          { return KindColumnValuesNotNull }
func (ColumnValuesUnique) Kind() Kind           { return KindColumnValuesUnique }
func (ColumnValuesMatchRegex) Kind() Kind       { return KindColumnValuesMatchRegex }
func (ColumnMinBetween) Kind() Kind             { return KindColumnMinBetween }
func (ColumnValuesOfType) Kind() Kind           { return KindColumnValuesOfType }

func (TableRowCountEquals) Column() string          { return "" }
func (TableRowCountBetween) Column() string         { return "" }
func (TableColumnCountEquals) Column() string       { return "" }
func (TableColumnCountBetween) Column() string      { return "" }
func (TableColumnsMatchSet) Column() string         { return "" }
func (TableColumnsMatchOrderedList) Column() string { return "" }
func (e ColumnExists) Column() string               { return e.ColumnName }
func (e ColumnValuesNotNull) Column() string        { return e.ColumnName }
func (e ColumnValuesUnique) Column() string         { return e.ColumnName }
func (e ColumnValuesMatchRegex) Column() string     { return e.ColumnName }
func (e ColumnMinBetween) Column() string           { return e.ColumnName }
func (e ColumnValuesOfType) Column() string         { return e.ColumnName }

// MostlyOrDefault returns Mostly, or DefaultMostly if unset.
func (e ColumnValuesMatchRegex) MostlyOrDefault() float64 {
	if e.Mostly == nil {
		return DefaultMostly
	}
	return *e.Mostly
}

func (e TableRowCountEquals) String() string {
	return fmt.Sprintf("expect table row count to equal %d", e.Value)
}

func (e TableRowCountBetween) String() string {
	return "expect table row count to be " + describeIntRange(e.Min, e.Max)
}

func (e TableColumnCountEquals) String() string {
	return fmt.Sprintf("expect table column count to equal %d", e.Value)
}

func (e TableColumnCountBetween) String() string {
	return "expect table column count to be " + describeIntRange(e.Min, e.Max)
}

func (e TableColumnsMatchSet) String() string {
	return fmt.Sprintf("expect table columns to match set %s", describeNames(e.Columns))
}

func (e TableColumnsMatchOrderedList) String() string {
	return fmt.Sprintf("expect table columns to match ordered list %s", describeNames(e.Columns))
}

func (e ColumnExists) String() string {
	return fmt.Sprintf("expect column %q to exist", e.ColumnName)
}

func (e ColumnValuesNotNull) String() string {
	return fmt.Sprintf("expect column %q values to not be null", e.ColumnName)
}

func (e ColumnValuesUnique) String() string {
	return fmt.Sprintf("expect column %q values to be unique", e.ColumnName)
}

func (e ColumnValuesMatchRegex) String() string {
	s := fmt.Sprintf("expect column %q values to match regex %q", e.ColumnName, e.Regex)
	if e.Mostly != nil {
		s += fmt.Sprintf(", at least %s%% of the time", formatFloat(*e.Mostly*100))
	}
	return s
}

func (e ColumnMinBetween) String() string {
	return fmt.Sprintf(
		"expect column %q minimum value to be %s",
		e.ColumnName,
		describeRange(floatString(e.Min), floatString(e.Max)),
	)
}

func (e ColumnValuesOfType) String() string {
	return fmt.Sprintf("expect column %q values to be of type %s", e.ColumnName, e.Type)
}

func describeIntRange(lo, hi *int) string {
	return describeRange(intString(lo), intString(hi))
}

func describeRange(lo, hi string) string {
	switch {
	case lo != "" && hi != "":
		return fmt.Sprintf("between %s and %s", lo, hi)
	case lo != "":
		return "at least " + lo
	case hi != "":
		return "at most " + hi
	default:
		return "unbounded"
	}
}

func intString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatString(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func describeNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Int returns a pointer to v, for optional integer bounds.
func Int(v int) *int {
	return &v
}

// Float returns a pointer to v, for optional float parameters.
func Float(v float64) *float64 {
	return &v
}
