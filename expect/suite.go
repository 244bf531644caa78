package expect

import (
	"bytes"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/cockroachdb/dataexpect/dataset"
	"github.com/cockroachdb/dataexpect/errorutil"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Set is a named, ordered collection of expectations. Duplicates are
// allowed.
type Set struct {
	Name         string
	Expectations []Expectation
}

// NewSet creates a Set with the given expectations.
func NewSet(name string, expectations ...Expectation) *Set {
	return &Set{Name: name, Expectations: expectations}
}

// Add appends expectations to the set.
func (s *Set) Add(expectations ...Expectation) {
	s.Expectations = append(s.Expectations, expectations...)
}

func (s *Set) Len() int {
	return len(s.Expectations)
}

// Spec is the serialized form of an Expectation. Only the parameters used by
// Kind are set.
type Spec struct {
	Kind    Kind         `yaml:"kind" json:"kind"`
	Column  string       `yaml:"column,omitempty" json:"column,omitempty"`
	Value   *int         `yaml:"value,omitempty" json:"value,omitempty"`
	Min     *float64     `yaml:"min,omitempty" json:"min,omitempty"`
	Max     *float64     `yaml:"max,omitempty" json:"max,omitempty"`
	Columns []string     `yaml:"columns,omitempty" json:"columns,omitempty"`
	Regex   string       `yaml:"regex,omitempty" json:"regex,omitempty"`
	Mostly  *float64     `yaml:"mostly,omitempty" json:"mostly,omitempty"`
	Type    dataset.Type `yaml:"type,omitempty" json:"type,omitempty"`
}

// SuiteSpec is the serialized form of a Set.
type SuiteSpec struct {
	Name         string `yaml:"name" json:"name"`
	Expectations []Spec `yaml:"expectations" json:"expectations"`
}

// Expectation builds the expectation described by s.
func (s Spec) Expectation() (Expectation, error) {
	if s.Kind.IsColumnLevel() && s.Column == "" {
		return nil, errors.Newf("%s requires a column", s.Kind)
	}
	switch s.Kind {
	case KindTableRowCountEquals, KindTableColumnCountEquals:
		if s.Value == nil {
			return nil, errors.Newf("%s requires a value", s.Kind)
		}
		if s.Kind == KindTableRowCountEquals {
			return TableRowCountEquals{Value: *s.Value}, nil
		}
		return TableColumnCountEquals{Value: *s.Value}, nil
	case KindTableRowCountBetween, KindTableColumnCountBetween:
		lo, err := intBound(s.Kind, "min", s.Min)
		if err != nil {
			return nil, err
		}
		hi, err := intBound(s.Kind, "max", s.Max)
		if err != nil {
			return nil, err
		}
		if s.Kind == KindTableRowCountBetween {
			return TableRowCountBetween{Min: lo, Max: hi}, nil
		}
		return TableColumnCountBetween{Min: lo, Max: hi}, nil
	case KindTableColumnsMatchSet:
		return TableColumnsMatchSet{Columns: s.Columns}, nil
	case KindTableColumnsMatchOrderedList:
		return TableColumnsMatchOrderedList{Columns: s.Columns}, nil
	case KindColumnExists:
		return ColumnExists{ColumnName: s.Column}, nil
	case KindColumnValuesNotNull:
		return ColumnValuesNotNull{ColumnName: s.Column}, nil
	case KindColumnValuesUnique:
		return ColumnValuesUnique{ColumnName: s.Column}, nil
	case KindColumnValuesMatchRegex:
		if s.Regex == "" {
			return nil, errors.Newf("%s requires a regex", s.Kind)
		}
		if err := finiteParam(s.Kind, "mostly", s.Mostly); err != nil {
			return nil, err
		}
		return ColumnValuesMatchRegex{ColumnName: s.Column, Regex: s.Regex, Mostly: s.Mostly}, nil
	case KindColumnMinBetween:
		if err := finiteParam(s.Kind, "min", s.Min); err != nil {
			return nil, err
		}
		if err := finiteParam(s.Kind, "max", s.Max); err != nil {
			return nil, err
		}
		return ColumnMinBetween{ColumnName: s.Column, Min: s.Min, Max: s.Max}, nil
	case KindColumnValuesOfType:
		typ, err := dataset.ParseType(string(s.Type))
		if err != nil {
			return nil, errors.Wrapf(err, "%s", s.Kind)
		}
		return ColumnValuesOfType{ColumnName: s.Column, Type: typ}, nil
	case "":
		return nil, errors.Newf("expectation kind is required")
	default:
		return nil, errors.Newf("unknown expectation kind %q", s.Kind)
	}
}

func finiteParam(kind Kind, name string, f *float64) error {
	if f != nil && (math.IsNaN(*f) || math.IsInf(*f, 0)) {
		return errors.Newf("%s %s must be a finite number, found %v", kind, name, *f)
	}
	return nil
}

func intBound(kind Kind, name string, f *float64) (*int, error) {
	if f == nil {
		return nil, nil
	}
	if err := finiteParam(kind, name, f); err != nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, errors.Newf("%s %s must be an integer, found %v", kind, name, *f)
	}
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if *f < float64(math.MinInt) || *f >= -float64(math.MinInt) {
		return nil, errors.Newf("%s %s is out of range, found %v", kind, name, *f)
	}
	return Int(int(*f)), nil
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	return Float(float64(*v))
}

// SpecOf returns the serialized form of e.
func SpecOf(e Expectation) Spec {
	s := Spec{Kind: e.Kind(), Column: e.Column()}
	switch e := e.(type) {
	case TableRowCountEquals:
		s.Value = Int(e.Value)
	case TableColumnCountEquals:
		s.Value = Int(e.Value)
	case TableRowCountBetween:
		s.Min, s.Max = intToFloat(e.Min), intToFloat(e.Max)
	case TableColumnCountBetween:
		s.Min, s.Max = intToFloat(e.Min), intToFloat(e.Max)
	case TableColumnsMatchSet:
		s.Columns = e.Columns
	case TableColumnsMatchOrderedList:
		s.Columns = e.Columns
	case ColumnValuesMatchRegex:
		s.Regex, s.Mostly = e.Regex, e.Mostly
	case ColumnMinBetween:
		s.Min, s.Max = e.Min, e.Max
	case ColumnValuesOfType:
		s.Type = e.Type
	}
	return s
}

// SuiteSpecOf returns the serialized form of set.
func SuiteSpecOf(set *Set) SuiteSpec {
	ret := SuiteSpec{Name: set.Name, Expectations: make([]Spec, len(set.Expectations))}
	for i, e := range set.Expectations {
		ret.Expectations[i] = SpecOf(e)
	}
	return ret
}

// ParseSuite decodes a YAML suite. Unknown fields are rejected.
func ParseSuite(r io.Reader) (*Set, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var spec SuiteSpec
	if err := dec.Decode(&spec); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "error decoding suite")
	}
	set := NewSet(spec.Name)
	for i, s := range spec.Expectations {
		e, err := s.Expectation()
		if err != nil {
			return nil, errors.Wrapf(err, "expectation %d", i)
		}
		set.Add(e)
	}
	return set, nil
}

// MarshalSuite encodes set as YAML.
func MarshalSuite(set *Set) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(SuiteSpecOf(set)); err != nil {
		return nil, errors.Wrapf(err, "error encoding suite %q", set.Name)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadSuite reads a suite file. A missing file is a NotFoundError; an invalid
// one is a ConfigurationError.
func LoadSuite(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &errorutil.NotFoundError{Resource: "suite", Name: path}
		}
		return nil, errors.Wrapf(err, "error opening suite %s", path)
	}
	defer func() { _ = f.Close() }()
	set, err := ParseSuite(f)
	if err != nil {
		return nil, errorutil.NewConfigurationError(errors.Wrapf(err, "suite %s", path))
	}
	return set, nil
}

// SuiteExists reports whether a suite file exists at path.
func SuiteExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrapf(err, "error checking suite %s", path)
}

// SaveSuite writes set to path, creating parent directories. An existing
// file is only replaced if overwrite is set.
func SaveSuite(path string, set *Set, overwrite bool) error {
	exists, err := SuiteExists(path)
	if err != nil {
		return err
	}
	if exists && !overwrite {
		return errors.Newf("suite %s already exists", path)
	}
	b, err := MarshalSuite(set)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "error creating directory for suite %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, b, 0o644), "error writing suite %s", path)
}

// Scaffold derives a baseline suite describing the shape of ds: its row and
// column counts, its column order, and per column existence, value type and
// non-nullness.
func Scaffold(name string, ds *dataset.Dataset) *Set {
	set := NewSet(
		name,
		TableRowCountEquals{Value: ds.NumRows()},
		TableColumnCountEquals{Value: ds.NumColumns()},
		TableColumnsMatchOrderedList{Columns: ds.ColumnNames()},
	)
	for i := 0; i < ds.NumColumns(); i++ {
		col := ds.ColumnAt(i)
		set.Add(
			ColumnExists{ColumnName: col.Name()},
			ColumnValuesOfType{ColumnName: col.Name(), Type: col.Type()},
		)
		if col.Len() > 0 && col.NullCount() == 0 {
			set.Add(ColumnValuesNotNull{ColumnName: col.Name()})
		}
	}
	return set
}
