package dataset

import (
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// Type is a portable value type tag.
type Type string

const (
	Integer   Type = "integer"
	Float     Type = "float"
	String    Type = "string"
	Boolean   Type = "boolean"
	Timestamp Type = "timestamp"
	Null      Type = "null"
)

// Types lists every type tag.
var Types = []Type{Integer, Float, String, Boolean, Timestamp, Null}

func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errors.Newf("unknown value type %q", s)
}

// TypeOf returns the tag for a runtime value. Values of types outside the
// closed set are reported as strings, matching how they are formatted.
func TypeOf(v any) Type {
	switch v.(type) {
	case nil:
		return Null
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Integer
	case float32, float64, *apd.Decimal, apd.Decimal:
		return Float
	case bool:
		return Boolean
	case time.Time:
		return Timestamp
	default:
		return String
	}
}
