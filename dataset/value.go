package dataset

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Format renders a value as text. NULL is rendered as "NULL".
func Format(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case *apd.Decimal:
		return v.String()
	case apd.Decimal:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Decimal converts a numeric value to an exact decimal. It returns false for
// non-numeric values.
func Decimal(v any) (*apd.Decimal, bool) {
	switch v := v.(type) {
	case int:
		return apd.New(int64(v), 0), true
	case int8:
		return apd.New(int64(v), 0), true
	case int16:
		return apd.New(int64(v), 0), true
	case int32:
		return apd.New(int64(v), 0), true
	case int64:
		return apd.New(v, 0), true
	case uint:
		return decimalFromString(strconv.FormatUint(uint64(v), 10))
	case uint8:
		return apd.New(int64(v), 0), true
	case uint16:
		return apd.New(int64(v), 0), true
	case uint32:
		return apd.New(int64(v), 0), true
	case uint64:
		return decimalFromString(strconv.FormatUint(v, 10))
	case float32:
		return decimalFromFloat(float64(v))
	case float64:
		return decimalFromFloat(v)
	case *apd.Decimal:
		return v, true
	case apd.Decimal:
		return &v, true
	}
	return nil, false
}

func decimalFromFloat(f float64) (*apd.Decimal, bool) {
	d, err := new(apd.Decimal).SetFloat64(f)
	if err != nil {
		return nil, false
	}
	return d, true
}

func decimalFromString(s string) (*apd.Decimal, bool) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, false
	}
	return d, true
}

// Key returns a comparable identity for a value. Numeric values share a key
// iff they are numerically equal, so 1, 1.0 and 1.00 collide. Other values
// share a key iff they have the same type tag and textual form.
func Key(v any) string {
	if d, ok := Decimal(v); ok {
		var r apd.Decimal
		r.Reduce(d)
		return "number:" + r.String()
	}
	return string(TypeOf(v)) + ":" + Format(v)
}
