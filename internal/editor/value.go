package editor

import (
	"fmt"
	"strconv"

	"github.com/tablekit/tablekit/internal/schema"
)

// Parse converts raw terminal input into a typed value for the column type.
func Parse(t schema.Type, raw string) (any, error) {
	switch t {
	case schema.TypeText:
		return raw, nil
	case schema.TypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrTypeMismatch, raw)
		}
		return n, nil
	case schema.TypeReal:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, raw)
		}
		return f, nil
	case schema.TypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrTypeMismatch, raw)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unhandled column type %q", ErrTypeMismatch, t)
	}
}

// Format renders a stored value for display in lists and forms.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
