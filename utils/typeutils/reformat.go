package typeutils

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ReformatInt64 converts v into an int64. Floats are truncated, booleans
// map to 0/1 and numeric strings are parsed.
func ReformatInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int, int8, int16, int32, int64:
		return reflect.ValueOf(v).Int(), nil
	case uint, uint8, uint16, uint32, uint64:
		return int64(reflect.ValueOf(v).Uint()), nil
	case float32, float64:
		return int64(reflect.ValueOf(v).Float()), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse string[%s] as int64: %s", v, err)
		}
		return parsed, nil
	case []byte:
		return ReformatInt64(string(v))
	case nil:
		return 0, fmt.Errorf("nil value can't be reformatted as int64")
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && !rv.IsNil() {
			return ReformatInt64(rv.Elem().Interface())
		}
		return 0, fmt.Errorf("value of type %T can't be reformatted as int64", v)
	}
}

// ReformatFloat64 converts v into a float64 the same way ReformatInt64
// handles integers.
func ReformatFloat64(v any) (float64, error) {
	switch v := v.(type) {
	case int, int8, int16, int32, int64:
		return float64(reflect.ValueOf(v).Int()), nil
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(v).Uint()), nil
	case float32, float64:
		return reflect.ValueOf(v).Float(), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse string[%s] as float64: %s", v, err)
		}
		return parsed, nil
	case []byte:
		return ReformatFloat64(string(v))
	case nil:
		return 0, fmt.Errorf("nil value can't be reformatted as float64")
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && !rv.IsNil() {
			return ReformatFloat64(rv.Elem().Interface())
		}
		return 0, fmt.Errorf("value of type %T can't be reformatted as float64", v)
	}
}

// ReformatUnixTimestamp converts epoch seconds into a UTC time.Time,
// preserving fractional seconds when the value carries them.
func ReformatUnixTimestamp(v any) (time.Time, error) {
	switch v := v.(type) {
	case float32, float64:
		seconds := reflect.ValueOf(v).Float()
		sec, frac := math.Modf(seconds)
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
	default:
		seconds, err := ReformatInt64(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse unix timestamp: %s", err)
		}
		return time.Unix(seconds, 0).UTC(), nil
	}
}
