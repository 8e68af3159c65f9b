package user

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CastRequest builds a request from loosely typed body values, either decoded JSON
// (string, float64, bool, nil, map, slice) or form strings. Scalars are cast to the field
// types: numbers and booleans become strings for text fields, numeric strings become the age.
// Values that cannot be cast are reported as a *ValidationError, one violation per field.
//
// An explicit null on a text field is kept as an empty string so the required rules still
// run against it. A null or blank age is treated as absent.
func CastRequest(fields map[string]any) (UpdateUserRequest, error) {
	var (
		req        UpdateUserRequest
		violations []Violation
	)

	castText := func(field string) *string {
		raw, ok := fields[field]
		if !ok {
			return nil
		}
		s, err := castString(raw)
		if err != nil {
			violations = append(violations, castViolation(field, "String", raw))
			return nil
		}
		return &s
	}

	req.Name = castText("name")
	req.Email = castText("email")

	if raw, ok := fields["age"]; ok {
		age, set, err := castInt(raw)
		switch {
		case err != nil:
			violations = append(violations, castViolation("age", "Number", raw))
		case set:
			req.Age = &age
		}
	}

	req.City = castText("city")

	if len(violations) > 0 {
		return UpdateUserRequest{}, &ValidationError{Violations: violations}
	}

	return req, nil
}

var errUncastable = errors.New("value cannot be cast")

func castString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", errUncastable
	}
}

// castInt reports set=false for values that mean "no age".
func castInt(raw any) (n int, set bool, err error) {
	switch v := raw.(type) {
	case nil:
		return 0, false, nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, false, errUncastable
		}
		return int(v), true, nil
	case bool:
		if v {
			return 1, true, nil
		}
		return 0, true, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false, nil
		}
		parsed, convErr := strconv.Atoi(s)
		if convErr != nil || parsed > math.MaxInt32 || parsed < math.MinInt32 {
			return 0, false, errUncastable
		}
		return parsed, true, nil
	default:
		return 0, false, errUncastable
	}
}

func castViolation(field, target string, raw any) Violation {
	return Violation{
		Field:   field,
		Message: fmt.Sprintf("Cast to %s failed for value of type %s at path %q", target, valueKind(raw), field),
	}
}

func valueKind(raw any) string {
	switch raw.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	default:
		return "object"
	}
}
