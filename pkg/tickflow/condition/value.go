package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// Truthy reports whether v counts as true when used without an operator.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case uint:
		return val != 0
	case uint64:
		return val != 0
	case float32:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}

// Number converts v for numeric comparison. Values that are not numbers
// and strings that do not parse as one yield 0.
func Number(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint64:
		return float64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func format(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprint(v)
}

// lookup resolves name in vars, descending into nested maps on dots.
func lookup(vars map[string]any, name string) (any, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(name, ".")
	if !found {
		return nil, false
	}
	switch next := vars[head].(type) {
	case map[string]any:
		return lookup(next, rest)
	case map[any]any:
		m := make(map[string]any, len(next))
		for k, v := range next {
			m[fmt.Sprint(k)] = v
		}
		return lookup(m, rest)
	default:
		return nil, false
	}
}

var builtins = map[string]Operator{
	"==":       func(l, r any) bool { return format(l) == format(r) },
	"!=":       func(l, r any) bool { return format(l) != format(r) },
	"<":        func(l, r any) bool { return Number(l) < Number(r) },
	">":        func(l, r any) bool { return Number(l) > Number(r) },
	"<=":       func(l, r any) bool { return Number(l) <= Number(r) },
	">=":       func(l, r any) bool { return Number(l) >= Number(r) },
	"contains": func(l, r any) bool { return strings.Contains(format(l), format(r)) },
}
