package evaluator

import (
	"encoding/json"
	"math"
)

// ValueToJSON marshals a Value to JSON bytes. Whole numbers are written
// without a decimal point; NaN, the infinities and functions are written as
// their printed form.
func ValueToJSON(v Value) ([]byte, error) {
	return json.Marshal(valueToRaw(v))
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// EnvironmentToJSON marshals the bindings of a single frame as an object
// with sorted keys.
func EnvironmentToJSON(env *Environment) ([]byte, error) {
	names := env.Names()
	pairs := make([]namedValue, len(names))
	for i, name := range names {
		pairs[i] = namedValue{name: name, value: env.values[name]}
	}
	return json.Marshal(&orderedBindings{pairs: pairs})
}

func valueToRaw(v Value) any {
	switch val := v.(type) {
	case nil, Nil:
		return nil
	case Bool:
		return val.Value
	case Number:
		if math.IsInf(val.Value, 0) || math.IsNaN(val.Value) {
			return FormatNumber(val.Value)
		}
		if val.Value == math.Trunc(val.Value) && val.Value >= math.MinInt64 && val.Value <= math.MaxInt64 {
			return int64(val.Value)
		}
		return val.Value
	case String:
		return val.Value
	}
	return Stringify(v)
}

type namedValue struct {
	name  string
	value Value
}

// orderedBindings preserves key order in JSON output.
type orderedBindings struct {
	pairs []namedValue
}

func (o *orderedBindings) MarshalJSON() ([]byte, error) {
	if len(o.pairs) == 0 {
		return []byte("{}"), nil
	}

	buf := []byte{'{'}
	for i, kv := range o.pairs {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyBytes, err := json.Marshal(kv.name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyBytes...)
		buf = append(buf, ':')

		valBytes, err := ValueToJSON(kv.value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, valBytes...)
	}
	buf = append(buf, '}')
	return buf, nil
}
