package mbql

// aggregationOptionsTag wraps an aggregation with display annotations:
// ["aggregation-options", <aggregation>, {"name": n, "display-name": n}].
const aggregationOptionsTag = "aggregation-options"

// unknownAggregation is reported when an aggregation's operator tag cannot
// be determined.
const unknownAggregation = "unknown"

// NamedAggregation wraps an aggregation clause with a name and display-name
// annotation, both set to name. The inner clause is carried unchanged, so
// unwrapping recovers exactly the original aggregation.
func NamedAggregation(agg Clause, name string) Clause {
	return Clause{
		aggregationOptionsTag,
		[]any(agg),
		map[string]any{"name": name, "display-name": name},
	}
}

// RenameAggregation returns a named aggregation carrying newName. If c is
// already wrapped, the inner aggregation is preserved and only the
// annotation changes; otherwise this behaves as NamedAggregation. The input
// clause is never mutated — the result is always rebuilt.
func RenameAggregation(c Clause, newName string) Clause {
	if inner, ok := unwrap(c); ok {
		return NamedAggregation(inner, newName)
	}
	return NamedAggregation(c, newName)
}

// IsNamedAggregation reports whether c is an aggregation-options wrapper.
func IsNamedAggregation(c Clause) bool {
	_, ok := unwrap(c)
	return ok
}

// UnwrapAggregation returns the raw aggregation inside a wrapped clause, or
// c itself when it is not wrapped.
func UnwrapAggregation(c Clause) Clause {
	if inner, ok := unwrap(c); ok {
		return inner
	}
	return c
}

// AggregationOperator returns the operator tag of an aggregation clause,
// looking through an aggregation-options wrapper. Returns "unknown" for an
// absent or malformed clause.
func AggregationOperator(c Clause) string {
	tag := UnwrapAggregation(c).Tag()
	if tag == "" {
		return unknownAggregation
	}
	return tag
}

func unwrap(c Clause) (Clause, bool) {
	if len(c) < 2 || c.Tag() != aggregationOptionsTag {
		return nil, false
	}
	switch inner := c[1].(type) {
	case Clause:
		return inner, true
	case []any:
		return Clause(inner), true
	}
	return nil, false
}
