// Package mbql assembles nested MBQL query documents. A clause is a tagged
// JSON array whose first element is an operator tag; clauses nest
// arbitrarily. The package performs structural assembly only — malformed
// clause shapes pass through uninterpreted and fail remotely.
package mbql

// Clause is a tagged operator expression, serialized as a JSON array.
// Anything of this shape is carried through untouched, so caller-supplied
// clauses the package does not recognize still round-trip.
type Clause []any

// Tag returns the clause's operator tag, or "" for an empty or untagged
// clause.
func (c Clause) Tag() string {
	if len(c) == 0 {
		return ""
	}
	tag, _ := c[0].(string)
	return tag
}

// FieldOptions are the optional, mutually orthogonal settings on a field
// reference.
type FieldOptions struct {
	// TemporalUnit groups a datetime field, e.g. "day", "month".
	TemporalUnit string
	// JoinAlias qualifies the field against a joined table.
	JoinAlias string
	// Binning buckets a numeric field.
	Binning *Binning
}

// Binning describes a binning strategy for a numeric field reference.
type Binning struct {
	Strategy string
	NumBins  int
	BinWidth float64
}

// Field builds a field reference clause: ["field", id, options]. The options
// slot is null when no option is set, matching the platform's own output.
func Field(id int, opts *FieldOptions) Clause {
	var options map[string]any
	if opts != nil {
		options = map[string]any{}
		if opts.TemporalUnit != "" {
			options["temporal-unit"] = opts.TemporalUnit
		}
		if opts.JoinAlias != "" {
			options["join-alias"] = opts.JoinAlias
		}
		if opts.Binning != nil {
			binning := map[string]any{"strategy": opts.Binning.Strategy}
			if opts.Binning.NumBins > 0 {
				binning["num-bins"] = opts.Binning.NumBins
			}
			if opts.Binning.BinWidth > 0 {
				binning["bin-width"] = opts.Binning.BinWidth
			}
			options["binning"] = binning
		}
		if len(options) == 0 {
			options = nil
		}
	}
	if options == nil {
		return Clause{"field", id, nil}
	}
	return Clause{"field", id, options}
}

// MetricRef builds a reference to a saved metric: ["metric", id].
func MetricRef(id int) Clause {
	return Clause{"metric", id}
}

// Aggregation builds an aggregation clause such as ["sum", ["field", 7,
// null]] from an operator tag and its operands.
func Aggregation(op string, args ...any) Clause {
	c := make(Clause, 0, 1+len(args))
	c = append(c, op)
	c = append(c, args...)
	return c
}

// FromDocument lifts a parsed JSON array into a Clause. Returns nil and
// false when the value is not an array.
func FromDocument(v any) (Clause, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	return Clause(arr), true
}
