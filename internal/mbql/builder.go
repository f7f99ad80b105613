package mbql

// Query is the nested structured-query document. Keys whose input was not
// supplied are omitted entirely, never emitted as empty or null: the run and
// save call paths both marshal this struct, and identical inputs must
// produce byte-identical documents.
type Query struct {
	SourceTable int               `json:"source-table"`
	Aggregation []Clause          `json:"aggregation,omitempty"`
	Breakout    []Clause          `json:"breakout,omitempty"`
	Filter      Clause            `json:"filter,omitempty"`
	OrderBy     []Clause          `json:"order-by,omitempty"`
	Expressions map[string]Clause `json:"expressions,omitempty"`
	Joins       []Join            `json:"joins,omitempty"`
	Fields      []Clause          `json:"fields,omitempty"`
	Limit       int               `json:"limit,omitempty"`
}

// Join specifies one join against another source table.
type Join struct {
	SourceTable int    `json:"source-table"`
	Alias       string `json:"alias,omitempty"`
	Condition   Clause `json:"condition,omitempty"`
	Strategy    string `json:"strategy,omitempty"`
	// Fields is "all", "none", or a list of field reference clauses.
	Fields any `json:"fields,omitempty"`
}

// QueryInput collects the independently supplied clause lists for one query.
// Every field except SourceTable is optional; nil or zero means absent.
type QueryInput struct {
	SourceTable  int
	Aggregations []Clause
	Breakouts    []Clause
	Filter       Clause
	OrderBy      []Clause
	Expressions  map[string]Clause
	Joins        []Join
	Fields       []Clause
	Limit        int
}

// BuildQuery assembles a Query from the supplied inputs. Pure structural
// assembly: no clause is validated, mutated, or reordered, and the builder
// does not enforce mutual exclusivity between aggregation-oriented inputs
// and plain field projection — that is a remote-side concern.
func BuildQuery(in QueryInput) Query {
	return Query{
		SourceTable: in.SourceTable,
		Aggregation: in.Aggregations,
		Breakout:    in.Breakouts,
		Filter:      in.Filter,
		OrderBy:     in.OrderBy,
		Expressions: in.Expressions,
		Joins:       in.Joins,
		Fields:      in.Fields,
		Limit:       in.Limit,
	}
}

// DatasetQuery wraps a Query in the envelope POST /dataset and card payloads
// expect.
func DatasetQuery(databaseID int, q Query) map[string]any {
	return map[string]any{
		"database": databaseID,
		"type":     "query",
		"query":    q,
	}
}

// NativeQuery builds the dataset_query envelope for a free-text SQL query.
// Parameters are passed through uninterpreted.
func NativeQuery(databaseID int, sql string, parameters []any) map[string]any {
	native := map[string]any{"query": sql}
	if len(parameters) > 0 {
		native["parameters"] = parameters
	}
	return map[string]any{
		"database": databaseID,
		"type":     "native",
		"native":   native,
	}
}
