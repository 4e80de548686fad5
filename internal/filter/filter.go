// Package filter implements the boolean query language used to narrow
// pilot streams: comparisons and regex matches over pilot fields combined
// with AND/OR/NOT. Queries are compiled once into a predicate tree that is
// pure and total at evaluation time.
package filter

import "github.com/yegors/vatmap/internal/model"

// CompileError is a semantic rejection of a query: unknown field, operator
// or literal type not supported by the field, or an invalid regex
type CompileError struct {
	msg string
}

func (e *CompileError) Error() string {
	return "compile error: " + e.msg
}

// Filter is a compiled query
type Filter struct {
	src  string
	root node
}

// Compile parses and type-checks a query against the pilot schema.
// The returned error is either a *SyntaxError or a *CompileError.
func Compile(query string) (*Filter, error) {
	root, err := parse(lex(query))
	if err != nil {
		return nil, err
	}
	return &Filter{src: query, root: root}, nil
}

// Match evaluates the compiled query against one pilot
func (f *Filter) Match(p *model.Pilot) bool {
	return f.root.eval(p)
}

// Source returns the original query text
func (f *Filter) Source() string {
	return f.src
}

// CheckQuery validates a query without evaluating it, for clients that
// want to pre-validate before subscribing
func CheckQuery(query string) error {
	_, err := Compile(query)
	return err
}
