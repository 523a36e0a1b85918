// Package filter parses and validates the "column operator value" where
// clauses accepted by the data API query parameters.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// ErrMalformedFilter is returned when a raw filter string does not split into
// exactly three tokens.
var ErrMalformedFilter = errors.New("where filter is formatted incorrectly - should be in the form of \"column operator value\" e.g. \"col < 3\"")

// ErrUnsupportedOperator is returned when the operator token of a clause is
// not in the supported set.
var ErrUnsupportedOperator = errors.New("unsupported where operator")

// ErrInvalidBoolean is returned when a where connective is neither AND nor OR.
var ErrInvalidBoolean = errors.New("where boolean must be AND or OR")

// UnsupportedOperatorError names the offending operator. It matches
// ErrUnsupportedOperator under errors.Is.
type UnsupportedOperatorError struct {
	Operator string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported where operator: %s", e.Operator)
}

func (e *UnsupportedOperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}

// Boolean combines multiple clauses in a single statement.
type Boolean string

const (
	BooleanAnd Boolean = "AND"
	BooleanOr  Boolean = "OR"
)

// ParseBoolean normalizes a raw connective. The empty string means the AND
// default; anything else must spell AND or OR in any case.
func ParseBoolean(raw string) (Boolean, error) {
	switch {
	case raw == "" || strings.EqualFold(raw, string(BooleanAnd)):
		return BooleanAnd, nil
	case strings.EqualFold(raw, string(BooleanOr)):
		return BooleanOr, nil
	}
	return BooleanAnd, fmt.Errorf("%w: %q", ErrInvalidBoolean, raw)
}

// Clause is a parsed (column, operator, value) triple. Operator is stored in
// its canonical upper-case form. Quoted records whether the value token was
// quoted in the raw statement, so callers know it is a string literal rather
// than something to type-infer.
type Clause struct {
	Column   string
	Operator string
	Value    string
	Quoted   bool
}

func (c Clause) String() string {
	return fmt.Sprintf("%s %s %s", c.Column, c.Operator, c.Value)
}

// supportedOperators holds the canonical operator set. The values are the
// keys again; the map exists for O(1) case-insensitive membership checks.
var supportedOperators = map[string]struct{}{
	"=":          {},
	"!=":         {},
	">":          {},
	">=":         {},
	"<":          {},
	"<=":         {},
	"LIKE":       {},
	"ILIKE":      {},
	"NOTLIKE":    {},
	"NOTILIKE":   {},
	"CONTAINS":   {},
	"STARTSWITH": {},
	"ENDSWITH":   {},
}

// SupportedOperators returns the canonical operator names, for error messages
// and documentation strings.
func SupportedOperators() []string {
	return []string{"=", "!=", ">", ">=", "<", "<=", "LIKE", "ILIKE", "NOTLIKE", "NOTILIKE", "CONTAINS", "STARTSWITH", "ENDSWITH"}
}

// Parse tokenizes raw filter strings into clauses. Values containing spaces
// must be quoted by the caller; shell-style quoting is respected, so
// `title = "Testing Data"` yields the value `Testing Data`. An empty input is
// valid and returns no clauses.
func Parse(raw []string) ([]Clause, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	clauses := make([]Clause, 0, len(raw))
	for _, statement := range raw {
		tokens, err := shlex.Split(statement)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedFilter, statement)
		}
		if len(tokens) != 3 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedFilter, statement)
		}
		// The tokenizer strips quoting, so compare the value token against
		// its raw whitespace-split counterpart to tell `x = "1"` from
		// `x = 1`.
		fields := strings.Fields(statement)
		clauses = append(clauses, Clause{
			Column:   tokens[0],
			Operator: strings.ToUpper(tokens[1]),
			Value:    tokens[2],
			Quoted:   len(fields) != 3 || fields[2] != tokens[2],
		})
	}
	if err := Validate(clauses); err != nil {
		return nil, err
	}
	return clauses, nil
}

// Validate rejects clauses whose operator is not in the supported set. Parse
// already calls it; it is exported for callers that build clauses directly.
func Validate(clauses []Clause) error {
	for _, clause := range clauses {
		if _, ok := supportedOperators[strings.ToUpper(clause.Operator)]; !ok {
			return &UnsupportedOperatorError{Operator: clause.Operator}
		}
	}
	return nil
}
