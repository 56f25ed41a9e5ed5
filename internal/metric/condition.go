package metric

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition is a parsed row restriction of the form `<column> <op> <literal>`,
// the shape carried in the row_condition domain kwarg. Engines that
// materialize rows evaluate it per row; the relational engine renders it back
// into a WHERE clause.
type Condition struct {
	Column string
	Op     string
	Value  any // string or float64
}

var conditionOps = map[string]bool{
	"==": true, "!=": true, ">": true, ">=": true, "<": true, "<=": true,
}

// ParseCondition parses a row_condition expression. An empty expression
// returns a nil condition (no restriction).
func ParseCondition(expr string) (*Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return nil, fmt.Errorf("row condition %q: expected <column> <op> <literal>", expr)
	}

	column, op, lit := parts[0], parts[1], parts[2]
	if !conditionOps[op] {
		return nil, fmt.Errorf("row condition %q: unsupported operator %q", expr, op)
	}

	cond := &Condition{Column: column, Op: op}

	switch {
	case len(lit) >= 2 && (lit[0] == '"' || lit[0] == '\'') && lit[len(lit)-1] == lit[0]:
		cond.Value = lit[1 : len(lit)-1]
	default:
		n, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, fmt.Errorf("row condition %q: literal %q is neither quoted nor numeric", expr, lit)
		}
		cond.Value = n
	}

	return cond, nil
}

// Matches evaluates the condition against one cell value.
func (c *Condition) Matches(v any) (bool, error) {
	switch want := c.Value.(type) {
	case string:
		got, ok := v.(string)
		if !ok {
			return false, fmt.Errorf("row condition on %q: value %v is not a string", c.Column, v)
		}
		return compareOrdered(strings.Compare(got, want), c.Op), nil
	case float64:
		got, err := toFloat(v)
		if err != nil {
			return false, fmt.Errorf("row condition on %q: %w", c.Column, err)
		}
		switch {
		case got < want:
			return compareOrdered(-1, c.Op), nil
		case got > want:
			return compareOrdered(1, c.Op), nil
		default:
			return compareOrdered(0, c.Op), nil
		}
	}
	return false, fmt.Errorf("row condition on %q: unsupported literal type %T", c.Column, c.Value)
}

// SQL renders the condition as a WHERE predicate using the dialect's
// identifier quoting.
func (c *Condition) SQL(quoteIdent func(string) string) string {
	op := c.Op
	if op == "==" {
		op = "="
	}

	switch v := c.Value.(type) {
	case string:
		return fmt.Sprintf("%s %s '%s'", quoteIdent(c.Column), op, strings.ReplaceAll(v, "'", "''"))
	default:
		return fmt.Sprintf("%s %s %v", quoteIdent(c.Column), op, v)
	}
}

func compareOrdered(cmp int, op string) bool {
	switch op {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	}
	return false
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
}
