package docrender

import (
	"regexp"
	"strings"
)

// Operator is the comparison used by a condition.
type Operator string

const (
	OpTruthy   Operator = ""
	OpEqual    Operator = "=="
	OpNotEqual Operator = "!="
)

var conditionRegex = regexp.MustCompile(`^(!?)\s*(\.|@?[\p{L}_][\p{L}\p{N}_\-]*(?:\.[\p{L}\p{N}_\-]+)*)\s*(?:(==|!=)\s*(?:"([^"]*)"|'([^']*)'|([^\s"']+)))?$`)

// Condition is a parsed {IF ...} expression: a field test, its negation, or
// an equality comparison against a literal.
type Condition struct {
	Raw     string
	Field   string
	Negate  bool
	Op      Operator
	Literal string
	Valid   bool
}

// ParseCondition parses the text after IF. An expression outside the
// supported grammar yields a condition with Valid unset, which evaluates to
// false.
func ParseCondition(expr string) Condition {
	expr = strings.TrimSpace(expr)
	cond := Condition{Raw: expr}
	m := conditionRegex.FindStringSubmatch(expr)
	if m == nil {
		return cond
	}
	cond.Valid = true
	cond.Negate = m[1] == "!"
	cond.Field = m[2]
	cond.Op = Operator(m[3])
	switch {
	case m[4] != "":
		cond.Literal = m[4]
	case m[5] != "":
		cond.Literal = m[5]
	default:
		cond.Literal = m[6]
	}
	return cond
}

func (c Condition) String() string {
	return c.Raw
}

// Evaluate resolves the condition against the current scope.
func (c Condition) Evaluate(st *renderState, row *rowFrame) bool {
	if !c.Valid {
		st.logger.WithField("condition", c.Raw).Warn("unsupported condition evaluates to false")
		return false
	}

	v, found := st.lookup(c.Field, row)
	var result bool
	switch c.Op {
	case OpEqual:
		result = formatValue(v, st.dateLayout) == c.Literal
	case OpNotEqual:
		result = formatValue(v, st.dateLayout) != c.Literal
	default:
		result = truthy(v, found)
	}
	if c.Negate {
		return !result
	}
	return result
}
