package block

import (
	"fmt"
	"strconv"
	"strings"
)

// OrderPolicy decides how attribute ordering keys compare.
type OrderPolicy string

const (
	// OrderLexical compares keys as strings: "1" < "10" < "2". Missing keys
	// are "" and sort first. This is the default.
	OrderLexical OrderPolicy = "lexical"

	// OrderNumeric compares keys as numbers. Keys that do not parse sort
	// after all numeric keys, lexically among themselves.
	OrderNumeric OrderPolicy = "numeric"
)

// ParseOrderPolicy validates a policy name. Empty selects OrderLexical.
func ParseOrderPolicy(s string) (OrderPolicy, error) {
	switch OrderPolicy(strings.ToLower(s)) {
	case "", OrderLexical:
		return OrderLexical, nil
	case OrderNumeric:
		return OrderNumeric, nil
	default:
		return "", fmt.Errorf("unknown ordering policy %q", s)
	}
}

// Less reports whether key a sorts before key b.
func (p OrderPolicy) Less(a, b string) bool {
	if p != OrderNumeric {
		return a < b
	}
	na, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
