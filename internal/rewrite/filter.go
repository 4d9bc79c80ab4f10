package rewrite

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// MatchPolicy decides how Filter combines its conditions.
type MatchPolicy int

const (
	// MatchAll passes a structure matching every condition.
	MatchAll MatchPolicy = iota
	// MatchAny passes a structure matching at least one condition.
	MatchAny
)

func (p MatchPolicy) String() string {
	if p == MatchAny {
		return "any"
	}
	return "all"
}

// ParseMatchPolicy accepts "all" or "any".
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(s) {
	case "all", "":
		return MatchAll, nil
	case "any":
		return MatchAny, nil
	}
	return MatchAll, fmt.Errorf("%w: unknown match policy %q", ErrInvalidOptions, s)
}

// Condition is one key/value pair a structure's attributes are tested for.
type Condition struct {
	Key   string
	Value string
}

// ParseCondition parses "key=value".
func ParseCondition(s string) (Condition, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return Condition{}, fmt.Errorf("%w: condition %q is not key=value", ErrInvalidOptions, s)
	}
	return Condition{Key: k, Value: v}, nil
}

// Filter reports whether attrs satisfies conds under policy. With no
// conditions MatchAll passes and MatchAny fails.
func Filter(attrs map[string]string, conds []Condition, policy MatchPolicy) bool {
	match := func(c Condition) bool {
		v, ok := attrs[c.Key]
		return ok && v == c.Value
	}
	if policy == MatchAny {
		return lo.SomeBy(conds, match)
	}
	return lo.EveryBy(conds, match)
}
