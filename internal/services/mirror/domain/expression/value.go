package expression

import (
	"fmt"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

// Kind identifies a value's type.
type Kind int

const (
	KindBool Kind = iota
	KindNumber
	KindString
	KindPlacement
	KindQualifier
)

// Value is the result of evaluating an expression.
type Value struct {
	kind Kind
	num  float64
	str  string
}

func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, num: 1}
	}
	return Value{kind: KindBool}
}

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func Placement(p catalog.OptionPlacement) Value {
	return Value{kind: KindPlacement, num: float64(p)}
}

func Qualifier(q catalog.OptionQualifier) Value {
	return Value{kind: KindQualifier, num: float64(q)}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Truthy follows the loose truthiness of the storefront's evaluator.
func (v Value) Truthy() bool {
	if v.kind == KindString {
		return v.str != ""
	}
	return v.num != 0
}

// Equal compares two values of the same kind. Values of different kinds are
// never equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindString {
		return v.str == o.str
	}
	return v.num == o.num
}

// Compare orders two non string values of the same kind.
func (v Value) Compare(o Value) (int, error) {
	if v.kind != o.kind || v.kind == KindString {
		return 0, fmt.Errorf("cannot order %v against %v", v, o)
	}
	switch {
	case v.num < o.num:
		return -1, nil
	case v.num > o.num:
		return 1, nil
	default:
		return 0, nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.num != 0)
	case KindString:
		return fmt.Sprintf("string(%q)", v.str)
	case KindPlacement:
		return "placement(" + catalog.OptionPlacement(v.num).String() + ")"
	case KindQualifier:
		return "qualifier(" + catalog.OptionQualifier(v.num).String() + ")"
	default:
		return fmt.Sprintf("number(%g)", v.num)
	}
}
