// Package expression evaluates the function trees that gate modifier types
// and options on products and orders.
package expression

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

// Node discriminators.
const (
	NodeConstLiteral         = "ConstLiteral"
	NodeIfElse               = "IfElse"
	NodeLogical              = "Logical"
	NodeModifierPlacement    = "ModifierPlacement"
	NodeHasAnyOfModifierType = "HasAnyOfModifierType"
)

// Literal discriminators.
const (
	LiteralNumber            = "NUMBER"
	LiteralBoolean           = "BOOLEAN"
	LiteralString            = "STRING"
	LiteralModifierPlacement = "MODIFIER_PLACEMENT"
	LiteralModifierQualifier = "MODIFIER_QUALIFIER"
)

// Operator is a logical or comparison operator.
type Operator string

const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
	OpNot Operator = "NOT"
	OpEq  Operator = "EQ"
	OpNe  Operator = "NE"
	OpGt  Operator = "GT"
	OpGe  Operator = "GE"
	OpLt  Operator = "LT"
	OpLe  Operator = "LE"
)

// ErrUnsupported marks a node that the evaluation scope cannot resolve.
var ErrUnsupported = errors.New("unsupported expression")

// maxDepth bounds nesting so a hostile payload cannot exhaust the stack.
const maxDepth = 64

type node struct {
	Discriminator string          `json:"discriminator"`
	Expr          json.RawMessage `json:"expr"`
}

type literal struct {
	Discriminator string          `json:"discriminator"`
	Value         json.RawMessage `json:"value"`
}

type ifElse struct {
	Test        json.RawMessage `json:"test"`
	TrueBranch  json.RawMessage `json:"true_branch"`
	FalseBranch json.RawMessage `json:"false_branch"`
}

type logical struct {
	OperandA json.RawMessage `json:"operandA"`
	OperandB json.RawMessage `json:"operandB,omitempty"`
	Operator Operator        `json:"operator"`
}

type modifierPlacement struct {
	ModifierTypeID string `json:"mtid"`
	OptionID       string `json:"moid"`
}

type hasAnyOf struct {
	ModifierTypeID string `json:"mtid"`
}

// Modifiers is the selection an expression reads from.
type Modifiers []catalog.ModifierSelection

// Placement returns the placement of an option, or PlacementNone when it is
// not selected.
func (m Modifiers) Placement(modifierTypeID, optionID string) catalog.OptionPlacement {
	for _, sel := range m {
		if sel.ModifierTypeID != modifierTypeID {
			continue
		}
		for _, opt := range sel.Options {
			if opt.OptionID == optionID {
				return opt.Placement
			}
		}
	}
	return catalog.PlacementNone
}

// HasAny reports whether any option of modifierTypeID is selected.
func (m Modifiers) HasAny(modifierTypeID string) bool {
	for _, sel := range m {
		if sel.ModifierTypeID == modifierTypeID && len(sel.Options) > 0 {
			return true
		}
	}
	return false
}

type scope struct {
	modifiers Modifiers
	product   bool
}

// EvaluateProduct evaluates a product instance function against a modifier
// selection.
func EvaluateProduct(raw json.RawMessage, modifiers Modifiers) (Value, error) {
	return eval(raw, scope{modifiers: modifiers, product: true}, 0)
}

// EvaluateOrder evaluates an order instance function. Order functions may not
// read product modifiers.
func EvaluateOrder(raw json.RawMessage) (Value, error) {
	return eval(raw, scope{}, 0)
}

func eval(raw json.RawMessage, s scope, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, fmt.Errorf("expression nesting exceeds %d", maxDepth)
	}
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return Value{}, fmt.Errorf("decode expression: %w", err)
	}
	switch n.Discriminator {
	case NodeConstLiteral:
		var lit literal
		if err := json.Unmarshal(n.Expr, &lit); err != nil {
			return Value{}, fmt.Errorf("decode %s: %w", n.Discriminator, err)
		}
		return evalLiteral(lit)
	case NodeIfElse:
		var expr ifElse
		if err := json.Unmarshal(n.Expr, &expr); err != nil {
			return Value{}, fmt.Errorf("decode %s: %w", n.Discriminator, err)
		}
		test, err := eval(expr.Test, s, depth+1)
		if err != nil {
			return Value{}, err
		}
		if test.Truthy() {
			return eval(expr.TrueBranch, s, depth+1)
		}
		return eval(expr.FalseBranch, s, depth+1)
	case NodeLogical:
		var expr logical
		if err := json.Unmarshal(n.Expr, &expr); err != nil {
			return Value{}, fmt.Errorf("decode %s: %w", n.Discriminator, err)
		}
		return evalLogical(expr, s, depth)
	case NodeModifierPlacement:
		if !s.product {
			return Value{}, fmt.Errorf("%w: %s in order scope", ErrUnsupported, n.Discriminator)
		}
		var expr modifierPlacement
		if err := json.Unmarshal(n.Expr, &expr); err != nil {
			return Value{}, fmt.Errorf("decode %s: %w", n.Discriminator, err)
		}
		return Placement(s.modifiers.Placement(expr.ModifierTypeID, expr.OptionID)), nil
	case NodeHasAnyOfModifierType:
		if !s.product {
			return Value{}, fmt.Errorf("%w: %s in order scope", ErrUnsupported, n.Discriminator)
		}
		var expr hasAnyOf
		if err := json.Unmarshal(n.Expr, &expr); err != nil {
			return Value{}, fmt.Errorf("decode %s: %w", n.Discriminator, err)
		}
		return Bool(s.modifiers.HasAny(expr.ModifierTypeID)), nil
	default:
		return Value{}, fmt.Errorf("%w: %q", ErrUnsupported, n.Discriminator)
	}
}

func evalLiteral(lit literal) (Value, error) {
	switch lit.Discriminator {
	case LiteralNumber:
		var v float64
		if err := json.Unmarshal(lit.Value, &v); err != nil {
			return Value{}, fmt.Errorf("decode number literal: %w", err)
		}
		return Number(v), nil
	case LiteralBoolean:
		var v bool
		if err := json.Unmarshal(lit.Value, &v); err != nil {
			return Value{}, fmt.Errorf("decode boolean literal: %w", err)
		}
		return Bool(v), nil
	case LiteralString:
		var v string
		if err := json.Unmarshal(lit.Value, &v); err != nil {
			return Value{}, fmt.Errorf("decode string literal: %w", err)
		}
		return String(v), nil
	case LiteralModifierPlacement:
		var v int
		if err := json.Unmarshal(lit.Value, &v); err != nil {
			return Value{}, fmt.Errorf("decode placement literal: %w", err)
		}
		return Placement(catalog.OptionPlacement(v)), nil
	case LiteralModifierQualifier:
		var v int
		if err := json.Unmarshal(lit.Value, &v); err != nil {
			return Value{}, fmt.Errorf("decode qualifier literal: %w", err)
		}
		return Qualifier(catalog.OptionQualifier(v)), nil
	default:
		return Value{}, fmt.Errorf("%w: literal %q", ErrUnsupported, lit.Discriminator)
	}
}

func evalLogical(expr logical, s scope, depth int) (Value, error) {
	a, err := eval(expr.OperandA, s, depth+1)
	if err != nil {
		return Value{}, err
	}
	if expr.Operator == OpNot {
		return Bool(!a.Truthy()), nil
	}
	// AND and OR short circuit like the server evaluator.
	switch expr.Operator {
	case OpAnd:
		if !a.Truthy() {
			return Bool(false), nil
		}
	case OpOr:
		if a.Truthy() {
			return Bool(true), nil
		}
	}
	if len(expr.OperandB) == 0 {
		return Value{}, fmt.Errorf("operator %s requires two operands", expr.Operator)
	}
	b, err := eval(expr.OperandB, s, depth+1)
	if err != nil {
		return Value{}, err
	}
	switch expr.Operator {
	case OpAnd, OpOr:
		return Bool(b.Truthy()), nil
	case OpEq:
		return Bool(a.Equal(b)), nil
	case OpNe:
		return Bool(!a.Equal(b)), nil
	case OpGt, OpGe, OpLt, OpLe:
		cmp, err := a.Compare(b)
		if err != nil {
			return Value{}, err
		}
		switch expr.Operator {
		case OpGt:
			return Bool(cmp > 0), nil
		case OpGe:
			return Bool(cmp >= 0), nil
		case OpLt:
			return Bool(cmp < 0), nil
		default:
			return Bool(cmp <= 0), nil
		}
	default:
		return Value{}, fmt.Errorf("%w: operator %q", ErrUnsupported, expr.Operator)
	}
}
