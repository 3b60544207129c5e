package expression

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

func placementOf(mtid, moid string) string {
	return `{"discriminator":"ModifierPlacement","expr":{"mtid":"` + mtid + `","moid":"` + moid + `"}}`
}

func constPlacement(p int) string {
	b, _ := json.Marshal(p)
	return `{"discriminator":"ConstLiteral","expr":{"discriminator":"MODIFIER_PLACEMENT","value":` + string(b) + `}}`
}

func TestEvaluateProduct(t *testing.T) {
	mods := Modifiers{{
		ModifierTypeID: "crust",
		Options:        []catalog.OptionSelection{{OptionID: "thin", Placement: catalog.PlacementWhole}},
	}}
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{
			name: "placement equals whole",
			expr: `{"discriminator":"Logical","expr":{"operator":"EQ","operandA":` + placementOf("crust", "thin") + `,"operandB":` + constPlacement(3) + `}}`,
			want: true,
		},
		{
			name: "missing option is none",
			expr: `{"discriminator":"Logical","expr":{"operator":"EQ","operandA":` + placementOf("crust", "thick") + `,"operandB":` + constPlacement(0) + `}}`,
			want: true,
		},
		{
			name: "has any of",
			expr: `{"discriminator":"HasAnyOfModifierType","expr":{"mtid":"crust"}}`,
			want: true,
		},
		{
			name: "not has any",
			expr: `{"discriminator":"Logical","expr":{"operator":"NOT","operandA":{"discriminator":"HasAnyOfModifierType","expr":{"mtid":"sauce"}}}}`,
			want: true,
		},
		{
			name: "if else picks false branch",
			expr: `{"discriminator":"IfElse","expr":{"test":{"discriminator":"ConstLiteral","expr":{"discriminator":"BOOLEAN","value":false}},"true_branch":{"discriminator":"ConstLiteral","expr":{"discriminator":"BOOLEAN","value":true}},"false_branch":{"discriminator":"ConstLiteral","expr":{"discriminator":"NUMBER","value":0}}}}`,
			want: false,
		},
		{
			name: "number comparison",
			expr: `{"discriminator":"Logical","expr":{"operator":"GT","operandA":{"discriminator":"ConstLiteral","expr":{"discriminator":"NUMBER","value":3}},"operandB":{"discriminator":"ConstLiteral","expr":{"discriminator":"NUMBER","value":2}}}}`,
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateProduct(json.RawMessage(tt.expr), mods)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got.Truthy() != tt.want {
				t.Fatalf("truthy = %v, want %v (value %v)", got.Truthy(), tt.want, got)
			}
		})
	}
}

func TestEvaluateOrderRejectsProductNodes(t *testing.T) {
	_, err := EvaluateOrder(json.RawMessage(`{"discriminator":"HasAnyOfModifierType","expr":{"mtid":"crust"}}`))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestEvaluateOrderLiteral(t *testing.T) {
	got, err := EvaluateOrder(json.RawMessage(`{"discriminator":"ConstLiteral","expr":{"discriminator":"STRING","value":"x"}}`))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !got.Equal(String("x")) {
		t.Fatalf("value = %v", got)
	}
}

func TestCompareDifferentKindsFails(t *testing.T) {
	if _, err := Number(1).Compare(Bool(true)); err == nil {
		t.Fatal("expected error")
	}
}

func TestEvaluateMalformed(t *testing.T) {
	if _, err := EvaluateProduct(json.RawMessage(`{`), nil); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := EvaluateProduct(json.RawMessage(`{"discriminator":"Mystery"}`), nil); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v", err)
	}
}
