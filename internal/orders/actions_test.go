package orders

import (
	"errors"
	"testing"

	"github.com/m3rciful/shopbot/internal/domain"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		raw  string
		want Action
	}{
		{"order_1", Action{Kind: ActionSelect, ProductID: "1"}},
		{"order_42", Action{Kind: ActionSelect, ProductID: "42"}},
		{"proceed_order_1", Action{Kind: ActionProceed, ProductID: "1"}},
		{"confirm_order_17", Action{Kind: ActionConfirm, ProductID: "17"}},
		{"  order_3  ", Action{Kind: ActionSelect, ProductID: "3"}},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.raw)
		if err != nil {
			t.Errorf("ParseAction(%q) unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAction(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestParseActionMalformed(t *testing.T) {
	raws := []string{
		"",
		"order",
		"order_",
		"confirm_order_",
		"proceed_order_",
		"cancel_order_1",
		"confirm_1",
		"proceed_1",
		"confirm_order_1_extra",
		"ordertrailing",
		"hello world",
	}
	for _, raw := range raws {
		if _, err := ParseAction(raw); !errors.Is(err, domain.ErrMalformedAction) {
			t.Errorf("ParseAction(%q) error = %v, want ErrMalformedAction", raw, err)
		}
	}
}

func TestProductRef(t *testing.T) {
	if got := ProductRef("9"); got != "order_9" {
		t.Fatalf("ProductRef = %q, want order_9", got)
	}
	// The reference must round-trip through the parser as a select.
	act, err := ParseAction(ProductRef("9"))
	if err != nil || act.Kind != ActionSelect || act.ProductID != "9" {
		t.Fatalf("round-trip = %+v, %v", act, err)
	}
}
