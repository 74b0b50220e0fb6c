package orders

import (
	"fmt"
	"strings"

	"github.com/m3rciful/shopbot/internal/domain"
)

// ActionKind enumerates the typed order-flow actions.
type ActionKind int

const (
	// ActionSelect opens a product, carried by the channel deep link.
	ActionSelect ActionKind = iota
	// ActionProceed moves a shown product towards confirmation.
	ActionProceed
	// ActionConfirm commits the order.
	ActionConfirm
)

// Action is the parsed form of a wire action string. Raw strings are
// parsed once at the transport boundary; the flow only ever sees typed
// actions.
type Action struct {
	Kind      ActionKind
	ProductID string
}

// Wire shapes, kept compatible with the channel deep links and button
// payload constraints:
//
//	order_<id>          select (deep-link start payload)
//	proceed_order_<id>  proceed
//	confirm_order_<id>  confirm
//
// Anything else is malformed and must not reach the flow.
func ParseAction(raw string) (Action, error) {
	parts := strings.Split(strings.TrimSpace(raw), "_")
	switch {
	case len(parts) == 2 && parts[0] == "order" && parts[1] != "":
		return Action{Kind: ActionSelect, ProductID: parts[1]}, nil
	case len(parts) == 3 && parts[0] == "proceed" && parts[1] == "order" && parts[2] != "":
		return Action{Kind: ActionProceed, ProductID: parts[2]}, nil
	case len(parts) == 3 && parts[0] == "confirm" && parts[1] == "order" && parts[2] != "":
		return Action{Kind: ActionConfirm, ProductID: parts[2]}, nil
	}
	return Action{}, fmt.Errorf("%w: %q", domain.ErrMalformedAction, raw)
}

// ProductRef renders the "order_<id>" product reference. It doubles as
// the deep-link start payload and the data half of the proceed/confirm
// callbacks, whose button keys contribute the leading action word.
func ProductRef(productID string) string {
	return "order_" + productID
}
