package state

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name     string
		from     State
		to       State
		expected bool
	}{
		{name: "idle to order search", from: StateIdle, to: StateSearchingProductForOrder, expected: true},
		{name: "idle to flat search", from: StateIdle, to: StateSearchingProduct, expected: true},
		{name: "idle to markup name", from: StateIdle, to: StateEnteringMarkupProductName, expected: true},
		{name: "order search to product selection", from: StateSearchingProductForOrder, to: StateSelectingProductForOrder, expected: true},
		{name: "product selection to payment", from: StateSelectingProductForOrder, to: StateSelectingPayment, expected: true},
		{name: "payment to fio", from: StateSelectingPayment, to: StateEnteringFio, expected: true},
		{name: "fio to shop", from: StateEnteringFio, to: StateSelectingShop, expected: true},
		{name: "shop to comment", from: StateSelectingShop, to: StateEnteringComment, expected: true},
		{name: "comment to idle", from: StateEnteringComment, to: StateIdle, expected: true},
		{name: "markup name to selection", from: StateEnteringMarkupProductName, to: StateSelectingProductForMarkup, expected: true},
		{name: "markup selection to percentage", from: StateSelectingProductForMarkup, to: StateEnteringMarkupPercentage, expected: true},
		{name: "idle to payment invalid", from: StateIdle, to: StateSelectingPayment, expected: false},
		{name: "order selection to markup percentage invalid", from: StateSelectingProductForOrder, to: StateEnteringMarkupPercentage, expected: false},
		{name: "comment to shop invalid", from: StateEnteringComment, to: StateSelectingShop, expected: false},
		{name: "unknown state to order search invalid", from: State("unknown"), to: StateSearchingProductForOrder, expected: false},
		{name: "any state to idle", from: State("whatever"), to: StateIdle, expected: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if actual := IsTransitionAllowed(tc.from, tc.to); actual != tc.expected {
				t.Errorf("IsTransitionAllowed(%s -> %s) = %t, expected %t", tc.from, tc.to, actual, tc.expected)
			}
		})
	}
}

func TestStateValid(t *testing.T) {
	for _, s := range States {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if State("buying_search").Valid() {
		t.Error("unknown state reported valid")
	}
	if len(States) != 11 {
		t.Errorf("expected 11 states, got %d", len(States))
	}
}
