package state

// validTransitions contains the permitted forward transitions. Returning to
// Idle is always allowed.
var validTransitions = map[State][]State{
	StateIdle: {
		StateSearchingProductForOrder,
		StateSearchingProduct,
		StateEnteringMarkupProductName,
	},
	StateSearchingProductForOrder: {
		StateSelectingProductForOrder,
	},
	StateSelectingProductForOrder: {
		StateSelectingPayment,
	},
	StateSelectingPayment: {
		StateEnteringFio,
	},
	StateEnteringFio: {
		StateSelectingShop,
	},
	StateSelectingShop: {
		StateEnteringComment,
	},
	StateEnteringMarkupProductName: {
		StateSelectingProductForMarkup,
	},
	StateSelectingProductForMarkup: {
		StateEnteringMarkupPercentage,
	},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
func IsTransitionAllowed(from, to State) bool {
	if to == StateIdle {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
