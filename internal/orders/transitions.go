package orders

import "github.com/fjod/go_cart/storefront/internal/domain"

var validNext = map[domain.FormState][]domain.FormState{
	domain.FormStateClosed:     {domain.FormStateOpen},
	domain.FormStateOpen:       {domain.FormStateClosed, domain.FormStateSubmitting},
	domain.FormStateSubmitting: {domain.FormStateClosed, domain.FormStateOpen},
}

// CanTransition reports whether the order form may move from one state to another.
func CanTransition(from, to domain.FormState) bool {
	for _, next := range validNext[from] {
		if next == to {
			return true
		}
	}
	return false
}
