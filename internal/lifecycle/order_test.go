package lifecycle

import (
	"errors"
	"testing"
)

func TestOrderTransitionTable(t *testing.T) {
	valid := map[OrderStatus]map[OrderEvent]OrderStatus{
		OrderPendingPayment: {
			OrderEventPay:    OrderProcessing,
			OrderEventCancel: OrderCanceled,
		},
		OrderProcessing: {
			OrderEventShip:   OrderShipping,
			OrderEventCancel: OrderCanceled,
		},
		OrderShipping: {
			OrderEventComplete: OrderCompleted,
			OrderEventCancel:   OrderCanceled,
		},
	}

	for _, status := range OrderStatuses() {
		for _, event := range OrderEvents() {
			t.Run(string(status)+"/"+string(event), func(t *testing.T) {
				next, err := TransitionOrder(status, event)
				want, ok := valid[status][event]
				if ok {
					if err != nil {
						t.Fatalf("expected %s, got error %v", want, err)
					}
					if next != want {
						t.Errorf("expected %s, got %s", want, next)
					}
					return
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got next=%s err=%v", next, err)
				}
			})
		}
	}
}

func TestOrderTerminality(t *testing.T) {
	for _, status := range []OrderStatus{OrderCompleted, OrderCanceled} {
		if !OrderTerminal(status) {
			t.Errorf("%s must be terminal", status)
		}
		for _, event := range OrderEvents() {
			if _, err := TransitionOrder(status, event); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s must reject %s, got %v", status, event, err)
			}
		}
	}
	for _, status := range []OrderStatus{OrderPendingPayment, OrderProcessing, OrderShipping} {
		if OrderTerminal(status) {
			t.Errorf("%s must not be terminal", status)
		}
	}
}

func TestOrderCancelFromAnyNonTerminal(t *testing.T) {
	for _, status := range []OrderStatus{OrderPendingPayment, OrderProcessing, OrderShipping} {
		next, err := TransitionOrder(status, OrderEventCancel)
		if err != nil {
			t.Fatalf("cancel from %s: %v", status, err)
		}
		if next != OrderCanceled {
			t.Errorf("cancel from %s: got %s", status, next)
		}
	}
}
