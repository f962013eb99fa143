package lifecycle

import "fmt"

// OrderStatus is an opaque state tag for a produce order.
type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "pending_payment"
	OrderProcessing     OrderStatus = "processing"
	OrderShipping       OrderStatus = "shipping"
	OrderCompleted      OrderStatus = "completed"
	OrderCanceled       OrderStatus = "canceled"
)

// OrderEvent is an order transition trigger.
type OrderEvent string

const (
	OrderEventPay      OrderEvent = "pay"
	OrderEventShip     OrderEvent = "ship"
	OrderEventComplete OrderEvent = "complete"
	OrderEventCancel   OrderEvent = "cancel"
)

var orderTransitions = map[OrderStatus]map[OrderEvent]OrderStatus{
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
	// completed and canceled are terminal: no outgoing events.
	OrderCompleted: {},
	OrderCanceled:  {},
}

// OrderStatuses lists every order status tag.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderPendingPayment, OrderProcessing, OrderShipping, OrderCompleted, OrderCanceled}
}

// OrderEvents lists every order event.
func OrderEvents() []OrderEvent {
	return []OrderEvent{OrderEventPay, OrderEventShip, OrderEventComplete, OrderEventCancel}
}

// TransitionOrder applies ev to cur, returning ErrInvalidTransition for
// anything outside the documented forward-only path. Terminal states reject
// all events.
func TransitionOrder(cur OrderStatus, ev OrderEvent) (OrderStatus, error) {
	next, ok := orderTransitions[cur][ev]
	if !ok {
		return cur, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, cur)
	}
	return next, nil
}

// OrderTerminal reports whether the status accepts no further events.
func OrderTerminal(s OrderStatus) bool {
	return s == OrderCompleted || s == OrderCanceled
}
