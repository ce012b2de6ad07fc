package enums

import "fmt"

// OrderStatus tracks the lifecycle of a dine-in order.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusRejected  OrderStatus = "rejected"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusAccepted,
	OrderStatusServed,
	OrderStatusCompleted,
	OrderStatusRejected,
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:  {OrderStatusAccepted, OrderStatusRejected},
	OrderStatusAccepted: {OrderStatusServed, OrderStatusRejected},
	OrderStatusServed:   {OrderStatusCompleted, OrderStatusRejected},
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusCompleted || o == OrderStatusRejected
}

// IsActive reports whether the order still occupies a table.
func (o OrderStatus) IsActive() bool {
	return o.IsValid() && !o.IsTerminal()
}

// CanTransitionTo reports whether next is a legal successor state.
func (o OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderTransitions[o] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
