package enums

import "fmt"

// OrderStatus tracks the escrow lifecycle of an order. Exactly one status
// applies at a time; released and disputed are terminal.
type OrderStatus string

const (
	OrderStatusLocked    OrderStatus = "locked"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusReleased  OrderStatus = "released"
	OrderStatusDisputed  OrderStatus = "disputed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusLocked,
	OrderStatusDelivered,
	OrderStatusReleased,
	OrderStatusDisputed,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReleased || s == OrderStatusDisputed
}

// IsActive reports whether the order still holds funds in escrow.
func (s OrderStatus) IsActive() bool {
	return s == OrderStatusLocked || s == OrderStatusDelivered
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
