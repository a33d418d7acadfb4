package orders

import (
	"github.com/agritrust/agritrust-backend/pkg/enums"
)

// transition is one edge of the order lifecycle.
type transition struct {
	From enums.OrderStatus
	To   enums.OrderStatus
}

// allowed is the closed set of edges buyers and sellers can drive. Buyer
// confirmation and dispute both require a marked delivery first.
var allowed = map[transition]bool{
	{From: enums.OrderStatusLocked, To: enums.OrderStatusDelivered}:   true,
	{From: enums.OrderStatusDelivered, To: enums.OrderStatusReleased}: true,
	{From: enums.OrderStatusDelivered, To: enums.OrderStatusDisputed}: true,
}

// forceReleasable lists the statuses the admin override may release from.
// The override skips the delivery gate but cannot reopen a settled or
// disputed order.
var forceReleasable = map[enums.OrderStatus]bool{
	enums.OrderStatusLocked:    true,
	enums.OrderStatusDelivered: true,
}

func canTransition(from, to enums.OrderStatus) bool {
	return allowed[transition{From: from, To: to}]
}

func canForceRelease(from enums.OrderStatus) bool {
	return forceReleasable[from]
}
