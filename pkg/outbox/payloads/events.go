package payloads

import (
	"time"

	"github.com/angelmondragon/tableside-backend/pkg/enums"
)

// OrderCreatedEvent is emitted when a cart is converted into an order.
type OrderCreatedEvent struct {
	OrderID      int64             `json:"order_id"`
	RestaurantID int64             `json:"restaurant_id"`
	MemberID     int64             `json:"member_id"`
	CartID       int64             `json:"cart_id"`
	Price        string            `json:"price"`
	ItemCount    int               `json:"item_count"`
	Status       enums.OrderStatus `json:"status"`
}

// OrderCancelledEvent is emitted when an order is deleted.
type OrderCancelledEvent struct {
	OrderID      int64     `json:"order_id"`
	RestaurantID int64     `json:"restaurant_id"`
	MemberID     int64     `json:"member_id"`
	CancelledAt  time.Time `json:"cancelled_at"`
}

// OrderStatusChangedEvent is emitted on every staff driven transition.
type OrderStatusChangedEvent struct {
	OrderID      int64             `json:"order_id"`
	RestaurantID int64             `json:"restaurant_id"`
	From         enums.OrderStatus `json:"from"`
	To           enums.OrderStatus `json:"to"`
}

// RegistrationEvent describes a waiting list entry after a change.
type RegistrationEvent struct {
	RegistrationID int64                    `json:"registration_id"`
	TableTypeID    int64                    `json:"table_type_id"`
	MemberID       int64                    `json:"member_id"`
	QueueNumber    int                      `json:"queue_number"`
	PartySize      int                      `json:"party_size"`
	Status         enums.RegistrationStatus `json:"status"`
}
