package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tableside-backend/pkg/enums"
)

// Order is the immutable checkout record of a cart.
type Order struct {
	ID           int64             `gorm:"column:id;primaryKey;autoIncrement"`
	RestaurantID int64             `gorm:"column:restaurant_id;not null;index"`
	MemberID     int64             `gorm:"column:member_id;not null;index"`
	Price        decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	Status       enums.OrderStatus `gorm:"column:status;not null;default:'created'"`
	Items        []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
