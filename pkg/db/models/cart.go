package models

import "time"

// Cart is the single open cart of a member at a restaurant.
type Cart struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	RestaurantID int64      `gorm:"column:restaurant_id;not null;uniqueIndex:uq_carts_restaurant_member,priority:1"`
	MemberID     int64      `gorm:"column:member_id;not null;uniqueIndex:uq_carts_restaurant_member,priority:2"`
	Items        []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CartUniqueConstraint names the (restaurant, member) unique index.
const CartUniqueConstraint = "uq_carts_restaurant_member"
