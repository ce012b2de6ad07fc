package models

import "time"

// CartItem is a candidate order line. Product is preloaded for pricing.
type CartItem struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CartID    int64     `gorm:"column:cart_id;not null;index"`
	ProductID int64     `gorm:"column:product_id;not null;index"`
	Count     int       `gorm:"column:count;not null;default:1"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
