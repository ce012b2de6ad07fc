package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a menu entry of a restaurant.
type Product struct {
	ID           int64           `gorm:"column:id;primaryKey;autoIncrement"`
	RestaurantID int64           `gorm:"column:restaurant_id;not null;index"`
	Category     string          `gorm:"column:category;not null;default:''"`
	Name         string          `gorm:"column:name;not null"`
	ImgKey       string          `gorm:"column:img_key;not null;default:''"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Unit         string          `gorm:"column:unit;not null;default:''"`
	Description  string          `gorm:"column:description;not null;default:''"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
