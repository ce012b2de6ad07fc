package models

import "github.com/shopspring/decimal"

// OrderItem freezes the product fields at the time the order was placed.
type OrderItem struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"column:order_id;not null;index"`
	Category    string          `gorm:"column:category;not null;default:''"`
	Name        string          `gorm:"column:name;not null"`
	ImgKey      string          `gorm:"column:img_key;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Unit        string          `gorm:"column:unit;not null;default:''"`
	Description string          `gorm:"column:description;not null;default:''"`
	Count       int             `gorm:"column:count;not null"`
}

// LineTotal returns price * count.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Count)))
}
