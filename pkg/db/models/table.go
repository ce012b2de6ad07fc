package models

import "time"

// Table is a physical table. OrderID points at the order currently being served there.
type Table struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	RestaurantID int64      `gorm:"column:restaurant_id;not null;index"`
	TableTypeID  int64      `gorm:"column:table_type_id;not null;index"`
	Name         string     `gorm:"column:name;not null"`
	OrderID      *int64     `gorm:"column:order_id;index"`
	TableType    *TableType `gorm:"foreignKey:TableTypeID;constraint:OnDelete:CASCADE"`
	Order        *Order     `gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Table) TableName() string {
	return "dining_tables"
}
