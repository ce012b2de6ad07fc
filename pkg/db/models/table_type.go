package models

import (
	"fmt"
	"time"
)

// TableType groups tables of a restaurant by seating capacity and owns a waiting list.
type TableType struct {
	ID           int64       `gorm:"column:id;primaryKey;autoIncrement"`
	RestaurantID int64       `gorm:"column:restaurant_id;not null;index"`
	Name         string      `gorm:"column:name;not null"`
	MinSeats     int         `gorm:"column:min_seats;not null;default:1"`
	MaxSeats     int         `gorm:"column:max_seats;not null;default:1"`
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// Slug renders the display label used by the clients, e.g. "大桌（5-8人）".
func (t TableType) Slug() string {
	return fmt.Sprintf("%s（%d-%d人）", t.Name, t.MinSeats, t.MaxSeats)
}

// Fits reports whether a party of the given size can be seated at this type.
func (t TableType) Fits(partySize int) bool {
	return partySize >= t.MinSeats && partySize <= t.MaxSeats
}
