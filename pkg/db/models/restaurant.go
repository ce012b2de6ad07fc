package models

import "time"

// Restaurant is owned by a single User and addressed publicly by OpenID.
type Restaurant struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OpenID    string    `gorm:"column:openid;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	FileKey   *string   `gorm:"column:file_key"`
	OwnerID   int64     `gorm:"column:owner_id;not null;index"`
	Owner     *User     `gorm:"foreignKey:OwnerID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
