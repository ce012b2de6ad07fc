package models

import "time"

// Member is a diner identified by the mini-program openid.
type Member struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	WPOpenID  string    `gorm:"column:wp_openid;not null;uniqueIndex"`
	Nickname  string    `gorm:"column:nickname;not null;default:''"`
	AvatarKey *string   `gorm:"column:avatar_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
