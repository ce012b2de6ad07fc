package models

import "time"

// Post is member generated content, optionally tagged with restaurants.
type Post struct {
	ID        int64       `gorm:"column:id;primaryKey;autoIncrement"`
	MemberID  int64       `gorm:"column:member_id;not null;index"`
	Content   string      `gorm:"column:content;not null;default:''"`
	Member    *Member     `gorm:"foreignKey:MemberID"`
	Images    []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Tags      []Tag       `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// PostImage references an uploaded image by storage key.
type PostImage struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PostID    int64     `gorm:"column:post_id;not null;index"`
	FileKey   string    `gorm:"column:file_key;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Tag attaches a label to a post and optionally to a restaurant.
type Tag struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Type         int       `gorm:"column:type;not null;default:1"`
	Content      string    `gorm:"column:content;not null"`
	PostID       int64     `gorm:"column:post_id;not null;index"`
	RestaurantID *int64    `gorm:"column:restaurant_id;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// PostLike records that a member liked a post.
type PostLike struct {
	PostID    int64     `gorm:"column:post_id;primaryKey"`
	MemberID  int64     `gorm:"column:member_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
