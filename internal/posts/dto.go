package posts

import (
	"time"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
)

type ImageDTO struct {
	ID      int64  `json:"id"`
	FileKey string `json:"file_key"`
}

type TagDTO struct {
	ID           int64     `json:"id"`
	Type         int       `json:"type"`
	Content      string    `json:"content"`
	PostID       int64     `json:"post_id"`
	RestaurantID *int64    `json:"restaurant_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type PostDTO struct {
	ID        int64      `json:"id"`
	WPOpenID  string     `json:"wp_openid"`
	Nickname  string     `json:"nickname"`
	Content   string     `json:"content"`
	Images    []ImageDTO `json:"images"`
	Tags      []TagDTO   `json:"tags"`
	Likes     int        `json:"likes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PostPage is one page of GET /post.
type PostPage struct {
	Items      []PostDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

type TagInput struct {
	Type             int    `json:"type" validate:"omitempty,gte=1"`
	Content          string `json:"content" validate:"required,max=255"`
	RestaurantOpenID string `json:"restaurant_openid"`
}

// CreatePostInput is the body of POST /post.
type CreatePostInput struct {
	WPOpenID  string     `json:"wp_openid" validate:"required"`
	Content   string     `json:"content" validate:"max=2000"`
	ImageKeys []string   `json:"images" validate:"max=9,dive,required,max=255"`
	Tags      []TagInput `json:"tags" validate:"max=10,dive"`
}

// UpdatePostInput is the body of PUT /post/{id}. A nil ImageKeys keeps the current images.
type UpdatePostInput struct {
	WPOpenID  string    `json:"wp_openid" validate:"required"`
	Content   string    `json:"content" validate:"max=2000"`
	ImageKeys *[]string `json:"images" validate:"omitempty,max=9,dive,required,max=255"`
}

// CreateTagInput is the body of POST /tag.
type CreateTagInput struct {
	TagInput
	PostID   int64  `json:"post_id" validate:"required,gt=0"`
	WPOpenID string `json:"wp_openid" validate:"required"`
}

// UpdateTagInput is the body of PUT /tag/{id}.
type UpdateTagInput struct {
	TagInput
	WPOpenID string `json:"wp_openid" validate:"required"`
}

func tagFromModel(t *models.Tag) TagDTO {
	return TagDTO{
		ID:           t.ID,
		Type:         t.Type,
		Content:      t.Content,
		PostID:       t.PostID,
		RestaurantID: t.RestaurantID,
		CreatedAt:    t.CreatedAt,
	}
}

func postFromModel(p *models.Post, likes int) PostDTO {
	dto := PostDTO{
		ID:        p.ID,
		Content:   p.Content,
		Images:    make([]ImageDTO, 0, len(p.Images)),
		Tags:      make([]TagDTO, 0, len(p.Tags)),
		Likes:     likes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Member != nil {
		dto.WPOpenID = p.Member.WPOpenID
		dto.Nickname = p.Member.Nickname
	}
	for _, img := range p.Images {
		dto.Images = append(dto.Images, ImageDTO{ID: img.ID, FileKey: img.FileKey})
	}
	for i := range p.Tags {
		dto.Tags = append(dto.Tags, tagFromModel(&p.Tags[i]))
	}
	return dto
}
