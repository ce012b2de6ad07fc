package restaurants

import (
	"time"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
)

type RestaurantDTO struct {
	ID        int64     `json:"id"`
	OpenID    string    `json:"openid"`
	Name      string    `json:"name"`
	FileKey   *string   `json:"file_key"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRestaurantInput is the body of POST /restaurant.
type CreateRestaurantInput struct {
	Name    string  `json:"name" validate:"required,max=100"`
	FileKey *string `json:"file_key" validate:"omitempty,max=255"`
}

// UpdateRestaurantInput is the body of PUT /restaurant/{openid}. Nil fields are left unchanged.
type UpdateRestaurantInput struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	FileKey *string `json:"file_key" validate:"omitempty,max=255"`
}

func FromModel(r *models.Restaurant) *RestaurantDTO {
	if r == nil {
		return nil
	}
	return &RestaurantDTO{
		ID:        r.ID,
		OpenID:    r.OpenID,
		Name:      r.Name,
		FileKey:   r.FileKey,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt,
	}
}
