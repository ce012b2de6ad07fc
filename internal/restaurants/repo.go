package restaurants

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/internal/repo"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	return r.DB(ctx).Create(restaurant).Error
}

func (r *Repository) FindByOpenID(ctx context.Context, openID string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.DB(ctx).Where("openid = ?", openID).First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.DB(ctx).First(&restaurant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Restaurant, error) {
	var rows []models.Restaurant
	err := r.DB(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) Update(ctx context.Context, restaurant *models.Restaurant) error {
	return r.DB(ctx).Save(restaurant).Error
}
