package products

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

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByRestaurant returns the menu grouped by category then id.
func (r *Repository) ListByRestaurant(ctx context.Context, restaurantID int64) ([]models.Product, error) {
	var rows []models.Product
	err := r.DB(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("category ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Create(product).Error
}

func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Save(product).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Delete(&models.Product{}, "id = ?", id).Error
}
