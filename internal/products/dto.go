package products

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
)

type ProductDTO struct {
	ID           int64           `json:"id"`
	RestaurantID int64           `json:"restaurant_id"`
	Category     string          `json:"category"`
	Name         string          `json:"name"`
	ImgKey       string          `json:"img_key"`
	Price        decimal.Decimal `json:"price"`
	Unit         string          `json:"unit"`
	Description  string          `json:"description"`
}

// ProductInput is the body of POST /product and PUT /product/{id}.
type ProductInput struct {
	RestaurantOpenID string `json:"openid" validate:"required"`
	Category         string `json:"category" validate:"max=64"`
	Name             string `json:"name" validate:"required,max=100"`
	ImgKey           string `json:"img_key" validate:"max=255"`
	Price            string `json:"price" validate:"required,numeric"`
	Unit             string `json:"unit" validate:"max=32"`
	Description      string `json:"description" validate:"max=1000"`
}

func FromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		RestaurantID: p.RestaurantID,
		Category:     p.Category,
		Name:         p.Name,
		ImgKey:       p.ImgKey,
		Price:        p.Price.Round(2),
		Unit:         p.Unit,
		Description:  p.Description,
	}
}
