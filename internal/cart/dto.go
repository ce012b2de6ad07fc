package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tableside-backend/internal/products"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
)

type CartDTO struct {
	ID           int64         `json:"id"`
	RestaurantID int64         `json:"restaurant_id"`
	MemberID     int64         `json:"member_id"`
	Items        []CartItemDTO `json:"items"`
	Price        string        `json:"price"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type CartItemDTO struct {
	ID        int64                `json:"id"`
	CartID    int64                `json:"cart_id"`
	ProductID int64                `json:"product_id"`
	Count     int                  `json:"count"`
	Product   *products.ProductDTO `json:"product,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// AddItemInput is the body of POST /cart/item.
type AddItemInput struct {
	ProductID int64 `json:"product" validate:"required,gt=0"`
	Count     int   `json:"count" validate:"gte=1"`
}

// RecountInput is the body of POST /cart/item/recount.
type RecountInput struct {
	CartItemID int64 `json:"cart_item" validate:"required,gt=0"`
	Count      int   `json:"count" validate:"gte=1"`
}

func itemFromModel(item *models.CartItem) CartItemDTO {
	dto := CartItemDTO{
		ID:        item.ID,
		CartID:    item.CartID,
		ProductID: item.ProductID,
		Count:     item.Count,
		CreatedAt: item.CreatedAt,
	}
	if item.Product != nil {
		p := products.FromModel(item.Product)
		dto.Product = &p
	}
	return dto
}

// FromModel renders a cart with its items. Price is the running total of the
// preloaded products and is informational only.
func FromModel(c *models.Cart) CartDTO {
	total := decimal.Zero
	items := make([]CartItemDTO, 0, len(c.Items))
	for i := range c.Items {
		item := &c.Items[i]
		items = append(items, itemFromModel(item))
		if item.Product != nil {
			total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Count))))
		}
	}
	return CartDTO{
		ID:           c.ID,
		RestaurantID: c.RestaurantID,
		MemberID:     c.MemberID,
		Items:        items,
		Price:        total.StringFixed(2),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
