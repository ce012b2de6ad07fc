package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindOrder(ctx context.Context, id int64) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, id int64) (*models.Order, error)
	ListByMember(ctx context.Context, memberID int64) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) error
	DeleteOrder(ctx context.Context, id int64) error
	DeleteItems(ctx context.Context, orderID int64) error
	ReleaseTables(ctx context.Context, orderID int64) error
	FindTableByOrder(ctx context.Context, orderID int64) (*models.Table, error)
}

// CartStore is the slice of the cart repository used by order conversion.
type CartStore interface {
	FindByID(ctx context.Context, id int64) (*models.Cart, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Cart, error)
	ClearItems(ctx context.Context, cartID int64, itemIDs []int64) error
}
