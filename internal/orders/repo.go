package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/internal/repo"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Omit("Items").Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&items).Error
}

func (r *repository) FindOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.ForUpdate(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int64) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Where("member_id = ?", memberID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) error {
	return r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) DeleteOrder(ctx context.Context, id int64) error {
	return r.DB(ctx).Delete(&models.Order{}, "id = ?", id).Error
}

func (r *repository) DeleteItems(ctx context.Context, orderID int64) error {
	return r.DB(ctx).Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error
}

// ReleaseTables clears the order reference of any table still holding it.
func (r *repository) ReleaseTables(ctx context.Context, orderID int64) error {
	return r.DB(ctx).
		Model(&models.Table{}).
		Where("order_id = ?", orderID).
		Update("order_id", nil).Error
}

func (r *repository) FindTableByOrder(ctx context.Context, orderID int64) (*models.Table, error) {
	var table models.Table
	if err := r.DB(ctx).Preload("TableType").First(&table, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &table, nil
}
