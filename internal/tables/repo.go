package tables

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

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) ListTableTypes(ctx context.Context, restaurantID int64) ([]models.TableType, error) {
	var rows []models.TableType
	err := r.DB(ctx).Where("restaurant_id = ?", restaurantID).Order("min_seats ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindTableType(ctx context.Context, id int64) (*models.TableType, error) {
	var tt models.TableType
	if err := r.DB(ctx).First(&tt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *Repository) SaveTableType(ctx context.Context, tt *models.TableType) error {
	return r.DB(ctx).Save(tt).Error
}

func (r *Repository) DeleteTableType(ctx context.Context, id int64) error {
	return r.DB(ctx).Delete(&models.TableType{}, "id = ?", id).Error
}

func (r *Repository) ListTables(ctx context.Context, restaurantID int64) ([]models.Table, error) {
	var rows []models.Table
	err := r.DB(ctx).
		Preload("Order").
		Where("restaurant_id = ?", restaurantID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// FindTable loads a table with its type and the held order including items.
func (r *Repository) FindTable(ctx context.Context, id int64) (*models.Table, error) {
	var table models.Table
	err := r.DB(ctx).
		Preload("TableType").
		Preload("Order.Items").
		First(&table, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *Repository) FindTableForUpdate(ctx context.Context, id int64) (*models.Table, error) {
	var table models.Table
	if err := r.ForUpdate(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// FindTableByOrder returns the table currently holding orderID, if any.
func (r *Repository) FindTableByOrder(ctx context.Context, orderID int64) (*models.Table, error) {
	var table models.Table
	if err := r.DB(ctx).Preload("TableType").First(&table, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *Repository) SaveTable(ctx context.Context, table *models.Table) error {
	return r.DB(ctx).Omit("TableType", "Order").Save(table).Error
}

func (r *Repository) DeleteTable(ctx context.Context, id int64) error {
	return r.DB(ctx).Delete(&models.Table{}, "id = ?", id).Error
}

func (r *Repository) SetOrder(ctx context.Context, tableID int64, orderID *int64) error {
	return r.DB(ctx).
		Model(&models.Table{}).
		Where("id = ?", tableID).
		Update("order_id", orderID).Error
}

func (r *Repository) FindOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
