package cart

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/tableside-backend/internal/repo"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
)

// Repository persists carts and their items.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// GetOrCreate inserts the (restaurant, member) cart unless it already exists
// and returns the stored row. Concurrent callers converge on the same cart
// through the unique index.
func (r *Repository) GetOrCreate(ctx context.Context, restaurantID, memberID int64) (*models.Cart, error) {
	cart := models.Cart{RestaurantID: restaurantID, MemberID: memberID}
	err := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "member_id"}},
			DoNothing: true,
		}).
		Create(&cart).Error
	if err != nil {
		return nil, err
	}
	return r.FindByPair(ctx, restaurantID, memberID)
}

// FindByPair loads the cart of a member at a restaurant with items and products.
func (r *Repository) FindByPair(ctx context.Context, restaurantID, memberID int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product").
		Where("restaurant_id = ? AND member_id = ?", restaurantID, memberID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product").
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByIDForUpdate locks the cart row and loads its items and products. Items
// inserted by other transactions after the lock is taken are not part of the result.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Cart, error) {
	var cart models.Cart
	if err := r.ForUpdate(ctx).First(&cart, "id = ?", id).Error; err != nil {
		return nil, err
	}
	var items []models.CartItem
	err := r.DB(ctx).
		Preload("Product").
		Where("cart_id = ?", cart.ID).
		Order("cart_items.id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

func (r *Repository) FindItem(ctx context.Context, id int64) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB(ctx).Preload("Product").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.DB(ctx).Omit("Product").Create(item).Error
}

func (r *Repository) UpdateItemCount(ctx context.Context, id int64, count int) error {
	return r.DB(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("count", count).Error
}

func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	return r.DB(ctx).Delete(&models.CartItem{}, "id = ?", id).Error
}

// ClearItems removes the given items of a cart and keeps the cart row.
func (r *Repository) ClearItems(ctx context.Context, cartID int64, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.DB(ctx).
		Where("cart_id = ? AND id IN ?", cartID, itemIDs).
		Delete(&models.CartItem{}).Error
}

// Touch bumps updated_at so active carts survive stale-cart cleanup.
func (r *Repository) Touch(ctx context.Context, cartID int64, now time.Time) error {
	return r.DB(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		UpdateColumn("updated_at", now).Error
}

// DeleteEmptyBefore removes carts without items that were last touched before cutoff.
func (r *Repository) DeleteEmptyBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB(ctx).
		Where("updated_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM cart_items WHERE cart_items.cart_id = carts.id)").
		Delete(&models.Cart{})
	return res.RowsAffected, res.Error
}
