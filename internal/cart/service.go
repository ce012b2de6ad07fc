package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/internal/members"
	"github.com/angelmondragon/tableside-backend/internal/restaurants"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
	"github.com/angelmondragon/tableside-backend/pkg/validate"
)

const (
	msgNoCart      = "param error: no cart found"
	msgInvalidCart = "param error: no volid cart"
	msgInvalidItem = "param error: no valid cart item"
)

type productLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

// Service exposes the member cart operations.
type Service interface {
	GetOrCreateCart(ctx context.Context, restaurantOpenID, wpOpenID string) (*CartDTO, error)
	AddItem(ctx context.Context, restaurantOpenID, wpOpenID string, input AddItemInput) (*CartItemDTO, error)
	RemoveItem(ctx context.Context, restaurantOpenID, wpOpenID string, cartID, cartItemID int64) (*CartDTO, error)
	RecountItem(ctx context.Context, restaurantOpenID, wpOpenID string, input RecountInput) (*CartItemDTO, error)
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type ServiceParams struct {
	Repo        *Repository
	Restaurants restaurants.Finder
	Members     members.Finder
	Products    productLoader
	Now         func() time.Time
}

type service struct {
	repo        *Repository
	restaurants restaurants.Finder
	members     members.Finder
	products    productLoader
	now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Restaurants == nil {
		return nil, fmt.Errorf("restaurant finder required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("member finder required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		restaurants: params.Restaurants,
		members:     params.Members,
		products:    params.Products,
		now:         now,
	}, nil
}

func (s *service) resolve(ctx context.Context, restaurantOpenID, wpOpenID string) (*models.Restaurant, *models.Member, error) {
	restaurant, err := restaurants.Resolve(ctx, s.restaurants, restaurantOpenID)
	if err != nil {
		return nil, nil, err
	}
	member, err := members.Resolve(ctx, s.members, wpOpenID)
	if err != nil {
		return nil, nil, err
	}
	return restaurant, member, nil
}

// ownedCart returns the cart of the (restaurant, member) pair. missing is the
// error returned when the pair has no cart yet.
func (s *service) ownedCart(ctx context.Context, restaurantOpenID, wpOpenID string, missing error) (*models.Cart, error) {
	restaurant, member, err := s.resolve(ctx, restaurantOpenID, wpOpenID)
	if err != nil {
		return nil, err
	}
	cart, err := s.repo.FindByPair(ctx, restaurant.ID, member.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, missing
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) GetOrCreateCart(ctx context.Context, restaurantOpenID, wpOpenID string) (*CartDTO, error) {
	restaurant, member, err := s.resolve(ctx, restaurantOpenID, wpOpenID)
	if err != nil {
		return nil, err
	}
	cart, err := s.repo.GetOrCreate(ctx, restaurant.ID, member.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get or create cart")
	}
	dto := FromModel(cart)
	return &dto, nil
}

func (s *service) AddItem(ctx context.Context, restaurantOpenID, wpOpenID string, input AddItemInput) (*CartItemDTO, error) {
	cart, err := s.ownedCart(ctx, restaurantOpenID, wpOpenID, pkgerrors.New(pkgerrors.CodeInvalidReference, msgNoCart))
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validation("product", "invalid product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.RestaurantID != cart.RestaurantID {
		return nil, validation("product", "product belongs to another restaurant")
	}

	item := &models.CartItem{CartID: cart.ID, ProductID: product.ID, Count: input.Count}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
	}
	if err := s.repo.Touch(ctx, cart.ID, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
	}
	item.Product = product
	dto := itemFromModel(item)
	return &dto, nil
}

func (s *service) RemoveItem(ctx context.Context, restaurantOpenID, wpOpenID string, cartID, cartItemID int64) (*CartDTO, error) {
	cart, err := s.ownedCart(ctx, restaurantOpenID, wpOpenID, pkgerrors.New(pkgerrors.CodeInvalidReference, msgNoCart))
	if err != nil {
		return nil, err
	}
	if cart.ID != cartID {
		return nil, pkgerrors.New(pkgerrors.CodeOwnershipMismatch, msgInvalidCart)
	}

	item, err := s.repo.FindItem(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, msgNoCart)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if item.CartID != cart.ID {
		return nil, pkgerrors.New(pkgerrors.CodeOwnershipMismatch, msgInvalidItem)
	}

	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	fresh, err := s.repo.FindByID(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	dto := FromModel(fresh)
	return &dto, nil
}

// RecountItem changes the count of an item in the caller's own cart.
func (s *service) RecountItem(ctx context.Context, restaurantOpenID, wpOpenID string, input RecountInput) (*CartItemDTO, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	item, err := s.repo.FindItem(ctx, input.CartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	cart, err := s.ownedCart(ctx, restaurantOpenID, wpOpenID, pkgerrors.New(pkgerrors.CodeInvalidReference, msgNoCart))
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		return nil, pkgerrors.New(pkgerrors.CodeOwnershipMismatch, msgInvalidItem)
	}

	if err := s.repo.UpdateItemCount(ctx, item.ID, input.Count); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if err := s.repo.Touch(ctx, cart.ID, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
	}
	item.Count = input.Count
	dto := itemFromModel(item)
	return &dto, nil
}

// PurgeStale deletes empty carts untouched since cutoff.
func (s *service) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.DeleteEmptyBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge stale carts")
	}
	return n, nil
}

func validation(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}
