package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/internal/restaurants"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
)

var maxPrice = decimal.New(1, 8)

type productRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
}

type ownershipChecker interface {
	Authorize(ctx context.Context, ownerID, restaurantID int64) error
}

type Service interface {
	ListByRestaurant(ctx context.Context, restaurantOpenID string) ([]ProductDTO, error)
	Get(ctx context.Context, id int64) (*ProductDTO, error)
	Create(ctx context.Context, ownerID int64, input ProductInput) (*ProductDTO, error)
	Update(ctx context.Context, ownerID, id int64, input ProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type service struct {
	repo        productRepository
	restaurants restaurants.Finder
	owners      ownershipChecker
}

func NewService(repo productRepository, restaurantFinder restaurants.Finder, owners ownershipChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if restaurantFinder == nil {
		return nil, fmt.Errorf("restaurant finder required")
	}
	if owners == nil {
		return nil, fmt.Errorf("ownership checker required")
	}
	return &service{repo: repo, restaurants: restaurantFinder, owners: owners}, nil
}

func (s *service) ListByRestaurant(ctx context.Context, restaurantOpenID string) ([]ProductDTO, error) {
	restaurant, err := restaurants.Resolve(ctx, s.restaurants, restaurantOpenID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByRestaurant(ctx, restaurant.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, ownerID int64, input ProductInput) (*ProductDTO, error) {
	restaurant, err := restaurants.Resolve(ctx, s.restaurants, input.RestaurantOpenID)
	if err != nil {
		return nil, err
	}
	if err := s.owners.Authorize(ctx, ownerID, restaurant.ID); err != nil {
		return nil, err
	}
	product := &models.Product{RestaurantID: restaurant.ID}
	if err := apply(product, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := FromModel(product)
	return &dto, nil
}

// Update edits a product in place. The restaurant of a product never changes;
// the openid in the body is ignored.
func (s *service) Update(ctx context.Context, ownerID, id int64, input ProductInput) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.owners.Authorize(ctx, ownerID, product.RestaurantID); err != nil {
		return nil, err
	}
	if err := apply(product, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id int64) error {
	product, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.owners.Authorize(ctx, ownerID, product.RestaurantID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func apply(product *models.Product, input ProductInput) error {
	price, err := ParsePrice(input.Price)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"price": err.Error()})
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"name": "required"})
	}
	product.Name = name
	product.Category = strings.TrimSpace(input.Category)
	product.ImgKey = input.ImgKey
	product.Price = price
	product.Unit = strings.TrimSpace(input.Unit)
	product.Description = input.Description
	return nil
}

// ParsePrice accepts a non-negative amount with at most two decimal places.
func ParsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("must be a decimal number")
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return decimal.Zero, fmt.Errorf("must have at most two decimal places")
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero, fmt.Errorf("exceeds maximum price")
	}
	return price, nil
}
