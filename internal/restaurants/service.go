package restaurants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
)

// ErrRestaurantNotFound is the message returned when an openid query
// parameter does not match any restaurant.
const ErrRestaurantNotFound = "param error: no restaurant found"

type restaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	FindByOpenID(ctx context.Context, openID string) (*models.Restaurant, error)
	FindByID(ctx context.Context, id int64) (*models.Restaurant, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Restaurant, error)
	Update(ctx context.Context, restaurant *models.Restaurant) error
}

type Service interface {
	Create(ctx context.Context, ownerID int64, input CreateRestaurantInput) (*RestaurantDTO, error)
	Get(ctx context.Context, openID string) (*RestaurantDTO, error)
	ListOwned(ctx context.Context, ownerID int64) ([]RestaurantDTO, error)
	Update(ctx context.Context, ownerID int64, openID string, input UpdateRestaurantInput) (*RestaurantDTO, error)
	// Authorize fails with FORBIDDEN unless ownerID owns restaurantID.
	Authorize(ctx context.Context, ownerID, restaurantID int64) error
}

type service struct {
	repo restaurantRepository
}

func NewService(repo restaurantRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("restaurant repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, ownerID int64, input CreateRestaurantInput) (*RestaurantDTO, error) {
	if ownerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"name": "required"})
	}
	restaurant := &models.Restaurant{
		OpenID:  strings.ReplaceAll(uuid.NewString(), "-", ""),
		Name:    name,
		FileKey: input.FileKey,
		OwnerID: ownerID,
	}
	if err := s.repo.Create(ctx, restaurant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create restaurant")
	}
	return FromModel(restaurant), nil
}

func (s *service) Get(ctx context.Context, openID string) (*RestaurantDTO, error) {
	restaurant, err := s.repo.FindByOpenID(ctx, openID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	return FromModel(restaurant), nil
}

func (s *service) ListOwned(ctx context.Context, ownerID int64) ([]RestaurantDTO, error) {
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list restaurants")
	}
	out := make([]RestaurantDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, ownerID int64, openID string, input UpdateRestaurantInput) (*RestaurantDTO, error) {
	restaurant, err := s.repo.FindByOpenID(ctx, openID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	if restaurant.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "restaurant belongs to another owner")
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"name": "required"})
		}
		restaurant.Name = name
	}
	if input.FileKey != nil {
		restaurant.FileKey = input.FileKey
	}
	if err := s.repo.Update(ctx, restaurant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update restaurant")
	}
	return FromModel(restaurant), nil
}

func (s *service) Authorize(ctx context.Context, ownerID, restaurantID int64) error {
	restaurant, err := s.repo.FindByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	if restaurant.OwnerID != ownerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "restaurant belongs to another owner")
	}
	return nil
}

// Finder is the lookup surface Resolve needs.
type Finder interface {
	FindByOpenID(ctx context.Context, openID string) (*models.Restaurant, error)
}

// Resolve loads the restaurant named by an openid request parameter. An
// unknown openid is an INVALID_REFERENCE (400).
func Resolve(ctx context.Context, finder Finder, openID string) (*models.Restaurant, error) {
	if strings.TrimSpace(openID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, ErrRestaurantNotFound)
	}
	restaurant, err := finder.FindByOpenID(ctx, openID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, ErrRestaurantNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	return restaurant, nil
}
