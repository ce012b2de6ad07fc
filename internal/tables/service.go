package tables

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/internal/queue"
	"github.com/angelmondragon/tableside-backend/internal/restaurants"
	"github.com/angelmondragon/tableside-backend/pkg/config"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ownershipChecker interface {
	Authorize(ctx context.Context, ownerID, restaurantID int64) error
}

type restaurantLookup interface {
	restaurants.Finder
	FindByID(ctx context.Context, id int64) (*models.Restaurant, error)
}

type queueReader interface {
	Summaries(ctx context.Context, tableTypeIDs []int64) map[int64]queue.QueueResult
	Projection(ctx context.Context, tableTypeID int64) queue.QueueResult
}

// Service covers table types, physical tables and the order a table is serving.
type Service interface {
	ListTableTypes(ctx context.Context, restaurantOpenID string) ([]TableTypeListItem, error)
	GetTableType(ctx context.Context, id int64) (*TableTypeDetail, error)
	CreateTableType(ctx context.Context, ownerID int64, input TableTypeInput) (*TableTypeDetail, error)
	UpdateTableType(ctx context.Context, ownerID, id int64, input TableTypeInput) (*TableTypeDetail, error)
	DeleteTableType(ctx context.Context, ownerID, id int64) error

	ListTables(ctx context.Context, restaurantOpenID string) ([]TableListItem, error)
	GetTable(ctx context.Context, id int64) (*TableDetail, error)
	CreateTable(ctx context.Context, ownerID int64, input TableInput) (*TableDetail, error)
	UpdateTable(ctx context.Context, ownerID, id int64, input TableInput) (*TableDetail, error)
	DeleteTable(ctx context.Context, ownerID, id int64) error

	AssignOrder(ctx context.Context, ownerID, tableID, orderID int64) (*TableDetail, error)
	ReleaseOrder(ctx context.Context, ownerID, tableID int64) (*TableDetail, error)
	QRCode(ctx context.Context, tableID int64) ([]byte, error)
}

// ServiceParams bundles the table service dependencies.
type ServiceParams struct {
	Repo        *Repository
	Tx          txRunner
	Restaurants restaurantLookup
	Owners      ownershipChecker
	Queue       queueReader
	QRCode      config.QRCodeConfig
}

type service struct {
	repo        *Repository
	tx          txRunner
	restaurants restaurantLookup
	owners      ownershipChecker
	queue       queueReader
	qr          config.QRCodeConfig
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("table repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Restaurants == nil:
		return nil, fmt.Errorf("restaurant lookup required")
	case params.Owners == nil:
		return nil, fmt.Errorf("ownership checker required")
	case params.Queue == nil:
		return nil, fmt.Errorf("queue reader required")
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		restaurants: params.Restaurants,
		owners:      params.Owners,
		queue:       params.Queue,
		qr:          params.QRCode,
	}, nil
}

func (s *service) ListTableTypes(ctx context.Context, restaurantOpenID string) ([]TableTypeListItem, error) {
	restaurant, err := restaurants.Resolve(ctx, s.restaurants, restaurantOpenID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTableTypes(ctx, restaurant.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list table types")
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	summaries := s.queue.Summaries(ctx, ids)
	out := make([]TableTypeListItem, 0, len(rows))
	for i := range rows {
		out = append(out, tableTypeItem(&rows[i], summaries[rows[i].ID]))
	}
	return out, nil
}

func (s *service) GetTableType(ctx context.Context, id int64) (*TableTypeDetail, error) {
	tt, err := s.loadTableType(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := tableTypeDetail(tt, s.queue.Projection(ctx, tt.ID))
	return &detail, nil
}

func (s *service) CreateTableType(ctx context.Context, ownerID int64, input TableTypeInput) (*TableTypeDetail, error) {
	restaurant, err := restaurants.Resolve(ctx, s.restaurants, input.RestaurantOpenID)
	if err != nil {
		return nil, err
	}
	if err := s.owners.Authorize(ctx, ownerID, restaurant.ID); err != nil {
		return nil, err
	}
	tt := &models.TableType{RestaurantID: restaurant.ID}
	if err := applyTableType(tt, input); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTableType(ctx, tt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create table type")
	}
	return s.GetTableType(ctx, tt.ID)
}

func (s *service) UpdateTableType(ctx context.Context, ownerID, id int64, input TableTypeInput) (*TableTypeDetail, error) {
	tt, err := s.loadTableType(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.owners.Authorize(ctx, ownerID, tt.RestaurantID); err != nil {
		return nil, err
	}
	if err := applyTableType(tt, input); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTableType(ctx, tt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update table type")
	}
	return s.GetTableType(ctx, tt.ID)
}

func (s *service) DeleteTableType(ctx context.Context, ownerID, id int64) error {
	tt, err := s.loadTableType(ctx, id)
	if err != nil {
		return err
	}
	if err := s.owners.Authorize(ctx, ownerID, tt.RestaurantID); err != nil {
		return err
	}
	if err := s.repo.DeleteTableType(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete table type")
	}
	return nil
}

func (s *service) ListTables(ctx context.Context, restaurantOpenID string) ([]TableListItem, error) {
	restaurant, err := restaurants.Resolve(ctx, s.restaurants, restaurantOpenID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTables(ctx, restaurant.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tables")
	}
	out := make([]TableListItem, 0, len(rows))
	for i := range rows {
		out = append(out, tableItem(&rows[i]))
	}
	return out, nil
}

func (s *service) GetTable(ctx context.Context, id int64) (*TableDetail, error) {
	table, err := s.repo.FindTable(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "table not found", "load table")
	}
	detail := tableDetail(table)
	return &detail, nil
}

func (s *service) CreateTable(ctx context.Context, ownerID int64, input TableInput) (*TableDetail, error) {
	tt, err := s.loadTableType(ctx, input.TableTypeID)
	if err != nil {
		return nil, err
	}
	if err := s.owners.Authorize(ctx, ownerID, tt.RestaurantID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validation("name", "required")
	}
	table := &models.Table{RestaurantID: tt.RestaurantID, TableTypeID: tt.ID, Name: name}
	if err := s.repo.SaveTable(ctx, table); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create table")
	}
	return s.GetTable(ctx, table.ID)
}

// UpdateTable renames a table or moves it to another type of the same restaurant.
func (s *service) UpdateTable(ctx context.Context, ownerID, id int64, input TableInput) (*TableDetail, error) {
	table, err := s.repo.FindTable(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "table not found", "load table")
	}
	if err := s.owners.Authorize(ctx, ownerID, table.RestaurantID); err != nil {
		return nil, err
	}
	if input.TableTypeID != table.TableTypeID {
		tt, err := s.loadTableType(ctx, input.TableTypeID)
		if err != nil {
			return nil, err
		}
		if tt.RestaurantID != table.RestaurantID {
			return nil, validation("table_type_id", "must belong to the same restaurant")
		}
		table.TableTypeID = tt.ID
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validation("name", "required")
	}
	table.Name = name
	if err := s.repo.SaveTable(ctx, table); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update table")
	}
	return s.GetTable(ctx, table.ID)
}

func (s *service) DeleteTable(ctx context.Context, ownerID, id int64) error {
	table, err := s.repo.FindTable(ctx, id)
	if err != nil {
		return notFoundOr(err, "table not found", "load table")
	}
	if err := s.owners.Authorize(ctx, ownerID, table.RestaurantID); err != nil {
		return err
	}
	if err := s.repo.DeleteTable(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete table")
	}
	return nil
}

// AssignOrder seats an order at a table. A table serves at most one active
// order and an order sits at most at one table; both are checked under a row
// lock on the table.
func (s *service) AssignOrder(ctx context.Context, ownerID, tableID, orderID int64) (*TableDetail, error) {
	table, err := s.repo.FindTable(ctx, tableID)
	if err != nil {
		return nil, notFoundOr(err, "table not found", "load table")
	}
	if err := s.owners.Authorize(ctx, ownerID, table.RestaurantID); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindTableForUpdate(ctx, tableID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock table")
		}
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeInvalidReference, "param error: no order found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.RestaurantID != locked.RestaurantID {
			return validation("order_id", "order belongs to another restaurant")
		}
		if !order.Status.IsActive() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer active")
		}
		if locked.OrderID != nil && *locked.OrderID != orderID {
			current, err := repo.FindOrder(ctx, *locked.OrderID)
			if err == nil && current.Status.IsActive() {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "table is serving another order")
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current order")
			}
		}
		other, err := repo.FindTableByOrder(ctx, orderID)
		if err == nil && other.ID != tableID {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already seated at another table")
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order table")
		}
		if err := repo.SetOrder(ctx, tableID, &orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTable(ctx, tableID)
}

func (s *service) ReleaseOrder(ctx context.Context, ownerID, tableID int64) (*TableDetail, error) {
	table, err := s.repo.FindTable(ctx, tableID)
	if err != nil {
		return nil, notFoundOr(err, "table not found", "load table")
	}
	if err := s.owners.Authorize(ctx, ownerID, table.RestaurantID); err != nil {
		return nil, err
	}
	if err := s.repo.SetOrder(ctx, tableID, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release order")
	}
	return s.GetTable(ctx, tableID)
}

func (s *service) QRCode(ctx context.Context, tableID int64) ([]byte, error) {
	table, err := s.repo.FindTable(ctx, tableID)
	if err != nil {
		return nil, notFoundOr(err, "table not found", "load table")
	}
	restaurant, err := s.restaurants.FindByID(ctx, table.RestaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	png, err := RenderQRCode(TableURL(s.qr.BaseURL, table.ID, restaurant.OpenID), s.qr.Size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render qr code")
	}
	return png, nil
}

func (s *service) loadTableType(ctx context.Context, id int64) (*models.TableType, error) {
	tt, err := s.repo.FindTableType(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "table type not found", "load table type")
	}
	return tt, nil
}

func applyTableType(tt *models.TableType, input TableTypeInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return validation("name", "required")
	}
	if input.MinSeats < 1 {
		return validation("min_seats", "must be at least 1")
	}
	if input.MaxSeats < input.MinSeats {
		return validation("max_seats", "must be greater than or equal to min_seats")
	}
	tt.Name = name
	tt.MinSeats = input.MinSeats
	tt.MaxSeats = input.MaxSeats
	return nil
}

func notFoundOr(err error, notFound, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func validation(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}
