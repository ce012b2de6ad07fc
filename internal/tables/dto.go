package tables

import (
	"github.com/angelmondragon/tableside-backend/internal/queue"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
)

// TableTypeListItem is one entry of GET /table-type?openid=.
type TableTypeListItem struct {
	ID           int64             `json:"id"`
	RestaurantID int64             `json:"restaurant_id"`
	Name         string            `json:"name"`
	MinSeats     int               `json:"min_seats"`
	MaxSeats     int               `json:"max_seats"`
	FrontLeft    *int              `json:"front_left"`
	Queue        queue.QueueResult `json:"queue"`
}

// TableTypeDetail is the response of GET /table-type/{id}.
type TableTypeDetail struct {
	ID                  int64                   `json:"id"`
	RestaurantID        int64                   `json:"restaurant_id"`
	Name                string                  `json:"name"`
	MinSeats            int                     `json:"min_seats"`
	MaxSeats            int                     `json:"max_seats"`
	Slug                string                  `json:"slug"`
	QueueStatus         queue.Status            `json:"queue_status"`
	QueueError          string                  `json:"queue_error,omitempty"`
	FrontLeft           *int                    `json:"front_left"`
	CurrentRegistration *queue.RegistrationDTO  `json:"current_registration"`
	QueueRegistrations  []queue.RegistrationDTO `json:"queue_registrations"`
}

// TableTypeInput is the body of POST /table-type and PUT /table-type/{id}.
type TableTypeInput struct {
	RestaurantOpenID string `json:"openid"`
	Name             string `json:"name" validate:"required,max=64"`
	MinSeats         int    `json:"min_seats" validate:"gte=1"`
	MaxSeats         int    `json:"max_seats" validate:"gte=1"`
}

// TableListItem is one entry of GET /table?openid=.
type TableListItem struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	TableTypeID int64              `json:"table_type_id"`
	OrderID     *int64             `json:"order_id"`
	OrderStatus *enums.OrderStatus `json:"order_status"`
}

// TableDetail is the response of GET /table/{id}.
type TableDetail struct {
	ID            int64       `json:"id"`
	RestaurantID  int64       `json:"restaurant_id"`
	Name          string      `json:"name"`
	TableTypeID   int64       `json:"table_type_id"`
	TableTypeDesc string      `json:"table_type_desc"`
	Order         *OrderBrief `json:"order"`
}

// OrderBrief is the order currently held by a table.
type OrderBrief struct {
	ID     int64             `json:"id"`
	Price  string            `json:"price"`
	Status enums.OrderStatus `json:"status"`
	Items  int               `json:"items"`
}

// TableInput is the body of POST /table and PUT /table/{id}.
type TableInput struct {
	TableTypeID int64  `json:"table_type_id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required,max=64"`
}

// AssignOrderInput is the body of POST /table/{id}/order.
type AssignOrderInput struct {
	OrderID int64 `json:"order_id" validate:"required,gt=0"`
}

func tableTypeItem(tt *models.TableType, result queue.QueueResult) TableTypeListItem {
	return TableTypeListItem{
		ID:           tt.ID,
		RestaurantID: tt.RestaurantID,
		Name:         tt.Name,
		MinSeats:     tt.MinSeats,
		MaxSeats:     tt.MaxSeats,
		FrontLeft:    result.FrontLeft,
		Queue:        result,
	}
}

func tableTypeDetail(tt *models.TableType, result queue.QueueResult) TableTypeDetail {
	return TableTypeDetail{
		ID:                  tt.ID,
		RestaurantID:        tt.RestaurantID,
		Name:                tt.Name,
		MinSeats:            tt.MinSeats,
		MaxSeats:            tt.MaxSeats,
		Slug:                tt.Slug(),
		QueueStatus:         result.Status,
		QueueError:          result.Error,
		FrontLeft:           result.FrontLeft,
		CurrentRegistration: result.CurrentRegistration,
		QueueRegistrations:  result.QueueRegistrations,
	}
}

func tableItem(t *models.Table) TableListItem {
	item := TableListItem{
		ID:          t.ID,
		Name:        t.Name,
		TableTypeID: t.TableTypeID,
		OrderID:     t.OrderID,
	}
	if t.Order != nil {
		status := t.Order.Status
		item.OrderStatus = &status
	}
	return item
}

func tableDetail(t *models.Table) TableDetail {
	detail := TableDetail{
		ID:           t.ID,
		RestaurantID: t.RestaurantID,
		Name:         t.Name,
		TableTypeID:  t.TableTypeID,
	}
	if t.TableType != nil {
		detail.TableTypeDesc = t.TableType.Slug()
	}
	if t.Order != nil {
		detail.Order = &OrderBrief{
			ID:     t.Order.ID,
			Price:  t.Order.Price.StringFixed(2),
			Status: t.Order.Status,
			Items:  len(t.Order.Items),
		}
	}
	return detail
}
