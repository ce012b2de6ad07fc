package orders

import (
	"time"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
)

type OrderItemDTO struct {
	ID          int64  `json:"id"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	ImgKey      string `json:"img_key"`
	Price       string `json:"price"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

type OrderDTO struct {
	ID           int64             `json:"id"`
	RestaurantID int64             `json:"restaurant_id"`
	MemberID     int64             `json:"member_id"`
	Price        string            `json:"price"`
	Status       enums.OrderStatus `json:"status"`
	Items        []OrderItemDTO    `json:"items"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TableProjection is the table currently serving an order.
type TableProjection struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	TableTypeID   int64             `json:"table_type_id"`
	TableTypeDesc string            `json:"table_type_desc"`
	OrderStatus   enums.OrderStatus `json:"order_status"`
}

type OrderDetailDTO struct {
	OrderDTO
	Table *TableProjection `json:"table"`
}

// UpdateStatusInput is the body of PUT /order/{order_pk}/status.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=accepted served completed rejected"`
}

func FromModel(o *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			Category:    item.Category,
			Name:        item.Name,
			ImgKey:      item.ImgKey,
			Price:       item.Price.StringFixed(2),
			Unit:        item.Unit,
			Description: item.Description,
			Count:       item.Count,
		})
	}
	return OrderDTO{
		ID:           o.ID,
		RestaurantID: o.RestaurantID,
		MemberID:     o.MemberID,
		Price:        o.Price.StringFixed(2),
		Status:       o.Status,
		Items:        items,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func detailFromModel(o *models.Order, table *models.Table) OrderDetailDTO {
	detail := OrderDetailDTO{OrderDTO: FromModel(o)}
	if table != nil {
		projection := &TableProjection{
			ID:          table.ID,
			Name:        table.Name,
			TableTypeID: table.TableTypeID,
			OrderStatus: o.Status,
		}
		if table.TableType != nil {
			projection.TableTypeDesc = table.TableType.Slug()
		}
		detail.Table = projection
	}
	return detail
}
