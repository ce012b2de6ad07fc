package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/internal/members"
	"github.com/angelmondragon/tableside-backend/internal/restaurants"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
	"github.com/angelmondragon/tableside-backend/pkg/logger"
	"github.com/angelmondragon/tableside-backend/pkg/outbox"
	"github.com/angelmondragon/tableside-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type ownershipChecker interface {
	Authorize(ctx context.Context, ownerID, restaurantID int64) error
}

type eventCounter interface {
	OrderEvent(action string)
}

// Service converts carts into orders and drives the order lifecycle.
type Service interface {
	CreateFromCart(ctx context.Context, cartID int64, restaurantOpenID, wpOpenID string) (*OrderDetailDTO, error)
	Cancel(ctx context.Context, orderID int64) error
	ListByMember(ctx context.Context, wpOpenID string) ([]OrderDTO, error)
	Detail(ctx context.Context, orderID int64) (*OrderDetailDTO, error)
	UpdateStatus(ctx context.Context, ownerID, orderID int64, status enums.OrderStatus) (*OrderDTO, error)
}

type ServiceParams struct {
	Repo        Repository
	Carts       CartStore
	CartsTx     func(tx *gorm.DB) CartStore
	Tx          txRunner
	Restaurants restaurants.Finder
	Members     members.Finder
	Owners      ownershipChecker
	Outbox      outboxPublisher
	Metrics     eventCounter
	Logger      *logger.Logger
}

type service struct {
	repo        Repository
	carts       CartStore
	cartsTx     func(tx *gorm.DB) CartStore
	tx          txRunner
	restaurants restaurants.Finder
	members     members.Finder
	owners      ownershipChecker
	outbox      outboxPublisher
	metrics     eventCounter
	logg        *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("order repository required")
	case params.Carts == nil || params.CartsTx == nil:
		return nil, fmt.Errorf("cart store required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Restaurants == nil:
		return nil, fmt.Errorf("restaurant finder required")
	case params.Members == nil:
		return nil, fmt.Errorf("member finder required")
	case params.Owners == nil:
		return nil, fmt.Errorf("ownership checker required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:        params.Repo,
		carts:       params.Carts,
		cartsTx:     params.CartsTx,
		tx:          params.Tx,
		restaurants: params.Restaurants,
		members:     params.Members,
		owners:      params.Owners,
		outbox:      params.Outbox,
		metrics:     params.Metrics,
		logg:        params.Logger,
	}, nil
}

// PriceItems snapshots cart lines into order items and returns their total.
// Items without a loaded product are skipped.
func PriceItems(items []models.CartItem) (decimal.Decimal, []models.OrderItem) {
	total := decimal.Zero
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		p := item.Product
		line := models.OrderItem{
			Category:    p.Category,
			Name:        p.Name,
			ImgKey:      p.ImgKey,
			Price:       p.Price,
			Unit:        p.Unit,
			Description: p.Description,
			Count:       item.Count,
		}
		total = total.Add(line.LineTotal())
		out = append(out, line)
	}
	return total.Round(2), out
}

func (s *service) CreateFromCart(ctx context.Context, cartID int64, restaurantOpenID, wpOpenID string) (*OrderDetailDTO, error) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	restaurant, err := restaurants.Resolve(ctx, s.restaurants, restaurantOpenID)
	if err != nil {
		return nil, err
	}
	member, err := members.Resolve(ctx, s.members, wpOpenID)
	if err != nil {
		return nil, err
	}
	if cart.RestaurantID != restaurant.ID || cart.MemberID != member.ID {
		return nil, pkgerrors.New(pkgerrors.CodeOwnershipMismatch, "param error: no valid cart")
	}

	var (
		order    *models.Order
		items    []models.OrderItem
		rejected error
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.cartsTx(tx)
		locked, err := carts.FindByIDForUpdate(ctx, cartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rejected = pkgerrors.New(pkgerrors.CodeInvalidReference, "cart not found")
				return rejected
			}
			return err
		}

		var total decimal.Decimal
		total, items = PriceItems(locked.Items)
		if len(items) == 0 {
			rejected = pkgerrors.New(pkgerrors.CodeValidation, "param error: cart is empty").
				WithDetails(map[string]string{"cart": "empty"})
			return rejected
		}
		snapshot := make([]int64, 0, len(items))
		for _, item := range locked.Items {
			if item.Product != nil {
				snapshot = append(snapshot, item.ID)
			}
		}

		order = &models.Order{
			RestaurantID: restaurant.ID,
			MemberID:     member.ID,
			Price:        total,
			Status:       enums.OrderStatusCreated,
		}
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return err
		}
		if err := carts.ClearItems(ctx, locked.ID, snapshot); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{WPOpenID: member.WPOpenID, Role: "member"},
			Data: payloads.OrderCreatedEvent{
				OrderID:      order.ID,
				RestaurantID: order.RestaurantID,
				MemberID:     order.MemberID,
				CartID:       locked.ID,
				Price:        total.StringFixed(2),
				ItemCount:    len(items),
				Status:       order.Status,
			},
		})
	})
	if rejected != nil {
		return nil, rejected
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "cart_id", cartID), "order creation failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeOrderCreationFailed, err, "order creation failed")
	}

	s.count("created")
	order.Items = items
	detail := detailFromModel(order, nil)
	return &detail, nil
}

// Cancel deletes an order together with its items and frees its table.
func (s *service) Cancel(ctx context.Context, orderID int64) error {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteItems(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order items")
		}
		if err := repo.ReleaseTables(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release table")
		}
		if err := repo.DeleteOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderCancelledEvent{
				OrderID:      order.ID,
				RestaurantID: order.RestaurantID,
				MemberID:     order.MemberID,
				CancelledAt:  time.Now().UTC(),
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order cancelled")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.count("cancelled")
	return nil
}

func (s *service) ListByMember(ctx context.Context, wpOpenID string) ([]OrderDTO, error) {
	member, err := members.Resolve(ctx, s.members, wpOpenID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByMember(ctx, member.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Detail(ctx context.Context, orderID int64) (*OrderDetailDTO, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "param error: no order found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	table, err := s.repo.FindTableByOrder(ctx, order.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order table")
	}
	detail := detailFromModel(order, table)
	return &detail, nil
}

func (s *service) UpdateStatus(ctx context.Context, ownerID, orderID int64, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"status": "unknown status"})
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := s.owners.Authorize(ctx, ownerID, order.RestaurantID); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
		}
		if !locked.Status.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %s to %s", locked.Status, status))
		}
		if err := repo.UpdateStatus(ctx, orderID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		userID := ownerID
		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{UserID: &userID, Role: "staff"},
			Data: payloads.OrderStatusChangedEvent{
				OrderID:      orderID,
				RestaurantID: locked.RestaurantID,
				From:         locked.Status,
				To:           status,
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.count(string(status))
	order.Status = status
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) count(action string) {
	if s.metrics != nil {
		s.metrics.OrderEvent(action)
	}
}
