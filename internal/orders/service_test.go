package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/internal/cart"
	"github.com/angelmondragon/tableside-backend/internal/members"
	"github.com/angelmondragon/tableside-backend/internal/restaurants"
	"github.com/angelmondragon/tableside-backend/pkg/db"
	"github.com/angelmondragon/tableside-backend/pkg/db/dbtest"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
	"github.com/angelmondragon/tableside-backend/pkg/outbox"
)

type failingOutbox struct{}

func (failingOutbox) Emit(context.Context, *gorm.DB, outbox.DomainEvent) error {
	return errors.New("outbox down")
}

type countingMetrics struct{ actions []string }

func (c *countingMetrics) OrderEvent(action string) { c.actions = append(c.actions, action) }

type ordersHarness struct {
	conn       *gorm.DB
	svc        Service
	params     ServiceParams
	fx         *dbtest.Fixtures
	carts      *cart.Repository
	metrics    *countingMetrics
	restaurant models.Restaurant
	member     models.Member
}

func newOrdersHarness(t *testing.T, emitter outboxPublisher) ordersHarness {
	t.Helper()
	conn := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, conn)
	restaurant := fx.Restaurant("r-orders")
	member := fx.Member("wx-orders")

	if emitter == nil {
		emitter = outbox.NewService(outbox.NewRepository(conn), nil)
	}
	carts := cart.NewRepository(conn)
	restaurantRepo := restaurants.NewRepository(conn)
	owners, err := restaurants.NewService(restaurantRepo)
	require.NoError(t, err)
	metrics := &countingMetrics{}
	params := ServiceParams{
		Repo:        NewRepository(conn),
		Carts:       carts,
		CartsTx:     func(tx *gorm.DB) CartStore { return carts.WithTx(tx) },
		Tx:          db.NewFromConn(conn),
		Restaurants: restaurantRepo,
		Members:     members.NewRepository(conn),
		Owners:      owners,
		Outbox:      emitter,
		Metrics:     metrics,
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return ordersHarness{conn: conn, svc: svc, params: params, fx: fx, carts: carts, metrics: metrics, restaurant: restaurant, member: member}
}

// fillCart creates the member's cart with the given (price, count) lines.
func (h ordersHarness) fillCart(t *testing.T, lines map[string]int) *models.Cart {
	t.Helper()
	ctx := context.Background()
	c, err := h.carts.GetOrCreate(ctx, h.restaurant.ID, h.member.ID)
	require.NoError(t, err)
	for price, count := range lines {
		p := h.fx.Product(h.restaurant.ID, "dish-"+price, price)
		require.NoError(t, h.carts.CreateItem(ctx, &models.CartItem{CartID: c.ID, ProductID: p.ID, Count: count}))
	}
	return c
}

func TestCreateFromCartComputesTotal(t *testing.T) {
	h := newOrdersHarness(t, nil)
	ctx := context.Background()
	c := h.fillCart(t, map[string]int{"12.50": 3})

	detail, err := h.svc.CreateFromCart(ctx, c.ID, "r-orders", "wx-orders")
	require.NoError(t, err)
	assert.Equal(t, "37.50", detail.Price)
	assert.Equal(t, enums.OrderStatusCreated, detail.Status)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "12.50", detail.Items[0].Price)
	assert.Equal(t, 3, detail.Items[0].Count)
	assert.Nil(t, detail.Table)

	reloaded, err := h.carts.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items)

	var events int64
	require.NoError(t, h.conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventOrderCreated).Count(&events).Error)
	assert.Equal(t, int64(1), events)
	assert.Equal(t, []string{"created"}, h.metrics.actions)
}

func TestCreateFromCartSnapshotsItems(t *testing.T) {
	h := newOrdersHarness(t, nil)
	ctx := context.Background()
	c := h.fillCart(t, map[string]int{"12.50": 3, "2.25": 2, "0.10": 7})

	detail, err := h.svc.CreateFromCart(ctx, c.ID, "r-orders", "wx-orders")
	require.NoError(t, err)
	require.Len(t, detail.Items, 3)
	assert.Equal(t, "42.70", detail.Price)

	sum := decimal.Zero
	for _, item := range detail.Items {
		sum = sum.Add(decimal.RequireFromString(item.Price).Mul(decimal.NewFromInt(int64(item.Count))))
	}
	assert.Equal(t, detail.Price, sum.StringFixed(2))

	require.NoError(t, h.conn.Model(&models.Product{}).Where("restaurant_id = ?", h.restaurant.ID).Update("price", "99.00").Error)
	again, err := h.svc.Detail(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, "42.70", again.Price)
	for _, item := range again.Items {
		assert.NotEqual(t, "99.00", item.Price)
	}
}

// afterLockedRead runs fn once, inside the conversion transaction, right after
// the cart has been read under lock.
type afterLockedRead struct {
	*cart.Repository
	fn func(tx *cart.Repository)
}

func (a afterLockedRead) FindByIDForUpdate(ctx context.Context, id int64) (*models.Cart, error) {
	c, err := a.Repository.FindByIDForUpdate(ctx, id)
	a.fn(a.Repository)
	return c, err
}

func (h ordersHarness) serviceWithHook(t *testing.T, fn func(tx *cart.Repository)) Service {
	t.Helper()
	var once sync.Once
	params := h.params
	params.CartsTx = func(tx *gorm.DB) CartStore {
		return afterLockedRead{Repository: h.carts.WithTx(tx), fn: func(repo *cart.Repository) {
			once.Do(func() { fn(repo) })
		}}
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return svc
}

func TestCreateFromCartConvertsOnce(t *testing.T) {
	h := newOrdersHarness(t, nil)
	ctx := context.Background()
	c := h.fillCart(t, map[string]int{"12.50": 3, "2.25": 2, "0.10": 7})

	var (
		wg        sync.WaitGroup
		secondErr error
	)
	svc := h.serviceWithHook(t, func(*cart.Repository) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, secondErr = h.svc.CreateFromCart(ctx, c.ID, "r-orders", "wx-orders")
		}()
	})

	first, err := svc.CreateFromCart(ctx, c.ID, "r-orders", "wx-orders")
	require.NoError(t, err)
	wg.Wait()

	require.True(t, pkgerrors.IsCode(secondErr, pkgerrors.CodeValidation))
	assert.Equal(t, "param error: cart is empty", pkgerrors.As(secondErr).Message())

	var orders, items int64
	require.NoError(t, h.conn.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, h.conn.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Equal(t, int64(1), orders)
	assert.Equal(t, int64(3), items)
	assert.Equal(t, "42.70", first.Price)
}

func TestCreateFromCartKeepsItemsAddedAfterSnapshot(t *testing.T) {
	h := newOrdersHarness(t, nil)
	ctx := context.Background()
	c := h.fillCart(t, map[string]int{"12.50": 1})
	late := h.fx.Product(h.restaurant.ID, "late-dish", "3.00")

	var lateItem models.CartItem
	svc := h.serviceWithHook(t, func(tx *cart.Repository) {
		lateItem = models.CartItem{CartID: c.ID, ProductID: late.ID, Count: 2}
		require.NoError(t, tx.CreateItem(ctx, &lateItem))
	})

	detail, err := svc.CreateFromCart(ctx, c.ID, "r-orders", "wx-orders")
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "12.50", detail.Price)

	reloaded, err := h.carts.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, lateItem.ID, reloaded.Items[0].ID)
}

func TestCreateFromCartRejections(t *testing.T) {
	h := newOrdersHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.CreateFromCart(ctx, 9999, "r-orders", "wx-orders")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidReference))
	assert.Equal(t, "cart not found", pkgerrors.As(err).Message())

	empty, err := h.carts.GetOrCreate(ctx, h.restaurant.ID, h.member.ID)
	require.NoError(t, err)
	_, err = h.svc.CreateFromCart(ctx, empty.ID, "r-orders", "wx-orders")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "param error: cart is empty", pkgerrors.As(err).Message())

	_, err = h.svc.CreateFromCart(ctx, empty.ID, "r-missing", "wx-orders")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidReference))
	_, err = h.svc.CreateFromCart(ctx, empty.ID, "r-orders", "wx-missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidReference))

	h.fx.Member("wx-other")
	_, err = h.svc.CreateFromCart(ctx, empty.ID, "r-orders", "wx-other")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOwnershipMismatch))
	assert.Equal(t, "param error: no valid cart", pkgerrors.As(err).Message())
}

func TestCreateFromCartRollsBackOnFailure(t *testing.T) {
	h := newOrdersHarness(t, failingOutbox{})
	ctx := context.Background()
	c := h.fillCart(t, map[string]int{"12.50": 3})

	_, err := h.svc.CreateFromCart(ctx, c.ID, "r-orders", "wx-orders")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOrderCreationFailed))

	var orders, items int64
	require.NoError(t, h.conn.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, h.conn.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)

	reloaded, err := h.carts.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Items, 1)
	assert.Empty(t, h.metrics.actions)
}

func TestCancelRemovesOrderAndItems(t *testing.T) {
	h := newOrdersHarness(t, nil)
	ctx := context.Background()
	c := h.fillCart(t, map[string]int{"12.50": 3, "4.00": 1})
	detail, err := h.svc.CreateFromCart(ctx, c.ID, "r-orders", "wx-orders")
	require.NoError(t, err)

	tt := h.fx.TableType(h.restaurant.ID, "Small", 1, 2)
	table := h.fx.Table(tt, "A1")
	require.NoError(t, h.conn.Model(&models.Table{}).Where("id = ?", table.ID).Update("order_id", detail.ID).Error)

	withTable, err := h.svc.Detail(ctx, detail.ID)
	require.NoError(t, err)
	require.NotNil(t, withTable.Table)
	assert.Equal(t, table.ID, withTable.Table.ID)
	assert.Equal(t, "Small（1-2人）", withTable.Table.TableTypeDesc)
	assert.Equal(t, enums.OrderStatusCreated, withTable.Table.OrderStatus)

	require.NoError(t, h.svc.Cancel(ctx, detail.ID))

	_, err = h.svc.Detail(ctx, detail.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "param error: no order found", pkgerrors.As(err).Message())

	var items int64
	require.NoError(t, h.conn.Model(&models.OrderItem{}).Where("order_id = ?", detail.ID).Count(&items).Error)
	assert.Zero(t, items)

	var freed models.Table
	require.NoError(t, h.conn.First(&freed, "id = ?", table.ID).Error)
	assert.Nil(t, freed.OrderID)

	err = h.svc.Cancel(ctx, detail.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "order not found", pkgerrors.As(err).Message())
}

func TestListByMember(t *testing.T) {
	h := newOrdersHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.ListByMember(ctx, "wx-missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidReference))

	c := h.fillCart(t, map[string]int{"1.00": 1})
	first, err := h.svc.CreateFromCart(ctx, c.ID, "r-orders", "wx-orders")
	require.NoError(t, err)
	h.fillCart(t, map[string]int{"2.00": 2})
	second, err := h.svc.CreateFromCart(ctx, c.ID, "r-orders", "wx-orders")
	require.NoError(t, err)

	list, err := h.svc.ListByMember(ctx, "wx-orders")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, "4.00", list[1].Price)
}

func TestUpdateStatusTransitions(t *testing.T) {
	h := newOrdersHarness(t, nil)
	ctx := context.Background()
	c := h.fillCart(t, map[string]int{"5.00": 1})
	detail, err := h.svc.CreateFromCart(ctx, c.ID, "r-orders", "wx-orders")
	require.NoError(t, err)
	owner := h.restaurant.OwnerID

	stranger := h.fx.User()
	_, err = h.svc.UpdateStatus(ctx, stranger.ID, detail.ID, enums.OrderStatusAccepted)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = h.svc.UpdateStatus(ctx, owner, detail.ID, enums.OrderStatusServed)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	for _, next := range []enums.OrderStatus{enums.OrderStatusAccepted, enums.OrderStatusServed, enums.OrderStatusCompleted} {
		updated, err := h.svc.UpdateStatus(ctx, owner, detail.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = h.svc.UpdateStatus(ctx, owner, detail.ID, enums.OrderStatusRejected)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = h.svc.UpdateStatus(ctx, owner, detail.ID, enums.OrderStatus("bogus"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = h.svc.UpdateStatus(ctx, owner, 9999, enums.OrderStatusAccepted)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestPriceItemsSkipsMissingProducts(t *testing.T) {
	total, items := PriceItems([]models.CartItem{
		{Count: 2, Product: &models.Product{Name: "a", Price: decimal.RequireFromString("1.25")}},
		{Count: 5},
	})
	assert.Equal(t, "2.50", total.StringFixed(2))
	assert.Len(t, items, 1)
}
