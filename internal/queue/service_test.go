package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/tableside-backend/internal/members"
	"github.com/angelmondragon/tableside-backend/internal/restaurants"
	"github.com/angelmondragon/tableside-backend/pkg/db"
	"github.com/angelmondragon/tableside-backend/pkg/db/dbtest"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	"github.com/angelmondragon/tableside-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
	"github.com/angelmondragon/tableside-backend/pkg/outbox"
)

func newQueueHarness(t *testing.T) (Service, *Repository, *dbtest.Fixtures, models.TableType, int64) {
	t.Helper()
	conn := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, conn)
	restaurant := fx.Restaurant("r-queue")
	tableType := fx.TableType(restaurant.ID, "Booth", 2, 4)

	restaurantSvc, err := restaurants.NewService(restaurants.NewRepository(conn))
	require.NoError(t, err)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Tx:      db.NewFromConn(conn),
		Members: members.NewRepository(conn),
		Owners:  restaurantSvc,
		Outbox:  outbox.NewService(outbox.NewRepository(conn), nil),
	})
	require.NoError(t, err)
	return svc, repo, fx, tableType, restaurant.OwnerID
}

func TestRegisterAssignsIncreasingQueueNumbers(t *testing.T) {
	svc, repo, fx, tt, _ := newQueueHarness(t)
	fx.Member("wx-a")
	fx.Member("wx-b")
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{TableTypeID: tt.ID, WPOpenID: "wx-a", PartySize: 2})
	require.NoError(t, err)
	second, err := svc.Register(ctx, RegisterInput{TableTypeID: tt.ID, WPOpenID: "wx-b", PartySize: 3})
	require.NoError(t, err)

	assert.Equal(t, 1, first.QueueNumber)
	assert.Equal(t, 2, second.QueueNumber)
	assert.Equal(t, "wx-b", second.WPOpenID)

	projection := NewReader(repo, nil).Projection(ctx, tt.ID)
	require.Equal(t, StatusOK, projection.Status)
	assert.Equal(t, first.ID, projection.CurrentRegistration.ID)
	require.Len(t, projection.QueueRegistrations, 1)
	assert.Equal(t, second.ID, projection.QueueRegistrations[0].ID)
	assert.Equal(t, 1, *projection.FrontLeft)

	status, err := svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Ahead)
}

func TestRegisterValidatesPartyAndDuplicates(t *testing.T) {
	svc, _, fx, tt, _ := newQueueHarness(t)
	fx.Member("wx-a")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{TableTypeID: tt.ID, WPOpenID: "wx-a", PartySize: 6})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Register(ctx, RegisterInput{TableTypeID: tt.ID, WPOpenID: "wx-a", PartySize: 2})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{TableTypeID: tt.ID, WPOpenID: "wx-a", PartySize: 2})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Register(ctx, RegisterInput{TableTypeID: tt.ID, WPOpenID: "wx-ghost", PartySize: 2})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidReference))

	_, err = svc.Register(ctx, RegisterInput{TableTypeID: 999, WPOpenID: "wx-a", PartySize: 2})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidReference))
}

func TestCallNextAndTransitions(t *testing.T) {
	svc, _, fx, tt, owner := newQueueHarness(t)
	fx.Member("wx-a")
	fx.Member("wx-b")
	stranger := fx.User()
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{TableTypeID: tt.ID, WPOpenID: "wx-a", PartySize: 2})
	require.NoError(t, err)
	second, err := svc.Register(ctx, RegisterInput{TableTypeID: tt.ID, WPOpenID: "wx-b", PartySize: 2})
	require.NoError(t, err)

	_, err = svc.CallNext(ctx, stranger.ID, tt.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	called, err := svc.CallNext(ctx, owner, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, called.ID)
	assert.Equal(t, enums.RegistrationStatusCalled, called.Status)

	seated, err := svc.UpdateStatus(ctx, owner, first.ID, enums.RegistrationStatusSeated)
	require.NoError(t, err)
	assert.Equal(t, enums.RegistrationStatusSeated, seated.Status)

	_, err = svc.UpdateStatus(ctx, owner, first.ID, enums.RegistrationStatusCalled)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.CancelOwn(ctx, second.ID, "wx-a")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	cancelled, err := svc.CancelOwn(ctx, second.ID, "wx-b")
	require.NoError(t, err)
	assert.Equal(t, enums.RegistrationStatusCancelled, cancelled.Status)

	_, err = svc.CallNext(ctx, owner, tt.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestExpireBefore(t *testing.T) {
	svc, _, fx, tt, _ := newQueueHarness(t)
	fx.Member("wx-a")
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{TableTypeID: tt.ID, WPOpenID: "wx-a", PartySize: 2})
	require.NoError(t, err)

	n, err := svc.ExpireBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.ExpireBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	status, err := svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RegistrationStatusExpired, status.Status)
}
