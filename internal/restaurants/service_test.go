package restaurants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/tableside-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
)

func TestCreateGeneratesOpenID(t *testing.T) {
	conn := dbtest.Open(t)
	owner := dbtest.NewFixtures(t, conn).User()
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), owner.ID, CreateRestaurantInput{Name: " Noodle Bar "})
	require.NoError(t, err)
	assert.Len(t, created.OpenID, 32)
	assert.Equal(t, "Noodle Bar", created.Name)

	fetched, err := svc.Get(context.Background(), created.OpenID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	owned, err := svc.ListOwned(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestUpdateRequiresOwnership(t *testing.T) {
	conn := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, conn)
	restaurant := fx.Restaurant("r-1")
	stranger := fx.User()
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.Update(context.Background(), stranger.ID, "r-1", UpdateRestaurantInput{Name: &name})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	updated, err := svc.Update(context.Background(), restaurant.OwnerID, "r-1", UpdateRestaurantInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	assert.True(t, pkgerrors.IsCode(svc.Authorize(context.Background(), stranger.ID, restaurant.ID), pkgerrors.CodeForbidden))
	assert.NoError(t, svc.Authorize(context.Background(), restaurant.OwnerID, restaurant.ID))
	assert.True(t, pkgerrors.IsCode(svc.Authorize(context.Background(), restaurant.OwnerID, 999), pkgerrors.CodeNotFound))
}

func TestResolveUnknownOpenID(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))

	_, err := Resolve(context.Background(), repo, "missing")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidReference, typed.Code())
	assert.Equal(t, ErrRestaurantNotFound, typed.Message())
}
