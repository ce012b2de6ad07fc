package members

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/tableside-backend/pkg/db/dbtest"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
)

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Upsert(ctx, UpsertMemberInput{WPOpenID: "wx-1", Nickname: "Lin"})
	require.NoError(t, err)
	assert.Equal(t, "Lin", created.Nickname)

	avatar := "avatars/wx-1.png"
	updated, err := svc.Upsert(ctx, UpsertMemberInput{WPOpenID: "wx-1", Nickname: "Lin Y", AvatarKey: &avatar})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Lin Y", updated.Nickname)
	require.NotNil(t, updated.AvatarKey)
	assert.Equal(t, avatar, *updated.AvatarKey)
}

func TestUpsertRequiresOpenID(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)

	_, err = svc.Upsert(context.Background(), UpsertMemberInput{WPOpenID: "  "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetUnknownMemberIsNotFound(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestResolveMapsMissingToInvalidReference(t *testing.T) {
	conn := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, conn)
	fx.Member("wx-known")
	repo := NewRepository(conn)

	member, err := Resolve(context.Background(), repo, "wx-known")
	require.NoError(t, err)
	assert.Equal(t, "wx-known", member.WPOpenID)

	for _, openID := range []string{"", "wx-unknown"} {
		_, err = Resolve(context.Background(), repo, openID)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeInvalidReference, typed.Code())
		assert.Equal(t, ErrMemberNotFound, typed.Message())
	}
}

type failingFinder struct{}

func (failingFinder) FindByWPOpenID(context.Context, string) (*models.Member, error) {
	return nil, errors.New("connection reset")
}

func TestResolveWrapsStorageErrors(t *testing.T) {
	_, err := Resolve(context.Background(), failingFinder{}, "wx-1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
