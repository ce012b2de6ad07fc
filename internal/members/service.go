package members

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
)

// ErrMemberNotFound is the message clients match on for unknown wp_openids.
const ErrMemberNotFound = "param error: no member found"

type memberRepository interface {
	FindByWPOpenID(ctx context.Context, wpOpenID string) (*models.Member, error)
	Upsert(ctx context.Context, member *models.Member) (*models.Member, error)
}

type Service interface {
	Upsert(ctx context.Context, input UpsertMemberInput) (*MemberDTO, error)
	Get(ctx context.Context, wpOpenID string) (*MemberDTO, error)
}

type service struct {
	repo memberRepository
}

func NewService(repo memberRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("member repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertMemberInput) (*MemberDTO, error) {
	wpOpenID := strings.TrimSpace(input.WPOpenID)
	if wpOpenID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wp_openid is required").
			WithDetails(map[string]string{"wp_openid": "required"})
	}
	member, err := s.repo.Upsert(ctx, &models.Member{
		WPOpenID:  wpOpenID,
		Nickname:  strings.TrimSpace(input.Nickname),
		AvatarKey: input.AvatarKey,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert member")
	}
	return FromModel(member), nil
}

func (s *service) Get(ctx context.Context, wpOpenID string) (*MemberDTO, error) {
	member, err := s.repo.FindByWPOpenID(ctx, wpOpenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	return FromModel(member), nil
}

// Finder is the lookup surface Resolve needs.
type Finder interface {
	FindByWPOpenID(ctx context.Context, wpOpenID string) (*models.Member, error)
}

// Resolve loads the member for a request parameter. An unknown openid is an
// invalid reference (400) rather than a missing resource.
func Resolve(ctx context.Context, finder Finder, wpOpenID string) (*models.Member, error) {
	if strings.TrimSpace(wpOpenID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, ErrMemberNotFound)
	}
	member, err := finder.FindByWPOpenID(ctx, wpOpenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, ErrMemberNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	return member, nil
}
