package members

import (
	"time"

	"github.com/angelmondragon/tableside-backend/pkg/db/models"
)

// MemberDTO is the public shape of a diner account.
type MemberDTO struct {
	ID        int64     `json:"id"`
	WPOpenID  string    `json:"wp_openid"`
	Nickname  string    `json:"nickname"`
	AvatarKey *string   `json:"avatar_key"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertMemberInput is the body of POST /member.
type UpsertMemberInput struct {
	WPOpenID  string  `json:"wp_openid" validate:"required,max=64"`
	Nickname  string  `json:"nickname" validate:"max=64"`
	AvatarKey *string `json:"avatar_key" validate:"omitempty,max=255"`
}

func FromModel(m *models.Member) *MemberDTO {
	if m == nil {
		return nil
	}
	return &MemberDTO{
		ID:        m.ID,
		WPOpenID:  m.WPOpenID,
		Nickname:  m.Nickname,
		AvatarKey: m.AvatarKey,
		CreatedAt: m.CreatedAt,
	}
}
