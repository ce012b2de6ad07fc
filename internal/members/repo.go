package members

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/tableside-backend/internal/repo"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByWPOpenID returns gorm.ErrRecordNotFound when no member matches.
func (r *Repository) FindByWPOpenID(ctx context.Context, wpOpenID string) (*models.Member, error) {
	var member models.Member
	if err := r.DB(ctx).Where("wp_openid = ?", wpOpenID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Member, error) {
	var member models.Member
	if err := r.DB(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Upsert inserts the member or refreshes its profile fields when the openid exists.
func (r *Repository) Upsert(ctx context.Context, member *models.Member) (*models.Member, error) {
	err := r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wp_openid"}},
		DoUpdates: clause.AssignmentColumns([]string{"nickname", "avatar_key", "updated_at"}),
	}).Create(member).Error
	if err != nil {
		return nil, err
	}
	return r.FindByWPOpenID(ctx, member.WPOpenID)
}
