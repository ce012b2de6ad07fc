package posts

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

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) withAssociations(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Preload("Member").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("post_images.id ASC") }).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id ASC") })
}

// ListPosts returns up to limit posts older than beforeID (0 for the newest page).
func (r *Repository) ListPosts(ctx context.Context, memberID *int64, beforeID int64, limit int) ([]models.Post, error) {
	q := r.withAssociations(ctx)
	if memberID != nil {
		q = q.Where("member_id = ?", *memberID)
	}
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var rows []models.Post
	err := q.Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *Repository) FindPost(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.withAssociations(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *Repository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.DB(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *Repository) UpdateContent(ctx context.Context, id int64, content string) error {
	return r.DB(ctx).Model(&models.Post{}).Where("id = ?", id).Update("content", content).Error
}

// ReplaceImages swaps the image set of a post.
func (r *Repository) ReplaceImages(ctx context.Context, postID int64, keys []string) error {
	if err := r.DB(ctx).Where("post_id = ?", postID).Delete(&models.PostImage{}).Error; err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	images := make([]models.PostImage, 0, len(keys))
	for _, key := range keys {
		images = append(images, models.PostImage{PostID: postID, FileKey: key})
	}
	return r.DB(ctx).Create(&images).Error
}

func (r *Repository) CreateTags(ctx context.Context, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&tags).Error
}

func (r *Repository) FindTag(ctx context.Context, id int64) (*models.Tag, error) {
	var tag models.Tag
	if err := r.DB(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *Repository) SaveTag(ctx context.Context, tag *models.Tag) error {
	return r.DB(ctx).Save(tag).Error
}

func (r *Repository) ListTagsByRestaurant(ctx context.Context, restaurantID int64) ([]models.Tag, error) {
	var rows []models.Tag
	err := r.DB(ctx).Where("restaurant_id = ?", restaurantID).Order("id DESC").Find(&rows).Error
	return rows, err
}

// Like is idempotent on the (post, member) primary key.
func (r *Repository) Like(ctx context.Context, postID, memberID int64) error {
	return r.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostLike{PostID: postID, MemberID: memberID}).Error
}

func (r *Repository) Unlike(ctx context.Context, postID, memberID int64) error {
	return r.DB(ctx).
		Where("post_id = ? AND member_id = ?", postID, memberID).
		Delete(&models.PostLike{}).Error
}

// LikeCounts returns the like count per post id; posts without likes are absent.
func (r *Repository) LikeCounts(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		PostID int64
		Total  int
	}
	err := r.DB(ctx).
		Model(&models.PostLike{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PostID] = row.Total
	}
	return out, nil
}
