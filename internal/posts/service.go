package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/tableside-backend/internal/members"
	"github.com/angelmondragon/tableside-backend/internal/restaurants"
	"github.com/angelmondragon/tableside-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tableside-backend/pkg/errors"
	"github.com/angelmondragon/tableside-backend/pkg/pagination"
)

const defaultTagType = 1

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages member posts, their tags and likes.
type Service interface {
	List(ctx context.Context, wpOpenID string, params pagination.Params) (*PostPage, error)
	Create(ctx context.Context, input CreatePostInput) (*PostDTO, error)
	Get(ctx context.Context, id int64) (*PostDTO, error)
	Update(ctx context.Context, id int64, input UpdatePostInput) (*PostDTO, error)
	Like(ctx context.Context, id int64, wpOpenID string) (*PostDTO, error)
	Unlike(ctx context.Context, id int64, wpOpenID string) (*PostDTO, error)

	ListTagsByRestaurant(ctx context.Context, restaurantOpenID string) ([]TagDTO, error)
	CreateTag(ctx context.Context, input CreateTagInput) (*TagDTO, error)
	GetTag(ctx context.Context, id int64) (*TagDTO, error)
	UpdateTag(ctx context.Context, id int64, input UpdateTagInput) (*TagDTO, error)
}

type service struct {
	repo        *Repository
	tx          txRunner
	members     members.Finder
	restaurants restaurants.Finder
}

func NewService(repo *Repository, tx txRunner, memberFinder members.Finder, restaurantFinder restaurants.Finder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("post repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if memberFinder == nil || restaurantFinder == nil {
		return nil, fmt.Errorf("member and restaurant finders required")
	}
	return &service{repo: repo, tx: tx, members: memberFinder, restaurants: restaurantFinder}, nil
}

func (s *service) List(ctx context.Context, wpOpenID string, params pagination.Params) (*PostPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"cursor": err.Error()})
	}
	var memberID *int64
	if strings.TrimSpace(wpOpenID) != "" {
		member, err := members.Resolve(ctx, s.members, wpOpenID)
		if err != nil {
			return nil, err
		}
		memberID = &member.ID
	}
	var before int64
	if cursor != nil {
		before = cursor.ID
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListPosts(ctx, memberID, before, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}
	page := &PostPage{}
	if len(rows) > limit {
		rows = rows[:limit]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{ID: rows[len(rows)-1].ID})
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	likes, err := s.repo.LikeCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count likes")
	}
	page.Items = make([]PostDTO, 0, len(rows))
	for i := range rows {
		page.Items = append(page.Items, postFromModel(&rows[i], likes[rows[i].ID]))
	}
	return page, nil
}

func (s *service) Create(ctx context.Context, input CreatePostInput) (*PostDTO, error) {
	member, err := members.Resolve(ctx, s.members, input.WPOpenID)
	if err != nil {
		return nil, err
	}
	tags := make([]models.Tag, 0, len(input.Tags))
	for _, t := range input.Tags {
		tag, err := s.buildTag(ctx, t)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}

	post := &models.Post{MemberID: member.ID, Content: strings.TrimSpace(input.Content)}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreatePost(ctx, post); err != nil {
			return err
		}
		if err := repo.ReplaceImages(ctx, post.ID, input.ImageKeys); err != nil {
			return err
		}
		for i := range tags {
			tags[i].PostID = post.ID
		}
		return repo.CreateTags(ctx, tags)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
	}
	return s.Get(ctx, post.ID)
}

func (s *service) Get(ctx context.Context, id int64) (*PostDTO, error) {
	post, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	likes, err := s.repo.LikeCounts(ctx, []int64{post.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count likes")
	}
	dto := postFromModel(post, likes[post.ID])
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdatePostInput) (*PostDTO, error) {
	post, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireAuthor(ctx, post, input.WPOpenID); err != nil {
		return nil, err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateContent(ctx, post.ID, strings.TrimSpace(input.Content)); err != nil {
			return err
		}
		if input.ImageKeys != nil {
			return repo.ReplaceImages(ctx, post.ID, *input.ImageKeys)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update post")
	}
	return s.Get(ctx, post.ID)
}

func (s *service) Like(ctx context.Context, id int64, wpOpenID string) (*PostDTO, error) {
	return s.toggleLike(ctx, id, wpOpenID, s.repo.Like)
}

func (s *service) Unlike(ctx context.Context, id int64, wpOpenID string) (*PostDTO, error) {
	return s.toggleLike(ctx, id, wpOpenID, s.repo.Unlike)
}

func (s *service) toggleLike(ctx context.Context, id int64, wpOpenID string, apply func(context.Context, int64, int64) error) (*PostDTO, error) {
	member, err := members.Resolve(ctx, s.members, wpOpenID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadPost(ctx, id); err != nil {
		return nil, err
	}
	if err := apply(ctx, id, member.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update like")
	}
	return s.Get(ctx, id)
}

func (s *service) ListTagsByRestaurant(ctx context.Context, restaurantOpenID string) ([]TagDTO, error) {
	restaurant, err := restaurants.Resolve(ctx, s.restaurants, restaurantOpenID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTagsByRestaurant(ctx, restaurant.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}
	out := make([]TagDTO, 0, len(rows))
	for i := range rows {
		out = append(out, tagFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateTag(ctx context.Context, input CreateTagInput) (*TagDTO, error) {
	post, err := s.loadPost(ctx, input.PostID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidReference, "param error: no post found")
		}
		return nil, err
	}
	if err := s.requireAuthor(ctx, post, input.WPOpenID); err != nil {
		return nil, err
	}
	tag, err := s.buildTag(ctx, input.TagInput)
	if err != nil {
		return nil, err
	}
	tag.PostID = post.ID
	if err := s.repo.SaveTag(ctx, tag); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tag")
	}
	dto := tagFromModel(tag)
	return &dto, nil
}

func (s *service) GetTag(ctx context.Context, id int64) (*TagDTO, error) {
	tag, err := s.loadTag(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := tagFromModel(tag)
	return &dto, nil
}

func (s *service) UpdateTag(ctx context.Context, id int64, input UpdateTagInput) (*TagDTO, error) {
	tag, err := s.loadTag(ctx, id)
	if err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, tag.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAuthor(ctx, post, input.WPOpenID); err != nil {
		return nil, err
	}
	updated, err := s.buildTag(ctx, input.TagInput)
	if err != nil {
		return nil, err
	}
	tag.Type = updated.Type
	tag.Content = updated.Content
	tag.RestaurantID = updated.RestaurantID
	if err := s.repo.SaveTag(ctx, tag); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tag")
	}
	dto := tagFromModel(tag)
	return &dto, nil
}

func (s *service) buildTag(ctx context.Context, input TagInput) (*models.Tag, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"content": "required"})
	}
	tag := &models.Tag{Type: input.Type, Content: content}
	if tag.Type == 0 {
		tag.Type = defaultTagType
	}
	if strings.TrimSpace(input.RestaurantOpenID) != "" {
		restaurant, err := restaurants.Resolve(ctx, s.restaurants, input.RestaurantOpenID)
		if err != nil {
			return nil, err
		}
		tag.RestaurantID = &restaurant.ID
	}
	return tag, nil
}

func (s *service) requireAuthor(ctx context.Context, post *models.Post, wpOpenID string) error {
	member, err := members.Resolve(ctx, s.members, wpOpenID)
	if err != nil {
		return err
	}
	if post.MemberID != member.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "post belongs to another member")
	}
	return nil
}

func (s *service) loadPost(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.repo.FindPost(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}
	return post, nil
}

func (s *service) loadTag(ctx context.Context, id int64) (*models.Tag, error) {
	tag, err := s.repo.FindTag(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tag")
	}
	return tag, nil
}
