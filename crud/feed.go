package crud

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

// FeedService resolves which posts a viewer sees, newest first, one page at a time.
// It implements the domain.FeedService interface.
type FeedService struct {
	feedGorm
}

// feedGorm queries the posts table for feeds.
type feedGorm struct {
	db *gorm.DB
}

// NewFeedService returns an instance of FeedService.
func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{
		feedGorm{
			db: db,
		},
	}
}

var _ domain.FeedService = &FeedService{}

// Feed returns page number page of the posts in scope. Pages are 1-based, anything
// below 1 is treated as the first page, and pages past the end come back empty
// rather than failing. Posts sharing a publication date are ordered by descending
// ID, so every post shows up on exactly one page.
func (fg *feedGorm) Feed(ctx context.Context, scope domain.FeedScope, viewerID, page, pageSize int) (*domain.Page, error) {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	result := &domain.Page{
		Posts:  []domain.Post{},
		Number: page,
		Size:   pageSize,
	}

	db, err := fg.scoped(ctx, scope, viewerID)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return result, nil
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "counting feed")
	}
	result.Total = int(total)
	offset := (page - 1) * pageSize
	if offset >= result.Total {
		return result, nil
	}

	err = db.
		Preload("Author").
		Preload("Group").
		Order("pub_date desc").
		Order("id desc").
		Offset(offset).
		Limit(pageSize).
		Find(&result.Posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "querying feed")
	}
	return result, nil
}

// scoped builds the filtered query of a scope. A nil query without error means
// the scope is empty for sure, e.g. a viewer who follows nobody.
func (fg *feedGorm) scoped(ctx context.Context, scope domain.FeedScope, viewerID int) (*gorm.DB, error) {
	db := fg.db.WithContext(ctx).Model(&domain.Post{})
	switch scope.Kind {
	case domain.AllPosts:
	case domain.ByGroup:
		var group domain.Group
		if err := first(fg.db.WithContext(ctx).Where("slug = ?", scope.Slug), &group, "The group does not exist."); err != nil {
			return nil, err
		}
		db = db.Where("group_id = ?", group.ID)
	case domain.ByAuthor:
		var author domain.User
		if err := first(fg.db.WithContext(ctx).Where("username = ?", scope.Username), &author, "The user does not exist."); err != nil {
			return nil, err
		}
		db = db.Where("author_id = ?", author.ID)
	case domain.FollowedAuthors:
		if viewerID <= 0 {
			return nil, errs.UserIdValid
		}
		var authorIDs []int
		err := fg.db.WithContext(ctx).
			Model(&domain.Follow{}).
			Where("user_id = ?", viewerID).
			Pluck("author_id", &authorIDs).Error
		if err != nil {
			return nil, errors.Wrap(err, "listing followed authors")
		}
		if len(authorIDs) == 0 {
			return nil, nil
		}
		db = db.Where("author_id IN ?", authorIDs)
	default:
		return nil, errs.Errorf(errs.EINVALID, "Unknown feed scope.")
	}
	// Count and Find both build on this query.
	return db.Session(&gorm.Session{}), nil
}
