package crud

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

// FollowService manages Follows.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

var _ domain.FollowService = &FollowService{}

// Follow makes userID a follower of authorID. Following an author twice is not
// an error, the existing edge is kept.
func (fv *followValidator) Follow(ctx context.Context, userID, authorID int) error {
	follow := domain.Follow{UserID: userID, AuthorID: authorID}
	err := runFollowValFns(ctx, &follow,
		fv.userIdValid,
		fv.followedIsNotFollower,
		fv.followedUserExists)
	if err != nil {
		return err
	}
	return fv.followGorm.Create(ctx, &follow)
}

// Unfollow removes the edge between userID and authorID. Removing an edge that
// doesn't exist is not an error.
func (fv *followValidator) Unfollow(ctx context.Context, userID, authorID int) error {
	follow := domain.Follow{UserID: userID, AuthorID: authorID}
	if err := runFollowValFns(ctx, &follow, fv.userIdValid); err != nil {
		return err
	}
	return fv.followGorm.Delete(ctx, &follow)
}

func runFollowValFns(ctx context.Context, follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, follow); err != nil {
			return err
		}
	}
	return nil
}

type followValFn func(ctx context.Context, follow *domain.Follow) error

func (fv *followValidator) userIdValid(ctx context.Context, follow *domain.Follow) error {
	if follow.UserID <= 0 {
		return errs.UserIdValid
	}
	return nil
}

func (fv *followValidator) followedIsNotFollower(ctx context.Context, follow *domain.Follow) error {
	if follow.UserID == follow.AuthorID {
		return errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}
	return nil
}

func (fv *followValidator) followedUserExists(ctx context.Context, follow *domain.Follow) error {
	return first(fv.db.WithContext(ctx).Where("id = ?", follow.AuthorID), &domain.User{}, "The user to be followed does not exist.")
}

// IsFollowing reports whether userID follows authorID.
func (fg *followGorm) IsFollowing(ctx context.Context, userID, authorID int) (bool, error) {
	if userID <= 0 {
		return false, nil
	}
	var count int64
	err := fg.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "checking follow")
	}
	return count > 0, nil
}

// Create inserts the edge unless the pair already exists. The unique index
// settles concurrent follows of the same pair.
func (fg *followGorm) Create(ctx context.Context, follow *domain.Follow) error {
	err := fg.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
			DoNothing: true,
		}).
		Create(follow).Error
	return errors.Wrap(err, "creating follow")
}

// Delete permanently deletes the edge between the pair, if any.
func (fg *followGorm) Delete(ctx context.Context, follow *domain.Follow) error {
	err := fg.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", follow.UserID, follow.AuthorID).
		Delete(&domain.Follow{}).Error
	return errors.Wrap(err, "deleting follow")
}
