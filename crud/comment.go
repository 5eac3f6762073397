package crud

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

// CommentService manages Comments.
// It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
type commentValidator struct {
	now func() time.Time
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment data.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB, now func() time.Time) *CommentService {
	return &CommentService{
		commentValidator{
			now: now,
			commentGorm: commentGorm{
				db: db,
			},
		},
	}
}

var _ domain.CommentService = &CommentService{}

// Create runs validations needed for creating new Comment database records
// and stamps the comment with the current time.
func (cv *commentValidator) Create(ctx context.Context, comment *domain.Comment) error {
	err := runCommentValFns(ctx, comment,
		cv.authorIdValid,
		cv.textRequired,
		cv.postExists)
	if err != nil {
		return err
	}
	comment.ID = 0
	comment.Created = cv.now()
	return cv.commentGorm.Create(ctx, comment)
}

func runCommentValFns(ctx context.Context, comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, comment); err != nil {
			return err
		}
	}
	return nil
}

type commentValFn func(ctx context.Context, comment *domain.Comment) error

func (cv *commentValidator) authorIdValid(ctx context.Context, comment *domain.Comment) error {
	if comment.AuthorID <= 0 {
		return errs.UserIdValid
	}
	return nil
}

func (cv *commentValidator) textRequired(ctx context.Context, comment *domain.Comment) error {
	if strings.TrimSpace(comment.Text) == "" {
		return errs.Errorf(errs.EINVALID, "Comment text must not be empty.")
	}
	return nil
}

// postExists makes sure that the commented post actually exists.
func (cv *commentValidator) postExists(ctx context.Context, comment *domain.Comment) error {
	return first(cv.db.WithContext(ctx).Where("id = ?", comment.PostID), &domain.Post{}, "The post does not exist.")
}

// ByPost lists the comments of a post, newest first, with their authors.
func (cg *commentGorm) ByPost(ctx context.Context, postID int) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := cg.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created desc").
		Order("id desc").
		Find(&comments).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing comments")
	}
	return comments, nil
}

func (cg *commentGorm) Create(ctx context.Context, comment *domain.Comment) error {
	comment.Author = nil
	comment.Post = nil
	if err := cg.db.WithContext(ctx).Create(comment).Error; err != nil {
		return errors.Wrap(err, "creating comment")
	}
	err := cg.db.WithContext(ctx).Preload("Author").First(comment, comment.ID).Error
	return errors.Wrap(err, "loading created comment")
}
