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

// PostService manages Posts.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	now func() time.Time
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
// The now function assigns the publication date of new posts.
func NewPostService(db *gorm.DB, now func() time.Time) *PostService {
	return &PostService{
		postValidator{
			now: now,
			postGorm: postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
// The publication date is always assigned here, whatever the caller put into the post.
func (pv *postValidator) Create(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(ctx, post,
		pv.authorIdValid,
		pv.textRequired,
		pv.groupExists)
	if err != nil {
		return err
	}
	post.ID = 0
	post.PubDate = pv.now()
	return pv.postGorm.Create(ctx, post)
}

// Edit lets the author of a post change its text and group. Setting upd.GroupID to nil
// removes the post from its group. The publication date stays as it is.
func (pv *postValidator) Edit(ctx context.Context, actorID, postID int, upd *domain.PostUpdate) (*domain.Post, error) {
	if actorID <= 0 {
		return nil, errs.UserIdValid
	}
	post, err := pv.postGorm.ByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, errs.Errorf(errs.EFORBIDDEN, "You are not allowed to edit this post.")
	}
	post.Text = upd.Text
	post.GroupID = upd.GroupID
	if err := runPostValFns(ctx, post, pv.textRequired, pv.groupExists); err != nil {
		return nil, err
	}
	if err := pv.postGorm.Update(ctx, actorID, post); err != nil {
		return nil, err
	}
	return pv.postGorm.ByID(ctx, postID)
}

// Delete lets the author of a post remove it, along with its comments.
func (pv *postValidator) Delete(ctx context.Context, actorID, postID int) error {
	if actorID <= 0 {
		return errs.UserIdValid
	}
	if postID <= 0 {
		return errs.IdInvalid
	}
	post, err := pv.postGorm.ByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return errs.Errorf(errs.EFORBIDDEN, "You are not allowed to delete this post.")
	}
	return pv.postGorm.Delete(ctx, post)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(ctx context.Context, post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn = func(ctx context.Context, post *domain.Post) error

// authorIdValid ensures that the post has an author, which means somebody is logged in.
func (pv *postValidator) authorIdValid(ctx context.Context, post *domain.Post) error {
	if post.AuthorID <= 0 {
		return errs.UserIdValid
	}
	return nil
}

// textRequired makes sure that the post's text is not blank.
func (pv *postValidator) textRequired(ctx context.Context, post *domain.Post) error {
	if strings.TrimSpace(post.Text) == "" {
		return errs.Errorf(errs.EINVALID, "Post text must not be empty.")
	}
	return nil
}

// groupExists makes sure that the group the post goes into actually exists.
// This check only runs if the post has a group at all.
func (pv *postValidator) groupExists(ctx context.Context, post *domain.Post) error {
	if post.GroupID == nil {
		return nil
	}
	err := first(pv.db.WithContext(ctx).Where("id = ?", *post.GroupID), &domain.Group{}, "The group does not exist.")
	if err != nil {
		return err
	}
	return nil
}

// ByID retrieves a single Post by ID, along with its author and group.
// If the record doesn't exist, it returns errs.ENOTFOUND.
func (pg *postGorm) ByID(ctx context.Context, id int) (*domain.Post, error) {
	var post domain.Post
	db := pg.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Where("id = ?", id)
	if err := first(db, &post, "The post does not exist."); err != nil {
		return nil, err
	}
	return &post, nil
}

// Create stores the data from the Post object in a new database record
// and loads its author and group afterwards.
func (pg *postGorm) Create(ctx context.Context, post *domain.Post) error {
	// Associations are referenced by ID only, never written through the post.
	post.Author = nil
	post.Group = nil
	if err := pg.db.WithContext(ctx).Create(post).Error; err != nil {
		return errors.Wrap(err, "creating post")
	}
	err := pg.db.WithContext(ctx).Preload("Author").Preload("Group").First(post, post.ID).Error
	return errors.Wrap(err, "loading created post")
}

// Update writes the text and group of a post, and nothing else. The author
// condition is part of the statement, so a concurrent change of ownership
// cannot slip in between the check and the write.
func (pg *postGorm) Update(ctx context.Context, authorID int, post *domain.Post) error {
	var group interface{}
	if post.GroupID != nil {
		group = *post.GroupID
	}
	res := pg.db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ? AND author_id = ?", post.ID, authorID).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": group,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "updating post")
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
	}
	return nil
}

// Delete permanently deletes a Post record from the database along with its Comments.
func (pg *postGorm) Delete(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&domain.Comment{}).Error; err != nil {
			return errors.Wrap(err, "deleting post comments")
		}
		if err := tx.Delete(&domain.Post{}, post.ID).Error; err != nil {
			return errors.Wrap(err, "deleting post")
		}
		return nil
	})
}
