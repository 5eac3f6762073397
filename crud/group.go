package crud

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"wtfBlog/domain"
	"wtfBlog/errs"
)

// GroupService manages Groups.
// It implements the domain.GroupService interface.
type GroupService struct {
	groupValidator
}

// groupValidator runs validations on incoming Group data.
// On success, it passes the data on to groupGorm.
type groupValidator struct {
	slugRegex *regexp.Regexp
	groupGorm
}

// groupGorm runs CRUD operations on the database using incoming Group data.
type groupGorm struct {
	db *gorm.DB
}

// NewGroupService returns an instance of GroupService.
func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{
		groupValidator{
			slugRegex: regexp.MustCompile(`^[-a-zA-Z0-9_]+$`),
			groupGorm: groupGorm{
				db: db,
			},
		},
	}
}

var _ domain.GroupService = &GroupService{}

// Create runs validations needed for creating new Group database records.
func (gv *groupValidator) Create(ctx context.Context, group *domain.Group) error {
	err := runGroupValFns(ctx, group,
		gv.normalize,
		gv.titleRequired,
		gv.titleMaxLength,
		gv.slugFormat,
		gv.slugIsAvail)
	if err != nil {
		return err
	}
	return gv.groupGorm.Create(ctx, group)
}

// Update applies the non-nil fields of upd to the group. The slug can only
// change while no post references the group.
func (gv *groupValidator) Update(ctx context.Context, id int, upd *domain.GroupUpdate) (*domain.Group, error) {
	group, err := gv.groupGorm.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		group.Title = *upd.Title
	}
	if upd.Description != nil {
		group.Description = *upd.Description
	}
	fns := []groupValFn{gv.normalize, gv.titleRequired, gv.titleMaxLength}
	if upd.Slug != nil && strings.TrimSpace(*upd.Slug) != group.Slug {
		group.Slug = *upd.Slug
		fns = append(fns, gv.slugFormat, gv.slugIsAvail, gv.slugNotReferenced)
	}
	if err := runGroupValFns(ctx, group, fns...); err != nil {
		return nil, err
	}
	if err := gv.groupGorm.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete makes sure the ID is valid before removing the group.
func (gv *groupValidator) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return errs.IdInvalid
	}
	return gv.groupGorm.Delete(ctx, id)
}

func runGroupValFns(ctx context.Context, group *domain.Group, fns ...groupValFn) error {
	for _, fn := range fns {
		if err := fn(ctx, group); err != nil {
			return err
		}
	}
	return nil
}

type groupValFn func(ctx context.Context, group *domain.Group) error

func (gv *groupValidator) normalize(ctx context.Context, group *domain.Group) error {
	group.Title = strings.TrimSpace(group.Title)
	group.Slug = strings.TrimSpace(group.Slug)
	return nil
}

func (gv *groupValidator) titleRequired(ctx context.Context, group *domain.Group) error {
	if group.Title == "" {
		return errs.Errorf(errs.EINVALID, "Group title must not be empty.")
	}
	return nil
}

func (gv *groupValidator) titleMaxLength(ctx context.Context, group *domain.Group) error {
	if utf8.RuneCountInString(group.Title) > 200 {
		return errs.Errorf(errs.EINVALID, "Group title max length is 200 characters.")
	}
	return nil
}

// slugFormat only lets letters, digits, hyphens and underscores through.
func (gv *groupValidator) slugFormat(ctx context.Context, group *domain.Group) error {
	if !gv.slugRegex.MatchString(group.Slug) {
		return errs.Errorf(errs.EINVALID, "Group slug may only contain letters, digits, hyphens and underscores.")
	}
	return nil
}

func (gv *groupValidator) slugIsAvail(ctx context.Context, group *domain.Group) error {
	existing, err := gv.groupGorm.BySlug(ctx, group.Slug)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != group.ID {
		return errs.Errorf(errs.ECONFLICT, "This slug is already taken.")
	}
	return nil
}

// slugNotReferenced keeps the slug of a group with posts stable.
func (gv *groupValidator) slugNotReferenced(ctx context.Context, group *domain.Group) error {
	var count int64
	err := gv.db.WithContext(ctx).Model(&domain.Post{}).Where("group_id = ?", group.ID).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "counting group posts")
	}
	if count > 0 {
		return errs.Errorf(errs.EINVALID, "The slug of a group that has posts cannot change.")
	}
	return nil
}

// ByID retrieves a single Group by ID.
func (gg *groupGorm) ByID(ctx context.Context, id int) (*domain.Group, error) {
	var group domain.Group
	if err := first(gg.db.WithContext(ctx).Where("id = ?", id), &group, "The group does not exist."); err != nil {
		return nil, err
	}
	return &group, nil
}

// BySlug retrieves a single Group by its slug.
func (gg *groupGorm) BySlug(ctx context.Context, slug string) (*domain.Group, error) {
	var group domain.Group
	if err := first(gg.db.WithContext(ctx).Where("slug = ?", slug), &group, "The group does not exist."); err != nil {
		return nil, err
	}
	return &group, nil
}

// All lists every group ordered by title.
func (gg *groupGorm) All(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	err := gg.db.WithContext(ctx).Order("title").Order("id").Find(&groups).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing groups")
	}
	return groups, nil
}

func (gg *groupGorm) Create(ctx context.Context, group *domain.Group) error {
	return errors.Wrap(gg.db.WithContext(ctx).Create(group).Error, "creating group")
}

func (gg *groupGorm) Update(ctx context.Context, group *domain.Group) error {
	return errors.Wrap(gg.db.WithContext(ctx).Save(group).Error, "updating group")
}

// Delete removes a group. Its posts survive with their group reference cleared,
// both steps happening in one transaction.
func (gg *groupGorm) Delete(ctx context.Context, id int) error {
	return gg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Post{}).Where("group_id = ?", id).Update("group_id", nil).Error
		if err != nil {
			return errors.Wrap(err, "detaching group posts")
		}
		res := tx.Delete(&domain.Group{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "deleting group")
		}
		if res.RowsAffected == 0 {
			return errs.Errorf(errs.ENOTFOUND, "The group does not exist.")
		}
		return nil
	})
}
