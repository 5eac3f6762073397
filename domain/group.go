package domain

import (
	"context"
	"time"
)

// Group is a community that Posts can be published in. Its Slug identifies it in urls.
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title" gorm:"notNull;size:200"`
	Slug        string `json:"slug" gorm:"notNull;uniqueIndex"`
	Description string `json:"description"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// GroupUpdate holds the fields of a Group that may change. Nil fields are left alone.
type GroupUpdate struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

// GroupService is a set of methods to manipulate and work with the Group model.
type GroupService interface {
	ByID(ctx context.Context, id int) (*Group, error)
	BySlug(ctx context.Context, slug string) (*Group, error)
	All(ctx context.Context) ([]Group, error)
	Create(ctx context.Context, group *Group) error
	Update(ctx context.Context, id int, upd *GroupUpdate) (*Group, error)
	Delete(ctx context.Context, id int) error
}
