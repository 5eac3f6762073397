package domain

import (
	"context"
	"time"
)

// Post is a text written by an author, optionally published in a Group.
// PubDate is assigned once on creation and never changes afterwards.
// Image is a reference to an already stored picture, if any.
type Post struct {
	ID       int    `json:"id"`
	Text     string `json:"text" gorm:"notNull"`
	AuthorID int    `json:"author_id" gorm:"notNull;index"`
	Author   *User  `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	GroupID  *int   `json:"group_id" gorm:"index"`
	Group    *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Image    string `json:"image,omitempty"`

	PubDate   time.Time `json:"pub_date" gorm:"notNull;index"`
	UpdatedAt time.Time `json:"-"`
}

// PostUpdate holds the editable fields of a Post. A nil GroupID removes the post from its group.
type PostUpdate struct {
	Text    string `json:"text"`
	GroupID *int   `json:"group"`
}

// PostService is a set of methods to manipulate and work with the Post model.
type PostService interface {
	ByID(ctx context.Context, id int) (*Post, error)
	Create(ctx context.Context, post *Post) error
	Edit(ctx context.Context, actorID, postID int, upd *PostUpdate) (*Post, error)
	Delete(ctx context.Context, actorID, postID int) error
}
