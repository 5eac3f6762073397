package domain

import (
	"context"
	"time"
)

// Comment is a reply of a User to a Post. It is removed along with either of them.
type Comment struct {
	ID       int    `json:"id"`
	PostID   int    `json:"post_id" gorm:"notNull;index"`
	Post     *Post  `json:"-" gorm:"foreignKey:PostID"`
	AuthorID int    `json:"author_id" gorm:"notNull;index"`
	Author   *User  `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Text     string `json:"text" gorm:"notNull"`

	Created time.Time `json:"created" gorm:"notNull"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	ByPost(ctx context.Context, postID int) ([]Comment, error)
	Create(ctx context.Context, comment *Comment) error
}
