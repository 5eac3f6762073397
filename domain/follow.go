package domain

import (
	"context"
	"time"
)

// Follow represents a self-referential many-to-many relationship between two users.
// UserID is the follower, AuthorID the user being followed. A pair exists at most once,
// which the unique index on both columns enforces even under concurrent requests.
type Follow struct {
	ID       int   `json:"id"`
	UserID   int   `json:"user_id" gorm:"notNull;uniqueIndex:idx_follows_pair"`
	User     *User `json:"-" gorm:"foreignKey:UserID"`
	AuthorID int   `json:"author_id" gorm:"notNull;uniqueIndex:idx_follows_pair;index"`
	Author   *User `json:"-" gorm:"foreignKey:AuthorID"`

	CreatedAt time.Time `json:"created_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Follow(ctx context.Context, userID, authorID int) error
	Unfollow(ctx context.Context, userID, authorID int) error
	IsFollowing(ctx context.Context, userID, authorID int) (bool, error)
}
