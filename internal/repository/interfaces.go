package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// List returns every user, or those whose username contains query when it is non-empty.
	List(ctx context.Context, query string) ([]model.UserSummary, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	GetStats(ctx context.Context, id int64) (*model.UserStats, error)
}

type MessageRepository interface {
	Create(ctx context.Context, userID int64, text string) (*model.Message, error)
	GetByID(ctx context.Context, id int64) (*model.MessageWithAuthor, error)
	// GetOwnerID reads the author of a message inside tx.
	GetOwnerID(ctx context.Context, tx *sqlx.Tx, id int64) (int64, error)
	Delete(ctx context.Context, id, userID int64) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.MessageWithAuthor, error)
	// Feed returns the newest messages written by userID or by anyone userID follows.
	Feed(ctx context.Context, userID int64, limit int) ([]model.MessageWithAuthor, error)
}

type FollowRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, followerID, followedID int64) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, followerID, followedID int64) (bool, error)
	Exists(ctx context.Context, followerID, followedID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error)
	CheckFollows(ctx context.Context, followerID int64, followedIDs []int64) (map[int64]bool, error)
}

type LikeRepository interface {
	Exists(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error)
	Create(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) error
	Delete(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) error
	GetLikedMessageIDs(ctx context.Context, userID int64) ([]int64, error)
	GetLikedMessages(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error)
}
