package handler

import (
	"context"
	"mime/multipart"

	"warbler/internal/model"
)

// The handlers depend on these narrow views of the services so tests can
// substitute fakes.

type UserService interface {
	Signup(ctx context.Context, in model.SignupInput) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, bool, error)
	GetProfile(ctx context.Context, id int64) (*model.Profile, error)
	List(ctx context.Context, query string) ([]model.UserSummary, error)
	UpdateProfile(ctx context.Context, userID int64, in model.ProfileUpdate) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

type FollowService interface {
	Follow(ctx context.Context, followerID, followedID int64) error
	Unfollow(ctx context.Context, followerID, followedID int64) error
	GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error)
	IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error)
	FollowingSet(ctx context.Context, viewerID int64, users []model.UserSummary) (map[int64]bool, error)
}

type LikeService interface {
	Toggle(ctx context.Context, userID, messageID int64) (bool, error)
	LikedMessages(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error)
	LikedIDs(ctx context.Context, userID int64) (map[int64]bool, error)
}

type MessageService interface {
	Create(ctx context.Context, userID int64, text string) (*model.Message, error)
	GetByID(ctx context.Context, id int64) (*model.MessageWithAuthor, error)
	Delete(ctx context.Context, id, userID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error)
}

type FeedService interface {
	Home(ctx context.Context, userID int64) (*model.Feed, error)
}

// ImageUploader stores profile images. A nil ImageUploader disables uploads.
type ImageUploader interface {
	UploadImage(ctx context.Context, kind model.ImageKind, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
	DeleteImage(ctx context.Context, url string) error
	IsHosted(url string) bool
}
