package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"warbler/internal/database"
	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/repository"
)

type FollowService struct {
	followRepo      repository.FollowRepository
	userRepo        repository.UserRepository
	db              *sqlx.DB
	allowSelfFollow bool
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
	allowSelfFollow bool,
) *FollowService {
	return &FollowService{
		followRepo:      followRepo,
		userRepo:        userRepo,
		db:              db,
		allowSelfFollow: allowSelfFollow,
	}
}

// Follow adds the edge follower -> followed. Following someone twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID int64) error {
	if followerID == followedID && !s.allowSelfFollow {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, followedID); err != nil {
		return err
	}

	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		inserted, err := s.followRepo.Create(ctx, tx, followerID, followedID)
		if err != nil {
			return err
		}
		if inserted {
			metrics.RecordRelationship("follow", "add")
		}
		return nil
	})
}

// Unfollow removes the edge follower -> followed. Removing a missing edge is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID int64) error {
	if _, err := s.userRepo.GetByID(ctx, followedID); err != nil {
		return err
	}

	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		deleted, err := s.followRepo.Delete(ctx, tx, followerID, followedID)
		if err != nil {
			return err
		}
		if deleted {
			metrics.RecordRelationship("follow", "remove")
		}
		return nil
	})
}

// GetFollowers retrieves users who follow userID.
func (s *FollowService) GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	return s.followRepo.GetFollowers(ctx, userID)
}

// GetFollowing retrieves users that userID follows.
func (s *FollowService) GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	return s.followRepo.GetFollowing(ctx, userID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followedID)
}

// FollowingSet performs a BATCH check (one query with ANY($2)) of which users
// in the list viewerID follows, for rendering follow/unfollow buttons.
func (s *FollowService) FollowingSet(ctx context.Context, viewerID int64, users []model.UserSummary) (map[int64]bool, error) {
	if len(users) == 0 {
		return map[int64]bool{}, nil
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return s.followRepo.CheckFollows(ctx, viewerID, ids)
}
