package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"warbler/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge and reports whether a row was added. An existing
// edge is left alone.
func (r *followRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followedID int64) (bool, error) {
	query := `
		INSERT INTO follows (user_being_followed_id, user_following_id)
		VALUES ($1, $2)
		ON CONFLICT (user_being_followed_id, user_following_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, followedID, followerID)
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Delete removes the edge and reports whether one existed.
func (r *followRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followedID int64) (bool, error) {
	query := `DELETE FROM follows WHERE user_being_followed_id = $1 AND user_following_id = $2`
	result, err := tx.ExecContext(ctx, query, followedID, followerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE user_being_followed_id = $1 AND user_following_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followedID, followerID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// GetFollowers retrieves users who follow userID.
func (r *followRepository) GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.image_url, u.bio
		FROM follows f
		JOIN users u ON u.id = f.user_following_id
		WHERE f.user_being_followed_id = $1
		ORDER BY u.username
	`
	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return users, nil
}

// GetFollowing retrieves users that userID follows.
func (r *followRepository) GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	query := `
		SELECT u.id, u.username, u.image_url, u.bio
		FROM follows f
		JOIN users u ON u.id = f.user_being_followed_id
		WHERE f.user_following_id = $1
		ORDER BY u.username
	`
	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return users, nil
}

func (r *followRepository) CheckFollows(ctx context.Context, followerID int64, followedIDs []int64) (map[int64]bool, error) {
	if len(followedIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `
		SELECT user_being_followed_id FROM follows
		WHERE user_following_id = $1 AND user_being_followed_id = ANY($2)
	`
	var followed []int64
	err := r.db.SelectContext(ctx, &followed, query, followerID, pq.Array(followedIDs))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check follows: %w", err)
	}

	result := make(map[int64]bool, len(followedIDs))
	for _, id := range followedIDs {
		result[id] = false
	}
	for _, id := range followed {
		result[id] = true
	}

	return result, nil
}
