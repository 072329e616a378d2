package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND message_id = $2)`
	var exists bool
	if err := tx.GetContext(ctx, &exists, query, userID, messageID); err != nil {
		return false, fmt.Errorf("check like existence: %w", err)
	}
	return exists, nil
}

func (r *likeRepository) Create(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) error {
	query := `
		INSERT INTO likes (user_id, message_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, message_id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, query, userID, messageID); err != nil {
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) error {
	query := `DELETE FROM likes WHERE user_id = $1 AND message_id = $2`
	if _, err := tx.ExecContext(ctx, query, userID, messageID); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

func (r *likeRepository) GetLikedMessageIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT message_id FROM likes WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("get liked message ids: %w", err)
	}
	return ids, nil
}

// GetLikedMessages returns the messages userID liked, newest message first.
func (r *likeRepository) GetLikedMessages(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error) {
	query := `
		SELECT ` + messageWithAuthorColumns + `
		FROM likes l
		JOIN messages m ON m.id = l.message_id
		JOIN users u ON u.id = m.user_id
		WHERE l.user_id = $1
		ORDER BY m.timestamp DESC, m.id DESC
	`
	messages := []model.MessageWithAuthor{}
	if err := r.db.SelectContext(ctx, &messages, query, userID); err != nil {
		return nil, fmt.Errorf("get liked messages: %w", err)
	}
	return messages, nil
}
