package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

const messageWithAuthorColumns = `m.id, m.text, m.timestamp, m.user_id, u.username, u.image_url`

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, userID int64, text string) (*model.Message, error) {
	query := `
		INSERT INTO messages (text, user_id)
		VALUES ($1, $2)
		RETURNING id, text, timestamp, user_id
	`
	var msg model.Message
	if err := r.db.GetContext(ctx, &msg, query, text, userID); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*model.MessageWithAuthor, error) {
	query := `
		SELECT ` + messageWithAuthorColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.id = $1
	`
	var msg model.MessageWithAuthor
	err := r.db.GetContext(ctx, &msg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &msg, nil
}

func (r *messageRepository) GetOwnerID(ctx context.Context, tx *sqlx.Tx, id int64) (int64, error) {
	var ownerID int64
	err := tx.GetContext(ctx, &ownerID, `SELECT user_id FROM messages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrMessageNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get message owner: %w", err)
	}
	return ownerID, nil
}

// Delete removes a message only if userID owns it.
func (r *messageRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotMessageOwner
	}
	return nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.MessageWithAuthor, error) {
	query := `
		SELECT ` + messageWithAuthorColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.user_id = $1
		ORDER BY m.timestamp DESC, m.id DESC
		LIMIT $2
	`
	messages := []model.MessageWithAuthor{}
	if err := r.db.SelectContext(ctx, &messages, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list user messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) Feed(ctx context.Context, userID int64, limit int) ([]model.MessageWithAuthor, error) {
	query := `
		SELECT ` + messageWithAuthorColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.user_id = $1
		   OR m.user_id IN (SELECT user_being_followed_id FROM follows WHERE user_following_id = $1)
		ORDER BY m.timestamp DESC, m.id DESC
		LIMIT $2
	`
	messages := []model.MessageWithAuthor{}
	if err := r.db.SelectContext(ctx, &messages, query, userID, limit); err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return messages, nil
}
