package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/repository"
)

type MessageService struct {
	messageRepo repository.MessageRepository
}

func NewMessageService(messageRepo repository.MessageRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo}
}

// Create posts a new message for userID.
func (s *MessageService) Create(ctx context.Context, userID int64, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > model.MaxMessageLength {
		return nil, model.ErrMessageTooLong
	}

	msg, err := s.messageRepo.Create(ctx, userID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	metrics.RecordMessagePosted()
	return msg, nil
}

func (s *MessageService) GetByID(ctx context.Context, id int64) (*model.MessageWithAuthor, error) {
	return s.messageRepo.GetByID(ctx, id)
}

// Delete removes the message if userID owns it. Deleting someone else's
// message returns model.ErrNotMessageOwner and leaves it intact.
func (s *MessageService) Delete(ctx context.Context, id, userID int64) error {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.UserID != userID {
		return model.ErrNotMessageOwner
	}

	return s.messageRepo.Delete(ctx, id, userID)
}

// ListByUser returns the newest messages written by userID.
func (s *MessageService) ListByUser(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error) {
	return s.messageRepo.ListByUser(ctx, userID, model.FeedLimit)
}
