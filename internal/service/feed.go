package service

import (
	"context"
	"fmt"

	"warbler/internal/model"
	"warbler/internal/repository"
)

type FeedService struct {
	messageRepo repository.MessageRepository
	likeRepo    repository.LikeRepository
}

func NewFeedService(messageRepo repository.MessageRepository, likeRepo repository.LikeRepository) *FeedService {
	return &FeedService{
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
	}
}

// Home builds the authenticated homepage: the newest model.FeedLimit messages
// written by userID or anyone they follow, plus the ids userID has liked.
func (s *FeedService) Home(ctx context.Context, userID int64) (*model.Feed, error) {
	messages, err := s.messageRepo.Feed(ctx, userID, model.FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	if len(messages) > model.FeedLimit {
		messages = messages[:model.FeedLimit]
	}

	ids, err := s.likeRepo.GetLikedMessageIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load liked ids: %w", err)
	}

	liked := make(map[int64]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}

	return &model.Feed{Messages: messages, LikedIDs: liked}, nil
}
