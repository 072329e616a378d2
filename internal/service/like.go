package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"warbler/internal/database"
	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/repository"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	messageRepo repository.MessageRepository
	db          *sqlx.DB
}

func NewLikeService(likeRepo repository.LikeRepository, messageRepo repository.MessageRepository, db *sqlx.DB) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		messageRepo: messageRepo,
		db:          db,
	}
}

// Toggle likes messageID for userID, or removes the like if it already
// exists, and reports the resulting state. Users cannot like their own
// messages in either direction.
func (s *LikeService) Toggle(ctx context.Context, userID, messageID int64) (bool, error) {
	var liked bool
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		ownerID, err := s.messageRepo.GetOwnerID(ctx, tx, messageID)
		if err != nil {
			return err
		}
		if ownerID == userID {
			return model.ErrCannotLikeOwnMessage
		}

		exists, err := s.likeRepo.Exists(ctx, tx, userID, messageID)
		if err != nil {
			return err
		}

		if exists {
			liked = false
			return s.likeRepo.Delete(ctx, tx, userID, messageID)
		}
		liked = true
		return s.likeRepo.Create(ctx, tx, userID, messageID)
	})
	if err != nil {
		return false, err
	}

	if liked {
		metrics.RecordRelationship("like", "add")
	} else {
		metrics.RecordRelationship("like", "remove")
	}
	return liked, nil
}

// LikedMessages returns the messages userID has liked.
func (s *LikeService) LikedMessages(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error) {
	return s.likeRepo.GetLikedMessages(ctx, userID)
}

// LikedIDs returns the set of message ids userID has liked.
func (s *LikeService) LikedIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	ids, err := s.likeRepo.GetLikedMessageIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	liked := make(map[int64]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
