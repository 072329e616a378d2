package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on the repository INTERFACES, so each test swaps in a mock
// whose behavior is defined per test through function fields. Unset fields
// fall back to a neutral answer.

type mockUserRepository struct {
	createFn        func(ctx context.Context, user *model.User) error
	getByIDFn       func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	listFn          func(ctx context.Context, query string) ([]model.UserSummary, error)
	updateFn        func(ctx context.Context, user *model.User) error
	deleteFn        func(ctx context.Context, id int64) error
	getStatsFn      func(ctx context.Context, id int64) (*model.UserStats, error)

	createCalls []*model.User
	updateCalls []*model.User
	deleteCalls []int64
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context, query string) ([]model.UserSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, query)
	}
	return []model.UserSummary{}, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	m.updateCalls = append(m.updateCalls, user)
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	m.deleteCalls = append(m.deleteCalls, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepository) GetStats(ctx context.Context, id int64) (*model.UserStats, error) {
	if m.getStatsFn != nil {
		return m.getStatsFn(ctx, id)
	}
	return &model.UserStats{}, nil
}

type mockMessageRepository struct {
	createFn     func(ctx context.Context, userID int64, text string) (*model.Message, error)
	getByIDFn    func(ctx context.Context, id int64) (*model.MessageWithAuthor, error)
	getOwnerIDFn func(ctx context.Context, id int64) (int64, error)
	deleteFn     func(ctx context.Context, id, userID int64) error
	listByUserFn func(ctx context.Context, userID int64, limit int) ([]model.MessageWithAuthor, error)
	feedFn       func(ctx context.Context, userID int64, limit int) ([]model.MessageWithAuthor, error)

	createCalls int
	deleteCalls int
}

func (m *mockMessageRepository) Create(ctx context.Context, userID int64, text string) (*model.Message, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, userID, text)
	}
	return &model.Message{ID: 1, UserID: userID, Text: text}, nil
}

func (m *mockMessageRepository) GetByID(ctx context.Context, id int64) (*model.MessageWithAuthor, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrMessageNotFound
}

func (m *mockMessageRepository) GetOwnerID(ctx context.Context, tx *sqlx.Tx, id int64) (int64, error) {
	if m.getOwnerIDFn != nil {
		return m.getOwnerIDFn(ctx, id)
	}
	return 0, model.ErrMessageNotFound
}

func (m *mockMessageRepository) Delete(ctx context.Context, id, userID int64) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return nil
}

func (m *mockMessageRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.MessageWithAuthor, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, limit)
	}
	return []model.MessageWithAuthor{}, nil
}

func (m *mockMessageRepository) Feed(ctx context.Context, userID int64, limit int) ([]model.MessageWithAuthor, error) {
	if m.feedFn != nil {
		return m.feedFn(ctx, userID, limit)
	}
	return []model.MessageWithAuthor{}, nil
}

type mockFollowRepository struct {
	createFn       func(ctx context.Context, followerID, followedID int64) (bool, error)
	deleteFn       func(ctx context.Context, followerID, followedID int64) (bool, error)
	existsFn       func(ctx context.Context, followerID, followedID int64) (bool, error)
	getFollowersFn func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	getFollowingFn func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	checkFollowsFn func(ctx context.Context, followerID int64, ids []int64) (map[int64]bool, error)

	createCalls int
	deleteCalls int
}

func (m *mockFollowRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followedID int64) (bool, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followedID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followedID int64) (bool, error) {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followedID)
	}
	return true, nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followedID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID)
	}
	return []model.UserSummary{}, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID)
	}
	return []model.UserSummary{}, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, ids []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, ids)
	}
	return map[int64]bool{}, nil
}

type mockLikeRepository struct {
	existsFn             func(ctx context.Context, userID, messageID int64) (bool, error)
	createFn             func(ctx context.Context, userID, messageID int64) error
	deleteFn             func(ctx context.Context, userID, messageID int64) error
	getLikedMessageIDsFn func(ctx context.Context, userID int64) ([]int64, error)
	getLikedMessagesFn   func(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error)

	createCalls int
	deleteCalls int
}

func (m *mockLikeRepository) Exists(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, messageID)
	}
	return false, nil
}

func (m *mockLikeRepository) Create(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, userID, messageID)
	}
	return nil
}

func (m *mockLikeRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, messageID)
	}
	return nil
}

func (m *mockLikeRepository) GetLikedMessageIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getLikedMessageIDsFn != nil {
		return m.getLikedMessageIDsFn(ctx, userID)
	}
	return []int64{}, nil
}

func (m *mockLikeRepository) GetLikedMessages(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error) {
	if m.getLikedMessagesFn != nil {
		return m.getLikedMessagesFn(ctx, userID)
	}
	return []model.MessageWithAuthor{}, nil
}

// newTxDB returns a sqlmock-backed *sqlx.DB for services that open
// transactions. Tests declare the expected BEGIN/COMMIT/ROLLBACK sequence.
func newTxDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		raw.Close()
	})
	return sqlx.NewDb(raw, "postgres"), mock
}
