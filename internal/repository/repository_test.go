package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		raw.Close()
	})
	return sqlx.NewDb(raw, "postgres"), mock
}

var messageCols = []string{"id", "text", "timestamp", "user_id", "username", "image_url"}

// =============================================================================
// USERS
// =============================================================================

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "alice@example.com", "$2a$hash", "/img.png", "/hdr.jpg", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

	u := &model.User{
		Username:       "alice",
		Email:          "alice@example.com",
		Password:       "$2a$hash",
		ImageURL:       "/img.png",
		HeaderImageURL: "/hdr.jpg",
	}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, now, u.CreatedAt)
}

func TestUserRepository_Create_UniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"users_username_key", model.ErrUsernameTaken},
		{"users_email_key", model.ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			err := repo.Create(context.Background(), &model.User{Username: "alice"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password", "image_url", "header_image_url", "bio", "location", "created_at"}).
		AddRow(3, "bob", "bob@example.com", "$2a$hash", "/img.png", "/hdr.jpg", "hi", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("bob").
		WillReturnRows(rows)

	u, err := repo.GetByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)
	require.NotNil(t, u.Bio)
	assert.Equal(t, "hi", *u.Bio)
	assert.Nil(t, u.Location)
}

func TestUserRepository_List(t *testing.T) {
	t.Run("all users", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, image_url, bio")).
			WithArgs().
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "image_url", "bio"}).
				AddRow(1, "abc", "/a.png", nil).
				AddRow(2, "testuser", "/t.png", nil))

		users, err := repo.List(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE username ILIKE $1")).
			WithArgs(`%test\_%`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "image_url", "bio"}).
				AddRow(2, "test_user", "/t.png", nil))

		users, err := repo.List(context.Background(), "test_")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "test_user", users[0].Username)
	})
}

func TestUserRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &model.User{ID: 1})
	assert.ErrorIs(t, err, model.ErrEmailTaken)

	err = repo.Update(context.Background(), &model.User{ID: 1})
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), 5))
}

func TestUserRepository_GetStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AS messages")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"messages", "following", "followers", "likes"}).AddRow(4, 2, 1, 3))

	stats, err := repo.GetStats(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, model.UserStats{Messages: 4, Following: 2, Followers: 1, Likes: 3}, *stats)
}

// =============================================================================
// MESSAGES
// =============================================================================

func TestMessageRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO messages (text, user_id)")).
		WithArgs("hello", int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "timestamp", "user_id"}).AddRow(10, "hello", now, 2))

	msg, err := repo.Create(context.Background(), 2, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(10), msg.ID)
	assert.Equal(t, int64(2), msg.UserID)
}

func TestMessageRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE m.id = $1")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(messageCols).AddRow(10, "hello", time.Now(), 2, "bob", "/b.png"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE m.id = $1")).
		WithArgs(int64(11)).
		WillReturnError(sql.ErrNoRows)

	msg, err := repo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "bob", msg.Username)
	assert.Equal(t, "hello", msg.Text)

	_, err = repo.GetByID(context.Background(), 11)
	assert.ErrorIs(t, err, model.ErrMessageNotFound)
}

func TestMessageRepository_Delete_RequiresOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM messages WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(10), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 10, 3)
	assert.ErrorIs(t, err, model.ErrNotMessageOwner)
}

func TestMessageRepository_Feed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)
	newer := time.Now()
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(`OR m.user_id IN \(SELECT user_being_followed_id FROM follows WHERE user_following_id = \$1\)\s+ORDER BY m.timestamp DESC, m.id DESC\s+LIMIT \$2`).
		WithArgs(int64(1), model.FeedLimit).
		WillReturnRows(sqlmock.NewRows(messageCols).
			AddRow(2, "hello", newer, 2, "bob", "/b.png").
			AddRow(1, "mine", older, 1, "alice", "/a.png"))

	msgs, err := repo.Feed(context.Background(), 1, model.FeedLimit)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, "alice", msgs[1].Username)
}

func TestMessageRepository_GetOwnerID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM messages WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	_, err = repo.GetOwnerID(context.Background(), tx, 4)
	assert.ErrorIs(t, err, model.ErrMessageNotFound)
	require.NoError(t, tx.Rollback())
}

// =============================================================================
// FOLLOWS
// =============================================================================

func TestFollowRepository_CreateDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_being_followed_id, user_following_id) DO NOTHING")).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT")).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM follows")).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	inserted, err := repo.Create(ctx, tx, 1, 2)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Create(ctx, tx, 1, 2)
	require.NoError(t, err)
	assert.False(t, inserted, "second follow must not insert a duplicate edge")

	deleted, err := repo.Delete(ctx, tx, 1, 2)
	require.NoError(t, err)
	assert.True(t, deleted)

	require.NoError(t, tx.Commit())
}

func TestFollowRepository_GetFollowing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = f.user_being_followed_id")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "image_url", "bio"}).
			AddRow(2, "abc", "/a.png", nil).
			AddRow(3, "efg", "/e.png", nil))

	users, err := repo.GetFollowing(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestFollowRepository_CheckFollows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFollowRepository(db)

	empty, err := repo.CheckFollows(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	mock.ExpectQuery(regexp.QuoteMeta("user_being_followed_id = ANY($2)")).
		WithArgs(int64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_being_followed_id"}).AddRow(3))

	follows, err := repo.CheckFollows(context.Background(), 1, []int64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{2: false, 3: true}, follows)
}

// =============================================================================
// LIKES
// =============================================================================

func TestLikeRepository_Tx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM likes")).
		WithArgs(int64(1), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO likes (user_id, message_id)")).
		WithArgs(int64(1), int64(9)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM likes WHERE user_id = $1 AND message_id = $2")).
		WithArgs(int64(1), int64(9)).
		WillReturnError(errors.New("conn reset"))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)

	exists, err := repo.Exists(ctx, tx, 1, 9)
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, repo.Create(ctx, tx, 1, 9))
	assert.Error(t, repo.Delete(ctx, tx, 1, 9))

	require.NoError(t, tx.Rollback())
}

func TestLikeRepository_GetLiked(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT message_id FROM likes WHERE user_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"message_id"}).AddRow(9).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("FROM likes l")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(messageCols).AddRow(9, "likable warble", time.Now(), 2, "abc", "/a.png"))

	ids, err := repo.GetLikedMessageIDs(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 12}, ids)

	msgs, err := repo.GetLikedMessages(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "likable warble", msgs[0].Text)
}
