package handler

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"warbler/internal/model"
	"warbler/internal/session"
	"warbler/internal/transport/http/middleware"
	"warbler/internal/view"
)

// fakeUsers implements UserService and middleware.UserLoader.
type fakeUsers struct {
	byID map[int64]*model.User

	SignupFunc        func(ctx context.Context, in model.SignupInput) (*model.User, error)
	AuthenticateFunc  func(ctx context.Context, username, password string) (*model.User, bool, error)
	GetProfileFunc    func(ctx context.Context, id int64) (*model.Profile, error)
	ListFunc          func(ctx context.Context, query string) ([]model.UserSummary, error)
	UpdateProfileFunc func(ctx context.Context, userID int64, in model.ProfileUpdate) (*model.User, error)
	DeleteFunc        func(ctx context.Context, id int64) error
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, model.ErrUserNotFound
}

func (f *fakeUsers) Signup(ctx context.Context, in model.SignupInput) (*model.User, error) {
	return f.SignupFunc(ctx, in)
}

func (f *fakeUsers) Authenticate(ctx context.Context, username, password string) (*model.User, bool, error) {
	return f.AuthenticateFunc(ctx, username, password)
}

func (f *fakeUsers) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	if f.GetProfileFunc != nil {
		return f.GetProfileFunc(ctx, id)
	}
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.Profile{User: u}, nil
}

func (f *fakeUsers) List(ctx context.Context, query string) ([]model.UserSummary, error) {
	return f.ListFunc(ctx, query)
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID int64, in model.ProfileUpdate) (*model.User, error) {
	return f.UpdateProfileFunc(ctx, userID, in)
}

func (f *fakeUsers) Delete(ctx context.Context, id int64) error {
	return f.DeleteFunc(ctx, id)
}

type fakeFollows struct {
	FollowFunc       func(ctx context.Context, followerID, followedID int64) error
	UnfollowFunc     func(ctx context.Context, followerID, followedID int64) error
	GetFollowersFunc func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetFollowingFunc func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	following        map[int64]bool
}

func (f *fakeFollows) Follow(ctx context.Context, followerID, followedID int64) error {
	return f.FollowFunc(ctx, followerID, followedID)
}

func (f *fakeFollows) Unfollow(ctx context.Context, followerID, followedID int64) error {
	return f.UnfollowFunc(ctx, followerID, followedID)
}

func (f *fakeFollows) GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	return f.GetFollowersFunc(ctx, userID)
}

func (f *fakeFollows) GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	return f.GetFollowingFunc(ctx, userID)
}

func (f *fakeFollows) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	return f.following[followedID], nil
}

func (f *fakeFollows) FollowingSet(ctx context.Context, viewerID int64, users []model.UserSummary) (map[int64]bool, error) {
	return f.following, nil
}

type fakeLikes struct {
	ToggleFunc        func(ctx context.Context, userID, messageID int64) (bool, error)
	LikedMessagesFunc func(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error)
	liked             map[int64]bool
}

func (f *fakeLikes) Toggle(ctx context.Context, userID, messageID int64) (bool, error) {
	return f.ToggleFunc(ctx, userID, messageID)
}

func (f *fakeLikes) LikedMessages(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error) {
	return f.LikedMessagesFunc(ctx, userID)
}

func (f *fakeLikes) LikedIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	return f.liked, nil
}

type fakeMessages struct {
	CreateFunc     func(ctx context.Context, userID int64, text string) (*model.Message, error)
	GetByIDFunc    func(ctx context.Context, id int64) (*model.MessageWithAuthor, error)
	DeleteFunc     func(ctx context.Context, id, userID int64) error
	ListByUserFunc func(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error)
}

func (f *fakeMessages) Create(ctx context.Context, userID int64, text string) (*model.Message, error) {
	return f.CreateFunc(ctx, userID, text)
}

func (f *fakeMessages) GetByID(ctx context.Context, id int64) (*model.MessageWithAuthor, error) {
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeMessages) Delete(ctx context.Context, id, userID int64) error {
	return f.DeleteFunc(ctx, id, userID)
}

func (f *fakeMessages) ListByUser(ctx context.Context, userID int64) ([]model.MessageWithAuthor, error) {
	return f.ListByUserFunc(ctx, userID)
}

type fakeFeed struct {
	HomeFunc func(ctx context.Context, userID int64) (*model.Feed, error)
}

func (f *fakeFeed) Home(ctx context.Context, userID int64) (*model.Feed, error) {
	return f.HomeFunc(ctx, userID)
}

type fakeUploader struct {
	UploadImageFunc func(ctx context.Context, kind model.ImageKind, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
	hostPrefix      string
	deleted         []string
}

func (f *fakeUploader) IsHosted(url string) bool {
	return f.hostPrefix != "" && strings.HasPrefix(url, f.hostPrefix)
}

func (f *fakeUploader) DeleteImage(ctx context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeUploader) UploadImage(ctx context.Context, kind model.ImageKind, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	return f.UploadImageFunc(ctx, kind, file, header)
}

// testEnv wires a Responder to a miniredis-backed session manager and the
// real templates.
type testEnv struct {
	t         *testing.T
	sessions  *session.Manager
	users     *fakeUsers
	responder *Responder
}

func newTestEnv(t *testing.T, users ...*model.User) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	sessions := session.NewManager(session.NewRedisStore(client), "test-secret", time.Hour, false)

	views, err := view.New()
	require.NoError(t, err)

	fu := &fakeUsers{byID: map[int64]*model.User{}}
	for _, u := range users {
		fu.byID[u.ID] = u
	}

	return &testEnv{
		t:         t,
		sessions:  sessions,
		users:     fu,
		responder: NewResponder(views, sessions, zap.NewNop()),
	}
}

// serve routes req through pattern to h behind LoadCurrentUser.
func (e *testEnv) serve(h http.HandlerFunc, method, pattern string, req *http.Request) *httptest.ResponseRecorder {
	e.t.Helper()
	r := chi.NewRouter()
	r.Use(middleware.LoadCurrentUser(e.sessions, e.users, zap.NewNop()))
	r.Method(method, pattern, h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// loginAs adds a session cookie for userID to req.
func (e *testEnv) loginAs(req *http.Request, userID int64) *http.Request {
	e.t.Helper()
	s := &session.Session{}
	s.SetUserID(userID)
	rec := httptest.NewRecorder()
	require.NoError(e.t, e.sessions.Save(context.Background(), rec, s))
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// sessionAfter loads the session the response's cookie points at. Without a
// cookie in the response it falls back to the request's cookies.
func (e *testEnv) sessionAfter(req *http.Request, rec *httptest.ResponseRecorder) *session.Session {
	e.t.Helper()
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		cookies = req.Cookies()
	}
	for _, c := range cookies {
		next.AddCookie(c)
	}
	s, err := e.sessions.Load(next)
	require.NoError(e.t, err)
	return s
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// postMultipart builds a multipart POST of values with a small PNG attached
// as fileField.
func postMultipart(t *testing.T, target string, values url.Values, fileField string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v[0]))
	}
	part, err := mw.CreateFormFile(fileField, "me.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func get(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}
