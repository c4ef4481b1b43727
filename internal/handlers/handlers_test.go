package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/blog/backend/internal/middleware"
	"github.com/anonto42/blog/backend/internal/models"
	"github.com/anonto42/blog/backend/internal/repositories"
	"github.com/anonto42/blog/backend/internal/services"
	"github.com/anonto42/blog/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "handler-test-secret"

type testServer struct {
	e        *echo.Echo
	comments *repositories.MemoryCommentRepository
}

func newTestServer(t *testing.T, opts services.Options) *testServer {
	t.Helper()

	e := echo.New()
	e.Validator = validators.NewValidator()

	logger := zap.NewNop().Sugar()
	posts := repositories.NewMemoryPostRepository()
	comments := repositories.NewMemoryCommentRepository()
	users := repositories.NewMemoryUserRepository()
	svc := services.NewPostService(posts, comments, logger, opts)
	auth := middleware.JWTAuthMiddleware(testSecret)

	api := e.Group("/api")
	NewAuthHandler(users, nil, testSecret, logger).RegisterAuthRoutes(api.Group("/auth"), auth)
	g := api.Group("/posts")
	NewPostHandler(svc, logger).RegisterPostRoutes(g, auth)
	NewCommentHandler(comments, svc, logger).RegisterCommentRoutes(g, auth)

	return &testServer{e: e, comments: comments}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, userID uint) string {
	t.Helper()
	token, err := middleware.IssueToken(userID, "user@example.com", testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func postBody(title string) echo.Map {
	return echo.Map{
		"title":       title,
		"description": "about " + title,
		"author_name": "alice",
		"author_id":   "1",
		"categories":  []string{"go"},
	}
}

func (s *testServer) createPost(t *testing.T, token, title string) models.Post {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/posts/create", postBody(title), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.Post](t, rec)
}

func TestCreateAndGetPost(t *testing.T) {
	s := newTestServer(t, services.Options{})
	token := tokenFor(t, 1)

	post := s.createPost(t, token, "First")
	assert.False(t, post.ID.IsZero())
	assert.Equal(t, "First", post.Title)
	assert.Equal(t, "alice", post.AuthorName)

	rec := s.do(t, http.MethodGet, "/api/posts/"+post.ID.Hex(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Post](t, rec)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, post.Description, got.Description)
}

func TestCreatePostErrors(t *testing.T) {
	s := newTestServer(t, services.Options{})
	token := tokenFor(t, 1)

	rec := s.do(t, http.MethodPost, "/api/posts/create", postBody("NoAuth"), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/posts/create", echo.Map{"title": "only a title"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.createPost(t, token, "Taken")
	rec = s.do(t, http.MethodPost, "/api/posts/create", postBody("Taken"), token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetPostNotFound(t *testing.T) {
	s := newTestServer(t, services.Options{})

	for _, id := range []string{primitive.NewObjectID().Hex(), "not-an-object-id"} {
		rec := s.do(t, http.MethodGet, "/api/posts/"+id, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Post not found", decode[map[string]string](t, rec)["message"])
	}
}

func TestListPosts(t *testing.T) {
	s := newTestServer(t, services.Options{})
	token := tokenFor(t, 1)
	for _, title := range []string{"Foobar", "foo baz", "Quux"} {
		s.createPost(t, token, title)
	}

	rec := s.do(t, http.MethodGet, "/api/posts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Post](t, rec), 3)

	rec = s.do(t, http.MethodGet, "/api/posts/?search=FOO", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]models.Post](t, rec)
	require.Len(t, found, 2)
	assert.Equal(t, "Foobar", found[0].Title)
	assert.Equal(t, "foo baz", found[1].Title)
}

func TestListUserPosts(t *testing.T) {
	s := newTestServer(t, services.Options{})
	token := tokenFor(t, 1)
	s.createPost(t, token, "Mine")

	body := postBody("Theirs")
	body["author_id"] = "2"
	rec := s.do(t, http.MethodPost, "/api/posts/create", body, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/posts/user/2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decode[[]models.Post](t, rec)
	require.Len(t, posts, 1)
	assert.Equal(t, "Theirs", posts[0].Title)

	rec = s.do(t, http.MethodGet, "/api/posts/user/nobody", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestUpdatePost(t *testing.T) {
	s := newTestServer(t, services.Options{})
	token := tokenFor(t, 1)
	post := s.createPost(t, token, "Draft")

	rec := s.do(t, http.MethodPut, "/api/posts/"+post.ID.Hex(), echo.Map{"title": "Published"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Post](t, rec)
	assert.Equal(t, "Published", updated.Title)
	assert.Equal(t, post.Description, updated.Description)

	rec = s.do(t, http.MethodPut, "/api/posts/"+primitive.NewObjectID().Hex(), echo.Map{"title": "x"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/posts/"+post.ID.Hex(), echo.Map{"title": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToggleLike(t *testing.T) {
	s := newTestServer(t, services.Options{})
	post := s.createPost(t, tokenFor(t, 1), "Likeable")
	path := "/api/posts/" + post.ID.Hex() + "/like"

	rec := s.do(t, http.MethodPut, path, nil, tokenFor(t, 7))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"7"}, decode[models.Post](t, rec).Likes)

	rec = s.do(t, http.MethodPut, path, nil, tokenFor(t, 7))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[models.Post](t, rec).Likes)

	rec = s.do(t, http.MethodPut, "/api/posts/"+primitive.NewObjectID().Hex()+"/like", nil, tokenFor(t, 7))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, path, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeletePostCascadesComments(t *testing.T) {
	s := newTestServer(t, services.Options{})
	token := tokenFor(t, 1)
	doomed := s.createPost(t, token, "Doomed")
	kept := s.createPost(t, token, "Kept")

	for _, id := range []string{doomed.ID.Hex(), kept.ID.Hex()} {
		rec := s.do(t, http.MethodPost, "/api/posts/"+id+"/comments", echo.Map{"content": "nice"}, tokenFor(t, 2))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodDelete, "/api/posts/"+doomed.ID.Hex(), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, postDeletedMessage, decode[string](t, rec))

	rec = s.do(t, http.MethodGet, "/api/posts/"+doomed.ID.Hex(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	left, err := s.comments.GetCommentsByPostID(t.Context(), doomed.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, left)

	rec = s.do(t, http.MethodGet, "/api/posts/"+kept.ID.Hex()+"/comments", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Comment](t, rec), 1)

	// a missing post deletes without complaint
	rec = s.do(t, http.MethodDelete, "/api/posts/"+doomed.ID.Hex(), nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/posts/bad-id", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOwnershipEnforced(t *testing.T) {
	s := newTestServer(t, services.Options{EnforceOwnership: true})
	post := s.createPost(t, tokenFor(t, 1), "Owned")

	rec := s.do(t, http.MethodPut, "/api/posts/"+post.ID.Hex(), echo.Map{"title": "Hijacked"}, tokenFor(t, 2))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/posts/"+post.ID.Hex(), nil, tokenFor(t, 2))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/posts/"+post.ID.Hex(), nil, tokenFor(t, 1))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCommentOnMissingPost(t *testing.T) {
	s := newTestServer(t, services.Options{})

	rec := s.do(t, http.MethodPost, "/api/posts/"+primitive.NewObjectID().Hex()+"/comments", echo.Map{"content": "hello"}, tokenFor(t, 1))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	post := s.createPost(t, tokenFor(t, 1), "Quiet")
	rec = s.do(t, http.MethodPost, "/api/posts/"+post.ID.Hex()+"/comments", echo.Map{"content": ""}, tokenFor(t, 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupSigninAndMe(t *testing.T) {
	s := newTestServer(t, services.Options{})
	creds := echo.Map{"name": "Alice", "email": "alice@example.com", "password": "correct horse"}

	rec := s.do(t, http.MethodPost, "/api/auth/signup", creds, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/signup", creds, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/signin", echo.Map{"email": "alice@example.com", "password": "wrong password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/signin", echo.Map{"email": "alice@example.com", "password": "correct horse"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Token string             `json:"token"`
		User  models.UserCompact `json:"user"`
	}](t, rec)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "Alice", resp.User.Name)

	rec = s.do(t, http.MethodGet, "/api/auth/me", nil, resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", decode[models.UserCompact](t, rec).Email)

	rec = s.do(t, http.MethodGet, "/api/auth/me", nil, tokenFor(t, 99))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
