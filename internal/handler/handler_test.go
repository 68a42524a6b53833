package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Dan9191/blog-service/internal/config"
	"github.com/Dan9191/blog-service/internal/database"
	"github.com/Dan9191/blog-service/internal/database/dbtest"
	"github.com/Dan9191/blog-service/internal/handler"
	"github.com/Dan9191/blog-service/internal/middleware"
	"github.com/Dan9191/blog-service/internal/repository"
	"github.com/Dan9191/blog-service/internal/service"
	"github.com/Dan9191/blog-service/internal/session"
)

type testServer struct {
	t      *testing.T
	router http.Handler
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := dbtest.Open(t)
	log := dbtest.Logger()
	cfg := &config.Config{DefaultPerPage: 10, MaxPerPage: 100, FeedSize: 20}
	sessions := session.NewManager("test-secret", time.Hour, false)
	svc := service.NewService(repository.NewRepository(db), log, cfg, nil)
	h := handler.NewHandler(svc, sessions, cfg, log)
	return &testServer{t: t, router: handler.NewRouter(h, sessions, log), db: db}
}

func (s *testServer) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signup registers and logs in, returning the session cookie
func (s *testServer) signup(name, password string) *http.Cookie {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/register",
		`{"username":"`+name+`","email":"`+name+`@x.com","password":"`+password+`"}`, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/login", `{"username":"`+name+`","password":"`+password+`"}`, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	s.t.Fatal("no session cookie")
	return nil
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestAliceBobScenario(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/register", `{"username":"alice","email":"alice@x.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "User registered successfully", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice@x.com", user["email"])
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(http.MethodPost, "/login", `{"username":"alice","password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	alice := cookies[0]
	assert.True(t, alice.HttpOnly)

	w = s.do(http.MethodGet, "/profile", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "alice@x.com", profile["email"])
	assert.Equal(t, float64(0), profile["post_count"])

	w = s.do(http.MethodPost, "/posts", `{"title":"Hi","content":"World"}`, alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decodeBody(t, w)["post"].(map[string]interface{})
	assert.Equal(t, "alice", post["author"])
	id := int(post["id"].(float64))
	postPath := "/posts/" + strconv.Itoa(id)

	bob := s.signup("bob", "secret2")
	w = s.do(http.MethodPut, postPath, `{"title":"Mine","content":"now"}`, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized to update this post"}`, w.Body.String())

	w = s.do(http.MethodDelete, postPath, "", bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, postPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decodeBody(t, w)["post"].(map[string]interface{})
	assert.Equal(t, "Hi", fetched["title"])
	assert.Equal(t, "World", fetched["content"])
}

func TestSearchScenario(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "secret1")
	w := s.do(http.MethodPost, "/api/posts", `{"title":"Hi","content":"World"}`, alice)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/posts/search?q=", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/posts/search?q=Hi", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Hi", body["query"])
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "Hi", posts[0].(map[string]interface{})["title"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/profile"},
		{http.MethodPut, "/api/profile"},
		{http.MethodDelete, "/profile"},
		{http.MethodPost, "/posts"},
		{http.MethodPut, "/api/posts/1"},
		{http.MethodDelete, "/posts/1"},
	} {
		w := s.do(tc.method, tc.path, `{}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.method+" "+tc.path)
		assert.JSONEq(t, `{"error":"Authentication required"}`, w.Body.String())
	}

	w := s.do(http.MethodGet, "/profile", "", &http.Cookie{Name: session.CookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterErrors(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice", "secret1")

	w := s.do(http.MethodPost, "/register", `{"username":"alice","email":"other@x.com","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/register", `{"username":"al","email":"al@x.com","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/register", `{"username":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON body"}`, w.Body.String())

	w = s.do(http.MethodPost, "/register", "", nil)
	assert.JSONEq(t, `{"error":"Username, email, and password are required"}`, w.Body.String())

	w = s.do(http.MethodPost, "/login", `{"username":"alice","password":"wrong!"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid username or password"}`, w.Body.String())
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logout successful"}`, w.Body.String())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestProfileUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "secret1")
	s.signup("bob", "secret2")

	w := s.do(http.MethodPut, "/profile", `{"email":"bob@x.com"}`, alice)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, "/profile", `{"email":"Alice2@X.com"}`, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice2@x.com", decodeBody(t, w)["user"].(map[string]interface{})["email"])

	w = s.do(http.MethodPost, "/posts", `{"title":"t","content":"c"}`, alice)
	require.Equal(t, http.StatusCreated, w.Code)
	postID := strconv.Itoa(int(decodeBody(t, w)["post"].(map[string]interface{})["id"].(float64)))

	w = s.do(http.MethodDelete, "/api/profile", "", alice)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/posts/"+postID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/profile", "", alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListingEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "secret1")
	for i := 0; i < 3; i++ {
		w := s.do(http.MethodPost, "/posts", `{"title":"t`+strconv.Itoa(i)+`","content":"c"}`, alice)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do(http.MethodGet, "/posts?page=abc&per_page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["posts"], 2)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, true, pagination["has_next"])

	w = s.do(http.MethodGet, "/api/posts?page=7&per_page=500", "", nil)
	body = decodeBody(t, w)
	assert.Empty(t, body["posts"])
	pagination = body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(100), pagination["per_page"])
	assert.Equal(t, false, pagination["has_next"])

	w = s.do(http.MethodGet, "/api/posts?page=100000000000000000&per_page=100", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Empty(t, body["posts"])
	pagination = body["pagination"].(map[string]interface{})
	assert.Equal(t, false, pagination["has_next"])
	assert.Equal(t, true, pagination["has_prev"])

	w = s.do(http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decodeBody(t, w)["users"].([]interface{})
	require.Len(t, users, 1)
	assert.NotContains(t, users[0], "email")

	w = s.do(http.MethodGet, "/users/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decodeBody(t, w)["user"].(map[string]interface{})["post_count"])

	w = s.do(http.MethodGet, "/users/1/posts?per_page=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["posts"], 1)

	w = s.do(http.MethodGet, "/users/99/posts", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutingFallbacks(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Endpoint not found"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = s.do(http.MethodGet, "/posts/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPatch, "/api/posts", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = s.do(http.MethodGet, "/posts/12345", "", nil)
	assert.JSONEq(t, `{"error":"Post not found"}`, w.Body.String())

	for _, path := range []string{"/", "/api"} {
		w = s.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, handler.Version, decodeBody(t, w)["version"])
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice", "secret1")

	w := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]interface{}{"users": float64(1), "posts": float64(0)}, body["stats"])

	require.NoError(t, database.Close(s.db))
	w = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Contains(t, body["database"], "error: ")
}

func TestFeed(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "secret1")
	w := s.do(http.MethodPost, "/posts", `{"title":"Feed me","content":"c"}`, alice)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/feed.xml", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<title>Feed me</title>")
	assert.Contains(t, w.Body.String(), "http://example.com/api/posts/1")
}
