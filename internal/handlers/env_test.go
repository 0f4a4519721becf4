package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker/internal/auth"
	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/database"
	"github.com/yukikurage/task-tracker/internal/dto"
	"github.com/yukikurage/task-tracker/internal/repository"
	"github.com/yukikurage/task-tracker/internal/services"
	"golang.org/x/crypto/bcrypt"
)

const testAdminEmail = "admin@example.com"

type testEnv struct {
	router     *gin.Engine
	auth       *services.AuthService
	tasks      *services.TaskService
	categories *services.CategoryService
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.MigrateDatabase(db))
	t.Cleanup(func() {
		database.Close(db)
	})

	store := repository.NewStore(db)
	tokens, err := auth.NewTokenManager("test-secret", "task-tracker", 30*time.Minute)
	require.NoError(t, err)

	authService := services.NewAuthService(store, auth.NewPasswordHasher(bcrypt.MinCost), tokens).
		WithAdminEmails(testAdminEmail)
	categoryService := services.NewCategoryService(store)
	taskService := services.NewTaskService(store, categoryService, nil)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, Services{
		Auth:       authService,
		Tasks:      taskService,
		Categories: categoryService,
	}, CookieOptions{Name: "access_token", MaxAge: tokens.DefaultTTL()})

	return testEnv{
		router:     r,
		auth:       authService,
		tasks:      taskService,
		categories: categoryService,
	}
}

// do sends a JSON request, authenticated when token is not empty
func (e testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			payload, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signUp registers a user over HTTP and returns a bearer token for it
func (e testEnv) signUp(t *testing.T, name, email string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "secret",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: email, Password: "secret"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	return token.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
