package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authkeeper/internal/api/http/cookie"
	"github.com/dtroode/authkeeper/internal/mocks"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testUser() model.User {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return model.User{
		ID:           uuid.New(),
		Username:     "jdoe",
		Email:        "john@doe.io",
		PasswordHash: "$2a$10$secret",
		FirstName:    "John",
		LastName:     "Doe",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newEngine(h *Auth) *gin.Engine {
	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.GET("/getMe", h.GetMe)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func jwtCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookie.Name {
			return c
		}
	}
	return nil
}

const signupBody = `{"email":" John@Doe.io ","username":" jdoe ","password":"Passw0rd!","firstName":"John","lastName":"Doe"}`

func TestAuth_Signup(t *testing.T) {
	t.Parallel()

	user := testUser()
	wantParams := model.RegisterParams{
		Username: "jdoe", Email: "john@doe.io", Password: "Passw0rd!", FirstName: "John", LastName: "Doe",
	}

	tests := []struct {
		name       string
		body       string
		setup      func(svc *mocks.AuthService)
		wantCode   int
		wantMsg    string
		wantCookie bool
	}{
		{
			name: "success",
			body: signupBody,
			setup: func(svc *mocks.AuthService) {
				svc.On("Register", mock.Anything, wantParams).Return(model.Session{User: user, Token: "tok"}, nil)
			},
			wantCode:   http.StatusCreated,
			wantMsg:    "User registered successfully!",
			wantCookie: true,
		},
		{
			name: "username taken",
			body: signupBody,
			setup: func(svc *mocks.AuthService) {
				svc.On("Register", mock.Anything, wantParams).Return(model.Session{}, model.ErrDuplicateUsername)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Username is already taken.",
		},
		{
			name: "email taken",
			body: signupBody,
			setup: func(svc *mocks.AuthService) {
				svc.On("Register", mock.Anything, wantParams).Return(model.Session{}, model.ErrDuplicateEmail)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Email is already taken.",
		},
		{
			name: "store failure",
			body: signupBody,
			setup: func(svc *mocks.AuthService) {
				svc.On("Register", mock.Anything, wantParams).Return(model.Session{}, errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Server error during signup.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewAuthService(t)
			tt.setup(svc)
			h := NewAuth(svc, cookie.NewSession(15*24*time.Hour, true), mocks.NewContextManager(t), testutil.MakeNoopLogger())

			rec := do(newEngine(h), http.MethodPost, "/signup", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantMsg, body["message"])

			c := jwtCookie(rec)
			if !tt.wantCookie {
				assert.Nil(t, c)
				return
			}
			require.NotNil(t, c)
			assert.Equal(t, "tok", c.Value)

			u, ok := body["user"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, user.ID.String(), u["id"])
			assert.Equal(t, "jdoe", u["username"])
			assert.Equal(t, "john@doe.io", u["email"])
			assert.Equal(t, "John", u["firstName"])
			assert.Equal(t, "Doe", u["lastName"])
			assert.NotContains(t, rec.Body.String(), "secret")
		})
	}
}

func TestAuth_Signup_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "malformed json", body: `{"email":`, wantField: "body"},
		{name: "weak password", body: `{"email":"john@doe.io","username":"jdoe","password":"weak","firstName":"John","lastName":"Doe"}`, wantField: "password"},
		{name: "empty object", body: `{}`, wantField: "email"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewAuthService(t)
			h := NewAuth(svc, cookie.NewSession(time.Hour, true), mocks.NewContextManager(t), testutil.MakeNoopLogger())

			rec := do(newEngine(h), http.MethodPost, "/signup", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			errs, ok := body["errors"].([]any)
			require.True(t, ok)
			require.NotEmpty(t, errs)
			first := errs[0].(map[string]any)
			assert.Equal(t, tt.wantField, first["field"])
			assert.NotEmpty(t, first["message"])
			assert.Nil(t, jwtCookie(rec))
		})
	}
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	user := testUser()

	tests := []struct {
		name       string
		body       string
		setup      func(svc *mocks.AuthService)
		wantCode   int
		wantMsg    string
		wantCookie bool
	}{
		{
			name: "success",
			body: `{"email":"JOHN@doe.io","password":"Passw0rd!"}`,
			setup: func(svc *mocks.AuthService) {
				svc.On("Login", mock.Anything, "john@doe.io", "Passw0rd!").Return(model.Session{User: user, Token: "tok"}, nil)
			},
			wantCode:   http.StatusOK,
			wantMsg:    "Logged in successfully!",
			wantCookie: true,
		},
		{
			name: "invalid credentials",
			body: `{"email":"john@doe.io","password":"nope"}`,
			setup: func(svc *mocks.AuthService) {
				svc.On("Login", mock.Anything, "john@doe.io", "nope").Return(model.Session{}, model.ErrInvalidCredentials)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Invalid email or password.",
		},
		{
			name: "store failure",
			body: `{"email":"john@doe.io","password":"nope"}`,
			setup: func(svc *mocks.AuthService) {
				svc.On("Login", mock.Anything, "john@doe.io", "nope").Return(model.Session{}, errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Server error during login.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewAuthService(t)
			tt.setup(svc)
			h := NewAuth(svc, cookie.NewSession(time.Hour, true), mocks.NewContextManager(t), testutil.MakeNoopLogger())

			rec := do(newEngine(h), http.MethodPost, "/login", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantMsg, body["message"])
			if tt.wantCookie {
				require.NotNil(t, jwtCookie(rec))
				assert.Equal(t, "tok", jwtCookie(rec).Value)
				assert.NotContains(t, rec.Body.String(), "secret")
			} else {
				assert.Nil(t, jwtCookie(rec))
			}
		})
	}
}

func TestAuth_Login_Invalid(t *testing.T) {
	svc := mocks.NewAuthService(t)
	h := NewAuth(svc, cookie.NewSession(time.Hour, true), mocks.NewContextManager(t), testutil.MakeNoopLogger())

	rec := do(newEngine(h), http.MethodPost, "/login", `{"email":"john"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	errs := body["errors"].([]any)
	require.Len(t, errs, 2)
	assert.Equal(t, "Please enter a valid email address.", errs[0].(map[string]any)["message"])
	assert.Equal(t, "Password is required.", errs[1].(map[string]any)["message"])
}

func TestAuth_Logout(t *testing.T) {
	h := NewAuth(mocks.NewAuthService(t), cookie.NewSession(time.Hour, true), mocks.NewContextManager(t), testutil.MakeNoopLogger())

	rec := do(newEngine(h), http.MethodPost, "/logout", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully!", decode(t, rec)["message"])
	c := jwtCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}

func TestAuth_GetMe(t *testing.T) {
	user := testUser()
	user.PasswordHash = ""

	cm := mocks.NewContextManager(t)
	cm.On("GetUserFromContext", mock.Anything).Return(user, true)
	h := NewAuth(mocks.NewAuthService(t), cookie.NewSession(time.Hour, true), cm, testutil.MakeNoopLogger())

	rec := do(newEngine(h), http.MethodGet, "/getMe", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	u := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, user.ID.String(), u["id"])
	assert.Equal(t, "jdoe", u["username"])
}

func TestAuth_GetMe_NoUser(t *testing.T) {
	cm := mocks.NewContextManager(t)
	cm.On("GetUserFromContext", mock.Anything).Return(model.User{}, false)
	h := NewAuth(mocks.NewAuthService(t), cookie.NewSession(time.Hour, true), cm, testutil.MakeNoopLogger())

	rec := do(newEngine(h), http.MethodGet, "/getMe", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decode(t, rec)["error"])
}

