package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	jwtlib "github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// MockUserProvider реализует интерфейс middlewarectx.UserProvider
type MockUserProvider struct {
	mock.Mock
}

func (m *MockUserProvider) GetUser(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestAuthMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	maker := NewTestMaker(t)

	validToken, err := maker.GenerateToken("uid-1", "Иван Иванов", "ivan@example.com", models.RoleUser)
	require.NoError(t, err)

	expiredMaker := jwtlib.NewJWTMaker("test-secret", -time.Minute)
	expiredToken, err := expiredMaker.GenerateToken("uid-1", "Иван Иванов", "ivan@example.com", models.RoleUser)
	require.NoError(t, err)

	foreignMaker := jwtlib.NewJWTMaker("another-secret", time.Hour)
	foreignToken, err := foreignMaker.GenerateToken("uid-1", "Иван Иванов", "ivan@example.com", models.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name           string
		cookie         *http.Cookie
		setupMock      func(*MockUserProvider)
		expectedStatus int
		expectedBody   string
		expectNext     bool
	}{
		{
			name:   "валидный токен пропускается, пользователь в контексте",
			cookie: &http.Cookie{Name: SessionCookie, Value: validToken},
			setupMock: func(m *MockUserProvider) {
				m.On("GetUser", mock.Anything, "uid-1").
					Return(&models.User{UID: "uid-1", Role: models.RoleUser}, nil)
			},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "cookie отсутствует",
			cookie:         nil,
			setupMock:      func(_ *MockUserProvider) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"user is not logged in"`,
		},
		{
			name:           "истекший токен дает отличимую ошибку",
			cookie:         &http.Cookie{Name: SessionCookie, Value: expiredToken},
			setupMock:      func(_ *MockUserProvider) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"session expired, please login again"`,
		},
		{
			name:           "токен с чужой подписью отклоняется как невалидный",
			cookie:         &http.Cookie{Name: SessionCookie, Value: foreignToken},
			setupMock:      func(_ *MockUserProvider) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"invalid token"`,
		},
		{
			name:   "валидный токен удаленного пользователя отклоняется",
			cookie: &http.Cookie{Name: SessionCookie, Value: validToken},
			setupMock: func(m *MockUserProvider) {
				m.On("GetUser", mock.Anything, "uid-1").
					Return(nil, errors.New("no rows"))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized user"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserProvider)
			tt.setupMock(users)

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				user, ok := UserFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "uid-1", user.UID)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			Auth(logger, maker, users)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			users.AssertExpectations(t)
		})
	}
}

// NewTestMaker возвращает maker с фиксированным тестовым секретом.
func NewTestMaker(t *testing.T) jwtlib.Maker {
	t.Helper()
	return jwtlib.NewJWTMaker("test-secret", time.Hour)
}

func TestRequireRoles(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		user           *models.User
		allowed        []string
		expectedStatus int
	}{
		{
			name:           "роль из набора пропускается",
			user:           &models.User{UID: "uid-1", Role: models.RoleUser},
			allowed:        []string{models.RoleUser},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "инструктор не проходит на маршрут покупателя",
			user:           &models.User{UID: "uid-2", Role: models.RoleInstructor},
			allowed:        []string{models.RoleUser},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "админ не проходит на маршрут покупателя",
			user:           &models.User{UID: "uid-3", Role: models.RoleAdmin},
			allowed:        []string{models.RoleUser},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "пользователь отсутствует в контексте",
			user:           nil,
			allowed:        []string{models.RoleUser},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/payments/order", nil)
			if tt.user != nil {
				ctx := context.WithValue(req.Context(), CurrentUser, tt.user)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			RequireRoles(logger, tt.allowed...)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
