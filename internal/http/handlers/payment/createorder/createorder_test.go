package createorder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/paymentprovider"
	"github.com/magabrotheeeer/course-platform/internal/services/billing"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateOrder(ctx context.Context, user *models.User, courseUID string) (*billing.OrderResult, error) {
	args := m.Called(ctx, user, courseUID)
	result, _ := args.Get(0).(*billing.OrderResult)
	return result, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreateOrderHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	user := &models.User{
		UID:   "uid-1",
		Email: "user1@example.com",
		Role:  models.RoleUser,
	}
	courseUID := "b7a0c6d2-9c2f-4f8e-a7d9-3f1e5b6c8d90"

	tests := []struct {
		name           string
		withUser       bool
		requestBody    interface{}
		mockResult     *billing.OrderResult
		mockErr        error
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
	}{
		{
			name:        "успешное создание заказа",
			withUser:    true,
			requestBody: Request{CourseID: courseUID},
			mockResult: &billing.OrderResult{
				Order: &paymentprovider.Order{
					ID:       "order_1",
					Amount:   90000,
					Currency: "INR",
					Status:   "created",
				},
			},
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"orderId":  "order_1",
				"amount":   float64(90000),
				"currency": "INR",
				"status":   "created",
			},
			wantStatus: "OK",
		},
		{
			name:           "курс уже куплен",
			withUser:       true,
			requestBody:    Request{CourseID: courseUID},
			mockResult:     &billing.OrderResult{AlreadyActive: true},
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"message": "course already purchased",
			},
			wantStatus: "OK",
		},
		{
			name:           "бесплатный курс активируется сразу",
			withUser:       true,
			requestBody:    Request{CourseID: courseUID},
			mockResult:     &billing.OrderResult{FreeAccess: true},
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"message": "course activated",
			},
			wantStatus: "OK",
		},
		{
			name:           "нет пользователя в контексте",
			withUser:       false,
			requestBody:    Request{CourseID: courseUID},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized user",
			wantStatus:     "Error",
		},
		{
			name:           "некорректный json",
			withUser:       true,
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "ошибка валидации - не uuid",
			withUser:       true,
			requestBody:    Request{CourseID: "not-a-uuid"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field CourseID can contain only uuid",
			wantStatus:     "Error",
		},
		{
			name:           "курс не найден",
			withUser:       true,
			requestBody:    Request{CourseID: courseUID},
			mockErr:        billing.ErrCourseNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "course not found",
			wantStatus:     "Error",
		},
		{
			name:           "отказ провайдера",
			withUser:       true,
			requestBody:    Request{CourseID: courseUID},
			mockErr:        errors.New("unexpected status: 502 Bad Gateway"),
			wantStatusCode: http.StatusBadRequest,
			wantError:      "failed to create order",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockResult != nil || tt.mockErr != nil {
				serviceMock.On("CreateOrder", mock.Anything, user, courseUID).
					Return(tt.mockResult, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/payments/order", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.CurrentUser, user)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				assert.Nil(t, got["error"])
			}

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			} else {
				assert.Nil(t, got["data"])
			}

			if tt.mockResult != nil || tt.mockErr != nil {
				serviceMock.AssertExpectations(t)
			}
		})
	}
}
