package handlers_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"authserver/pkg/auth"
	"authserver/pkg/credentials"
	"authserver/pkg/handlers"
	"authserver/pkg/session"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Login(account, secret, clientIP string) (*session.Session, bool, error) {
	args := m.Called(account, secret, clientIP)
	if s := args.Get(0); s != nil {
		return s.(*session.Session), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *mockService) Check(account, token string) (*session.Status, error) {
	args := m.Called(account, token)
	if st := args.Get(0); st != nil {
		return st.(*session.Status), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Touch(account, token string) error {
	return m.Called(account, token).Error(0)
}

func (m *mockService) Logout(account, token string) error {
	return m.Called(account, token).Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
}

func TestAuthHandler(t *testing.T) {
	m := new(mockService)

	m.On("Login", "a@x.com", "123", "192.0.2.1").
		Return(&session.Session{Token: "sess_aabbccddeeff0011"}, false, nil)
	m.On("Login", "b@x.com", "123", "192.0.2.1").
		Return(&session.Session{Token: "sess_1122334455667788"}, true, nil)
	m.On("Login", "a@x.com", "wrong", "192.0.2.1").
		Return(nil, false, auth.ErrAuthFailed)
	m.On("Login", "", "", "192.0.2.1").
		Return(nil, false, auth.ErrMissingFields)
	m.On("Login", "down@x.com", "123", "192.0.2.1").
		Return(nil, false, credentials.ErrUnavailable)

	handler := handlers.NewAuthHandler(m, testLogger())

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "login via JSON body",
			method:         http.MethodPost,
			target:         "/auth",
			body:           `{"email":"a@x.com","code":"123"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"sessionId":"sess_aabbccddeeff0011"`,
		},
		{
			name:           "login via query string",
			method:         http.MethodGet,
			target:         "/auth?email=a@x.com&code=123",
			expectedStatus: http.StatusOK,
			expectedBody:   `"ttlMs":7200000`,
		},
		{
			name:           "duplicate login still succeeds",
			method:         http.MethodPost,
			target:         "/auth",
			body:           `{"email":"b@x.com","code":"123"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"sessionId":"sess_1122334455667788"`,
		},
		{
			name:           "bad credentials",
			method:         http.MethodPost,
			target:         "/auth",
			body:           `{"email":"a@x.com","code":"wrong"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid email or code",
		},
		{
			name:           "missing fields",
			method:         http.MethodGet,
			target:         "/auth",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "email, code required",
		},
		{
			name:           "verifier unavailable",
			method:         http.MethodPost,
			target:         "/auth",
			body:           `{"email":"down@x.com","code":"123"}`,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "credential source unavailable",
		},
		{
			name:           "bad json",
			method:         http.MethodPost,
			target:         "/auth",
			body:           `{"email" oops "a@x.com"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "bad json",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.target, strings.NewReader(test.body))
			if test.method == http.MethodPost {
				req.Header.Set("Content-Type", "application/json")
			}

			rr := httptest.NewRecorder()
			handler.Auth(rr, req)

			assert.Equal(t, test.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), test.expectedBody)
		})
	}
}

func TestAuthHandler_BadContentType(t *testing.T) {
	m := new(mockService)
	handler := handlers.NewAuthHandler(m, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":"a@x.com","code":"123"}`))
	req.Header.Set("Content-Type", "text/plain")

	rr := httptest.NewRecorder()
	handler.Auth(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid Content-Type")
	m.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckHandler(t *testing.T) {
	m := new(mockService)

	m.On("Check", "a@x.com", "").
		Return(&session.Status{Remaining: session.TTL / 2}, nil)
	m.On("Check", "a@x.com", "sess_aabbccddeeff0011").
		Return(&session.Status{Remaining: session.TTL / 2, Presented: true, Matched: false}, nil)
	m.On("Check", "gone@x.com", "").
		Return(nil, session.ErrExpired)

	handler := handlers.NewAuthHandler(m, testLogger())

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "live session",
			target:         "/check?email=a@x.com",
			expectedStatus: http.StatusOK,
			expectedBody:   `"expiresInMs":3600000`,
		},
		{
			name:           "superseded token reported as not current",
			target:         "/check?email=a@x.com&sessionId=sess_aabbccddeeff0011",
			expectedStatus: http.StatusOK,
			expectedBody:   `"current":false`,
		},
		{
			name:           "expired",
			target:         "/check?email=gone@x.com",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"expired":true`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, test.target, nil)
			rr := httptest.NewRecorder()

			handler.Check(rr, req)

			assert.Equal(t, test.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), test.expectedBody)
		})
	}
}

func TestTouchHandler(t *testing.T) {
	m := new(mockService)

	m.On("Touch", "a@x.com", "sess_aabbccddeeff0011").Return(nil)
	m.On("Touch", "a@x.com", "sess_0000000000000000").Return(session.ErrWrongSession)
	m.On("Touch", "gone@x.com", "").Return(session.ErrExpired)

	handler := handlers.NewAuthHandler(m, testLogger())

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "refreshes",
			body:           `{"email":"a@x.com","sessionId":"sess_aabbccddeeff0011"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"ok":true`,
		},
		{
			name:           "superseded token is rejected distinctly",
			body:           `{"email":"a@x.com","sessionId":"sess_0000000000000000"}`,
			expectedStatus: http.StatusConflict,
			expectedBody:   "wrong session",
		},
		{
			name:           "expired",
			body:           `{"email":"gone@x.com"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"expired":true`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/touch", strings.NewReader(test.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.Touch(rr, req)

			assert.Equal(t, test.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), test.expectedBody)
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	m := new(mockService)

	m.On("Logout", "a@x.com", "").Return(nil).Once()
	m.On("Logout", "a@x.com", "").Return(session.ErrAlreadyLoggedOut)

	handler := handlers.NewAuthHandler(m, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/logout?email=a@x.com", nil)
	rr := httptest.NewRecorder()
	handler.Logout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ok":true`)

	// second logout is idempotent, not an error status
	rr = httptest.NewRecorder()
	handler.Logout(rr, httptest.NewRequest(http.MethodGet, "/logout?email=a@x.com", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "already logged out")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", handlers.ClientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.RemoteAddr = "198.51.100.4:51234"
	assert.Equal(t, "198.51.100.4", handlers.ClientIP(req))
}
