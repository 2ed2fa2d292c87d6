package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/middleware"
	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

type stubAuthenticator struct {
	principal *services.Principal
}

func (s stubAuthenticator) Authenticate(context.Context, string) (*services.Principal, error) {
	if s.principal == nil {
		return nil, services.ErrUnauthorized
	}
	return s.principal, nil
}

// newRouter returns an engine whose routes run behind Auth for the given caller.
func newRouter(caller *services.Principal) (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	group := r.Group("/", middleware.Auth(stubAuthenticator{principal: caller}, "session"))
	return r, group
}

func userCaller() *services.Principal {
	return &services.Principal{UserID: uuid.New(), Role: models.RoleUser, SessionID: "sid"}
}

func adminCaller() *services.Principal {
	return &services.Principal{UserID: uuid.New(), Role: models.RoleAdmin, SessionID: "sid"}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("load: %w", services.ErrNotFound), 404, "Booking not found"},
		{"duplicate", services.ErrDuplicate, 409, "Booking already exists"},
		{"forbidden", services.ErrForbidden, 403, "You do not have permission to perform this action"},
		{"declined", services.ErrPaymentDeclined, 400, msgPaymentFailed},
		{"cancel window", services.ErrCancelWindow, 400, msgCancelWindow},
		{"invalid card", services.ErrInvalidCard, 400, "Invalid card details"},
		{"refund failure", fmt.Errorf("refund: %w", services.ErrRefundFailed), 500, msgRefundFailed},
		{"validation", &services.ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}, 400, "rating must be between 1 and 5"},
		{"unexpected", errors.New("connection refused"), 500, msgInternalFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err, "Booking")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decode(t, w)["error"])
		})
	}
}

func TestRespondError_PostPaymentEchoesReference(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, &services.PostPaymentError{PaymentReference: "PAY-1-abc", Refunded: true, Err: errors.New("tx aborted")}, "Tour")

	assert.Equal(t, 500, w.Code)
	body := decode(t, w)
	assert.Equal(t, msgBookingFailed, body["error"])
	assert.Equal(t, "PAY-1-abc", body["paymentReference"])
}

type mockAuthService struct {
	registerFn func(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	loginFn    func(ctx context.Context, email, password string) (*services.Session, error)
	logoutFn   func(ctx context.Context, sid string) error
}

func (m *mockAuthService) Register(ctx context.Context, in services.RegisterInput) (*services.Session, error) {
	return m.registerFn(ctx, in)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*services.Session, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAuthService) Logout(ctx context.Context, sid string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sid)
	}
	return nil
}

func (m *mockAuthService) CurrentUser(context.Context, uuid.UUID) (*models.User, error) {
	return &models.User{Email: "a@example.com"}, nil
}

func (m *mockAuthService) RequestPasswordReset(context.Context, string) error { return nil }

func (m *mockAuthService) ResetPassword(context.Context, services.ResetPasswordInput) error {
	return services.ErrInvalidOTP
}

func TestRegister(t *testing.T) {
	auth := &mockAuthService{registerFn: func(_ context.Context, in services.RegisterInput) (*services.Session, error) {
		if in.Email == "taken@example.com" {
			return nil, services.ErrDuplicate
		}
		return &services.Session{Token: "jwt", User: &models.User{Email: in.Email}}, nil
	}}
	r := gin.New()
	r.POST("/register", Register(auth, SessionCookie{Name: "tourhub_session", MaxAge: 60}))

	body := map[string]string{"email": "new@example.com", "password": "long-enough", "firstName": "Ada", "lastName": "Lovelace"}
	w := doJSON(t, r, http.MethodPost, "/register", body)
	assert.Equal(t, 201, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "tourhub_session=jwt")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")

	body["email"] = "taken@example.com"
	w = doJSON(t, r, http.MethodPost, "/register", body)
	assert.Equal(t, 409, w.Code)

	body["password"] = "short"
	w = doJSON(t, r, http.MethodPost, "/register", body)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "password", decode(t, w)["field"])

	body["password"] = "long-enough"
	body["firstName"] = "   "
	w = doJSON(t, r, http.MethodPost, "/register", body)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "firstName is required", decode(t, w)["error"])
}

func TestLoginAndLogout(t *testing.T) {
	var revoked string
	auth := &mockAuthService{
		loginFn: func(_ context.Context, email, password string) (*services.Session, error) {
			if password != "correct-horse" {
				return nil, services.ErrInvalidCredentials
			}
			return &services.Session{Token: "jwt", ExpiresAt: time.Now().Add(time.Hour), User: &models.User{Email: email}}, nil
		},
		logoutFn: func(_ context.Context, sid string) error {
			revoked = sid
			return nil
		},
	}
	cookie := SessionCookie{Name: "tourhub_session", MaxAge: 60}

	r, protected := newRouter(userCaller())
	r.POST("/login", Login(auth, cookie))
	protected.POST("/logout", Logout(auth, cookie))

	w := doJSON(t, r, http.MethodPost, "/login", map[string]string{"email": "a@example.com", "password": "nope"})
	assert.Equal(t, 401, w.Code)

	w = doJSON(t, r, http.MethodPost, "/login", map[string]string{"email": "a@example.com", "password": "correct-horse"})
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "jwt", decode(t, w)["token"])

	w = doJSON(t, r, http.MethodPost, "/logout", nil)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "sid", revoked)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestResetPassword_InvalidCode(t *testing.T) {
	r := gin.New()
	r.POST("/reset", ResetPassword(&mockAuthService{}))

	w := doJSON(t, r, http.MethodPost, "/reset", map[string]string{"email": "a@example.com", "otp": "123456", "newPassword": "brand-new-pass"})
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "Invalid or expired code", decode(t, w)["error"])
}

type mockCheckoutService struct {
	checkoutFn func(ctx context.Context, userID uuid.UUID, req services.CheckoutRequest) (*services.CheckoutResult, error)
}

func (m *mockCheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req services.CheckoutRequest) (*services.CheckoutResult, error) {
	return m.checkoutFn(ctx, userID, req)
}

func (m *mockCheckoutService) CreatePaymentIntent(_ context.Context, _ uuid.UUID, req services.PaymentIntentRequest) (*services.PaymentIntentResult, error) {
	if req.Amount < services.MinimumIntentAmount {
		return nil, &services.ValidationError{Field: "amount", Message: "amount must be at least 50"}
	}
	return &services.PaymentIntentResult{PaymentReference: "PAY-1-x", Amount: req.Amount, Currency: "usd", Status: "validated"}, nil
}

func TestCheckoutHandler(t *testing.T) {
	caller := userCaller()
	svc := &mockCheckoutService{checkoutFn: func(_ context.Context, userID uuid.UUID, req services.CheckoutRequest) (*services.CheckoutResult, error) {
		assert.Equal(t, caller.UserID, userID)
		switch req.CardDetails.Number {
		case "4000000000000002":
			return nil, services.ErrPaymentDeclined
		case "4111111111111111":
			return &services.CheckoutResult{
				Bookings:         []*models.Booking{{TourID: req.CartItems[0].TourID}},
				PaymentReference: "PAY-1700000000000-abcdefghi",
				Subtotal:         200, Total: 200,
			}, nil
		}
		return nil, &services.PostPaymentError{PaymentReference: "PAY-2-zzz", Err: errors.New("insert failed")}
	}}

	r, protected := newRouter(caller)
	protected.POST("/checkout", Checkout(svc))

	req := func(number string) map[string]interface{} {
		return map[string]interface{}{
			"cartItems":     []map[string]interface{}{{"tourId": uuid.New(), "numberOfPeople": 2, "date": time.Now().AddDate(0, 1, 0)}},
			"paymentMethod": "card",
			"cardDetails":   map[string]string{"number": number, "expiry": "12/30", "cvv": "123"},
		}
	}

	w := doJSON(t, r, http.MethodPost, "/checkout", req("4111111111111111"))
	require.Equal(t, 200, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "PAY-1700000000000-abcdefghi", body["paymentReference"])
	assert.Len(t, body["bookings"], 1)

	w = doJSON(t, r, http.MethodPost, "/checkout", req("4000000000000002"))
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, msgPaymentFailed, decode(t, w)["error"])

	w = doJSON(t, r, http.MethodPost, "/checkout", req("5555555555554444"))
	assert.Equal(t, 500, w.Code)
	assert.Equal(t, "PAY-2-zzz", decode(t, w)["paymentReference"])
}

func TestCheckoutHandler_AcceptsCatalogDate(t *testing.T) {
	var got services.CheckoutRequest
	called := false
	svc := &mockCheckoutService{checkoutFn: func(_ context.Context, _ uuid.UUID, req services.CheckoutRequest) (*services.CheckoutResult, error) {
		called = true
		got = req
		return &services.CheckoutResult{PaymentReference: "PAY-1-abc", Subtotal: 100, Total: 100}, nil
	}}
	r, protected := newRouter(userCaller())
	protected.POST("/checkout", Checkout(svc))

	w := doJSON(t, r, http.MethodPost, "/checkout", map[string]interface{}{
		"cartItems":     []map[string]interface{}{{"tourId": uuid.New(), "numberOfPeople": 2, "date": "2030-03-15"}},
		"paymentMethod": "card",
		"cardDetails":   map[string]string{"number": "4111111111111111", "expiry": "12/30", "cvv": "123"},
	})
	require.Equal(t, 200, w.Code, w.Body.String())
	require.True(t, called)
	require.Len(t, got.CartItems, 1)
	assert.True(t, time.Date(2030, 3, 15, 0, 0, 0, 0, time.UTC).Equal(got.CartItems[0].Date.Time))
}

func TestCheckoutRequiresSession(t *testing.T) {
	r, protected := newRouter(nil)
	protected.POST("/checkout", Checkout(&mockCheckoutService{}))

	w := doJSON(t, r, http.MethodPost, "/checkout", map[string]interface{}{})
	assert.Equal(t, 401, w.Code)
}

func TestCreatePaymentIntentHandler(t *testing.T) {
	r, protected := newRouter(userCaller())
	protected.POST("/intent", CreatePaymentIntent(&mockCheckoutService{}))

	w := doJSON(t, r, http.MethodPost, "/intent", map[string]interface{}{"amount": 10})
	assert.Equal(t, 400, w.Code)

	w = doJSON(t, r, http.MethodPost, "/intent", map[string]interface{}{"amount": 120})
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "validated", decode(t, w)["status"])
}
