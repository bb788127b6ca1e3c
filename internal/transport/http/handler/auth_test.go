package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/transport/http/handler"
	"github.com/akravets/contacts-api/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	signup               func(ctx context.Context, input usecase.SignupInput) (*domain.User, error)
	login                func(ctx context.Context, email, password string) (*usecase.TokenPair, error)
	refresh              func(ctx context.Context, raw string) (*usecase.TokenPair, error)
	confirmEmail         func(ctx context.Context, raw string) (bool, error)
	requestConfirmation  func(ctx context.Context, email string) (bool, error)
	requestPasswordReset func(ctx context.Context, email string) error
	confirmPasswordReset func(ctx context.Context, raw string) (string, error)
	setNewPassword       func(ctx context.Context, email, newPassword string) error
}

func (f *fakeAuthUsecase) Signup(ctx context.Context, input usecase.SignupInput) (*domain.User, error) {
	return f.signup(ctx, input)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (*usecase.TokenPair, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) Refresh(ctx context.Context, raw string) (*usecase.TokenPair, error) {
	return f.refresh(ctx, raw)
}

func (f *fakeAuthUsecase) ConfirmEmail(ctx context.Context, raw string) (bool, error) {
	return f.confirmEmail(ctx, raw)
}

func (f *fakeAuthUsecase) RequestEmailConfirmation(ctx context.Context, email string) (bool, error) {
	return f.requestConfirmation(ctx, email)
}

func (f *fakeAuthUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	return f.requestPasswordReset(ctx, email)
}

func (f *fakeAuthUsecase) ConfirmPasswordReset(ctx context.Context, raw string) (string, error) {
	return f.confirmPasswordReset(ctx, raw)
}

func (f *fakeAuthUsecase) SetNewPassword(ctx context.Context, email, newPassword string) error {
	return f.setNewPassword(ctx, email, newPassword)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authEngine(uc *fakeAuthUsecase) *gin.Engine {
	h := handler.NewAuthHandler(uc, testLogger())

	r := gin.New()
	r.POST("/api/auth/signup", h.Signup)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/refresh_token", h.Refresh)
	r.GET("/api/auth/confirmed_email/:token", h.ConfirmEmail)
	r.POST("/api/auth/request_email", h.RequestEmail)
	r.POST("/api/auth/password_reset", h.RequestPasswordReset)
	r.POST("/api/auth/new_password", h.NewPassword)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// ---- Signup ----

func TestSignup_Success_Returns201WithUser(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, input usecase.SignupInput) (*domain.User, error) {
			return &domain.User{ID: "u1", Username: input.Username, Email: input.Email}, nil
		},
	}

	w := postJSON(authEngine(uc), "/api/auth/signup",
		`{"username":"alice","email":"alice@example.com","password":"s3cretpass"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	body := decodeBody(t, w)
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("response has no user object: %v", body)
	}
	if user["email"] != "alice@example.com" {
		t.Errorf("user.email = %v, want alice@example.com", user["email"])
	}
	if _, leaked := user["password"]; leaked {
		t.Error("response must not include a password field")
	}
}

func TestSignup_DuplicateEmail_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(context.Context, usecase.SignupInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}

	w := postJSON(authEngine(uc), "/api/auth/signup",
		`{"username":"alice","email":"alice@example.com","password":"s3cretpass"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "Account already exists" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestSignup_ShortPassword_Returns400(t *testing.T) {
	w := postJSON(authEngine(&fakeAuthUsecase{}), "/api/auth/signup",
		`{"username":"alice","email":"alice@example.com","password":"short"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- Login ----

func TestLogin_Success_Returns201WithTokenPair(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(context.Context, string, string) (*usecase.TokenPair, error) {
			return &usecase.TokenPair{AccessToken: "at", RefreshToken: "rt"}, nil
		},
	}

	w := postJSON(authEngine(uc), "/api/auth/login",
		`{"email":"alice@example.com","password":"s3cretpass"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	body := decodeBody(t, w)
	if body["access_token"] != "at" || body["refresh_token"] != "rt" {
		t.Errorf("unexpected token pair: %v", body)
	}
	if body["token_type"] != "bearer" {
		t.Errorf("token_type = %v, want bearer", body["token_type"])
	}
}

func TestLogin_FailureCauses_DistinctMessages(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		message string
	}{
		{"unknown email", domain.ErrInvalidEmail, "Invalid email"},
		{"unconfirmed", domain.ErrEmailNotConfirmed, "Email not confirmed"},
		{"wrong password", domain.ErrInvalidPassword, "Invalid password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				login: func(context.Context, string, string) (*usecase.TokenPair, error) {
					return nil, tc.err
				},
			}

			w := postJSON(authEngine(uc), "/api/auth/login",
				`{"email":"alice@example.com","password":"whatever12"}`)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			if body := decodeBody(t, w); body["error"] != tc.message {
				t.Errorf("error = %v, want %q", body["error"], tc.message)
			}
		})
	}
}

// ---- Refresh ----

func TestRefresh_MissingBearer_Returns401(t *testing.T) {
	w := httptest.NewRecorder()
	authEngine(&fakeAuthUsecase{}).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/api/auth/refresh_token", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRefresh_InvalidToken_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		refresh: func(context.Context, string) (*usecase.TokenPair, error) {
			return nil, domain.ErrTokenInvalid
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh_token", nil)
	req.Header.Set("Authorization", "Bearer stale")
	authEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRefresh_Success_ReturnsNewPair(t *testing.T) {
	uc := &fakeAuthUsecase{
		refresh: func(_ context.Context, raw string) (*usecase.TokenPair, error) {
			if raw != "current-refresh" {
				t.Errorf("refresh called with %q", raw)
			}
			return &usecase.TokenPair{AccessToken: "at2", RefreshToken: "rt2"}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh_token", nil)
	req.Header.Set("Authorization", "Bearer current-refresh")
	authEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decodeBody(t, w); body["refresh_token"] != "rt2" {
		t.Errorf("refresh_token = %v, want rt2", body["refresh_token"])
	}
}

// ---- Email confirmation ----

func TestConfirmEmail_BadToken_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		confirmEmail: func(context.Context, string) (bool, error) {
			return false, domain.ErrTokenInvalid
		},
	}

	w := httptest.NewRecorder()
	authEngine(uc).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/api/auth/confirmed_email/garbage", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestConfirmEmail_MessageDependsOnPriorState(t *testing.T) {
	cases := []struct {
		name    string
		already bool
		message string
	}{
		{"first confirmation", false, "Email confirmed"},
		{"repeat confirmation", true, "Your email is already confirmed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				confirmEmail: func(context.Context, string) (bool, error) {
					return tc.already, nil
				},
			}

			w := httptest.NewRecorder()
			authEngine(uc).ServeHTTP(w,
				httptest.NewRequest(http.MethodGet, "/api/auth/confirmed_email/tok", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if body := decodeBody(t, w); body["message"] != tc.message {
				t.Errorf("message = %v, want %q", body["message"], tc.message)
			}
		})
	}
}

// ---- Password reset ----

func TestRequestPasswordReset_AlwaysSameAnswer(t *testing.T) {
	uc := &fakeAuthUsecase{
		requestPasswordReset: func(context.Context, string) error { return nil },
	}
	r := authEngine(uc)

	for _, email := range []string{"known@example.com", "unknown@example.com"} {
		w := postJSON(r, "/api/auth/password_reset", `{"email":"`+email+`"}`)
		if w.Code != http.StatusCreated {
			t.Errorf("%s: status = %d, want 201", email, w.Code)
		}
	}
}

func TestNewPassword_InvalidResetToken_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		confirmPasswordReset: func(context.Context, string) (string, error) {
			return "", domain.ErrTokenInvalid
		},
	}

	w := postJSON(authEngine(uc), "/api/auth/new_password",
		`{"token":"stale","new_password":"brandnewpass"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestNewPassword_Success_SetsPasswordForTokenAccount(t *testing.T) {
	var gotEmail, gotPassword string
	uc := &fakeAuthUsecase{
		confirmPasswordReset: func(context.Context, string) (string, error) {
			return "alice@example.com", nil
		},
		setNewPassword: func(_ context.Context, email, newPassword string) error {
			gotEmail, gotPassword = email, newPassword
			return nil
		},
	}

	w := postJSON(authEngine(uc), "/api/auth/new_password",
		`{"token":"valid","new_password":"brandnewpass"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if gotEmail != "alice@example.com" || gotPassword != "brandnewpass" {
		t.Errorf("SetNewPassword(%q, %q), want the token account and new password", gotEmail, gotPassword)
	}
}
