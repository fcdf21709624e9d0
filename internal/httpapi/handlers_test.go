package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tukangin-platform/internal/audit"
	"tukangin-platform/internal/auth"
	"tukangin-platform/internal/config"
	"tukangin-platform/internal/mailer"
	"tukangin-platform/internal/otp"
	"tukangin-platform/internal/session"
	"tukangin-platform/internal/user"

	"github.com/gin-gonic/gin"
)

type fixture struct {
	router *gin.Engine
	users  *user.Service
	mail   *mailer.MemoryMailer
	audit  *audit.MemoryRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager, err := auth.NewManager(config.AuthConfig{
		JWTSecret:  "secret",
		SessionTTL: time.Hour,
		PartialTTL: 10 * time.Minute,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	users := user.NewService(user.NewMemoryRepo())
	mail := mailer.NewMemory()
	auditRepo := audit.NewMemoryRepo()

	h := Handlers{
		Auth:  manager,
		Users: users,
		OTP:   otp.NewService(otp.NewMemoryStore()),
		Mail:  mail,
		Audit: audit.NewService(auditRepo),
	}

	r := gin.New()
	ag := r.Group("/auth")
	{
		ag.POST("/login", h.Login)
		ag.POST("/register", h.Register)
		ag.POST("/verify-otp", h.VerifyOTP)
		ag.POST("/verify-email", h.VerifyEmail)
		ag.POST("/resend-verification", h.ResendVerification)
		ag.POST("/forgot-password", h.ForgotPassword)
		ag.POST("/verify-reset-otp", h.VerifyResetOTP)
		ag.POST("/reset-password", h.ResetPassword)

		protected := ag.Group("")
		protected.Use(auth.RequireSession(manager))
		protected.POST("/toggle-two-factor", h.ToggleTwoFactor)
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.Me)
	}

	return &fixture{router: r, users: users, mail: mail, audit: auditRepo}
}

func (f *fixture) post(t *testing.T, path string, body any, bearer string) (*httptest.ResponseRecorder, session.Envelope) {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env session.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

// seed creates a verified account directly through the service layer.
func (f *fixture) seed(t *testing.T, email, password, role string) user.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), user.RegisterInput{
		Email: email, Password: password, FullName: "Test User", Role: role,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := f.users.MarkEmailVerified(context.Background(), u.ID); err != nil {
		t.Fatalf("seed verify: %v", err)
	}
	u.EmailVerified = true
	return u
}

func (f *fixture) lastMailedCode(t *testing.T) string {
	t.Helper()
	sent := f.mail.Sent()
	if len(sent) == 0 {
		t.Fatalf("no mail sent")
	}
	return sent[len(sent)-1].Code
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "budi@example.com", "rahasia-123", "CUSTOMER")

	w, env := f.post(t, "/auth/login", map[string]string{"email": "budi@example.com", "password": "rahasia-123"}, "")
	if w.Code != 200 || !env.Success {
		t.Fatalf("login failed: %d %+v", w.Code, env)
	}
	if env.Token == "" || env.Data == nil || env.Data.Role != "CUSTOMER" {
		t.Fatalf("expected session payload, got %+v", env)
	}
	if env.RedirectTo != "/dashboard" {
		t.Fatalf("unexpected redirect %q", env.RedirectTo)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "budi@example.com", "rahasia-123", "CUSTOMER")

	w, env := f.post(t, "/auth/login", map[string]string{"email": "budi@example.com", "password": "salah"}, "")
	if w.Code != 401 || env.Success {
		t.Fatalf("expected 401 failure, got %d %+v", w.Code, env)
	}

	// Unknown email must look identical.
	w2, env2 := f.post(t, "/auth/login", map[string]string{"email": "nobody@example.com", "password": "salah"}, "")
	if w2.Code != w.Code || env2.Message != env.Message {
		t.Fatalf("unknown email must be indistinguishable: %d %q vs %d %q", w.Code, env.Message, w2.Code, env2.Message)
	}
}

type denyThrottle struct{}

func (denyThrottle) Allow(context.Context, string, string) (bool, error) { return false, nil }
func (denyThrottle) Reset(context.Context, string, string) error        { return nil }

func TestLogin_Throttled(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "budi@example.com", "rahasia-123", "CUSTOMER")

	gin.SetMode(gin.TestMode)
	manager, _ := auth.NewManager(config.AuthConfig{JWTSecret: "secret", SessionTTL: time.Hour, PartialTTL: time.Minute})
	h := Handlers{Auth: manager, Users: f.users, OTP: otp.NewService(otp.NewMemoryStore()), Mail: f.mail, Throttle: denyThrottle{}}

	r := gin.New()
	r.POST("/auth/login", h.Login)
	buf, _ := json.Marshal(map[string]string{"email": "budi@example.com", "password": "rahasia-123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(buf))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestLogin_TwoFactorFlow(t *testing.T) {
	f := newFixture(t)
	u := f.seed(t, "budi@example.com", "rahasia-123", "PROVIDER")
	if _, err := f.users.ToggleTwoFactor(context.Background(), u.ID); err != nil {
		t.Fatalf("enable 2fa: %v", err)
	}

	_, env := f.post(t, "/auth/login", map[string]string{"email": "budi@example.com", "password": "rahasia-123"}, "")
	if !env.Success || !env.RequireOTP || env.PartialToken == "" || env.Token != "" {
		t.Fatalf("expected OTP challenge, got %+v", env)
	}

	// Wrong code fails and burns the stored one.
	w, bad := f.post(t, "/auth/verify-otp", map[string]string{"email": "budi@example.com", "otp": "000000"}, env.PartialToken)
	if w.Code != 401 || bad.Success {
		t.Fatalf("wrong code must fail: %d %+v", w.Code, bad)
	}

	// Log in again for a fresh code.
	_, env = f.post(t, "/auth/login", map[string]string{"email": "budi@example.com", "password": "rahasia-123"}, "")
	code := f.lastMailedCode(t)

	w, ok := f.post(t, "/auth/verify-otp", map[string]string{"email": "budi@example.com", "otp": code}, env.PartialToken)
	if w.Code != 200 || !ok.Success || ok.Token == "" {
		t.Fatalf("verify-otp failed: %d %+v", w.Code, ok)
	}
	if ok.RedirectTo != "/provider/dashboard" {
		t.Fatalf("unexpected redirect %q", ok.RedirectTo)
	}
}

func TestRegister_ThenVerifyEmail(t *testing.T) {
	f := newFixture(t)

	w, env := f.post(t, "/auth/register", map[string]string{
		"email": "tukang@example.com", "password": "rahasia-123",
		"fullName": "Joko", "role": "PROVIDER", "businessName": "Jaya Teknik",
	}, "")
	if w.Code != 201 || !env.Success || !env.NeedVerification {
		t.Fatalf("register: %d %+v", w.Code, env)
	}

	code := f.lastMailedCode(t)
	w, env = f.post(t, "/auth/verify-email", map[string]string{"email": "tukang@example.com", "otp": code}, "")
	if w.Code != 200 || !env.Success || env.Token == "" {
		t.Fatalf("verify-email: %d %+v", w.Code, env)
	}
	if env.Data == nil || !env.Data.EmailVerified {
		t.Fatalf("expected verified user payload, got %+v", env.Data)
	}
}

func TestRegister_ProviderNeedsBusinessName(t *testing.T) {
	f := newFixture(t)

	w, _ := f.post(t, "/auth/register", map[string]string{
		"email": "tukang@example.com", "password": "rahasia-123",
		"fullName": "Joko", "role": "PROVIDER",
	}, "")
	if w.Code != 400 {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	f := newFixture(t)

	w, _ := f.post(t, "/auth/register", map[string]string{
		"email": "admin@example.com", "password": "rahasia-123",
		"fullName": "Admin", "role": "ADMIN",
	}, "")
	if w.Code != 400 {
		t.Fatalf("admin self-registration must be rejected, got %d", w.Code)
	}
}

func TestForgotPassword_BlindAndResettable(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "budi@example.com", "rahasia-123", "CUSTOMER")

	// Unknown email: same success shape, no mail.
	w, env := f.post(t, "/auth/forgot-password", map[string]string{"email": "nobody@example.com"}, "")
	if w.Code != 200 || !env.Success {
		t.Fatalf("blind response broken: %d %+v", w.Code, env)
	}
	if len(f.mail.Sent()) != 0 {
		t.Fatalf("no mail expected for unknown email")
	}

	// Known email: code mailed, check then reset.
	f.post(t, "/auth/forgot-password", map[string]string{"email": "budi@example.com"}, "")
	code := f.lastMailedCode(t)

	w, env = f.post(t, "/auth/verify-reset-otp", map[string]string{"email": "budi@example.com", "otp": code}, "")
	if w.Code != 200 || !env.Success {
		t.Fatalf("verify-reset-otp: %d %+v", w.Code, env)
	}

	w, env = f.post(t, "/auth/reset-password", map[string]string{
		"email": "budi@example.com", "otp": code, "newPassword": "kata-sandi-baru",
	}, "")
	if w.Code != 200 || !env.Success {
		t.Fatalf("reset-password: %d %+v", w.Code, env)
	}

	// Old password dead, new one works.
	w, _ = f.post(t, "/auth/login", map[string]string{"email": "budi@example.com", "password": "rahasia-123"}, "")
	if w.Code != 401 {
		t.Fatalf("old password must fail, got %d", w.Code)
	}
	w, _ = f.post(t, "/auth/login", map[string]string{"email": "budi@example.com", "password": "kata-sandi-baru"}, "")
	if w.Code != 200 {
		t.Fatalf("new password must work, got %d", w.Code)
	}
}

func TestToggleTwoFactor_RequiresSession(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "budi@example.com", "rahasia-123", "CUSTOMER")

	w, _ := f.post(t, "/auth/toggle-two-factor", struct{}{}, "")
	if w.Code != 401 {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}

	_, env := f.post(t, "/auth/login", map[string]string{"email": "budi@example.com", "password": "rahasia-123"}, "")
	w, out := f.post(t, "/auth/toggle-two-factor", struct{}{}, env.Token)
	if w.Code != 200 || !out.Success {
		t.Fatalf("toggle failed: %d %+v", w.Code, out)
	}
}

func TestMe_ReturnsCurrentUser(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "budi@example.com", "rahasia-123", "CUSTOMER")
	_, env := f.post(t, "/auth/login", map[string]string{"email": "budi@example.com", "password": "rahasia-123"}, "")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+env.Token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out session.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != 200 || out.Data == nil || out.Data.Email != "budi@example.com" {
		t.Fatalf("me: %d %+v", w.Code, out)
	}
}
