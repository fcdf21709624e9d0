package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"tukangin-platform/internal/audit"
	"tukangin-platform/internal/auth"
	"tukangin-platform/internal/mailer"
	"tukangin-platform/internal/otp"
	"tukangin-platform/internal/policy"
	"tukangin-platform/internal/session"
	"tukangin-platform/internal/user"
	"tukangin-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups the /auth HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return
// the response envelope. Raw errors go to the request logger only.

type Handlers struct {
	Auth     *auth.Manager
	Users    *user.Service
	OTP      *otp.Service
	Mail     mailer.Mailer
	Audit    *audit.Service
	Throttle Throttle
}

const (
	msgBadRequest     = "Permintaan tidak valid"
	msgBadCredentials = "Email atau kata sandi salah"
	msgBadCode        = "Kode OTP salah atau sudah kedaluwarsa"
	msgThrottled      = "Terlalu banyak percobaan, coba lagi nanti"
	msgServerError    = "Terjadi kesalahan, silakan coba lagi"
	msgCodeSent       = "Jika email terdaftar, kode telah dikirim"
)

func (h Handlers) throttle() Throttle {
	if h.Throttle == nil {
		return noThrottle{}
	}
	return h.Throttle
}

func (h Handlers) auditor() *audit.Service {
	if h.Audit == nil {
		return audit.NewService(nil)
	}
	return h.Audit
}

/* ===================== LOGIN ===================== */

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and either starts a session, demands an OTP
// (two-factor accounts), or reports a pending email verification.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	ip := c.ClientIP()

	ok, err := h.throttle().Allow(c.Request.Context(), email, ip)
	if err != nil {
		logger.FromGin(c).Error("login throttle", "err", err)
		// Fail open on throttle backend trouble; credentials still gate.
		ok = true
	}
	if !ok {
		_ = h.auditor().LogFlow(c.Request.Context(), audit.EventTypeLoginThrottled, "", "", email, ip, "login throttled")
		fail(c, http.StatusTooManyRequests, msgThrottled)
		return
	}

	u, err := h.Users.Authenticate(c.Request.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrBadCredentials) {
			_ = h.auditor().LogLogin(c.Request.Context(), false, "", "", email, ip)
			fail(c, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		logger.FromGin(c).Error("login", "err", err)
		fail(c, http.StatusInternalServerError, msgServerError)
		return
	}

	if !u.EmailVerified {
		h.sendCode(c, otp.PurposeVerifyEmail, u)
		c.JSON(http.StatusOK, session.Envelope{
			Success:          true,
			NeedVerification: true,
			Message:          "Email belum diverifikasi, kode telah dikirim",
		})
		return
	}

	if u.TwoFactorEnabled {
		partial, err := h.Auth.IssuePartial(time.Now(), u.ID, u.Role)
		if err != nil {
			logger.FromGin(c).Error("issue partial token", "err", err)
			fail(c, http.StatusInternalServerError, msgServerError)
			return
		}
		h.sendCode(c, otp.PurposeLogin, u)
		c.JSON(http.StatusOK, session.Envelope{
			Success:      true,
			RequireOTP:   true,
			PartialToken: partial,
			Message:      "Kode OTP telah dikirim ke email Anda",
		})
		return
	}

	_ = h.throttle().Reset(c.Request.Context(), email, ip)
	_ = h.auditor().LogLogin(c.Request.Context(), true, u.ID, u.Role, email, ip)
	h.respondSession(c, u)
}

/* ===================== REGISTER ===================== */

type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	BusinessName string `json:"businessName"`
}

// Register creates a CUSTOMER or PROVIDER account and mails a
// verification code. Admin accounts are provisioned out of band.
func (h Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}
	role := policy.Role(req.Role)
	if role != policy.RoleCustomer && role != policy.RoleProvider {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}
	if role == policy.RoleProvider && strings.TrimSpace(req.BusinessName) == "" {
		fail(c, http.StatusBadRequest, "Nama usaha wajib diisi")
		return
	}

	u, err := h.Users.Register(c.Request.Context(), user.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         string(role),
		BusinessName: req.BusinessName,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			fail(c, http.StatusConflict, "Email sudah terdaftar")
		case errors.Is(err, user.ErrInvalidArgument):
			fail(c, http.StatusBadRequest, msgBadRequest)
		default:
			logger.FromGin(c).Error("register", "err", err)
			fail(c, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	h.sendCode(c, otp.PurposeVerifyEmail, u)
	c.JSON(http.StatusCreated, session.Envelope{
		Success:          true,
		NeedVerification: true,
		Message:          "Akun dibuat, cek email Anda untuk kode verifikasi",
	})
}

/* ===================== OTP / VERIFICATION ===================== */

type codeRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP completes a two-factor login: partial token in the
// Authorization header, code in the body.
func (h Handlers) VerifyOTP(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.OTP == "" {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	partial := auth.BearerToken(c.Request)
	if partial == "" {
		fail(c, http.StatusUnauthorized, msgBadRequest)
		return
	}
	claims, err := h.Auth.Verify(partial, true, time.Now())
	if err != nil {
		fail(c, http.StatusUnauthorized, msgBadCode)
		return
	}

	u, err := h.Users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || !strings.EqualFold(u.Email, req.Email) {
		fail(c, http.StatusUnauthorized, msgBadCode)
		return
	}

	if err := h.OTP.Redeem(c.Request.Context(), otp.PurposeLogin, u.Email, req.OTP); err != nil {
		fail(c, http.StatusUnauthorized, msgBadCode)
		return
	}

	_ = h.auditor().LogFlow(c.Request.Context(), audit.EventTypeOTPVerified, u.ID, u.Role, u.Email, c.ClientIP(), "login otp verified")
	h.respondSession(c, u)
}

// VerifyEmail confirms a registration code and starts the first session.
func (h Handlers) VerifyEmail(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.OTP == "" {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	u, err := h.Users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		fail(c, http.StatusUnauthorized, msgBadCode)
		return
	}
	if err := h.OTP.Redeem(c.Request.Context(), otp.PurposeVerifyEmail, u.Email, req.OTP); err != nil {
		fail(c, http.StatusUnauthorized, msgBadCode)
		return
	}
	if err := h.Users.MarkEmailVerified(c.Request.Context(), u.ID); err != nil {
		logger.FromGin(c).Error("mark verified", "err", err)
		fail(c, http.StatusInternalServerError, msgServerError)
		return
	}
	u.EmailVerified = true

	_ = h.auditor().LogFlow(c.Request.Context(), audit.EventTypeEmailVerified, u.ID, u.Role, u.Email, c.ClientIP(), "email verified")
	h.respondSession(c, u)
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendVerification mails a fresh verification code. The response never
// reveals whether the account exists.
func (h Handlers) ResendVerification(c *gin.Context) {
	h.sendCodeBlind(c, otp.PurposeVerifyEmail)
}

// ForgotPassword mails a password-reset code, same blind contract.
func (h Handlers) ForgotPassword(c *gin.Context) {
	h.sendCodeBlind(c, otp.PurposeReset)
}

// VerifyResetOTP checks a reset code without consuming it, so the UI can
// gate the new-password form before the final exchange.
func (h Handlers) VerifyResetOTP(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.OTP == "" {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}
	if err := h.OTP.Check(c.Request.Context(), otp.PurposeReset, normalize(req.Email), req.OTP); err != nil {
		fail(c, http.StatusUnauthorized, msgBadCode)
		return
	}
	c.JSON(http.StatusOK, session.Envelope{Success: true})
}

type resetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword redeems the reset code and installs the new password.
func (h Handlers) ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.OTP == "" {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	u, err := h.Users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		fail(c, http.StatusUnauthorized, msgBadCode)
		return
	}
	if err := h.OTP.Redeem(c.Request.Context(), otp.PurposeReset, u.Email, req.OTP); err != nil {
		fail(c, http.StatusUnauthorized, msgBadCode)
		return
	}
	if err := h.Users.ResetPassword(c.Request.Context(), u.ID, req.NewPassword); err != nil {
		if errors.Is(err, user.ErrInvalidArgument) {
			fail(c, http.StatusBadRequest, "Kata sandi minimal 8 karakter")
			return
		}
		logger.FromGin(c).Error("reset password", "err", err)
		fail(c, http.StatusInternalServerError, msgServerError)
		return
	}

	_ = h.auditor().LogFlow(c.Request.Context(), audit.EventTypePasswordReset, u.ID, u.Role, u.Email, c.ClientIP(), "password reset")
	c.JSON(http.StatusOK, session.Envelope{Success: true, Message: "Kata sandi berhasil diubah", RedirectTo: policy.LoginPath})
}

/* ===================== SESSION-PROTECTED ===================== */

// ToggleTwoFactor flips the caller's two-factor flag.
// Requires auth.RequireSession in the chain.
func (h Handlers) ToggleTwoFactor(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		fail(c, http.StatusUnauthorized, msgBadRequest)
		return
	}
	enabled, err := h.Users.ToggleTwoFactor(c.Request.Context(), uid)
	if err != nil {
		logger.FromGin(c).Error("toggle two-factor", "err", err)
		fail(c, http.StatusInternalServerError, msgServerError)
		return
	}

	role, _ := auth.Role(c.Request.Context())
	_ = h.auditor().LogFlow(c.Request.Context(), audit.EventTypeTwoFactorToggle, uid, role, "", c.ClientIP(), "two-factor toggled")

	msg := "Verifikasi dua langkah dimatikan"
	if enabled {
		msg = "Verifikasi dua langkah diaktifkan"
	}
	c.JSON(http.StatusOK, session.Envelope{Success: true, Message: msg})
}

// Logout records the sign-out; sessions are stateless JWTs, so there is
// nothing server-side to revoke.
func (h Handlers) Logout(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	_ = h.auditor().LogFlow(c.Request.Context(), audit.EventTypeLogout, uid, role, "", c.ClientIP(), "logout")
	c.JSON(http.StatusOK, session.Envelope{Success: true, RedirectTo: policy.LoginPath})
}

// Me returns the caller's account, for session restoration.
func (h Handlers) Me(c *gin.Context) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		fail(c, http.StatusUnauthorized, msgBadRequest)
		return
	}
	u, err := h.Users.GetByID(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusUnauthorized, msgBadRequest)
		return
	}
	view := userView(u)
	c.JSON(http.StatusOK, session.Envelope{Success: true, Data: &view})
}

/* ===================== HELPERS ===================== */

// respondSession issues a full token and returns it with the user view.
func (h Handlers) respondSession(c *gin.Context, u user.User) {
	token, err := h.Auth.IssueSession(time.Now(), u.ID, u.Role)
	if err != nil {
		logger.FromGin(c).Error("issue session token", "err", err)
		fail(c, http.StatusInternalServerError, msgServerError)
		return
	}
	view := userView(u)
	c.JSON(http.StatusOK, session.Envelope{
		Success:    true,
		Token:      token,
		Data:       &view,
		RedirectTo: policy.HomePath(policy.Role(u.Role)),
	})
}

// sendCode issues and mails an OTP for a known account. Mail failures are
// logged, never surfaced; the flow continues.
func (h Handlers) sendCode(c *gin.Context, purpose otp.Purpose, u user.User) {
	code, err := h.OTP.Issue(c.Request.Context(), purpose, u.Email)
	if err != nil {
		logger.FromGin(c).Error("issue otp", "purpose", string(purpose), "err", err)
		return
	}
	if err := h.Mail.SendOTP(c.Request.Context(), u.Email, code, string(purpose)); err != nil {
		logger.FromGin(c).Error("send otp mail", "purpose", string(purpose), "err", err)
	}
	_ = h.auditor().LogFlow(c.Request.Context(), audit.EventTypeOTPIssued, u.ID, u.Role, u.Email, c.ClientIP(), string(purpose)+" otp issued")
}

// sendCodeBlind handles the enumeration-safe endpoints: same success
// response whether or not the account exists.
func (h Handlers) sendCodeBlind(c *gin.Context, purpose otp.Purpose) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		fail(c, http.StatusBadRequest, msgBadRequest)
		return
	}
	if u, err := h.Users.GetByEmail(c.Request.Context(), req.Email); err == nil {
		h.sendCode(c, purpose, u)
	}
	c.JSON(http.StatusOK, session.Envelope{Success: true, Message: msgCodeSent})
}

func userView(u user.User) session.User {
	return session.User{
		ID:               u.ID,
		Email:            u.Email,
		Role:             u.Role,
		FullName:         u.FullName,
		Phone:            u.Phone,
		AvatarURL:        u.AvatarURL,
		BusinessName:     u.BusinessName,
		Verified:         u.BusinessVerified,
		AdminRole:        u.AdminRole,
		TwoFactorEnabled: u.TwoFactorEnabled,
		EmailVerified:    u.EmailVerified,
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, session.Envelope{Success: false, Message: msg})
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
