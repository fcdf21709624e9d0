package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AuthAPI is the auth-service collaborator the store talks to. Shapes
// mirror the /auth/* endpoints; implementations must return an Envelope
// for every non-transport failure instead of an error.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (Envelope, error)
	Register(ctx context.Context, in RegisterInput) (Envelope, error)
	VerifyOTP(ctx context.Context, email, code, partialToken string) (Envelope, error)
	VerifyEmail(ctx context.Context, email, code string) (Envelope, error)
	ResendVerification(ctx context.Context, email string) (Envelope, error)
	ForgotPassword(ctx context.Context, email string) (Envelope, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) (Envelope, error)
	Logout(ctx context.Context, token string) error
}

// Client is the HTTP implementation of AuthAPI.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (Envelope, error) {
	return c.post(ctx, "/auth/login", map[string]string{"email": email, "password": password}, "")
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (Envelope, error) {
	return c.post(ctx, "/auth/register", in, "")
}

func (c *Client) VerifyOTP(ctx context.Context, email, code, partialToken string) (Envelope, error) {
	return c.post(ctx, "/auth/verify-otp", map[string]string{"email": email, "otp": code}, partialToken)
}

func (c *Client) VerifyEmail(ctx context.Context, email, code string) (Envelope, error) {
	return c.post(ctx, "/auth/verify-email", map[string]string{"email": email, "otp": code}, "")
}

func (c *Client) ResendVerification(ctx context.Context, email string) (Envelope, error) {
	return c.post(ctx, "/auth/resend-verification", map[string]string{"email": email}, "")
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (Envelope, error) {
	return c.post(ctx, "/auth/forgot-password", map[string]string{"email": email}, "")
}

func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) (Envelope, error) {
	return c.post(ctx, "/auth/reset-password", map[string]string{"email": email, "otp": code, "newPassword": newPassword}, "")
}

func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.post(ctx, "/auth/logout", struct{}{}, token)
	return err
}

func (c *Client) post(ctx context.Context, path string, body any, bearer string) (Envelope, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return Envelope{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return Envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, err
	}
	defer resp.Body.Close()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("decode %s response: %w", path, err)
	}
	return env, nil
}
