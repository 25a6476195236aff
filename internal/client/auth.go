package client

import (
	"context"
	"net/http"
	"strings"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type resetRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type resetConfirmRequest struct {
	Username    string `json:"username"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// Login posts credentials and returns the raw response body, which is either
// a bare token or a JSON object carrying one.
func (c *Client) Login(ctx context.Context, req LoginRequest) ([]byte, error) {
	resp, err := c.send(ctx, c.public, http.MethodPost, "/auth/login", req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Register creates an account and returns the raw response body, shaped like Login's.
func (c *Client) Register(ctx context.Context, req RegisterRequest) ([]byte, error) {
	resp, err := c.send(ctx, c.public, http.MethodPost, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// UpdatePassword changes the password of the signed in user.
func (c *Client) UpdatePassword(ctx context.Context, oldPassword, newPassword string) (string, error) {
	resp, err := c.send(ctx, c.authed, http.MethodPut, "/auth/update-password", updatePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(resp.Body)), nil
}

// RequestPasswordReset asks the server to send a reset code to the account's email.
func (c *Client) RequestPasswordReset(ctx context.Context, username, email string) (string, error) {
	resp, err := c.send(ctx, c.public, http.MethodPost, "/auth/password-reset/request", resetRequest{
		Username: username,
		Email:    email,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(resp.Body)), nil
}

// ConfirmPasswordReset sets a new password using a reset code.
func (c *Client) ConfirmPasswordReset(ctx context.Context, username, code, newPassword string) (string, error) {
	resp, err := c.send(ctx, c.public, http.MethodPost, "/auth/password-reset/confirm", resetConfirmRequest{
		Username:    username,
		Code:        code,
		NewPassword: newPassword,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(resp.Body)), nil
}
