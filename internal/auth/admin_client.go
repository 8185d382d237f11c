package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"agora/internal/domain"
)

// AdminClient provides access to Supabase Admin API for user management.
// It is used by admin moderation (ban, unban, delete) and by the seed command.
type AdminClient struct {
	supabaseURL string
	serviceKey  string
	httpClient  *http.Client
}

// NewAdminClient creates a new Supabase Admin API client.
// Requires the service role key (SUPABASE_KEY) for elevated permissions.
func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		supabaseURL: supabaseURL,
		serviceKey:  serviceKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateUserRequest is the payload for creating a new user
type CreateUserRequest struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
}

// CreateUserResponse is the response from creating a user
type CreateUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ListUsersResponse is the response from listing users
type ListUsersResponse struct {
	Users []CreateUserResponse `json:"users"`
}

// updateUserRequest is the subset of the admin update payload used for moderation
type updateUserRequest struct {
	BanDuration string `json:"ban_duration"`
}

// do sends an admin request and returns the body of a 2xx response.
// 404 maps to domain.ErrNotFound.
func (c *AdminClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.supabaseURL+"/auth/v1/admin"+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("auth user: %w", domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// Ban blocks sign-in for d. Existing access tokens stay valid until they expire,
// so the profile ban is checked as well.
func (c *AdminClient) Ban(ctx context.Context, userID string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: ban duration must be positive", domain.ErrValidation)
	}
	_, err := c.do(ctx, http.MethodPut, "/users/"+userID, updateUserRequest{BanDuration: formatBanDuration(d)})
	if err != nil {
		return fmt.Errorf("ban user %s: %w", userID, err)
	}
	return nil
}

// Unban lifts a ban
func (c *AdminClient) Unban(ctx context.Context, userID string) error {
	if _, err := c.do(ctx, http.MethodPut, "/users/"+userID, updateUserRequest{BanDuration: "none"}); err != nil {
		return fmt.Errorf("unban user %s: %w", userID, err)
	}
	return nil
}

// DeleteUser removes the auth user. Deleting an unknown user is not an error.
func (c *AdminClient) DeleteUser(ctx context.Context, userID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/"+userID, nil)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	return nil
}

// DeleteUserByEmail finds a user by email and deletes them.
// This is idempotent - returns nil if the user doesn't exist.
func (c *AdminClient) DeleteUserByEmail(ctx context.Context, email string) error {
	userID, err := c.FindUserIDByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return c.DeleteUser(ctx, userID)
}

// FindUserIDByEmail searches the first page of users for email.
func (c *AdminClient) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}

	var listResp ListUsersResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		return "", fmt.Errorf("failed to decode list response: %w", err)
	}

	for _, user := range listResp.Users {
		if user.Email == email {
			return user.ID, nil
		}
	}
	return "", fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

// CreateUser creates a confirmed user. appMetadata carries the role for admins.
// Returns the user's UUID.
func (c *AdminClient) CreateUser(ctx context.Context, email, password string, appMetadata map[string]any) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/users", CreateUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		AppMetadata:  appMetadata,
	})
	if err != nil {
		return "", fmt.Errorf("create user %s: %w", email, err)
	}

	var createResp CreateUserResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		return "", fmt.Errorf("failed to decode create response: %w", err)
	}
	return createResp.ID, nil
}

// formatBanDuration renders d in whole hours, the unit the auth API accepts.
func formatBanDuration(d time.Duration) string {
	hours := int64(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return fmt.Sprintf("%dh", hours)
}
