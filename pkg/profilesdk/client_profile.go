package profilesdk

import (
	"context"
	"net/http"
)

// GetProfile fetches the profile of the token's owner.
func (c *Client) GetProfile(ctx context.Context, token string) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth/profile", token, nil)
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out.User, nil
}

// UpdateProfile completes or edits the token owner's profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, req UpdateProfileRequest) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/update-profile", token, req)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// Register creates a profile and returns its first bearer token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", "", req)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// Logout revokes the bearer token on the service.
func (c *Client) Logout(ctx context.Context, token string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", token, nil)
	if err != nil {
		return err
	}
	return checkStatus2xx(resp)
}
