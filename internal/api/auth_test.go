package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func unwrapAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode login request: %v", err)
		}
		if req.Email != "ops@example.nz" || req.Password != "secret" {
			t.Errorf("unexpected credentials %+v", req)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"token": "tok-1",
				"user":  map[string]string{"id": "u-1", "email": "ops@example.nz"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	session, err := c.Login(context.Background(), "ops@example.nz", "secret")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	if session.Token != "tok-1" || session.User.ID != "u-1" {
		t.Errorf("session = %+v, want token tok-1 / user u-1", session)
	}
	if c.Token() != "tok-1" {
		t.Errorf("client token = %q, want tok-1", c.Token())
	}
}

func TestLogin_IncorrectCredentialsNormalized(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "user record missing in tenant shard 7", status)
		}))

		c := NewClient(srv.URL)
		_, err := c.Login(context.Background(), "ops@example.nz", "wrong")
		srv.Close()

		if !IsAuthError(err) {
			t.Fatalf("status %d: expected AuthError, got %v", status, err)
		}
		if err.Error() != "incorrect email or password" {
			t.Errorf("status %d: message = %q, want the fixed credentials message", status, err.Error())
		}
	}
}

func TestLogin_OtherFailuresSurfaceRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream identity provider is down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Login(context.Background(), "ops@example.nz", "secret")

	apiErr, ok := unwrapAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", apiErr.Status)
	}
	if apiErr.Message != "upstream identity provider is down" {
		t.Errorf("message = %q, want raw server text", apiErr.Message)
	}
}
