package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookstore/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInWithPassword(t *testing.T) {
	var gotAPIKey, gotContentType, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("apikey")
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "reader@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access",
			"refresh_token": "refresh",
			"expires_in":    3600,
			"user":          map[string]string{"id": uuid.NewString(), "email": body["email"]},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	res, err := client.SignInWithPassword(context.Background(), "reader@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "access", res.AccessToken)
	assert.Equal(t, "refresh", res.RefreshToken)
	assert.Equal(t, "anon-key", gotAPIKey)
	assert.Equal(t, "application/json", gotContentType)
	// The password grant is not an admin call.
	assert.Empty(t, gotAuth)
}

func TestSignInMissingTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": ""})
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	_, err := client.SignInWithPassword(context.Background(), "reader@example.com", "password123")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
}

func TestUpstreamErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	_, err := client.SignInWithPassword(context.Background(), "reader@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestSignUp(t *testing.T) {
	subject := uuid.NewString()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user": map[string]string{"id": subject, "email": "new@example.com"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	res, err := client.SignUp(context.Background(), "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, subject, res.User.ID)
}

func TestSignUpRejectsBadSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user": map[string]string{"id": "not-a-uuid"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")
	_, err := client.SignUp(context.Background(), "new@example.com", "password123")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
}

func TestAdminCallsCarryBearer(t *testing.T) {
	subject := uuid.NewString()
	var gotAuth, gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "service-key")
	err := client.AdminUpdateUser(context.Background(), subject, map[string]interface{}{"email": "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/auth/v1/admin/users/"+subject, gotPath)

	require.NoError(t, client.AdminDeleteUser(context.Background(), subject))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestUnreachableProvider(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "anon-key")
	_, err := client.SignInWithPassword(context.Background(), "reader@example.com", "password123")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
}
