package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookstore/internal/auth"
	"bookstore/internal/model"
	"bookstore/internal/supabase"
	"bookstore/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

// fakeIdP is an httptest stand-in for the Supabase auth endpoints.
type fakeIdP struct {
	t            *testing.T
	subject      string
	signInCalls  int
	signUpCalls  int
	refreshCalls int
	server       *httptest.Server
}

func newFakeIdP(t *testing.T) *fakeIdP {
	idp := &fakeIdP{t: t, subject: uuid.NewString()}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, `{"message":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		switch r.URL.Query().Get("grant_type") {
		case "password":
			idp.signInCalls++
		case "refresh_token":
			idp.refreshCalls++
		default:
			http.Error(w, `{"message":"unsupported grant"}`, http.StatusBadRequest)
			return
		}
		idp.writeGrant(w)
	})
	mux.HandleFunc("/auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, `{"message":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		idp.signUpCalls++
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		resp := map[string]interface{}{
			"user": map[string]string{"id": idp.subject, "email": body["email"]},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	idp.server = httptest.NewServer(mux)
	t.Cleanup(idp.server.Close)
	return idp
}

func (f *fakeIdP) writeGrant(w http.ResponseWriter) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": f.subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(f.t, err)
	resp := map[string]interface{}{
		"access_token":  signed,
		"refresh_token": "refresh-" + uuid.NewString(),
		"expires_in":    3600,
		"user":          map[string]string{"id": f.subject},
	}
	require.NoError(f.t, json.NewEncoder(w).Encode(resp))
}

func newAuthServiceForTest(t *testing.T) (AuthService, *fakeUserRepo, *fakeRoleRepo, *fakeIdP) {
	users := newFakeUserRepo()
	roles := newFakeRoleRepo()
	roles.seedAccessControl()
	idp := newFakeIdP(t)
	client := supabase.NewClient(idp.server.URL, "service-key")
	validator := auth.NewTokenValidator(testSecret)
	return NewAuthService(users, roles, client, validator, fakeTx{}), users, roles, idp
}

func seedLocalUser(t *testing.T, users *fakeUserRepo, roles *fakeRoleRepo, email, password, subject string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	reader, err := roles.FindByName(context.Background(), model.RoleReader)
	require.NoError(t, err)
	user := &model.User{
		SubjectID:    &subject,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "Reader",
		DateOfBirth:  model.NewDate(1990, time.January, 1),
		IsActive:     true,
		Roles:        []model.Role{*reader},
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestAuthServiceLogin(t *testing.T) {
	svc, users, roles, idp := newAuthServiceForTest(t)
	seedLocalUser(t, users, roles, "reader@example.com", "password123", idp.subject)

	res, err := svc.Login(context.Background(), LoginRequest{
		Email:    "reader@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "reader@example.com", res.User.Email)
	assert.Nil(t, res.User.Password)
	assert.Equal(t, 1, idp.signInCalls)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, users, roles, idp := newAuthServiceForTest(t)
	seedLocalUser(t, users, roles, "reader@example.com", "password123", idp.subject)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "reader@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalid))
	assert.Equal(t, "Invalid credentials", err.Error())
	// The IdP is never consulted when the local check fails.
	assert.Equal(t, 0, idp.signInCalls)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc, _, _, idp := newAuthServiceForTest(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.Equal(t, 0, idp.signInCalls)
}

func TestAuthServiceRegister(t *testing.T) {
	svc, users, _, idp := newAuthServiceForTest(t)

	dob := model.NewDate(1990, time.June, 15)
	res, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "new@example.com",
		Password:    "password123",
		FirstName:   "New",
		LastName:    "Reader",
		DateOfBirth: &dob,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, idp.signUpCalls)
	assert.Equal(t, idp.subject, res.SubjectID)
	assert.Nil(t, res.Password)
	require.Len(t, res.Roles, 1)
	assert.Equal(t, model.RoleReader, res.Roles[0].Name)

	stored, err := users.FindByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	svc, users, roles, idp := newAuthServiceForTest(t)
	seedLocalUser(t, users, roles, "taken@example.com", "password123", idp.subject)

	dob := model.NewDate(1990, time.June, 15)
	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "taken@example.com",
		Password:    "password123",
		FirstName:   "Dup",
		LastName:    "User",
		DateOfBirth: &dob,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyExists))
	// No orphaned IdP record for a known-duplicate email.
	assert.Equal(t, 0, idp.signUpCalls)
}

func TestAuthServiceRefresh(t *testing.T) {
	svc, users, roles, idp := newAuthServiceForTest(t)
	seedLocalUser(t, users, roles, "reader@example.com", "password123", idp.subject)

	res, err := svc.Refresh(context.Background(), "some-refresh-token")
	require.NoError(t, err)
	assert.Equal(t, 1, idp.refreshCalls)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "reader@example.com", res.User.Email)
}

func TestAuthServiceRefreshUnknownSubject(t *testing.T) {
	svc, _, _, _ := newAuthServiceForTest(t)

	_, err := svc.Refresh(context.Background(), "some-refresh-token")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestAuthServiceUpdateAuthUser(t *testing.T) {
	svc, users, roles, idp := newAuthServiceForTest(t)
	user := seedLocalUser(t, users, roles, "reader@example.com", "password123", idp.subject)

	first := "Updated"
	res, err := svc.UpdateAuthUser(context.Background(), UpdateUserRequest{
		UserID:    user.ID,
		FirstName: &first,
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated", res.FirstName)

	_, err = svc.UpdateAuthUser(context.Background(), UpdateUserRequest{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalid))
}

func TestAuthServiceUpdateAuthUserEmailConflict(t *testing.T) {
	svc, users, roles, idp := newAuthServiceForTest(t)
	user := seedLocalUser(t, users, roles, "a@example.com", "password123", idp.subject)
	seedLocalUser(t, users, roles, "b@example.com", "password123", uuid.NewString())

	email := "b@example.com"
	_, err := svc.UpdateAuthUser(context.Background(), UpdateUserRequest{
		UserID: user.ID,
		Email:  &email,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAlreadyExists))
}

func TestAuthServiceDeleteAuthUser(t *testing.T) {
	svc, users, roles, idp := newAuthServiceForTest(t)
	user := seedLocalUser(t, users, roles, "reader@example.com", "password123", idp.subject)

	require.NoError(t, svc.DeleteAuthUser(context.Background(), user.ID))
	_, err := users.FindByID(context.Background(), user.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = svc.DeleteAuthUser(context.Background(), user.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
