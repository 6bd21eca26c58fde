package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepulse/hms-api/internal/model"
	pkgauth "github.com/carepulse/hms-api/pkg/auth"
	"github.com/carepulse/hms-api/pkg/security"
)

type fakeUserRepo struct {
	user           *model.User
	lastLoginCalls int
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, errors.New("not found")
}

func (r *fakeUserRepo) UpdateLastLogin(context.Context, uuid.UUID) error {
	r.lastLoginCalls++
	return nil
}

func newTestService(t *testing.T, password string) (*Service, *fakeUserRepo) {
	t.Helper()

	hasher := security.NewBcryptHasher(0)
	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	repo := &fakeUserRepo{user: &model.User{
		ID:           uuid.New(),
		Email:        "asha@carepulse.example",
		Name:         "Asha Rao",
		Role:         model.RoleNurse,
		PasswordHash: hash,
	}}

	jwtSvc := pkgauth.NewJWTService("test-secret", 1)
	return NewService(repo, jwtSvc, hasher), repo
}

func TestLogin(t *testing.T) {
	svc, repo := newTestService(t, "s3cret")

	resp, err := svc.Login(context.Background(), "asha@carepulse.example", "s3cret")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, repo.user, resp.User)
	assert.Equal(t, 1, repo.lastLoginCalls)

	claims, err := pkgauth.NewJWTService("test-secret", 1).ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, repo.user.ID.String(), claims.UserID)
	assert.Equal(t, model.RoleNurse, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo := newTestService(t, "s3cret")

	_, err := svc.Login(context.Background(), "asha@carepulse.example", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, repo.lastLoginCalls)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestService(t, "s3cret")

	_, err := svc.Login(context.Background(), "nobody@carepulse.example", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
