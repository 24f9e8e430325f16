package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.RegisterUser(ctx, RegisterUserRequest{
		Email:    "meera@example.com",
		Username: "meera",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	byEmail, err := f.auth.LoginUser(ctx, "meera@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	require.NotNil(t, byEmail.LastLogin)

	byUsername, err := f.auth.LoginUser(ctx, "meera", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	msgs := f.events.Messages(mykafka.TopicUserEvents)
	require.Len(t, msgs, 1)
	var ev mykafka.UserEvent
	require.NoError(t, json.Unmarshal(msgs[0].Value, &ev))
	assert.Equal(t, "user_registered", ev.Type)
	assert.Equal(t, user.ID, ev.UserID)
}

func TestAuthService_RegisterUser_Rejections(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.RegisterUser(ctx, RegisterUserRequest{Email: "a@example.com", Username: "alpha", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  RegisterUserRequest
		want error
	}{
		{name: "duplicate email", req: RegisterUserRequest{Email: "a@example.com", Username: "other", Password: "secret1"}, want: ErrDuplicateEmail},
		{name: "duplicate username", req: RegisterUserRequest{Email: "b@example.com", Username: "alpha", Password: "secret1"}, want: ErrDuplicateUsername},
		{name: "email checked before username", req: RegisterUserRequest{Email: "a@example.com", Username: "alpha", Password: "x"}, want: ErrDuplicateEmail},
		{name: "weak password", req: RegisterUserRequest{Email: "c@example.com", Username: "gamma", Password: "12345"}, want: ErrWeakPassword},
		{name: "missing email", req: RegisterUserRequest{Username: "delta", Password: "secret1"}, want: ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.RegisterUser(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_LoginUser_Failures(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := f.newUser(t)

	_, err := f.auth.LoginUser(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.LoginUser(ctx, user.Email, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.admin.DeactivateUser(ctx, user.ID))
	_, err = f.auth.LoginUser(ctx, user.Email, "secret123")
	assert.ErrorIs(t, err, ErrAccountDeactivated)

	require.NoError(t, f.admin.ActivateUser(ctx, user.ID))
	_, err = f.auth.LoginUser(ctx, user.Email, "secret123")
	assert.NoError(t, err)
}

func TestAuthService_AdminInvitationFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	root, err := f.auth.CreateSuperAdmin(ctx, SuperAdminRequest{
		Email: "root@example.com", Username: "root", Password: "rootpass1",
	})
	require.NoError(t, err)
	assert.True(t, root.IsSuperAdmin())

	token, err := f.auth.IssueAdminInvitation(ctx, root.ID, "ops@example.com", "")
	require.NoError(t, err)

	claims, err := tokens.InviteClaimsFromToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)

	_, err = f.auth.RegisterAdmin(ctx, RegisterAdminRequest{
		Email: "someone-else@example.com", Username: "ops", Password: "opspass12", InviteToken: token,
	})
	assert.ErrorIs(t, err, ErrInvalidInvitation)

	_, err = f.auth.RegisterAdmin(ctx, RegisterAdminRequest{
		Email: "ops@example.com", Username: "ops", Password: "short", InviteToken: token,
	})
	assert.ErrorIs(t, err, ErrWeakPassword)

	admin, err := f.auth.RegisterAdmin(ctx, RegisterAdminRequest{
		Email: "ops@example.com", Username: "ops", Password: "opspass12", InviteToken: token,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = f.auth.RegisterAdmin(ctx, RegisterAdminRequest{
		Email: "ops@example.com", Username: "ops2", Password: "opspass12", InviteToken: token,
	})
	assert.ErrorIs(t, err, ErrInvalidInvitation, "invitation is single use")

	logged, err := f.auth.LoginAdmin(ctx, "ops", "opspass12")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, logged.ID)

	_, err = f.auth.IssueAdminInvitation(ctx, admin.ID, "x@example.com", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden, "plain admins cannot invite")
}

func TestAuthService_RegisterAdmin_RejectsForgedToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	forged, err := tokens.NewInviteToken([]byte("other-secret"), "jti", "ops@example.com", "admin", "1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = f.auth.RegisterAdmin(context.Background(), RegisterAdminRequest{
		Email: "ops@example.com", Username: "ops", Password: "opspass12", InviteToken: forged,
	})
	assert.ErrorIs(t, err, ErrInvalidInvitation)
}

func TestAuthService_IssueAccessToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tok, err := f.auth.IssueAccessToken(42, tokens.KindUser, "")
	require.NoError(t, err)

	claims, err := tokens.AccessClaimsFromToken(tok.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, tokens.KindUser, claims.Kind)
	assert.WithinDuration(t, time.Now().Add(defaultAccessTTL), tok.ExpiresAt, 5*time.Second)
}
