package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := f.newUser(t)

	updated, err := f.users.UpdateProfile(ctx, user.ID, repo.ProfileUpdate{Phone: strPtr("+91 98765 43210")})
	require.NoError(t, err)
	assert.Equal(t, "+91 98765 43210", updated.Phone)
	assert.Equal(t, "Asha", updated.FirstName, "nil fields are untouched")
	assert.Equal(t, user.Email, updated.Email)

	_, err = f.users.UpdateProfile(ctx, 9999, repo.ProfileUpdate{FirstName: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := f.newUser(t)

	assert.ErrorIs(t, f.users.ChangePassword(ctx, user.ID, "not-it", "newsecret"), ErrInvalidCredentials)
	assert.ErrorIs(t, f.users.ChangePassword(ctx, user.ID, "secret123", "abc"), ErrWeakPassword)

	require.NoError(t, f.users.ChangePassword(ctx, user.ID, "secret123", "newsecret"))
	_, err := f.auth.LoginUser(ctx, user.Username, "newsecret")
	assert.NoError(t, err)
	_, err = f.auth.LoginUser(ctx, user.Username, "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Addresses_SingleDefault(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	user := f.newUser(t)

	req := AddressRequest{
		FullName: "Asha Rao", Phone: "9876543210", AddressLine1: "12 MG Road",
		City: "Bengaluru", State: "Karnataka", PostalCode: "560001",
	}
	home, err := f.users.AddAddress(ctx, user.ID, req)
	require.NoError(t, err)
	assert.True(t, home.IsDefault, "first address becomes default")
	assert.Equal(t, models.DefaultCountry, home.Country)

	req.AddressLine1 = "7 Park Street"
	req.City = "Kolkata"
	req.IsDefault = true
	work, err := f.users.AddAddress(ctx, user.ID, req)
	require.NoError(t, err)

	addrs, err := f.users.ListAddresses(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, work.ID, addrs[0].ID, "default listed first")
	assert.False(t, addrs[1].IsDefault)

	_, err = f.users.SetDefaultAddress(ctx, user.ID, home.ID)
	require.NoError(t, err)
	addrs, err = f.users.ListAddresses(ctx, user.ID)
	require.NoError(t, err)
	defaults := 0
	for _, a := range addrs {
		if a.IsDefault {
			defaults++
			assert.Equal(t, home.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	other := f.newUser(t)
	_, err = f.users.UpdateAddress(ctx, other.ID, home.ID, repo.AddressUpdate{City: strPtr("Pune")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.users.DeleteAddress(ctx, other.ID, home.ID), ErrNotFound)

	require.NoError(t, f.users.DeleteAddress(ctx, user.ID, work.ID))
	addrs, err = f.users.ListAddresses(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, addrs, 1)

	_, err = f.users.AddAddress(ctx, user.ID, AddressRequest{FullName: "x"})
	assert.ErrorIs(t, err, ErrValidation)
}
