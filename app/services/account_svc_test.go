package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/heartscript/storefront/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput(email string, ans [models.RecoverySlots]string) RegisterInput {
	return RegisterInput{
		Username: "asha",
		Email:    email,
		Password: "s3cret-pass",
		Phone:    "9876543210",
		Address:  "MG Road",
		Pincode:  "411001",
		Answers:  ans,
	}
}

func TestRegisterStoresNormalizedAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.accounts.Register(ctx, registerInput("asha@example.com", answers(" Rex ", "", "PARIS", "blue")))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.Equal(t, models.DefaultAvatar, user.ProfilePic)
	assert.Equal(t, answers("rex", "", "paris", "blue"), user.RecoveryAnswers())
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.Equal(t, []string{"upsert_user:asha@example.com"}, f.mirror.Calls())
}

func TestRegisterRequiresThreeAnswers(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounts.Register(context.Background(), registerInput("a@example.com", answers("one", "  ", "two")))
	assert.ErrorIs(t, err, ErrInsufficientAnswers)
	assert.Empty(t, f.mirror.Calls())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.Register(ctx, registerInput("dup@example.com", answers("a", "b", "c")))
	require.NoError(t, err)

	_, err = f.accounts.Register(ctx, registerInput("dup@example.com", answers("a", "b", "c")))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterSucceedsWhenMirrorFails(t *testing.T) {
	f := newFixture(t)
	f.mirror.fail = true

	user, err := f.accounts.Register(context.Background(), registerInput("m@example.com", answers("a", "b", "c")))
	require.NoError(t, err)

	stored, err := f.accounts.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "m@example.com", stored.Email)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Register(ctx, registerInput("login@example.com", answers("a", "b", "c")))
	require.NoError(t, err)

	user, err := f.accounts.Authenticate(ctx, "login@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)

	_, err = f.accounts.Authenticate(ctx, "login@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.accounts.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResetPasswordWithThreeMatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Register(ctx, registerInput("r@example.com", answers("rex", "", "paris", "blue", "", "", "pizza")))
	require.NoError(t, err)

	err = f.accounts.ResetPassword(ctx, "r@example.com", answers("REX", "", " paris", "", "", "", "Pizza"), "new-pass")
	require.NoError(t, err)

	_, err = f.accounts.Authenticate(ctx, "r@example.com", "new-pass")
	assert.NoError(t, err)
	_, err = f.accounts.Authenticate(ctx, "r@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResetPasswordReportsMatchCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Register(ctx, registerInput("r@example.com", answers("rex", "", "paris", "blue")))
	require.NoError(t, err)

	err = f.accounts.ResetPassword(ctx, "r@example.com", answers("rex", "x", "london", "blue"), "new-pass")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVerificationFailed)

	var vf *VerificationFailedError
	require.True(t, errors.As(err, &vf))
	assert.Equal(t, 2, vf.Matches)

	_, err = f.accounts.Authenticate(ctx, "r@example.com", "s3cret-pass")
	assert.NoError(t, err)
}

func TestResetPasswordUnknownAccount(t *testing.T) {
	f := newFixture(t)

	err := f.accounts.ResetPassword(context.Background(), "ghost@example.com", answers("a", "b", "c"), "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfileWithAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.accounts.Register(ctx, registerInput("p@example.com", answers("a", "b", "c")))
	require.NoError(t, err)

	updated, err := f.accounts.UpdateProfile(ctx, user.ID, ProfileUpdate{
		Phone:   "111",
		Address: "New Street",
		Pincode: "560001",
		Avatar:  &Upload{Filename: "../me photo.png", Content: []byte("png")},
	})
	require.NoError(t, err)

	want := fmt.Sprintf("profile_%d_me_photo.png", user.ID)
	assert.Equal(t, "/static/uploads/"+want, updated.ProfilePic)
	assert.Equal(t, []byte("png"), f.disk.files[want])

	got, orders, err := f.accounts.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Street", got.Address)
	assert.Empty(t, orders)
}

func TestUpdateProfileRejectsBadAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.accounts.Register(ctx, registerInput("p@example.com", answers("a", "b", "c")))
	require.NoError(t, err)

	_, err = f.accounts.UpdateProfile(ctx, user.ID, ProfileUpdate{
		Address: "Changed",
		Avatar:  &Upload{Filename: "shell.php", Content: []byte("<?php")},
	})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := f.accounts.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "MG Road", got.Address)
	assert.Empty(t, f.disk.files)
}

func TestProfileUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.accounts.Profile(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
