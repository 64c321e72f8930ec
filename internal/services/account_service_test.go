package services

import (
	"context"
	"strings"
	"testing"

	"portal-united/directory/internal/forms"
	"portal-united/directory/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() forms.RegisterForm {
	return forms.RegisterForm{
		Username:  "anna",
		Email:     "Anna@Example.com",
		FirstName: "Anna",
		LastName:  "Kowalska",
		Password1: "correct-horse",
		Password2: "correct-horse",
	}
}

func TestAccountService_RegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, errs, err := env.accounts.Register(ctx, validRegistration())
	require.NoError(t, err)
	require.True(t, errs.Valid(), "%v", errs)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.True(t, user.IsPerson())

	loaded, err := env.accounts.User(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.PersonProfile)
	assert.Equal(t, "Kowalska", loaded.PersonProfile.LastName)

	authed, err := env.accounts.Authenticate(ctx, "anna", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	again, err := env.accounts.User(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, again.LastLogin)

	_, err = env.accounts.Authenticate(ctx, "anna", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.accounts.Authenticate(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccountService_RegisterLongPasswordIsFieldError(t *testing.T) {
	env := newTestEnv(t)

	form := validRegistration()
	form.Password1 = strings.Repeat("x", 80)
	form.Password2 = form.Password1

	user, errs, err := env.accounts.Register(context.Background(), form)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NotEmpty(t, errs.Get("password1"))
}

func TestAccountService_RegisterDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.accounts.Register(ctx, validRegistration())
	require.NoError(t, err)

	dup := validRegistration()
	dup.Email = "other@example.com"
	user, errs, err := env.accounts.Register(ctx, dup)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NotEmpty(t, errs.Get("username"))

	dup = validRegistration()
	dup.Username = "anna2"
	dup.Email = "ANNA@example.com"
	_, errs, err = env.accounts.Register(ctx, dup)
	require.NoError(t, err)
	assert.NotEmpty(t, errs.Get("email"))
}

func TestAccountService_InactiveUserCannotLogIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, _, err := env.accounts.Register(ctx, validRegistration())
	require.NoError(t, err)
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)

	_, err = env.accounts.Authenticate(ctx, "anna", "correct-horse")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestProfileService_LazyProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bare := testutil.CreateUser(t, env.db, "bare")
	require.NoError(t, env.db.Model(bare).Update("first_name", "").Error)
	bare.FirstName = ""

	profile, err := env.profiles.Profile(ctx, bare)
	require.NoError(t, err)
	assert.Equal(t, "bare", profile.FirstName)

	require.NoError(t, env.profiles.Update(ctx, profile, forms.ProfileForm{FirstName: "Barbara", City: "Lodz"}))

	again, err := env.profiles.Profile(ctx, bare)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
	assert.Equal(t, "Barbara", again.FirstName)
	assert.Equal(t, "Lodz", again.City)
}
