package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/testhelpers"
)

func TestRegister(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "longenoughpassword",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "longenoughpassword", user.PasswordHash)
}

func TestRegisterReservedUsername(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)
	ctx := context.Background()

	for _, username := range []string{"me", "Me", "ME"} {
		_, err := svc.Register(ctx, RegisterInput{
			Email:    "me@example.com",
			Username: username,
			Password: "longenoughpassword",
		})
		assert.ErrorIs(t, err, ErrReservedUsername, "username %q", username)
	}
}

func TestRegisterPasswordContainsUsername(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "MyAdaPassword1",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterDuplicate(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)
	ctx := context.Background()

	testhelpers.CreateUser(t, db, "ada")

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "ada@example.com",
		Username: "different",
		Password: "longenoughpassword",
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.Register(ctx, RegisterInput{
		Email:    "different@example.com",
		Username: "ada",
		Password: "longenoughpassword",
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, db, "ada")

	err := svc.SetPassword(ctx, user.ID, "wrong-password", "replacement-secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.SetPassword(ctx, user.ID, testhelpers.TestPassword, "replacement-secret")
	require.NoError(t, err)

	// The new password is the only one that verifies now.
	err = svc.SetPassword(ctx, user.ID, testhelpers.TestPassword, "another")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	err = svc.SetPassword(ctx, user.ID, "replacement-secret", "another")
	assert.NoError(t, err)
}

func TestSubscribe(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)
	ctx := context.Background()

	follower := testhelpers.CreateUser(t, db, "follower")
	author := testhelpers.CreateUser(t, db, "author")

	got, err := svc.Subscribe(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, got.ID)

	subscribed, err := svc.IsSubscribed(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	// The reverse direction is untouched.
	subscribed, err = svc.IsSubscribed(ctx, author.ID, follower.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)
}

func TestSubscribeSelf(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)

	user := testhelpers.CreateUser(t, db, "loner")
	_, err := svc.Subscribe(context.Background(), user.ID, user.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestSubscribeTwice(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)
	ctx := context.Background()

	follower := testhelpers.CreateUser(t, db, "follower")
	author := testhelpers.CreateUser(t, db, "author")

	_, err := svc.Subscribe(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, follower.ID, author.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUnsubscribe(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)
	ctx := context.Background()

	follower := testhelpers.CreateUser(t, db, "follower")
	author := testhelpers.CreateUser(t, db, "author")

	err := svc.Unsubscribe(ctx, follower.ID, author.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.Subscribe(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(ctx, follower.ID, author.ID))

	subscribed, err := svc.IsSubscribed(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)
}

func TestSubscriptions(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)
	ctx := context.Background()

	follower := testhelpers.CreateUser(t, db, "follower")
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	testhelpers.CreateUser(t, db, "ignored")

	_, err := svc.Subscribe(ctx, follower.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, follower.ID, alice.ID)
	require.NoError(t, err)

	authors, err := svc.Subscriptions(ctx, follower.ID, Page{})
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "alice", authors[0].Username)
	assert.Equal(t, "bob", authors[1].Username)
}

func TestAuthorRecipes(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	for _, name := range []string{"first", "second", "third"} {
		testhelpers.CreateRecipe(t, db, author, name, nil, nil)
	}

	recipes, count, err := svc.AuthorRecipes(ctx, author.ID, 2)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
	assert.EqualValues(t, 3, count)

	recipes, count, err = svc.AuthorRecipes(ctx, author.ID, 0)
	require.NoError(t, err)
	assert.Len(t, recipes, 3)
	assert.EqualValues(t, 3, count)
}

func TestUpdateProfile(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, db, "ada")

	first := "Ada"
	avatar := "/media/avatars/ada.png"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{
		FirstName: &first,
		AvatarURL: &avatar,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, avatar, updated.AvatarURL)
	// Untouched fields survive a partial update.
	assert.Equal(t, user.LastName, updated.LastName)
}
