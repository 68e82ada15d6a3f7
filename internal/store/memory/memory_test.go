package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub.dev/internal/auth"
	"socialhub.dev/internal/social"
	"socialhub.dev/internal/store/memory"
)

func mustUser(t *testing.T, s *memory.Store, name string) social.User {
	t.Helper()
	u, err := s.Users().CreateUser(context.Background(), social.NewUser{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Role:         auth.RoleUser,
	})
	require.NoError(t, err)
	return u
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	carol := mustUser(t, s, "carol")

	alicePost, err := s.Posts().CreatePost(ctx, alice.ID, "a")
	require.NoError(t, err)
	bobPost, err := s.Posts().CreatePost(ctx, bob.ID, "b")
	require.NoError(t, err)

	bobOnAlice, err := s.Comments().CreateComment(ctx, bob.ID, alicePost.ID, "x")
	require.NoError(t, err)
	aliceOnBob, err := s.Comments().CreateComment(ctx, alice.ID, bobPost.ID, "y")
	require.NoError(t, err)
	carolOnBob, err := s.Comments().CreateComment(ctx, carol.ID, bobPost.ID, "z")
	require.NoError(t, err)

	sent, err := s.Friendships().CreateFriendship(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	received, err := s.Friendships().CreateFriendship(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	unrelated, err := s.Friendships().CreateFriendship(ctx, bob.ID, carol.ID)
	require.NoError(t, err)

	require.NoError(t, s.Users().DeleteUser(ctx, alice.ID))

	u, err := s.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, u)

	p, err := s.Posts().GetByID(ctx, alicePost.ID)
	require.NoError(t, err)
	assert.Nil(t, p)

	// Comments by other users on the deleted user's posts go with the post.
	for _, id := range []int64{bobOnAlice.ID, aliceOnBob.ID} {
		c, err := s.Comments().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, c, "comment %d", id)
	}
	for _, id := range []int64{sent.ID, received.ID} {
		f, err := s.Friendships().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, f, "friendship %d", id)
	}

	p, err = s.Posts().GetByID(ctx, bobPost.ID)
	require.NoError(t, err)
	assert.NotNil(t, p)
	c, err := s.Comments().GetByID(ctx, carolOnBob.ID)
	require.NoError(t, err)
	assert.NotNil(t, c)
	f, err := s.Friendships().GetByID(ctx, unrelated.ID)
	require.NoError(t, err)
	assert.NotNil(t, f)

	comments, err := s.Comments().ListCommentsByPost(ctx, bobPost.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	assert.ErrorIs(t, s.Users().DeleteUser(ctx, alice.ID), social.ErrNotFound)
}

func TestDeletePostCascadesToComments(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	post, err := s.Posts().CreatePost(ctx, alice.ID, "a")
	require.NoError(t, err)
	c, err := s.Comments().CreateComment(ctx, bob.ID, post.ID, "x")
	require.NoError(t, err)

	require.NoError(t, s.Posts().DeletePost(ctx, post.ID))
	got, err := s.Comments().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, s.Posts().DeletePost(ctx, post.ID), social.ErrNotFound)
}

func TestUniquenessAndForeignKeys(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	_, err := s.Users().CreateUser(ctx, social.NewUser{Username: "alice", Email: "other@example.com", Role: auth.RoleUser})
	assert.ErrorIs(t, err, social.ErrConflict)
	_, err = s.Users().CreateUser(ctx, social.NewUser{Username: "other", Email: "alice@example.com", Role: auth.RoleUser})
	assert.ErrorIs(t, err, social.ErrConflict)

	_, err = s.Posts().CreatePost(ctx, 999, "orphan")
	assert.ErrorIs(t, err, social.ErrInvalidInput)
	_, err = s.Comments().CreateComment(ctx, alice.ID, 999, "orphan")
	assert.ErrorIs(t, err, social.ErrInvalidInput)

	_, err = s.Friendships().CreateFriendship(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = s.Friendships().CreateFriendship(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, social.ErrConflict)

	between, err := s.Friendships().ExistsBetween(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, between)
}

func TestOwnership(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	post, err := s.Posts().CreatePost(ctx, alice.ID, "a")
	require.NoError(t, err)
	f, err := s.Friendships().CreateFriendship(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	owner, err := s.Posts().IsOwner(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, owner)
	owner, err = s.Posts().IsOwner(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, owner)

	// The requestee owns a friend request, not the requester.
	owner, err = s.Friendships().IsOwner(ctx, f.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, owner)
	owner, err = s.Friendships().IsOwner(ctx, f.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, owner)

	owner, err = s.Users().IsOwner(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, owner)
}
