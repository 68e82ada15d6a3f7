package pg

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub.dev/internal/auth"
	"socialhub.dev/internal/social"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

var ts = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`insert into users(username, email, password_hash, role)`)).
		WithArgs("ana", "ana@example.com", "hash", "user").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, Detail: "Key (email)=(ana@example.com) already exists."})

	_, err := s.Users().CreateUser(context.Background(), social.NewUser{
		Username: "ana", Email: "ana@example.com", PasswordHash: "hash", Role: auth.RoleUser,
	})
	require.ErrorIs(t, err, social.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByIDMissingReturnsNil(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`select id, username, email, password_hash, role, created_at, updated_at from users where id = $1`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}))

	u, err := s.Users().GetByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserBuildsSetClause(t *testing.T) {
	s, mock := newMock(t)
	email := "new@example.com"
	role := auth.RoleAdmin
	mock.ExpectQuery(regexp.QuoteMeta(`update users set email = $1, role = $2, updated_at = now() where id = $3 returning`)).
		WithArgs(email, "admin", int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}).
			AddRow(int64(4), "bo", email, "hash", "admin", ts, ts))

	u, err := s.Users().UpdateUser(context.Background(), 4, social.UserUpdate{Email: &email, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, email, u.Email)
	assert.Equal(t, auth.RoleAdmin, u.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserIsOwnerDoesNotQuery(t *testing.T) {
	s, mock := newMock(t)
	ok, err := s.Users().IsOwner(context.Background(), 3, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Users().IsOwner(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserNotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`delete from users where id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Users().DeleteUser(context.Background(), 5)
	require.ErrorIs(t, err, social.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostIsOwner(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`select exists(select 1 from posts where id = $1 and user_id = $2)`)).
		WithArgs(int64(10), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.Posts().IsOwner(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommentForeignKeyViolation(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`insert into comments(user_id, post_id, content)`)).
		WithArgs(int64(1), int64(77), "hi").
		WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation})

	_, err := s.Comments().CreateComment(context.Background(), 1, 77, "hi")
	require.ErrorIs(t, err, social.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePostMissing(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`update posts set content = $1, updated_at = now()`)).
		WithArgs("edited", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "created_at", "updated_at"}))

	_, err := s.Posts().UpdatePost(context.Background(), 3, "edited")
	require.ErrorIs(t, err, social.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendshipIsOwnerChecksRequestee(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`select exists(select 1 from friendships where id = $1 and requestee_id = $2)`)).
		WithArgs(int64(2), int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := s.Friendships().IsOwner(context.Background(), 2, 8)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendshipListByStatus(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`select .* from friendships\s+where \(requester_id = \$1 or requestee_id = \$1\) and status = \$2`).
		WithArgs(int64(1), "ACCEPTED").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "requestee_id", "status", "created_at", "updated_at"}).
			AddRow(int64(1), int64(1), int64(2), "ACCEPTED", ts, ts).
			AddRow(int64(4), int64(3), int64(1), "ACCEPTED", ts, ts))

	got, err := s.Friendships().ListByStatus(context.Background(), 1, social.FriendshipAccepted)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, social.FriendshipAccepted, got[1].Status)
	assert.True(t, got[1].Involves(1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsBetweenChecksBothDirections(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`or \(requester_id = \$2 and requestee_id = \$1\)`).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.Friendships().ExistsBetween(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
