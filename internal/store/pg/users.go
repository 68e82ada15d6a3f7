package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"socialhub.dev/internal/social"
)

const userColumns = `id, username, email, password_hash, role, created_at, updated_at`

// UserRepo persists accounts in the users table.
type UserRepo struct {
	db *sql.DB
}

func scanUser(row interface{ Scan(...any) error }) (social.User, error) {
	var u social.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepo) CreateUser(ctx context.Context, in social.NewUser) (social.User, error) {
	if r.db == nil {
		return social.User{}, errNoDB
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, `
        insert into users(username, email, password_hash, role)
        values ($1, $2, $3, $4)
        returning `+userColumns,
		in.Username, in.Email, in.PasswordHash, in.Role,
	))
	if err != nil {
		return social.User{}, classify(err)
	}
	return u, nil
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*social.User, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, `select `+userColumns+` from users where `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*social.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// IsOwner holds when the account is the caller's own.
func (r *UserRepo) IsOwner(_ context.Context, id, userID int64) (bool, error) {
	return id > 0 && id == userID, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*social.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*social.User, error) {
	return r.getOne(ctx, `username = $1`, username)
}

func (r *UserRepo) ListUsers(ctx context.Context) ([]social.User, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	rows, err := r.db.QueryContext(ctx, `select `+userColumns+` from users order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]social.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUser writes only the fields set in upd.
func (r *UserRepo) UpdateUser(ctx context.Context, id int64, upd social.UserUpdate) (social.User, error) {
	if r.db == nil {
		return social.User{}, errNoDB
	}
	var (
		sets []string
		args []any
		idx  = 1
	)
	if upd.Username != nil {
		sets = append(sets, fmt.Sprintf("username = $%d", idx))
		args = append(args, *upd.Username)
		idx++
	}
	if upd.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", idx))
		args = append(args, *upd.Email)
		idx++
	}
	if upd.PasswordHash != nil {
		sets = append(sets, fmt.Sprintf("password_hash = $%d", idx))
		args = append(args, *upd.PasswordHash)
		idx++
	}
	if upd.Role != nil {
		sets = append(sets, fmt.Sprintf("role = $%d", idx))
		args = append(args, *upd.Role)
		idx++
	}
	if len(sets) == 0 {
		u, err := r.GetByID(ctx, id)
		if err != nil {
			return social.User{}, err
		}
		if u == nil {
			return social.User{}, social.ErrNotFound
		}
		return *u, nil
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`update users set %s where id = $%d returning %s`, strings.Join(sets, ", "), idx, userColumns)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return social.User{}, social.ErrNotFound
	}
	if err != nil {
		return social.User{}, classify(err)
	}
	return u, nil
}

// DeleteUser removes the account. Posts, comments and friendships go with it
// through on delete cascade.
func (r *UserRepo) DeleteUser(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `delete from users where id = $1`, id)
}
