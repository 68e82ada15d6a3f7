package pg

import (
	"context"
	"database/sql"
	"errors"

	"socialhub.dev/internal/social"
)

const friendshipColumns = `id, requester_id, requestee_id, status, created_at, updated_at`

type FriendshipRepo struct {
	db *sql.DB
}

func scanFriendship(row interface{ Scan(...any) error }) (social.Friendship, error) {
	var f social.Friendship
	err := row.Scan(&f.ID, &f.RequesterID, &f.RequesteeID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// CreateFriendship records a PENDING request from requesterID to requesteeID.
func (r *FriendshipRepo) CreateFriendship(ctx context.Context, requesterID, requesteeID int64) (social.Friendship, error) {
	if r.db == nil {
		return social.Friendship{}, errNoDB
	}
	f, err := scanFriendship(r.db.QueryRowContext(ctx, `
        insert into friendships(requester_id, requestee_id, status)
        values ($1, $2, $3)
        returning `+friendshipColumns,
		requesterID, requesteeID, social.FriendshipPending,
	))
	if err != nil {
		return social.Friendship{}, classify(err)
	}
	return f, nil
}

func (r *FriendshipRepo) GetByID(ctx context.Context, id int64) (*social.Friendship, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	f, err := scanFriendship(r.db.QueryRowContext(ctx, `select `+friendshipColumns+` from friendships where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// IsOwner holds only for the requestee, who decides on the request.
func (r *FriendshipRepo) IsOwner(ctx context.Context, id, userID int64) (bool, error) {
	return exists(ctx, r.db, `select exists(select 1 from friendships where id = $1 and requestee_id = $2)`, id, userID)
}

// ExistsBetween checks both directions.
func (r *FriendshipRepo) ExistsBetween(ctx context.Context, a, b int64) (bool, error) {
	return exists(ctx, r.db, `
        select exists(
            select 1 from friendships
            where (requester_id = $1 and requestee_id = $2)
               or (requester_id = $2 and requestee_id = $1)
        )`, a, b)
}

func (r *FriendshipRepo) UpdateStatus(ctx context.Context, id int64, status social.FriendshipStatus) (social.Friendship, error) {
	if r.db == nil {
		return social.Friendship{}, errNoDB
	}
	f, err := scanFriendship(r.db.QueryRowContext(ctx, `
        update friendships set status = $1, updated_at = now()
        where id = $2
        returning `+friendshipColumns,
		status, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return social.Friendship{}, social.ErrNotFound
	}
	if err != nil {
		return social.Friendship{}, classify(err)
	}
	return f, nil
}

func (r *FriendshipRepo) DeleteFriendship(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `delete from friendships where id = $1`, id)
}

// ListByStatus returns the friendships userID takes part in with the given status.
func (r *FriendshipRepo) ListByStatus(ctx context.Context, userID int64, status social.FriendshipStatus) ([]social.Friendship, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	rows, err := r.db.QueryContext(ctx, `
        select `+friendshipColumns+` from friendships
        where (requester_id = $1 or requestee_id = $1) and status = $2
        order by id`, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]social.Friendship, 0)
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
