package pg

import (
	"context"
	"database/sql"
	"errors"

	"socialhub.dev/internal/social"
)

const postColumns = `id, user_id, content, created_at, updated_at`

type PostRepo struct {
	db *sql.DB
}

func scanPost(row interface{ Scan(...any) error }) (social.Post, error) {
	var p social.Post
	err := row.Scan(&p.ID, &p.UserID, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostRepo) queryPosts(ctx context.Context, query string, args ...any) ([]social.Post, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]social.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostRepo) CreatePost(ctx context.Context, userID int64, content string) (social.Post, error) {
	if r.db == nil {
		return social.Post{}, errNoDB
	}
	p, err := scanPost(r.db.QueryRowContext(ctx, `
        insert into posts(user_id, content)
        values ($1, $2)
        returning `+postColumns,
		userID, content,
	))
	if err != nil {
		return social.Post{}, classify(err)
	}
	return p, nil
}

func (r *PostRepo) GetByID(ctx context.Context, id int64) (*social.Post, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	p, err := scanPost(r.db.QueryRowContext(ctx, `select `+postColumns+` from posts where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepo) IsOwner(ctx context.Context, id, userID int64) (bool, error) {
	return exists(ctx, r.db, `select exists(select 1 from posts where id = $1 and user_id = $2)`, id, userID)
}

func (r *PostRepo) ListPosts(ctx context.Context) ([]social.Post, error) {
	return r.queryPosts(ctx, `select `+postColumns+` from posts order by id`)
}

func (r *PostRepo) ListPostsByUser(ctx context.Context, userID int64) ([]social.Post, error) {
	return r.queryPosts(ctx, `select `+postColumns+` from posts where user_id = $1 order by id`, userID)
}

func (r *PostRepo) UpdatePost(ctx context.Context, id int64, content string) (social.Post, error) {
	if r.db == nil {
		return social.Post{}, errNoDB
	}
	p, err := scanPost(r.db.QueryRowContext(ctx, `
        update posts set content = $1, updated_at = now()
        where id = $2
        returning `+postColumns,
		content, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return social.Post{}, social.ErrNotFound
	}
	if err != nil {
		return social.Post{}, classify(err)
	}
	return p, nil
}

func (r *PostRepo) DeletePost(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `delete from posts where id = $1`, id)
}
