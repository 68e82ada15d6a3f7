package pg

import (
	"context"
	"database/sql"
	"errors"

	"socialhub.dev/internal/social"
)

const commentColumns = `id, user_id, post_id, content, created_at, updated_at`

type CommentRepo struct {
	db *sql.DB
}

func scanComment(row interface{ Scan(...any) error }) (social.Comment, error) {
	var c social.Comment
	err := row.Scan(&c.ID, &c.UserID, &c.PostID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *CommentRepo) CreateComment(ctx context.Context, userID, postID int64, content string) (social.Comment, error) {
	if r.db == nil {
		return social.Comment{}, errNoDB
	}
	c, err := scanComment(r.db.QueryRowContext(ctx, `
        insert into comments(user_id, post_id, content)
        values ($1, $2, $3)
        returning `+commentColumns,
		userID, postID, content,
	))
	if err != nil {
		return social.Comment{}, classify(err)
	}
	return c, nil
}

func (r *CommentRepo) GetByID(ctx context.Context, id int64) (*social.Comment, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	c, err := scanComment(r.db.QueryRowContext(ctx, `select `+commentColumns+` from comments where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepo) IsOwner(ctx context.Context, id, userID int64) (bool, error) {
	return exists(ctx, r.db, `select exists(select 1 from comments where id = $1 and user_id = $2)`, id, userID)
}

func (r *CommentRepo) ListCommentsByPost(ctx context.Context, postID int64) ([]social.Comment, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	rows, err := r.db.QueryContext(ctx, `select `+commentColumns+` from comments where post_id = $1 order by id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]social.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CommentRepo) UpdateComment(ctx context.Context, id int64, content string) (social.Comment, error) {
	if r.db == nil {
		return social.Comment{}, errNoDB
	}
	c, err := scanComment(r.db.QueryRowContext(ctx, `
        update comments set content = $1, updated_at = now()
        where id = $2
        returning `+commentColumns,
		content, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return social.Comment{}, social.ErrNotFound
	}
	if err != nil {
		return social.Comment{}, classify(err)
	}
	return c, nil
}

func (r *CommentRepo) DeleteComment(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `delete from comments where id = $1`, id)
}
