package social

import (
	"context"
	"fmt"
	"strings"
)

const msgCommentNotFound = "Comment not found"

type CreateCommentInput struct {
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	PostID  int64  `json:"postId" validate:"required,gt=0"`
	Content string `json:"content" validate:"required"`
}

type UpdateCommentInput struct {
	Content string `json:"content" validate:"required"`
}

func (s *Service) CreateComment(ctx context.Context, in CreateCommentInput) (Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.check(in); err != nil {
		return Comment{}, err
	}
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return Comment{}, err
	}
	if post == nil {
		return Comment{}, invalid("Foreign Key Constraint Error", fmt.Sprintf("post %d does not exist", in.PostID))
	}
	return s.comments.CreateComment(ctx, in.UserID, in.PostID, in.Content)
}

func (s *Service) GetComment(ctx context.Context, id int64) (Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return Comment{}, err
	}
	if c == nil {
		return Comment{}, notFound(msgCommentNotFound)
	}
	return *c, nil
}

func (s *Service) ListCommentsByPost(ctx context.Context, postID int64) ([]Comment, error) {
	comments, err := s.comments.ListCommentsByPost(ctx, postID)
	return orEmpty(comments), err
}

func (s *Service) UpdateComment(ctx context.Context, id int64, in UpdateCommentInput) (Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.check(in); err != nil {
		return Comment{}, err
	}
	c, err := s.comments.UpdateComment(ctx, id, in.Content)
	if err != nil {
		return Comment{}, wrapNotFound(err, msgCommentNotFound)
	}
	return c, nil
}

func (s *Service) DeleteComment(ctx context.Context, id int64) error {
	return wrapNotFound(s.comments.DeleteComment(ctx, id), msgCommentNotFound)
}
