package social

import (
	"context"
	"strings"
)

const msgPostNotFound = "Post not found"

type CreatePostInput struct {
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	Content string `json:"content" validate:"required"`
}

type UpdatePostInput struct {
	Content string `json:"content" validate:"required"`
}

func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (Post, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.check(in); err != nil {
		return Post{}, err
	}
	return s.posts.CreatePost(ctx, in.UserID, in.Content)
}

func (s *Service) GetPost(ctx context.Context, id int64) (Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if p == nil {
		return Post{}, notFound(msgPostNotFound)
	}
	return *p, nil
}

func (s *Service) ListPosts(ctx context.Context) ([]Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	return orEmpty(posts), err
}

func (s *Service) ListPostsByUser(ctx context.Context, userID int64) ([]Post, error) {
	posts, err := s.posts.ListPostsByUser(ctx, userID)
	return orEmpty(posts), err
}

func (s *Service) UpdatePost(ctx context.Context, id int64, in UpdatePostInput) (Post, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.check(in); err != nil {
		return Post{}, err
	}
	p, err := s.posts.UpdatePost(ctx, id, in.Content)
	if err != nil {
		return Post{}, wrapNotFound(err, msgPostNotFound)
	}
	return p, nil
}

func (s *Service) DeletePost(ctx context.Context, id int64) error {
	return wrapNotFound(s.posts.DeletePost(ctx, id), msgPostNotFound)
}

// orEmpty keeps list endpoints rendering [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
