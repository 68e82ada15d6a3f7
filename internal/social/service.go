package social

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Service holds the business rules for accounts, posts, comments and
// friendships. Authorization has already run by the time a method is called.
type Service struct {
	users       UserStore
	posts       PostStore
	comments    CommentStore
	friendships FriendshipStore
	validate    *validator.Validate
	hash        func(string) (string, error)
	verify      func(hash, password string) error
}

// Stores groups the repositories a Service runs on.
type Stores struct {
	Users       UserStore
	Posts       PostStore
	Comments    CommentStore
	Friendships FriendshipStore
}

func NewService(stores Stores) (*Service, error) {
	if stores.Users == nil || stores.Posts == nil || stores.Comments == nil || stores.Friendships == nil {
		return nil, errors.New("social: all stores are required")
	}
	return &Service{
		users:       stores.Users,
		posts:       stores.Posts,
		comments:    stores.Comments,
		friendships: stores.Friendships,
		validate:    newValidator(),
		hash:        hashPassword,
		verify:      verifyPassword,
	}, nil
}

func (s *Service) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}
