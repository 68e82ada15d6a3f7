package social

import (
	"context"
	"fmt"

	"socialhub.dev/internal/auth"
)

const (
	msgFriendshipNotFound  = "Friendship not found."
	msgInvalidStatusUpdate = "Invalid status value. Allowed values are: 'PENDING', 'ACCEPTED', 'DECLINED', 'BLOCKED'."
	msgInvalidStatusFilter = "Invalid status value. Must be one of: 'PENDING', 'ACCEPTED', 'DECLINED', 'BLOCKED'."
)

type CreateFriendshipInput struct {
	RequesterID int64 `json:"requesterId" validate:"required,gt=0"`
	RequesteeID int64 `json:"requesteeId" validate:"required,gt=0"`
}

type UpdateFriendshipInput struct {
	RequesteeID int64  `json:"requesteeId"`
	Status      string `json:"status"`
}

// RequestFriendship files a PENDING request from requester to requestee.
func (s *Service) RequestFriendship(ctx context.Context, in CreateFriendshipInput) (Friendship, error) {
	if err := s.check(in); err != nil {
		return Friendship{}, err
	}
	if in.RequesterID == in.RequesteeID {
		return Friendship{}, invalid("You cannot send a friend request to yourself.", nil)
	}

	for _, id := range []int64{in.RequesterID, in.RequesteeID} {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return Friendship{}, err
		}
		if u == nil {
			return Friendship{}, invalid("One or both of the provided user IDs do not exist in the database.", nil)
		}
	}

	exists, err := s.friendships.ExistsBetween(ctx, in.RequesterID, in.RequesteeID)
	if err != nil {
		return Friendship{}, err
	}
	if exists {
		return Friendship{}, conflict("A friendship or friend request already exists between the users.", nil)
	}
	return s.friendships.CreateFriendship(ctx, in.RequesterID, in.RequesteeID)
}

func (s *Service) UpdateFriendshipStatus(ctx context.Context, id int64, in UpdateFriendshipInput) (Friendship, error) {
	status, ok := ParseFriendshipStatus(in.Status, false)
	if !ok {
		return Friendship{}, invalid(msgInvalidStatusUpdate, nil)
	}
	f, err := s.friendships.UpdateStatus(ctx, id, status)
	if err != nil {
		return Friendship{}, wrapNotFound(err, msgFriendshipNotFound)
	}
	return f, nil
}

// GetFriendship returns the request if actor is one of its sides or an admin.
func (s *Service) GetFriendship(ctx context.Context, actor auth.Identity, id int64) (Friendship, error) {
	f, err := s.friendships.GetByID(ctx, id)
	if err != nil {
		return Friendship{}, err
	}
	if f == nil {
		return Friendship{}, notFound(msgFriendshipNotFound)
	}
	if !actor.IsAdmin() && !f.Involves(actor.UserID) {
		return Friendship{}, forbidden("You do not have permission to view this friendship.")
	}
	return *f, nil
}

func (s *Service) DeleteFriendship(ctx context.Context, id int64) error {
	return wrapNotFound(s.friendships.DeleteFriendship(ctx, id), msgFriendshipNotFound)
}

// ListFriendships returns actor's friendships in the given status.
func (s *Service) ListFriendships(ctx context.Context, actor auth.Identity, rawStatus string) ([]Friendship, error) {
	status, ok := ParseFriendshipStatus(rawStatus, true)
	if !ok {
		return nil, invalid(msgInvalidStatusFilter, fmt.Sprintf("got %q", rawStatus))
	}
	items, err := s.friendships.ListByStatus(ctx, actor.UserID, status)
	return orEmpty(items), err
}
