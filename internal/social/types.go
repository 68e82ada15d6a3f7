package social

import (
	"context"
	"strings"
	"time"

	"socialhub.dev/internal/auth"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the token payload describing u.
func (u User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, UserName: u.Username, Role: u.Role}
}

type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "PENDING"
	FriendshipAccepted FriendshipStatus = "ACCEPTED"
	FriendshipDeclined FriendshipStatus = "DECLINED"
	FriendshipBlocked  FriendshipStatus = "BLOCKED"
)

// FriendshipStatuses lists every accepted status in display order.
var FriendshipStatuses = []FriendshipStatus{
	FriendshipPending, FriendshipAccepted, FriendshipDeclined, FriendshipBlocked,
}

// ParseFriendshipStatus matches raw against the known statuses. When
// caseInsensitive is false raw must already be upper-case.
func ParseFriendshipStatus(raw string, caseInsensitive bool) (FriendshipStatus, bool) {
	raw = strings.TrimSpace(raw)
	if caseInsensitive {
		raw = strings.ToUpper(raw)
	}
	for _, s := range FriendshipStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// Friendship is a friend request from Requester to Requestee. The requestee
// owns it: only they may change its status.
type Friendship struct {
	ID          int64            `json:"id"`
	RequesterID int64            `json:"requesterId"`
	RequesteeID int64            `json:"requesteeId"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Involves reports whether userID is either side of the request.
func (f Friendship) Involves(userID int64) bool {
	return f.RequesterID == userID || f.RequesteeID == userID
}

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
}

type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *auth.Role
}

// GetByID implementations return nil, nil when the row does not exist.

type UserStore interface {
	CreateUser(ctx context.Context, u NewUser) (User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	IsOwner(ctx context.Context, id, userID int64) (bool, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id int64, upd UserUpdate) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type PostStore interface {
	CreatePost(ctx context.Context, userID int64, content string) (Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	IsOwner(ctx context.Context, id, userID int64) (bool, error)
	ListPosts(ctx context.Context) ([]Post, error)
	ListPostsByUser(ctx context.Context, userID int64) ([]Post, error)
	UpdatePost(ctx context.Context, id int64, content string) (Post, error)
	DeletePost(ctx context.Context, id int64) error
}

type CommentStore interface {
	CreateComment(ctx context.Context, userID, postID int64, content string) (Comment, error)
	GetByID(ctx context.Context, id int64) (*Comment, error)
	IsOwner(ctx context.Context, id, userID int64) (bool, error)
	ListCommentsByPost(ctx context.Context, postID int64) ([]Comment, error)
	UpdateComment(ctx context.Context, id int64, content string) (Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

type FriendshipStore interface {
	CreateFriendship(ctx context.Context, requesterID, requesteeID int64) (Friendship, error)
	GetByID(ctx context.Context, id int64) (*Friendship, error)
	IsOwner(ctx context.Context, id, userID int64) (bool, error)
	ExistsBetween(ctx context.Context, a, b int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status FriendshipStatus) (Friendship, error)
	DeleteFriendship(ctx context.Context, id int64) error
	ListByStatus(ctx context.Context, userID int64, status FriendshipStatus) ([]Friendship, error)
}
