// Package memory keeps every repository in process memory. It backs tests and
// local runs without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"socialhub.dev/internal/social"
)

// Store is the shared state behind the per-entity repositories.
type Store struct {
	mu          sync.RWMutex
	seq         int64
	users       map[int64]social.User
	posts       map[int64]social.Post
	comments    map[int64]social.Comment
	friendships map[int64]social.Friendship
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:       make(map[int64]social.User),
		posts:       make(map[int64]social.Post),
		comments:    make(map[int64]social.Comment),
		friendships: make(map[int64]social.Friendship),
	}
}

// Stores returns repositories sharing this store's state.
func (s *Store) Stores() social.Stores {
	return social.Stores{
		Users:       &UserRepo{s: s},
		Posts:       &PostRepo{s: s},
		Comments:    &CommentRepo{s: s},
		Friendships: &FriendshipRepo{s: s},
	}
}

func (s *Store) Users() *UserRepo             { return &UserRepo{s: s} }
func (s *Store) Posts() *PostRepo             { return &PostRepo{s: s} }
func (s *Store) Comments() *CommentRepo       { return &CommentRepo{s: s} }
func (s *Store) Friendships() *FriendshipRepo { return &FriendshipRepo{s: s} }

// nextID is called with mu held.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func now() time.Time { return time.Now().UTC() }

func sortedValues[T any](m map[int64]T, keep func(T) bool) []T {
	keys := make([]int64, 0, len(m))
	for k, v := range m {
		if keep == nil || keep(v) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

type UserRepo struct{ s *Store }

func (r *UserRepo) CreateUser(_ context.Context, u social.NewUser) (social.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return social.User{}, social.ErrConflict
		}
	}
	ts := now()
	user := social.User{
		ID:           r.s.nextID(),
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	r.s.users[user.ID] = user
	return user, nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*social.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// IsOwner: a user record belongs to that user only.
func (r *UserRepo) IsOwner(_ context.Context, id, userID int64) (bool, error) {
	return id == userID, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*social.User, error) {
	return r.find(func(u social.User) bool { return u.Email == email }), nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*social.User, error) {
	return r.find(func(u social.User) bool { return u.Username == username }), nil
}

func (r *UserRepo) find(match func(social.User) bool) *social.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u
		}
	}
	return nil
}

func (r *UserRepo) ListUsers(_ context.Context) ([]social.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.users, nil), nil
}

func (r *UserRepo) UpdateUser(_ context.Context, id int64, upd social.UserUpdate) (social.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return social.User{}, social.ErrNotFound
	}
	for _, other := range r.s.users {
		if other.ID == id {
			continue
		}
		if (upd.Email != nil && other.Email == *upd.Email) || (upd.Username != nil && other.Username == *upd.Username) {
			return social.User{}, social.ErrConflict
		}
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	u.UpdatedAt = now()
	r.s.users[id] = u
	return u, nil
}

// DeleteUser cascades to the user's posts, comments and friendships.
func (r *UserRepo) DeleteUser(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return social.ErrNotFound
	}
	delete(r.s.users, id)
	for pid, p := range r.s.posts {
		if p.UserID == id {
			r.s.deletePostLocked(pid)
		}
	}
	for cid, c := range r.s.comments {
		if c.UserID == id {
			delete(r.s.comments, cid)
		}
	}
	for fid, f := range r.s.friendships {
		if f.Involves(id) {
			delete(r.s.friendships, fid)
		}
	}
	return nil
}

type PostRepo struct{ s *Store }

func (r *PostRepo) CreatePost(_ context.Context, userID int64, content string) (social.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return social.Post{}, social.ErrInvalidInput
	}
	ts := now()
	p := social.Post{ID: r.s.nextID(), UserID: userID, Content: content, CreatedAt: ts, UpdatedAt: ts}
	r.s.posts[p.ID] = p
	return p, nil
}

func (r *PostRepo) GetByID(_ context.Context, id int64) (*social.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PostRepo) IsOwner(_ context.Context, id, userID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	return ok && p.UserID == userID, nil
}

func (r *PostRepo) ListPosts(_ context.Context) ([]social.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.posts, nil), nil
}

func (r *PostRepo) ListPostsByUser(_ context.Context, userID int64) ([]social.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.posts, func(p social.Post) bool { return p.UserID == userID }), nil
}

func (r *PostRepo) UpdatePost(_ context.Context, id int64, content string) (social.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return social.Post{}, social.ErrNotFound
	}
	p.Content = content
	p.UpdatedAt = now()
	r.s.posts[id] = p
	return p, nil
}

func (r *PostRepo) DeletePost(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return social.ErrNotFound
	}
	r.s.deletePostLocked(id)
	return nil
}

func (s *Store) deletePostLocked(id int64) {
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
}

type CommentRepo struct{ s *Store }

func (r *CommentRepo) CreateComment(_ context.Context, userID, postID int64, content string) (social.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return social.Comment{}, social.ErrInvalidInput
	}
	if _, ok := r.s.posts[postID]; !ok {
		return social.Comment{}, social.ErrInvalidInput
	}
	ts := now()
	c := social.Comment{ID: r.s.nextID(), UserID: userID, PostID: postID, Content: content, CreatedAt: ts, UpdatedAt: ts}
	r.s.comments[c.ID] = c
	return c, nil
}

func (r *CommentRepo) GetByID(_ context.Context, id int64) (*social.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// IsOwner: the commenter owns a comment, not the post's author.
func (r *CommentRepo) IsOwner(_ context.Context, id, userID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	return ok && c.UserID == userID, nil
}

func (r *CommentRepo) ListCommentsByPost(_ context.Context, postID int64) ([]social.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.comments, func(c social.Comment) bool { return c.PostID == postID }), nil
}

func (r *CommentRepo) UpdateComment(_ context.Context, id int64, content string) (social.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return social.Comment{}, social.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = now()
	r.s.comments[id] = c
	return c, nil
}

func (r *CommentRepo) DeleteComment(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return social.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

type FriendshipRepo struct{ s *Store }

func (r *FriendshipRepo) CreateFriendship(_ context.Context, requesterID, requesteeID int64) (social.Friendship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.friendships {
		if f.RequesterID == requesterID && f.RequesteeID == requesteeID {
			return social.Friendship{}, social.ErrConflict
		}
	}
	ts := now()
	f := social.Friendship{
		ID:          r.s.nextID(),
		RequesterID: requesterID,
		RequesteeID: requesteeID,
		Status:      social.FriendshipPending,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	r.s.friendships[f.ID] = f
	return f, nil
}

func (r *FriendshipRepo) GetByID(_ context.Context, id int64) (*social.Friendship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.friendships[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// IsOwner: only the requestee owns a friend request.
func (r *FriendshipRepo) IsOwner(_ context.Context, id, userID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.friendships[id]
	return ok && f.RequesteeID == userID, nil
}

func (r *FriendshipRepo) ExistsBetween(_ context.Context, a, b int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, f := range r.s.friendships {
		if (f.RequesterID == a && f.RequesteeID == b) || (f.RequesterID == b && f.RequesteeID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (r *FriendshipRepo) UpdateStatus(_ context.Context, id int64, status social.FriendshipStatus) (social.Friendship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.friendships[id]
	if !ok {
		return social.Friendship{}, social.ErrNotFound
	}
	f.Status = status
	f.UpdatedAt = now()
	r.s.friendships[id] = f
	return f, nil
}

func (r *FriendshipRepo) DeleteFriendship(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.friendships[id]; !ok {
		return social.ErrNotFound
	}
	delete(r.s.friendships, id)
	return nil
}

func (r *FriendshipRepo) ListByStatus(_ context.Context, userID int64, status social.FriendshipStatus) ([]social.Friendship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.friendships, func(f social.Friendship) bool {
		return f.Involves(userID) && f.Status == status
	}), nil
}
