package social

import (
	"context"
	"strings"

	"socialhub.dev/internal/auth"
)

const msgUserNotFound = "User not found"

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,emailaddr"`
	Password string `json:"password" validate:"required,password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserInput struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
	Email    *string `json:"email,omitempty" validate:"omitempty,emailaddr"`
	Password *string `json:"password,omitempty" validate:"omitempty,password"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

func hashPassword(pw string) (string, error) { return auth.HashPassword(pw) }

func verifyPassword(hash, pw string) error { return auth.VerifyPassword(hash, pw) }

// Register creates a regular user after format and uniqueness checks.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := s.check(in); err != nil {
		return User{}, err
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return User{}, err
	}
	if existing != nil {
		return User{}, conflict("Email already registered", nil)
	}
	existing, err = s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return User{}, err
	}
	if existing != nil {
		return User{}, conflict("Username already taken", nil)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return User{}, err
	}
	return s.users.CreateUser(ctx, NewUser{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         auth.RoleUser,
	})
}

// Login returns the user matching the credentials. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := s.check(in); err != nil {
		return User{}, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return User{}, err
	}
	if u == nil || s.verify(u.PasswordHash, in.Password) != nil {
		return User{}, invalid("Invalid email or password", nil)
	}
	return *u, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if u == nil {
		return User{}, notFound(msgUserNotFound)
	}
	return *u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// UpdateUser applies a partial update on behalf of actor. Only admins may
// change roles.
func (s *Service) UpdateUser(ctx context.Context, actor auth.Identity, id int64, in UpdateUserInput) (User, error) {
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if in.Email != nil {
		normalized := strings.TrimSpace(strings.ToLower(*in.Email))
		in.Email = &normalized
	}
	if err := s.check(in); err != nil {
		return User{}, err
	}

	var upd UserUpdate
	if in.Role != nil {
		if !actor.IsAdmin() {
			return User{}, forbidden("You do not have permission")
		}
		role, _ := auth.ParseRole(*in.Role)
		upd.Role = &role
	}
	if in.Username != nil {
		other, err := s.users.GetByUsername(ctx, *in.Username)
		if err != nil {
			return User{}, err
		}
		if other != nil && other.ID != id {
			return User{}, conflict("Username already in use", nil)
		}
		upd.Username = in.Username
	}
	if in.Email != nil {
		other, err := s.users.GetByEmail(ctx, *in.Email)
		if err != nil {
			return User{}, err
		}
		if other != nil && other.ID != id {
			return User{}, conflict("Email already in use", nil)
		}
		upd.Email = in.Email
	}
	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return User{}, err
		}
		upd.PasswordHash = &hash
	}

	u, err := s.users.UpdateUser(ctx, id, upd)
	if err != nil {
		return User{}, wrapNotFound(err, msgUserNotFound)
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return wrapNotFound(s.users.DeleteUser(ctx, id), msgUserNotFound)
}
