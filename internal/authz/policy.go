// Package authz decides, before a handler runs, whether the caller may act on
// the request. A route declares a Policy; Evaluate applies it.
package authz

import (
	"context"
	"errors"
	"fmt"

	"socialhub.dev/internal/auth"
)

// Repository is the capability an ownership check needs from a resource store.
// GetByID returns nil, nil when the resource does not exist.
type Repository[T any] interface {
	GetByID(ctx context.Context, id int64) (*T, error)
	IsOwner(ctx context.Context, id, userID int64) (bool, error)
}

// ResourceDAO is a Repository with the resource type erased, as carried by a Policy.
type ResourceDAO interface {
	Exists(ctx context.Context, id int64) (bool, error)
	IsOwner(ctx context.Context, id, userID int64) (bool, error)
}

// Resource adapts a typed repository for use in a Policy.
func Resource[T any](repo Repository[T]) ResourceDAO {
	return repositoryDAO[T]{repo: repo}
}

type repositoryDAO[T any] struct {
	repo Repository[T]
}

func (d repositoryDAO[T]) Exists(ctx context.Context, id int64) (bool, error) {
	v, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func (d repositoryDAO[T]) IsOwner(ctx context.Context, id, userID int64) (bool, error) {
	return d.repo.IsOwner(ctx, id, userID)
}

// Policy selects which checks guard a route. The zero Policy allows everything
// that reached it.
type Policy struct {
	// AllowedRoles gates the route to these roles when non-empty.
	AllowedRoles []auth.Role
	// ActionIdentityKey names a body field that must hold the caller's userId.
	ActionIdentityKey string
	// ResourceDAO and ResourceIDParam enable the ownership check together.
	ResourceDAO     ResourceDAO
	ResourceIDParam string
}

// Validate reports a policy that cannot be evaluated.
func (p Policy) Validate() error {
	if (p.ResourceDAO == nil) != (p.ResourceIDParam == "") {
		return errors.New("authz: ResourceDAO and ResourceIDParam must be set together")
	}
	for _, r := range p.AllowedRoles {
		if _, ok := auth.ParseRole(string(r)); !ok {
			return fmt.Errorf("authz: unknown role %q", r)
		}
	}
	return nil
}

// Roles is shorthand for a role-gate-only policy.
func Roles(roles ...auth.Role) Policy {
	return Policy{AllowedRoles: roles}
}

// Owner is shorthand for an ownership-only policy.
func Owner(dao ResourceDAO, idParam string) Policy {
	return Policy{ResourceDAO: dao, ResourceIDParam: idParam}
}

// ActingAs is shorthand for a declared-identity-only policy.
func ActingAs(key string) Policy {
	return Policy{ActionIdentityKey: key}
}
