package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"socialhub.dev/internal/auth"
)

const (
	MsgNotAuthenticated   = "User not authenticated"
	MsgRoleNotAllowed     = "Access forbidden: Role not allowed"
	MsgActingAsOtherUser  = "You are not authorized to perform this action as another user."
	MsgInvalidOwnershipID = "User not authenticated or invalid userId"
	MsgResourceNotFound   = "Resource not found"
	MsgNotOwner           = "You do not have permission"
)

// Denial is a negative decision. Status is the HTTP status to answer with.
type Denial struct {
	Status  int
	Message string
}

func (d *Denial) Error() string {
	return fmt.Sprintf("authz: %d %s", d.Status, d.Message)
}

func deny(status int, msg string) *Denial {
	return &Denial{Status: status, Message: msg}
}

// Request is everything Evaluate may look at.
type Request struct {
	// Identity is nil when the caller is not authenticated.
	Identity *auth.Identity
	// Body is the decoded JSON object, numbers kept as json.Number.
	Body map[string]any
	// Param resolves a path parameter by name.
	Param func(name string) string
}

// Evaluate applies p to req. It returns nil to allow, a *Denial to refuse, or
// any other error when the resource lookup failed. Checks run in order role
// gate, declared identity, ownership and stop at the first failure.
func Evaluate(ctx context.Context, p Policy, req Request) error {
	if len(p.AllowedRoles) > 0 {
		if req.Identity == nil {
			return deny(http.StatusUnauthorized, MsgNotAuthenticated)
		}
		if !slices.Contains(p.AllowedRoles, req.Identity.Role) {
			return deny(http.StatusForbidden, MsgRoleNotAllowed)
		}
	}

	if p.ActionIdentityKey != "" {
		if req.Identity == nil || !sameUserID(req.Body[p.ActionIdentityKey], req.Identity.UserID) {
			return deny(http.StatusForbidden, MsgActingAsOtherUser)
		}
	}

	if p.ResourceDAO != nil {
		if req.Identity == nil || req.Identity.UserID <= 0 || req.Param == nil {
			return deny(http.StatusUnauthorized, MsgInvalidOwnershipID)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(req.Param(p.ResourceIDParam)), 10, 64)
		if err != nil {
			return deny(http.StatusUnauthorized, MsgInvalidOwnershipID)
		}
		found, err := p.ResourceDAO.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("authz: load resource %d: %w", id, err)
		}
		if !found {
			return deny(http.StatusNotFound, MsgResourceNotFound)
		}
		if !req.Identity.IsAdmin() {
			owner, err := p.ResourceDAO.IsOwner(ctx, id, req.Identity.UserID)
			if err != nil {
				return fmt.Errorf("authz: check owner of %d: %w", id, err)
			}
			if !owner {
				return deny(http.StatusForbidden, MsgNotOwner)
			}
		}
	}
	return nil
}

// sameUserID is strict: only a JSON number whose exact value equals userID
// matches. Strings, null, missing keys and fractional numbers never do.
func sameUserID(v any, userID int64) bool {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i == userID
		}
		r, ok := new(big.Rat).SetString(n.String())
		return ok && r.IsInt() && r.Num().IsInt64() && r.Num().Int64() == userID
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return false
		}
		return int64(n) == userID
	case int64:
		return n == userID
	case int:
		return int64(n) == userID
	default:
		return false
	}
}
