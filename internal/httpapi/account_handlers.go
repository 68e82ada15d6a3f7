package httpapi

import (
	"net/http"
	"time"

	"socialhub.dev/internal/audit"
	"socialhub.dev/internal/auth"
	"socialhub.dev/internal/obs"
	"socialhub.dev/internal/social"
)

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      social.User `json:"user"`
}

func (a *API) issueSession(w http.ResponseWriter, r *http.Request, code int, u social.User, event string) {
	token, expiresAt, err := a.tokens.Issue(u.Identity())
	if err != nil {
		obs.Logger().ErrorContext(r.Context(), "token issue failed", "user_id", u.ID, "error", err)
		writeError(w, r, http.StatusInternalServerError, errorBody{Message: "Token generation failed"})
		return
	}
	_ = audit.LogEvent(r.Context(), event, map[string]any{
		"user_id":    u.ID,
		"role":       string(u.Role),
		"expires_at": expiresAt.Format(time.RFC3339),
	})
	writeJSON(w, code, sessionResponse{Token: token, ExpiresAt: expiresAt, User: u})
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in social.RegisterInput
	if !readJSON(w, r, &in) {
		return
	}
	u, err := a.svc.Register(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err, "Registration failed")
		return
	}
	a.issueSession(w, r, http.StatusCreated, u, "account.registered")
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var in social.LoginInput
	if !readJSON(w, r, &in) {
		return
	}
	u, err := a.svc.Login(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err, "Login failed")
		return
	}
	a.issueSession(w, r, http.StatusOK, u, "account.login")
}

// logout revokes the presented token until it expires.
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	claims, err := a.tokens.Verify(r.Context(), token)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, errorBody{Message: msgTokenInvalid, Error: err.Error()})
		return
	}
	if err := a.tokens.Revoke(r.Context(), claims); err != nil {
		handleServiceError(w, r, err, "Logout failed")
		return
	}
	_ = audit.LogEvent(r.Context(), "account.logout", map[string]any{"jti": claims.ID})
	writeJSON(w, http.StatusOK, messageBody{Message: "Logged out successfully"})
}

func (a *API) listAccounts(w http.ResponseWriter, r *http.Request) {
	users, err := a.svc.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "Failed to retrieve users")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Users retrieved successfully", Data: users})
}

func (a *API) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := a.svc.GetUser(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in social.UpdateUserInput
	if !readJSON(w, r, &in) {
		return
	}
	u, err := a.svc.UpdateUser(r.Context(), identity(r), id, in)
	if err != nil {
		handleServiceError(w, r, err, "Failed to update user")
		return
	}
	_ = audit.LogEvent(r.Context(), "account.updated", map[string]any{"account_id": id})
	writeJSON(w, http.StatusOK, messageBody{Message: "User updated successfully", Data: u})
}

func (a *API) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.DeleteUser(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "Failed to delete user")
		return
	}
	_ = audit.LogEvent(r.Context(), "account.deleted", map[string]any{"account_id": id})
	writeJSON(w, http.StatusOK, messageBody{Message: "User deleted successfully"})
}
