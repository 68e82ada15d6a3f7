package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"socialhub.dev/internal/auth"
	"socialhub.dev/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "

	msgTokenMissing = "Token not provided or improperly formatted"
	msgTokenInvalid = "Invalid token"
)

// withAuth verifies the bearer token and stores the caller's identity in the
// request context. Requests without a valid token never reach next.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="socialhub"`)
			writeError(w, r, http.StatusUnauthorized, errorBody{Message: msgTokenMissing})
			return
		}

		claims, err := a.tokens.Verify(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrRevokedToken) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="socialhub", error="invalid_token"`)
				writeError(w, r, http.StatusUnauthorized, errorBody{Message: msgTokenInvalid, Error: err.Error()})
				return
			}
			obs.Logger().ErrorContext(r.Context(), "token verification failed", "error", err)
			writeError(w, r, http.StatusInternalServerError, errorBody{Message: "Authentication error"})
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), claims.Identity())
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", auth.ErrMissingToken
	}
	if !strings.HasPrefix(header, bearer) {
		return "", auth.ErrInvalidScheme
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", auth.ErrMissingToken
	}
	return token, nil
}

// identity returns the caller set by withAuth.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}
