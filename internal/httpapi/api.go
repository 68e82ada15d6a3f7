package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"socialhub.dev/internal/auth"
	"socialhub.dev/internal/authz"
	"socialhub.dev/internal/social"
)

const serviceName = "socialhub-api"

// ReadyProbe reports whether the database answers. A nil DB means the
// in-memory store is in use and the API is always ready.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Repositories are the stores ownership checks consult. They are the same
// values the Service runs on.
type Repositories struct {
	Users       authz.Repository[social.User]
	Posts       authz.Repository[social.Post]
	Comments    authz.Repository[social.Comment]
	Friendships authz.Repository[social.Friendship]
}

// Limits tunes the throttling and CORS middleware.
type Limits struct {
	RatePerSecond      float64
	RateBurst          int
	LoginRatePerMinute int
	CORSOrigins        []string
	Production         bool
}

// DefaultLimits suit tests and local runs.
var DefaultLimits = Limits{
	RatePerSecond:      20,
	RateBurst:          40,
	LoginRatePerMinute: 10,
	CORSOrigins:        []string{"*"},
}

// Deps is everything the HTTP layer is built from.
type Deps struct {
	Service *social.Service
	Tokens  *auth.TokenService
	Repos   Repositories
	Ready   ReadyProbe
	Version string
	Limits  Limits
}

// API is the HTTP layer.
type API struct {
	router  chi.Router
	svc     *social.Service
	tokens  *auth.TokenService
	repos   Repositories
	ready   ReadyProbe
	version string
	limits  Limits
}

func New(d Deps) (*API, error) {
	if d.Service == nil || d.Tokens == nil {
		return nil, errors.New("httpapi: service and token service are required")
	}
	if d.Repos.Users == nil || d.Repos.Posts == nil || d.Repos.Comments == nil || d.Repos.Friendships == nil {
		return nil, errors.New("httpapi: all repositories are required")
	}
	limits := d.Limits
	if limits.RatePerSecond <= 0 || limits.RateBurst <= 0 {
		limits.RatePerSecond, limits.RateBurst = DefaultLimits.RatePerSecond, DefaultLimits.RateBurst
	}
	if limits.LoginRatePerMinute <= 0 {
		limits.LoginRatePerMinute = DefaultLimits.LoginRatePerMinute
	}
	if len(limits.CORSOrigins) == 0 {
		limits.CORSOrigins = DefaultLimits.CORSOrigins
	}
	a := &API{
		svc:     d.Service,
		tokens:  d.Tokens,
		repos:   d.Repos,
		ready:   d.Ready,
		version: d.Version,
		limits:  limits,
	}
	a.router = a.routes()
	return a, nil
}

// Handler returns the root handler for http.Server.
func (a *API) Handler() http.Handler {
	return a.router
}

// --- operational endpoints ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.ready.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":      serviceName,
		"time":      time.Now().UTC().Format(time.RFC3339),
		"version":   a.version,
		"token_ttl": a.tokens.TTL().String(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
