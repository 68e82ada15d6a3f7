package authz

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"socialhub.dev/internal/audit"
	"socialhub.dev/internal/auth"
	"socialhub.dev/internal/obs"
)

const defaultMaxBodyBytes = 1 << 20

// DenyFunc writes the response for a failed evaluation. err is a *Denial or a
// lookup failure.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error)

type options struct {
	param        func(r *http.Request, name string) string
	onDeny       DenyFunc
	maxBodyBytes int64
}

// Option configures Require.
type Option func(*options)

// WithParamFunc sets how path parameters are read, e.g. chi.URLParam.
func WithParamFunc(f func(r *http.Request, name string) string) Option {
	return func(o *options) {
		if f != nil {
			o.param = f
		}
	}
}

// WithDenyFunc replaces the default JSON error writer.
func WithDenyFunc(f DenyFunc) Option {
	return func(o *options) {
		if f != nil {
			o.onDeny = f
		}
	}
}

// WithMaxBodyBytes bounds how much of the body is buffered for identity checks.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// Require returns middleware enforcing p. It panics on an invalid policy so a
// bad route table fails at startup.
func Require(p Policy, opts ...Option) func(http.Handler) http.Handler {
	if err := p.Validate(); err != nil {
		panic(err)
	}
	o := options{
		param:        func(r *http.Request, name string) string { return r.PathValue(name) },
		onDeny:       writeDenial,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := Request{
				Param: func(name string) string { return o.param(r, name) },
			}
			if id, ok := auth.IdentityFromContext(r.Context()); ok {
				req.Identity = &id
			}
			if p.ActionIdentityKey != "" {
				body, err := bufferBody(r, o.maxBodyBytes)
				if err != nil {
					o.onDeny(w, r, deny(http.StatusRequestEntityTooLarge, "request body too large"))
					return
				}
				req.Body = body
			}

			err := Evaluate(r.Context(), p, req)
			if err == nil {
				obs.ObserveAuthzDecision("allow")
				next.ServeHTTP(w, r)
				return
			}

			var d *Denial
			if errors.As(err, &d) {
				obs.ObserveAuthzDecision("deny_" + strconv.Itoa(d.Status))
				_ = audit.LogEvent(r.Context(), "authz.denied", map[string]any{
					"method":  r.Method,
					"path":    r.URL.Path,
					"status":  d.Status,
					"message": d.Message,
				})
			} else {
				obs.ObserveAuthzDecision("error")
				obs.Logger().ErrorContext(r.Context(), "authorization lookup failed",
					"path", r.URL.Path, "error", err)
			}
			o.onDeny(w, r, err)
		})
	}
}

// RequireRole gates a route to the given roles.
func RequireRole(roles []auth.Role, opts ...Option) func(http.Handler) http.Handler {
	return Require(Roles(roles...), opts...)
}

// bufferBody decodes the JSON object in r.Body and puts the raw bytes back for
// the handler. A body that is not a JSON object yields a nil map.
func bufferBody(r *http.Request, limit int64) (map[string]any, error) {
	if r.Body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, errors.New("body exceeds limit")
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, nil
	}
	return body, nil
}

func writeDenial(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusInternalServerError
	payload := map[string]any{"message": "Internal Server Error", "error": err.Error()}
	var d *Denial
	if errors.As(err, &d) {
		status = d.Status
		payload = map[string]any{"message": d.Message}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
