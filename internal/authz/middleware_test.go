package authz

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub.dev/internal/auth"
)

func withIdentity(r *http.Request, id *auth.Identity) *http.Request {
	if id == nil {
		return r
	}
	return r.WithContext(auth.ContextWithIdentity(r.Context(), *id))
}

func TestRequirePassesBufferedBodyToHandler(t *testing.T) {
	var seen string
	h := Require(ActingAs("userId"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = string(b)
		w.WriteHeader(http.StatusCreated)
	}))

	body := `{"userId": 7, "content": "hello"}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(body)), identity(7, auth.RoleUser))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, body, seen)
}

func TestRequireStopsPipelineOnDenial(t *testing.T) {
	called := false
	h := Require(ActingAs("userId"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"userId": "7"}`)), identity(7, auth.RoleUser))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, MsgActingAsOtherUser, payload["message"])
}

func TestRequireOwnershipUsesParamFunc(t *testing.T) {
	repo := &fakePosts{rows: map[int64]post{3: {ID: 3, UserID: 1}}}
	mw := Require(Owner(Resource[post](repo), "id"), WithParamFunc(func(r *http.Request, name string) string {
		return strings.TrimPrefix(r.URL.Path, "/posts/")
	}))
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		caller *auth.Identity
		path   string
		want   int
	}{
		{identity(1, auth.RoleUser), "/posts/3", http.StatusOK},
		{identity(2, auth.RoleUser), "/posts/3", http.StatusForbidden},
		{identity(2, auth.RoleAdmin), "/posts/3", http.StatusOK},
		{identity(1, auth.RoleUser), "/posts/4", http.StatusNotFound},
		{identity(1, auth.RoleUser), "/posts/four", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, withIdentity(httptest.NewRequest(http.MethodPut, tc.path, nil), tc.caller))
		assert.Equal(t, tc.want, rr.Code, tc.path)
	}
}

func TestRequireRoleCustomDenyFunc(t *testing.T) {
	var got error
	h := RequireRole([]auth.Role{auth.RoleAdmin}, WithDenyFunc(func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withIdentity(httptest.NewRequest(http.MethodGet, "/accounts", nil), identity(1, auth.RoleUser)))
	assert.Equal(t, http.StatusTeapot, rr.Code)
	requireDenial(t, got, http.StatusForbidden, MsgRoleNotAllowed)
}

func TestRequireRejectsOversizedBody(t *testing.T) {
	h := Require(ActingAs("userId"), WithMaxBodyBytes(8))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withIdentity(httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"userId": 1, "pad": "xxxxxxxx"}`)), identity(1, auth.RoleUser)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
