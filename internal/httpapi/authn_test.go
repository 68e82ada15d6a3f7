package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialhub.dev/internal/auth"
	"socialhub.dev/internal/authz"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		err    error
	}{
		{"Bearer abc.def", "abc.def", nil},
		{"Bearer   abc.def  ", "abc.def", nil},
		{"bearer abc.def", "", auth.ErrInvalidScheme},
		{"BEARER abc.def", "", auth.ErrInvalidScheme},
		{"", "", auth.ErrMissingToken},
		{"Bearer", "", auth.ErrInvalidScheme},
		{"Bearer    ", "", auth.ErrInvalidScheme},
		{"Token abc", "", auth.ErrInvalidScheme},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if !errors.Is(err, tc.err) {
			t.Fatalf("%q: expected error %v, got %v", tc.header, tc.err, err)
		}
		if got != tc.token {
			t.Fatalf("%q: expected token %q, got %q", tc.header, tc.token, got)
		}
	}
}

func TestWithAuthStopsBeforeHandler(t *testing.T) {
	c := newTestAPI(t)
	api := &API{tokens: c.tokens}
	called := false
	h := api.withAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/posts/1", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if called {
		t.Fatal("handler ran without a token")
	}
}

func TestWithAuthStoresIdentity(t *testing.T) {
	c := newTestAPI(t)
	api := &API{tokens: c.tokens}
	want := auth.Identity{UserID: 7, UserName: "gus", Role: auth.RoleAdmin}
	token, _, err := c.tokens.Issue(want)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var got auth.Identity
	h := api.withAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = identity(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/posts/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	handler := authz.RequireRole([]auth.Role{auth.RoleAdmin})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req = req.WithContext(auth.ContextWithIdentity(req.Context(), auth.Identity{UserID: 1, Role: auth.RoleAdmin}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequireRoleRejectsMissingUser(t *testing.T) {
	a := &API{}
	handler := authz.RequireRole([]auth.Role{auth.RoleAdmin}, authz.WithDenyFunc(a.deny))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/accounts", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if got := rr.Header().Get("WWW-Authenticate"); got == "" {
		t.Fatalf("expected WWW-Authenticate header set")
	}
}
