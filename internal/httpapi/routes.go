package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"socialhub.dev/internal/auth"
	"socialhub.dev/internal/authz"
	"socialhub.dev/internal/obs"
)

// require wraps authz.Require with chi path parameters and our error shape.
func (a *API) require(p authz.Policy) func(http.Handler) http.Handler {
	return authz.Require(p,
		authz.WithParamFunc(chi.URLParam),
		authz.WithDenyFunc(a.deny),
	)
}

func (a *API) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(obs.Instrument)
	r.Use(LoggingJSON)
	r.Use(Recovery)
	r.Use(SecurityHeaders(a.limits.Production))
	r.Use(CORS(a.limits.CORSOrigins))
	r.Use(RateLimit(a.limits.RateBurst, a.limits.RatePerSecond))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, errorBody{Message: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, errorBody{Message: "Method not allowed"})
	})

	r.Get("/healthz", a.Healthz)
	r.Get("/readyz", a.Ready)
	r.Get("/v1/info", a.Info)
	r.Handle("/metrics", obs.Handler())

	r.Group(func(r chi.Router) {
		r.Use(LoginThrottle(a.limits.LoginRatePerMinute))
		r.Post("/register", a.register)
		r.Post("/login", a.login)
	})

	var (
		adminOnly     = a.require(authz.Roles(auth.RoleAdmin))
		ownAccount    = a.require(authz.Owner(authz.Resource(a.repos.Users), "id"))
		ownPost       = a.require(authz.Owner(authz.Resource(a.repos.Posts), "id"))
		ownComment    = a.require(authz.Owner(authz.Resource(a.repos.Comments), "id"))
		ownFriendship = a.require(authz.Owner(authz.Resource(a.repos.Friendships), "id"))
		// Only the requestee answers a request, and only as themselves.
		answerFriendship = a.require(authz.Policy{
			ActionIdentityKey: "requesteeId",
			ResourceDAO:       authz.Resource(a.repos.Friendships),
			ResourceIDParam:   "id",
		})
	)

	r.Group(func(r chi.Router) {
		r.Use(a.withAuth)

		r.Post("/logout", a.logout)

		r.With(adminOnly).Get("/accounts", a.listAccounts)
		r.With(ownAccount).Get("/account/{id}", a.getAccount)
		r.With(ownAccount).Put("/account/{id}", a.updateAccount)
		r.With(ownAccount).Delete("/account/{id}", a.deleteAccount)

		r.Route("/posts", func(r chi.Router) {
			r.With(a.require(authz.ActingAs("userId"))).Post("/", a.createPost)
			r.With(adminOnly).Get("/", a.listPosts)
			r.Get("/user/{userId}", a.listPostsByUser)
			r.Get("/{id}", a.getPost)
			r.With(ownPost).Put("/{id}", a.updatePost)
			r.With(ownPost).Delete("/{id}", a.deletePost)
		})

		r.Route("/comments", func(r chi.Router) {
			r.With(a.require(authz.ActingAs("userId"))).Post("/", a.createComment)
			r.Get("/post/{postId}", a.listCommentsByPost)
			r.Get("/{id}", a.getComment)
			r.With(ownComment).Put("/{id}", a.updateComment)
			r.With(ownComment).Delete("/{id}", a.deleteComment)
		})

		r.Route("/friendships", func(r chi.Router) {
			r.With(a.require(authz.ActingAs("requesterId"))).Post("/", a.createFriendship)
			r.Get("/", a.listFriendships)
			r.Get("/{id}", a.getFriendship)
			r.With(answerFriendship).Put("/{id}", a.updateFriendship)
			r.With(ownFriendship).Delete("/{id}", a.deleteFriendship)
		})
	})

	return r
}
