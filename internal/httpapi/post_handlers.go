package httpapi

import (
	"net/http"

	"socialhub.dev/internal/social"
)

func (a *API) createPost(w http.ResponseWriter, r *http.Request) {
	var in social.CreatePostInput
	if !readJSON(w, r, &in) {
		return
	}
	p, err := a.svc.CreatePost(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.svc.ListPosts(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (a *API) listPostsByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	posts, err := a.svc.ListPostsByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (a *API) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := a.svc.GetPost(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "Failed to fetch post")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in social.UpdatePostInput
	if !readJSON(w, r, &in) {
		return
	}
	p, err := a.svc.UpdatePost(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, r, err, "Failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Post updated successfully", Data: p})
}

func (a *API) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.DeletePost(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "Failed to delete post")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Post deleted successfully"})
}
