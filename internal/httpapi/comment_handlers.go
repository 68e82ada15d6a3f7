package httpapi

import (
	"net/http"

	"socialhub.dev/internal/social"
)

func (a *API) createComment(w http.ResponseWriter, r *http.Request) {
	var in social.CreateCommentInput
	if !readJSON(w, r, &in) {
		return
	}
	c, err := a.svc.CreateComment(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) listCommentsByPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "postId")
	if !ok {
		return
	}
	comments, err := a.svc.ListCommentsByPost(r.Context(), postID)
	if err != nil {
		handleServiceError(w, r, err, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (a *API) getComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := a.svc.GetComment(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) updateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in social.UpdateCommentInput
	if !readJSON(w, r, &in) {
		return
	}
	c, err := a.svc.UpdateComment(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, r, err, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Comment updated successfully", Data: c})
}

func (a *API) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.DeleteComment(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Comment deleted successfully"})
}
