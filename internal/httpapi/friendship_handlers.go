package httpapi

import (
	"net/http"

	"socialhub.dev/internal/audit"
	"socialhub.dev/internal/social"
)

func (a *API) createFriendship(w http.ResponseWriter, r *http.Request) {
	var in social.CreateFriendshipInput
	if !readJSON(w, r, &in) {
		return
	}
	f, err := a.svc.RequestFriendship(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// listFriendships filters the caller's friendships by ?status=.
func (a *API) listFriendships(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.ListFriendships(r.Context(), identity(r), r.URL.Query().Get("status"))
	if err != nil {
		handleServiceError(w, r, err, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) getFriendship(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	f, err := a.svc.GetFriendship(r.Context(), identity(r), id)
	if err != nil {
		handleServiceError(w, r, err, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (a *API) updateFriendship(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in social.UpdateFriendshipInput
	if !readJSON(w, r, &in) {
		return
	}
	f, err := a.svc.UpdateFriendshipStatus(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, r, err, "Failed to update friendship status.")
		return
	}
	_ = audit.LogEvent(r.Context(), "friendship.status_changed", map[string]any{
		"friendship_id": id,
		"status":        string(f.Status),
	})
	writeJSON(w, http.StatusOK, messageBody{Message: "Friendship status updated successfully.", Data: f})
}

func (a *API) deleteFriendship(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.DeleteFriendship(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Friendship deleted successfully."})
}
