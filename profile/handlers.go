package profile

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"fitshare/utils"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// ListUsers handles GET /user/:userId
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	users, err := h.svc.ListUsers(r.Context(), ps.ByName("userId"))
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

// GetProfile handles GET /profile/:userId. When the caller is signed in the
// response also says whether they follow the user.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.svc.Profile(r.Context(), ps.ByName("userId"))
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	resp := utils.M{"user": user}
	if viewer := utils.GetUserIDFromRequest(r); viewer != "" {
		resp["isFollowing"] = FollowedBy(user, viewer)
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Follow handles POST /follow
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		CurrentUserID  string `json:"currentUserId"`
		SelectedUserID string `json:"selectedUserId"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	if err := h.svc.Follow(r.Context(), body.CurrentUserID, body.SelectedUserID); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Followed successfully")
}

// Unfollow handles POST /users/unfollow
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		LoggedInUserID string `json:"loggedInUserId"`
		TargetUserID   string `json:"targetUserId"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	if err := h.svc.Unfollow(r.Context(), body.LoggedInUserID, body.TargetUserID); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Unfollowed successfully")
}
