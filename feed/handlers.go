package feed

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

// CreatePost handles POST /create-post
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreatePostRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	post, err := h.svc.CreatePost(r.Context(), req)
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, post)
}

// GetPosts handles GET /posts
func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	posts, err := h.svc.ListPosts(r.Context())
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, posts)
}

// GetUserPosts handles GET /posts/user/:userId
func (h *Handler) GetUserPosts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	posts, err := h.svc.ListUserPosts(r.Context(), ps.ByName("userId"))
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, posts)
}

// LikePost handles PUT /posts/:postId/:userId/like
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	post, err := h.svc.Like(r.Context(), ps.ByName("postId"), ps.ByName("userId"))
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, post)
}

// UnlikePost handles PUT /posts/:postId/:userId/unlike
func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	post, err := h.svc.Unlike(r.Context(), ps.ByName("postId"), ps.ByName("userId"))
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, post)
}
