package collections

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

// GetUserCollections handles GET /collections/:id where id is the owner.
func (h *Handler) GetUserCollections(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	views, err := h.svc.ForOwner(r.Context(), ps.ByName("id"), nil)
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

// QueryCollections handles GET /collections?userId=&isPublic=
func (h *Handler) QueryCollections(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	isPublic, err := utils.ParseOptionalBool(q.Get("isPublic"), "isPublic")
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	views, err := h.svc.ForOwner(r.Context(), q.Get("userId"), isPublic)
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

// GetCollection handles GET /collection/:collectionId
func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	detail, err := h.svc.Detail(r.Context(), ps.ByName("collectionId"))
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, detail)
}

// GetCollectionPosts handles GET /collections/:id/posts where id is the
// collection.
func (h *Handler) GetCollectionPosts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	posts, err := h.svc.Posts(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, posts)
}

// CreateCollection handles POST /createCollection
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	c, err := h.svc.Create(r.Context(), req)
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message":    "Collection created successfully",
		"collection": c,
	})
}

// AddPostToCollection handles POST /addPostToCollection
func (h *Handler) AddPostToCollection(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req AddPostRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	if err := h.svc.AddPost(r.Context(), req); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Post added to collection")
}

// TogglePublic handles PATCH /collection/:collectionId/toggle-public
func (h *Handler) TogglePublic(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		IsPublic *bool `json:"isPublic"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	c, err := h.svc.SetPublic(r.Context(), ps.ByName("collectionId"), body.IsPublic)
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, c)
}
