package auth

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"fitshare/middleware"
	"fitshare/utils"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req RegisterRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	if err := h.svc.Register(r.Context(), req); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Registration successful")
}

// Verify handles GET /verify/:token
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.svc.Verify(r.Context(), ps.ByName("token")); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Email verified successfully")
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req LoginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Logout handles POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.svc.Logout(r.Context(), claims); err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Logged out successfully")
}

// Me handles GET /me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, err := h.svc.Me(r.Context(), utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"user": user})
}
