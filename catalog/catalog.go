// Package catalog serves the read-only clothing catalog.
package catalog

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"fitshare/db"
	"fitshare/errs"
	"fitshare/models"
	"fitshare/utils"
)

type Handler struct {
	store db.Store
	log   *slog.Logger
}

func NewHandler(store db.Store, log *slog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// ByCategory returns a handler listing one category, used for
// GET /tops, /bottoms, /footwear and /accessories.
func (h *Handler) ByCategory(category models.Category) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.respond(w, r, category)
	}
}

// List handles GET /catalog?category=
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	category := models.Category(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))))
	if category != "" && !category.Valid() {
		utils.RespondWithError(w, h.log, errs.ValidationWithDetails("unknown category", map[string]any{
			"category": "must be one of: top, bottom, footwear, accessory",
		}))
		return
	}
	h.respond(w, r, category)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, category models.Category) {
	items, err := h.store.CatalogItems(r.Context(), category)
	if err != nil {
		utils.RespondWithError(w, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}
