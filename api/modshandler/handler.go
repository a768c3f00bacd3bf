package modshandler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/glazedv3/mods-backend/api"
	"github.com/glazedv3/mods-backend/interfaces"
	"github.com/go-chi/chi/v5"
)

// Handler serves the mods catalog. A nil store means the hosted project is
// not configured; every request then answers 500 server_error.
type Handler struct {
	store interfaces.CatalogStore
	gate  api.AdminGate
	log   *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
func NewHandler(store interfaces.CatalogStore, gate api.AdminGate, log *slog.Logger) *Handler {
	return &Handler{
		store: store,
		gate:  gate,
		log:   log,
	}
}

// RegisterRoutes mounts the catalog routes. Routes accept every method so
// that unsupported ones reach the handler and get the JSON 405.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/mods", h.HandleMods)
	r.HandleFunc("/mods/{id}", h.HandleItem)

	// function-style paths used by existing frontends
	r.HandleFunc("/api/mods", h.HandleCollection)
	r.HandleFunc("/api/mods-id", h.HandleItem)
}

// HandleMods dispatches /mods: PATCH and DELETE act on ?id=, everything
// else is a collection request.
func (h *Handler) HandleMods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPatch, http.MethodDelete:
		h.HandleItem(w, r)
	default:
		h.HandleCollection(w, r)
	}
}

// HandleCollection lists the catalog (GET, public) or creates an entry
// (POST, admin).
//
// POST body: {"name", "description", "minecraft_version", "fabric_required",
// "launchers", "file_name", "file_url"}; name, minecraft_version, file_name
// and file_url must be non-empty after trimming.
func (h *Handler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		if !h.gate.Require(w, r) {
			return
		}
		h.create(w, r)
	default:
		api.WriteMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// HandleItem updates (PATCH) or deletes (DELETE) the entry named by the id
// query parameter, or the {id} path parameter when the query has none.
// Both methods require the admin key.
func (h *Handler) HandleItem(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}

	id := itemID(r)
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, api.ErrCodeMissingID)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		if !h.gate.Require(w, r) {
			return
		}
		h.update(w, r, id)
	case http.MethodDelete:
		if !h.gate.Require(w, r) {
			return
		}
		h.delete(w, r, id)
	default:
		api.WriteMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	mods, err := h.store.ListMods(r.Context())
	if err != nil {
		h.dbError(w, "list", err)
		return
	}
	if mods == nil {
		mods = []interfaces.Mod{}
	}
	api.WriteJSON(w, http.StatusOK, api.ListResponse{Items: mods})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	payload, err := api.DecodePayload(w, r)
	if err != nil {
		api.WritePayloadError(w, err)
		return
	}

	in := payload.ModInput()
	if in.MissingRequired() {
		api.WriteError(w, http.StatusBadRequest, api.ErrCodeMissingFields)
		return
	}

	mod, err := h.store.CreateMod(r.Context(), in)
	if err != nil {
		h.dbError(w, "create", err)
		return
	}

	h.log.Info("Created mod", slog.String("id", mod.ID.String()), slog.String("name", mod.Name))
	api.WriteJSON(w, http.StatusOK, api.ItemResponse{Item: mod})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id interfaces.ModID) {
	payload, err := api.DecodePatchPayload(w, r)
	if err != nil {
		api.WritePayloadError(w, err)
		return
	}

	mod, err := h.store.UpdateMod(r.Context(), id, payload.ModPatch())
	if err != nil {
		h.dbError(w, "update", err)
		return
	}

	h.log.Info("Updated mod", slog.String("id", id.String()))
	api.WriteJSON(w, http.StatusOK, api.ItemResponse{Item: mod})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, id interfaces.ModID) {
	if err := h.store.DeleteMod(r.Context(), id); err != nil {
		h.dbError(w, "delete", err)
		return
	}

	h.log.Info("Deleted mod", slog.String("id", id.String()))
	api.WriteJSON(w, http.StatusOK, api.OKResponse{OK: true})
}

func (h *Handler) configured(w http.ResponseWriter) bool {
	if h.store == nil {
		api.WriteErrorDetails(w, http.StatusInternalServerError, api.ErrCodeServerError, api.MissingSupabaseDetails)
		return false
	}
	return true
}

func (h *Handler) dbError(w http.ResponseWriter, op string, err error) {
	h.log.Error("Catalog operation failed", slog.String("op", op), slog.String("store", h.store.Name()), "err", err)
	api.WriteErrorDetails(w, http.StatusInternalServerError, api.ErrCodeDBError, err.Error())
}

func itemID(r *http.Request) interfaces.ModID {
	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		return interfaces.ModID(id)
	}
	return interfaces.ModID(strings.TrimSpace(chi.URLParam(r, "id")))
}
