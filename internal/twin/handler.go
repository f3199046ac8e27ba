package twin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/prospyr/pkg/connection"
)

// APIPrefix is where the twin mounts the API, matching the real base URL path.
const APIPrefix = "/developer_api/v1"

// Handler serves the CRM API from a Store.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a handler over s. A nil logger disables logging.
func NewHandler(s *Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: s, logger: logger.Named("twin")}
}

// NewRouter returns a router with the API mounted under APIPrefix. Trailing
// slashes are ignored, so people/ and people route alike.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Route(APIPrefix, h.Routes)
	return r
}

// Routes mounts the API routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.accessTokenMiddleware)

	r.Get("/account", h.GetAccount)
	r.Get("/custom_field_definitions", h.ListDefinitions)

	r.Post("/{collection}", h.CreateRecord)
	r.Get("/{collection}/{id}", h.GetRecord)
	r.Put("/{collection}/{id}", h.UpdateRecord)
	r.Delete("/{collection}/{id}", h.DeleteRecord)
}

// accessTokenMiddleware rejects requests without an access token. Any
// non-empty token is accepted.
func (h *Handler) accessTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(connection.HeaderAccessToken) == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"status":  http.StatusUnauthorized,
				"message": "API Key or user email is invalid",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetAccount handles GET /account
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Account())
}

// ListDefinitions handles GET /custom_field_definitions
func (h *Handler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := h.store.Definitions()
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, defs)
}

// CreateRecord handles POST /{collection}
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if !collections[collection] {
		notFound(w, "Resource not found")
		return
	}

	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if msg := validateRecord(body, true); msg != "" {
		unprocessable(w, msg)
		return
	}
	normalizeCustomFields(body)

	record, err := h.store.Insert(collection, body)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.logger.Debug("Created record",
		zap.String("collection", collection),
		zap.Any("id", record["id"]))
	writeJSON(w, http.StatusOK, record)
}

// GetRecord handles GET /{collection}/{id}
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	collection, id, ok := recordKey(w, r)
	if !ok {
		return
	}
	record, err := h.store.Get(collection, id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// UpdateRecord handles PUT /{collection}/{id}
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	collection, id, ok := recordKey(w, r)
	if !ok {
		return
	}
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if msg := validateRecord(body, false); msg != "" {
		unprocessable(w, msg)
		return
	}
	normalizeCustomFields(body)

	record, err := h.store.Update(collection, id, body)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// DeleteRecord handles DELETE /{collection}/{id}
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	collection, id, ok := recordKey(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(collection, id); err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "is_deleted": true})
}

func recordKey(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	collection := chi.URLParam(r, "collection")
	if !collections[collection] {
		notFound(w, "Resource not found")
		return "", 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		notFound(w, "Resource not found")
		return "", 0, false
	}
	return collection, id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"status":  http.StatusBadRequest,
			"message": "Invalid request body",
		})
		return nil, false
	}
	return body, true
}

// validateRecord returns the 422 message for body, or "" if it is valid.
// A name is required on create; on update it may be omitted but not blanked.
func validateRecord(body map[string]any, create bool) string {
	name, present := body["name"]
	s, _ := name.(string)
	if (create || present) && strings.TrimSpace(s) == "" {
		return "Name can't be blank"
	}

	if email, ok := body["email"].(map[string]any); ok && !validEmail(email["email"]) {
		return "Email is invalid"
	}
	if emails, ok := body["emails"].([]any); ok {
		for _, item := range emails {
			entry, ok := item.(map[string]any)
			if !ok || !validEmail(entry["email"]) {
				return "Email is invalid"
			}
		}
	}
	return ""
}

func validEmail(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1
}

// normalizeCustomFields stores custom fields in wire shape. Creates may send
// the local shape keyed by id; updates send custom_field_definition_id.
func normalizeCustomFields(body map[string]any) {
	raw, ok := body["custom_fields"]
	if !ok {
		return
	}
	entries, _ := raw.([]any)
	out := make([]any, 0, len(entries))
	for _, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, ok := entry["custom_field_definition_id"]
		if !ok {
			id = entry["id"]
		}
		out = append(out, map[string]any{
			"custom_field_definition_id": id,
			"value":                      entry["value"],
		})
	}
	body["custom_fields"] = out
}

func (h *Handler) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnknownCollection) {
		notFound(w, "Resource not found")
		return
	}
	h.internalError(w, err)
}

func (h *Handler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("Store failure", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"status":  http.StatusInternalServerError,
		"message": "Internal server error",
	})
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"success": false,
		"status":  http.StatusNotFound,
		"message": msg,
	})
}

func unprocessable(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"success": false,
		"status":  http.StatusUnprocessableEntity,
		"message": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
