package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/noel/internal/store"
)

// SettingsHandler serves /api/settings/{key}. Only known keys are exposed.
type SettingsHandler struct {
	store *store.Store
	keys  map[string]bool
}

// NewSettingsHandler creates a SettingsHandler exposing the greeting setting.
func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{
		store: s,
		keys:  map[string]bool{store.SettingGreeting: true},
	}
}

type settingRequest struct {
	Value string `json:"value"`
}

type settingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/settings")
	key = strings.Trim(key, "/")
	if !h.keys[key] {
		writeError(w, http.StatusNotFound, "Unknown setting")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, key)
	case http.MethodPut:
		h.put(w, r, key)
	case http.MethodDelete:
		h.delete(w, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) get(w http.ResponseWriter, key string) {
	value, err := h.store.Settings().Get(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not set")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to read setting")
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: value})
}

func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request, key string) {
	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.store.Settings().Set(key, req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: req.Value})
}

func (h *SettingsHandler) delete(w http.ResponseWriter, key string) {
	if err := h.store.Settings().Delete(key); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
