// Package api provides the HTTP handlers for the photo catalog and settings.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ayusman/noel/internal/store"
)

// PhotoHandler handles HTTP requests for photo resources.
type PhotoHandler struct {
	store *store.Store
}

// NewPhotoHandler creates a new PhotoHandler with the given store.
func NewPhotoHandler(s *store.Store) *PhotoHandler {
	return &PhotoHandler{store: s}
}

// ServeHTTP routes /api/photos and /api/photos/{id}.
func (h *PhotoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/photos")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createPhotoRequest struct {
	URL string `json:"url"`
}

type photoResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
	CreatedAt string `json:"created_at"`
}

type listPhotosResponse struct {
	Photos []photoResponse `json:"photos"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toPhotoResponse(p *store.Photo) photoResponse {
	return photoResponse{
		ID:        p.ID,
		URL:       p.URL,
		Position:  p.Position,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// validPhotoURL accepts absolute http(s) URLs and local file paths.
func validPhotoURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "":
		return true
	default:
		return false
	}
}

// list handles GET /api/photos.
func (h *PhotoHandler) list(w http.ResponseWriter, r *http.Request) {
	photos, err := h.store.Photos().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list photos")
		return
	}

	response := listPhotosResponse{
		Photos: make([]photoResponse, 0, len(photos)),
	}
	for _, p := range photos {
		response.Photos = append(response.Photos, toPhotoResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/photos/{id}.
func (h *PhotoHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	photo, err := h.store.Photos().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get photo")
		return
	}

	writeJSON(w, http.StatusOK, toPhotoResponse(photo))
}

// create handles POST /api/photos. The new photo appears on the next launch.
func (h *PhotoHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if !validPhotoURL(req.URL) {
		writeError(w, http.StatusBadRequest, "A http(s) URL or file path is required")
		return
	}

	photo := &store.Photo{URL: req.URL}
	if err := h.store.Photos().Create(photo); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Photo already in catalog")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create photo")
		return
	}

	writeJSON(w, http.StatusCreated, toPhotoResponse(photo))
}

// delete handles DELETE /api/photos/{id}.
func (h *PhotoHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Photos().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete photo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
