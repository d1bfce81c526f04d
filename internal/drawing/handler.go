package drawing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/vecpad/internal/auth"
	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/geom"
)

const maxDrawingSize = 32 << 20 // 32MB

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes registers the drawing endpoints on an authenticated subrouter.
func (h *Handler) Routes(api *mux.Router) {
	api.HandleFunc("/drawings", h.List).Methods("GET")
	api.HandleFunc("/drawings", h.Create).Methods("POST")
	api.HandleFunc("/drawings/{drawingId}", h.Get).Methods("GET")
	api.HandleFunc("/drawings/{drawingId}", h.Replace).Methods("PUT")
	api.HandleFunc("/drawings/{drawingId}", h.Delete).Methods("DELETE")
	api.HandleFunc("/drawings/{drawingId}/info", h.Info).Methods("GET")
	api.HandleFunc("/drawings/{drawingId}/commands", h.Commands).Methods("GET")
	api.HandleFunc("/drawings/{drawingId}/hit", h.HitTest).Methods("GET")
}

type createRequest struct {
	Name   string `json:"name"`
	Sample bool   `json:"sample"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	var doc *document.Document
	if req.Sample {
		doc = document.NewSampleDocument()
	}

	info, err := h.service.Create(r.Context(), req.Name, doc)
	if err != nil {
		slog.Error("create drawing failed", "error", err, "user", userID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	slog.Info("drawing created", "id", info.ID, "user", userID)
	writeJSON(w, http.StatusCreated, info)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("list drawings failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// Get serves the drawing in its binary file format.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), mux.Vars(r)["drawingId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.Header().Set("Last-Modified", d.UpdatedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	w.Write(d.Data)
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context(), mux.Vars(r)["drawingId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// Replace overwrites a drawing with the binary request body. The optional
// name query parameter renames it.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDrawingSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "drawing too large"})
		return
	}

	info, err := h.service.Replace(r.Context(), mux.Vars(r)["drawingId"], r.URL.Query().Get("name"), data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["drawingId"]); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Commands returns the draw commands for the drawing fitted to a w x h
// view (default 800x600).
func (h *Handler) Commands(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, height := intParam(q.Get("w"), 800), intParam(q.Get("h"), 600)

	cmds, err := h.service.Commands(r.Context(), mux.Vars(r)["drawingId"], width, height)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cmds)
}

type hitResponse struct {
	Index int  `json:"index"`
	Hit   bool `json:"hit"`
}

// HitTest reports the topmost shape under the model point (x, y).
func (h *Handler) HitTest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y are required"})
		return
	}
	var tol float64
	if v := q.Get("tol"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tol must be a positive number"})
			return
		}
		tol = t
	}

	idx, err := h.service.HitTest(r.Context(), mux.Vars(r)["drawingId"], geom.Pt(x, y), tol)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hitResponse{Index: idx, Hit: idx >= 0})
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrInvalidData):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidSize):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInUse):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
