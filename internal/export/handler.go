// Package export renders stored drawings to PNG and PDF.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/vecpad/internal/drawing"
	"github.com/inamate/vecpad/internal/render/pdf"
	"github.com/inamate/vecpad/internal/render/raster"
)

const maxExportSize = 4096

type Handler struct {
	drawings      *drawing.Service
	width, height int
}

// NewHandler renders at width x height unless the request asks otherwise.
func NewHandler(drawings *drawing.Service, width, height int) *Handler {
	return &Handler{drawings: drawings, width: width, height: height}
}

func (h *Handler) Routes(api *mux.Router) {
	api.HandleFunc("/drawings/{drawingId}/export.png", h.ExportPNG).Methods("GET")
	api.HandleFunc("/drawings/{drawingId}/export.pdf", h.ExportPDF).Methods("GET")
}

func (h *Handler) size(r *http.Request) (int, int, error) {
	w, hgt := h.width, h.height
	q := r.URL.Query()
	if v := q.Get("w"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid width %q", v)
		}
		w = n
	}
	if v := q.Get("h"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid height %q", v)
		}
		hgt = n
	}
	if w <= 0 || hgt <= 0 || w > maxExportSize || hgt > maxExportSize {
		return 0, 0, fmt.Errorf("size must be between 1 and %d, got %dx%d", maxExportSize, w, hgt)
	}
	return w, hgt, nil
}

func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["drawingId"]
	width, height, err := h.size(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	eng, err := h.drawings.Engine(r.Context(), id, width, height)
	if err != nil {
		handleError(w, err)
		return
	}

	sink := raster.New(width, height)
	defer sink.Close()
	eng.Render(sink)

	var buf bytes.Buffer
	if err := sink.EncodePNG(&buf); err != nil {
		slog.Error("png export failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	serve(w, "image/png", filename(r, id, ".png"), buf.Bytes())
	slog.Info("exported drawing", "id", id, "format", "png", "bytes", buf.Len())
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["drawingId"]
	width, height, err := h.size(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	eng, err := h.drawings.Engine(r.Context(), id, width, height)
	if err != nil {
		handleError(w, err)
		return
	}

	sink := pdf.New(float64(width), float64(height))
	eng.Render(sink)

	var buf bytes.Buffer
	if err := sink.Output(&buf); err != nil {
		slog.Error("pdf export failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	serve(w, "application/pdf", filename(r, id, ".pdf"), buf.Bytes())
	slog.Info("exported drawing", "id", id, "format", "pdf", "bytes", buf.Len())
}

// filename builds the attachment name from the name query parameter,
// falling back to the drawing ID.
func filename(r *http.Request, id, ext string) string {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = id
	}
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
	return name + ext
}

func serve(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, drawing.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, drawing.ErrInvalidSize):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("export error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
