package diagnosis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Rajatpundir7/DBMS-AGRI/internal/http/middleware"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
	"github.com/go-chi/chi/v5"
)

const (
	publicListLimit   = 100
	adminListLimit    = 20
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20
	imagesField       = "images"
)

// Handler exposes the diagnosis endpoints.
type Handler struct {
	service   *Service
	maxImages int
	maxBytes  int64
	logger    *logging.Logger
}

// NewHandler creates a diagnosis HTTP handler. Upload limits are taken from
// the service's ingestor.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("diagnosis: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:   service,
		maxImages: service.ingestor.MaxImages(),
		maxBytes:  service.ingestor.MaxBytes(),
		logger:    logger,
	}
}

// Routes mounts under /api/diagnosis. auth wraps the caller-scoped routes;
// submit wraps only the submission route (rate limiting).
func (h *Handler) Routes(auth, submit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListPublic)
	r.Group(func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}
		r.With(passThrough(submit)).Post("/", h.Submit)
		r.Get("/my-diagnoses", h.ListMine)
		r.Get("/{id}", h.Get)
	})
	return r
}

// AdminRoutes mounts under /api/admin/diagnoses.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListAdmin)
	return r
}

func passThrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

// Submit runs a diagnosis for the uploaded images.
// POST /api/diagnosis (multipart: images[], crop, location)
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok || user.UserID == "" {
		writeError(w, http.StatusUnauthorized, "No token, authorization denied")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(h.maxImages)*h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload is too large")
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File[imagesField]
	}
	if len(files) > h.maxImages {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Please upload at most %d images", h.maxImages))
		return
	}

	uploads := make([]Upload, 0, len(files))
	for _, fh := range files {
		up, err := h.readUpload(fh)
		if err != nil {
			h.logger.Warn("failed to read uploaded image", "filename", fh.Filename, "error", err)
			writeError(w, http.StatusBadRequest, "could not read uploaded image")
			return
		}
		uploads = append(uploads, up)
	}

	record, err := h.service.Submit(r.Context(), SubmitRequest{
		UserID:   user.UserID,
		Crop:     r.FormValue("crop"),
		Images:   uploads,
		Location: r.FormValue("location"),
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, record)
	case errors.Is(err, ErrValidation) && errors.Is(err, ErrPayloadTooLarge):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Each image must be at most %d MB", h.maxBytes>>20))
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "Please upload at least one image")
	case errors.Is(err, ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Each image must be at most %d MB", h.maxBytes>>20))
	default:
		writeError(w, http.StatusInternalServerError, "Server error during diagnosis")
	}
}

// readUpload reads at most maxBytes+1 so the ingestor can see oversized
// images without buffering them whole.
func (h *Handler) readUpload(fh *multipart.FileHeader) (Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return Upload{}, err
	}
	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// ListPublic lists diagnoses for the disease map.
// GET /api/diagnosis?crop=&page=&limit=
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, ListFilter{
		Crop:  q.Get("crop"),
		Page:  queryInt(q.Get("page"), 1),
		Limit: queryInt(q.Get("limit"), publicListLimit),
	})
}

// ListMine lists the caller's diagnoses, newest first.
// GET /api/diagnosis/my-diagnoses
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok || user.UserID == "" {
		writeError(w, http.StatusUnauthorized, "No token, authorization denied")
		return
	}
	page, err := h.service.List(r.Context(), ListFilter{UserID: user.UserID})
	if err != nil {
		h.logger.Error("failed to list user diagnoses", "user_id", user.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, page.Diagnoses)
}

// ListAdmin lists every diagnosis with admin filters.
// GET /api/admin/diagnoses?crop=&status=&page=&limit=
func (h *Handler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, ListFilter{
		Crop:   q.Get("crop"),
		Status: Status(q.Get("status")),
		Page:   queryInt(q.Get("page"), 1),
		Limit:  queryInt(q.Get("limit"), adminListLimit),
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, f ListFilter) {
	page, err := h.service.List(r.Context(), f)
	if err != nil {
		h.logger.Error("failed to list diagnoses", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get returns one diagnosis.
// GET /api/diagnosis/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := h.service.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Diagnosis not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get diagnosis", "diagnosis_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func queryInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
