package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the public product endpoints.
type Handler struct {
	catalog *Catalog
	logger  *logging.Logger
}

// NewHandler creates a product HTTP handler.
func NewHandler(catalog *Catalog, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{catalog: catalog, logger: logger}
}

// Routes returns a chi router with the product routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/recommend", h.Recommend)
	r.Get("/{id}", h.Get)
	return r
}

// List returns a filtered page of products.
// GET /api/products?category=&crop=&search=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.catalog.List(r.Context(), ListFilter{
		Category: q.Get("category"),
		Crop:     q.Get("crop"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Get returns one product.
// GET /api/products/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.catalog.Get(r.Context(), id)
	if errors.Is(err, ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get product", "product_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Recommend returns products matching a disease, crop and category.
// POST /api/products/recommend
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	products, err := h.catalog.Recommend(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to recommend products", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
