package transport

import (
	"errors"
	"net/http"
	"strconv"

	"ecostore/internal/domain"
	"ecostore/internal/middleware"
	"ecostore/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DeleteResponse confirms a deletion
type DeleteResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	productService service.ProductService
	errors         *middleware.ErrorHandler
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, errorHandler *middleware.ErrorHandler, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		errors:         errorHandler,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.errors.Handle(h.List))
		r.Post("/", h.errors.Handle(h.Create))
		r.Get("/search", h.errors.Handle(h.Search))
		r.Get("/{id}", h.errors.Handle(h.Get))
		r.Put("/{id}", h.errors.Handle(h.Update))
		r.Delete("/{id}", h.errors.Handle(h.Delete))
	})

	r.Get("/api/categories", h.errors.Handle(h.Categories))
}

// parseID accepts positive base-10 integers only.
func parseID(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" || raw[0] == '+' || raw[0] == '-' {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) error {
	products, err := h.productService.List(r.Context())
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
	return nil
}

// Search handles GET /api/products/search?query=&category=
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	products, err := h.productService.Search(r.Context(), q.Get("query"), q.Get("category"))
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
	return nil
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, ok := parseID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return nil
	}

	product, err := h.productService.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
		return nil
	}
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
	return nil
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var in domain.ProductInput
	if err := middleware.DecodeJSON(w, r, &in); err != nil {
		h.logger.Debug("Rejected product body", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return nil
	}

	product, err := h.productService.Create(r.Context(), in)
	if respondValidation(w, err) {
		return nil
	}
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
	return nil
}

// Update handles PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) error {
	id, ok := parseID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return nil
	}

	var in domain.ProductInput
	if err := middleware.DecodeJSON(w, r, &in); err != nil {
		h.logger.Debug("Rejected product body", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return nil
	}

	product, err := h.productService.Update(r.Context(), id, in)
	if respondValidation(w, err) {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
		return nil
	}
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
	return nil
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, ok := parseID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return nil
	}

	err := h.productService.Delete(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
		return nil
	}
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusOK, DeleteResponse{
		Message: "Product deleted successfully",
		ID:      id,
	})
	return nil
}

// Categories handles GET /api/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) error {
	categories, err := h.productService.Categories(r.Context())
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
	return nil
}

func respondValidation(w http.ResponseWriter, err error) bool {
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		return false
	}
	middleware.RespondWithValidationErrors(w, validationErr.Errors)
	return true
}
