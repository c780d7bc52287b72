package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lushhair/storefront/internal/catalog"
)

type ProductColorPayload struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

type CreateProductRequest struct {
	Name        string                `json:"name" validate:"required"`
	Description string                `json:"description" validate:"required"`
	Price       float64               `json:"price" validate:"required,gt=0"`
	Images      []string              `json:"images"`
	Category    string                `json:"category" validate:"required"`
	Featured    bool                  `json:"featured"`
	Stock       int                   `json:"stock" validate:"min=0"`
	Colors      []ProductColorPayload `json:"colors" validate:"dive"`
	Lengths     []string              `json:"lengths"`
}

type UpdateProductRequest struct {
	Name        *string                `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string                `json:"description,omitempty"`
	Price       *float64               `json:"price,omitempty" validate:"omitempty,gt=0"`
	Images      []string               `json:"images,omitempty"`
	Category    *string                `json:"category,omitempty" validate:"omitempty,min=1"`
	Featured    *bool                  `json:"featured,omitempty"`
	Stock       *int                   `json:"stock,omitempty" validate:"omitempty,min=0"`
	Colors      *[]ProductColorPayload `json:"colors,omitempty" validate:"omitempty,dive"`
	Lengths     *[]string              `json:"lengths,omitempty"`
}

type ProductListResponse struct {
	Products   []catalog.Product `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

type ProductHandler struct {
	svc      catalog.Service
	validate *validator.Validate
}

func NewProductHandler(svc catalog.Service) *ProductHandler {
	return &ProductHandler{svc: svc, validate: validator.New()}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProduct)
}

func (h *ProductHandler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/products", h.handleCreateProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{
		Category: r.URL.Query().Get("category"),
		Sort:     r.URL.Query().Get("sort"),
		Order:    r.URL.Query().Get("order"),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", 20),
	}
	if r.URL.Query().Get("featured") == "true" {
		featured := true
		opts.Featured = &featured
	}

	products, total, err := h.svc.ListProducts(r.Context(), opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		respondWithMappedError(w, err, "Failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, ProductListResponse{
		Products:   products,
		Pagination: newPagination(total, opts.Page, opts.Limit),
	})
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		respondWithMappedError(w, err, "Failed to get product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	product := &catalog.Product{
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Images:      requestPayload.Images,
		Category:    requestPayload.Category,
		Featured:    requestPayload.Featured,
		Stock:       requestPayload.Stock,
		Colors:      toColors(requestPayload.Colors),
		Lengths:     toLengths(requestPayload.Lengths),
	}

	created, err := h.svc.CreateProduct(r.Context(), product)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create product")
		respondWithMappedError(w, err, "Failed to create product")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload UpdateProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	input := catalog.UpdateInput{
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Images:      requestPayload.Images,
		Category:    requestPayload.Category,
		Featured:    requestPayload.Featured,
		Stock:       requestPayload.Stock,
	}
	if requestPayload.Colors != nil {
		colors := toColors(*requestPayload.Colors)
		input.Colors = &colors
	}
	if requestPayload.Lengths != nil {
		lengths := toLengths(*requestPayload.Lengths)
		input.Lengths = &lengths
	}

	updated, err := h.svc.UpdateProduct(r.Context(), id, input)
	if err != nil {
		log.Error().Err(err).Stringer("product_id", id).Msg("Failed to update product")
		respondWithMappedError(w, err, "Failed to update product")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		log.Warn().Err(err).Stringer("product_id", id).Msg("Failed to delete product")
		respondWithMappedError(w, err, "Failed to delete product")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func toColors(payloads []ProductColorPayload) []catalog.Color {
	colors := make([]catalog.Color, 0, len(payloads))
	for _, p := range payloads {
		colors = append(colors, catalog.Color{Name: p.Name, Value: p.Value})
	}
	return colors
}

func toLengths(labels []string) []catalog.Length {
	lengths := make([]catalog.Length, 0, len(labels))
	for _, label := range labels {
		lengths = append(lengths, catalog.Length{Label: label})
	}
	return lengths
}
