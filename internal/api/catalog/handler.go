package catalog

import (
	"context"
	"net/http"
	"strconv"

	"goloja/internal/api/respond"
	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// CatalogService define o contrato que o Handler espera da camada de Serviço.
type CatalogService interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (domain.Product, error)
	GetCategories(ctx context.Context) ([]domain.Categoria, error)
	CreateProduct(ctx context.Context, sessionID string, product domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, sessionID string, id int64, product domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, sessionID string, id int64) error
}

// Handler agrupa os métodos de Handler do catálogo.
type Handler struct {
	Service CatalogService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CatalogService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// ListProductsHandler lida com GET /v1/products. Aceita o filtro opcional
// ?categoria=<slug>.
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	if slug := r.URL.Query().Get("categoria"); slug != "" {
		products, err := h.Service.GetProductsByCategory(r.Context(), slug)
		respond.ServiceResponse(w, r, h.Logger, products, err, http.StatusOK)
		return
	}

	products, err := h.Service.GetProducts(r.Context())
	respond.ServiceResponse(w, r, h.Logger, products, err, http.StatusOK)
}

// GetProductHandler lida com GET /v1/products/{id}.
func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	product, err := h.Service.GetProductByID(r.Context(), id)
	respond.ServiceResponse(w, r, h.Logger, product, err, http.StatusOK)
}

// ListCategoriesHandler lida com GET /v1/categories.
func (h *Handler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetCategories(r.Context())
	respond.ServiceResponse(w, r, h.Logger, categories, err, http.StatusOK)
}

// CreateProductHandler lida com POST /v1/products (rota administrativa).
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := respond.DecodeJSON(r, &product); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	created, err := h.Service.CreateProduct(r.Context(), respond.SessionID(r), product)
	respond.ServiceResponse(w, r, h.Logger, created, err, http.StatusCreated)
}

// UpdateProductHandler lida com PUT /v1/products/{id} (rota administrativa).
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	var product domain.Product
	if err := respond.DecodeJSON(r, &product); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	updated, err := h.Service.UpdateProduct(r.Context(), respond.SessionID(r), id, product)
	respond.ServiceResponse(w, r, h.Logger, updated, err, http.StatusOK)
}

// DeleteProductHandler lida com DELETE /v1/products/{id} (rota administrativa).
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	err = h.Service.DeleteProduct(r.Context(), respond.SessionID(r), id)
	respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// pathID extrai o {id} numérico da rota.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperror.NewValidationError("Identificador de produto inválido na rota.")
	}
	return id, nil
}
