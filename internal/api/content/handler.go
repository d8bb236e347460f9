package content

import (
	"context"
	"net/http"
	"strconv"

	"goloja/internal/api/respond"
	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// ContentService define o contrato que o Handler espera da camada de Serviço.
type ContentService interface {
	GetContact(ctx context.Context) (domain.Contact, error)
	GetSocials(ctx context.Context) ([]domain.SocialLink, error)
	GetTestimonials(ctx context.Context) ([]domain.Testimonial, error)
	GetTestimonialByID(ctx context.Context, id int64) (domain.Testimonial, error)
}

// Handler agrupa os métodos de Handler do conteúdo institucional.
type Handler struct {
	Service ContentService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ContentService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// GetContactHandler lida com GET /v1/content/contact.
func (h *Handler) GetContactHandler(w http.ResponseWriter, r *http.Request) {
	contact, err := h.Service.GetContact(r.Context())
	respond.ServiceResponse(w, r, h.Logger, contact, err, http.StatusOK)
}

// GetSocialsHandler lida com GET /v1/content/socials.
func (h *Handler) GetSocialsHandler(w http.ResponseWriter, r *http.Request) {
	socials, err := h.Service.GetSocials(r.Context())
	respond.ServiceResponse(w, r, h.Logger, socials, err, http.StatusOK)
}

// ListTestimonialsHandler lida com GET /v1/content/testimonials.
func (h *Handler) ListTestimonialsHandler(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.Service.GetTestimonials(r.Context())
	respond.ServiceResponse(w, r, h.Logger, testimonials, err, http.StatusOK)
}

// GetTestimonialHandler lida com GET /v1/content/testimonials/{id}.
func (h *Handler) GetTestimonialHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, apperror.NewValidationError("Identificador de depoimento inválido na rota."), 0)
		return
	}

	testimonial, err := h.Service.GetTestimonialByID(r.Context(), id)
	respond.ServiceResponse(w, r, h.Logger, testimonial, err, http.StatusOK)
}
