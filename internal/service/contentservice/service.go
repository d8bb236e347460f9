package contentservice

import (
	"context"
	"encoding/json"
	"fmt"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/kvstore"
	"goloja/internal/pkg/logger"
)

// Chaves do cache de conteúdo institucional.
const (
	cachedContactKey      = "cachedContact"
	cachedSocialsKey      = "cachedSocials"
	cachedTestimonialsKey = "cachedTestimonials"
)

// APIClient é o contrato do cliente da API upstream usado pelo conteúdo.
type APIClient interface {
	GetRaw(ctx context.Context, sessionID, path string) ([]byte, error)
}

// Service serve o conteúdo institucional da loja (contato, redes sociais,
// depoimentos) com a mesma política do catálogo: leitura boa grava cópia
// literal no cache, leitura ruim serve a cópia quando existe.
type Service struct {
	api    APIClient
	store  kvstore.Client
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Conteúdo.
func NewService(api APIClient, store kvstore.Client, log logger.Logger) *Service {
	return &Service{api: api, store: store, logger: log}
}

// GetContact retorna os dados de contato da loja.
func (s *Service) GetContact(ctx context.Context) (domain.Contact, error) {
	data, err := s.fetchWithCache(ctx, "/contato/", cachedContactKey)
	if err != nil {
		return domain.Contact{}, err
	}

	var contact domain.Contact
	if err := json.Unmarshal(data, &contact); err != nil {
		return domain.Contact{}, apperror.NewNetworkError("Resposta de contato inválida da API.", err)
	}
	return contact, nil
}

// GetSocials retorna os links de redes sociais.
func (s *Service) GetSocials(ctx context.Context) ([]domain.SocialLink, error) {
	data, err := s.fetchWithCache(ctx, "/redes-sociais/", cachedSocialsKey)
	if err != nil {
		return nil, err
	}

	var socials []domain.SocialLink
	if err := json.Unmarshal(data, &socials); err != nil {
		return nil, apperror.NewNetworkError("Resposta de redes sociais inválida da API.", err)
	}
	return socials, nil
}

// GetTestimonials retorna os depoimentos de clientes.
func (s *Service) GetTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	data, err := s.fetchWithCache(ctx, "/testmonials/", cachedTestimonialsKey)
	if err != nil {
		return nil, err
	}

	var testimonials []domain.Testimonial
	if err := json.Unmarshal(data, &testimonials); err != nil {
		return nil, apperror.NewNetworkError("Resposta de depoimentos inválida da API.", err)
	}
	return testimonials, nil
}

// GetTestimonialByID busca um depoimento. Se a API falhar, o depoimento é
// procurado na lista completa em cache antes de propagar o erro.
func (s *Service) GetTestimonialByID(ctx context.Context, id int64) (domain.Testimonial, error) {
	path := fmt.Sprintf("/testmonials/%d", id)

	data, err := s.api.GetRaw(ctx, "", path)
	if err == nil {
		var testimonial domain.Testimonial
		if uerr := json.Unmarshal(data, &testimonial); uerr != nil {
			return domain.Testimonial{}, apperror.NewNetworkError("Resposta de depoimento inválida da API.", uerr)
		}
		return testimonial, nil
	}

	if cached, cerr := s.store.Get(ctx, cachedTestimonialsKey); cerr == nil {
		var testimonials []domain.Testimonial
		if uerr := json.Unmarshal([]byte(cached), &testimonials); uerr == nil {
			for _, t := range testimonials {
				if t.ID == id {
					s.logger.Warn("API de conteúdo indisponível. Depoimento recuperado da lista em cache.", map[string]interface{}{"testimonial_id": id})
					return t, nil
				}
			}
		}
	}

	return domain.Testimonial{}, err
}

// fetchWithCache busca o recurso na API e grava a resposta literal no cache
// no sucesso; na falha serve a cópia em cache, quando existe.
func (s *Service) fetchWithCache(ctx context.Context, path, cacheKey string) ([]byte, error) {
	data, err := s.api.GetRaw(ctx, "", path)
	if err == nil {
		if serr := s.store.Set(ctx, cacheKey, string(data), 0); serr != nil {
			s.logger.Warn("Falha ao gravar cache de conteúdo.", map[string]interface{}{"key": cacheKey})
		}
		return data, nil
	}

	cached, cerr := s.store.Get(ctx, cacheKey)
	if cerr == nil {
		s.logger.Warn("API indisponível. Servindo conteúdo do cache.", map[string]interface{}{"path": path})
		return []byte(cached), nil
	}

	return nil, err
}
