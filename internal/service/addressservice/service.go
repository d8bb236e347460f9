package addressservice

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// Limite de subtotal acima do qual o frete é grátis. A política é
// estritamente "maior que": um pedido de exatamente R$ 200,00 paga frete.
const freteGratisAcimaDe = 200.0

// Service implementa a lógica de endereço e frete: validação, formatação,
// persistência e cálculo do frete por faixa de prefixo de CEP.
type Service struct {
	repo   domain.AddressRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Endereço.
func NewService(repo domain.AddressRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// IsValid verifica se o endereço tem os seis campos obrigatórios preenchidos.
// O complemento é opcional.
func (s *Service) IsValid(address domain.Address) bool {
	return address.CEP != "" &&
		address.Estado != "" &&
		address.Cidade != "" &&
		address.Bairro != "" &&
		address.Rua != "" &&
		address.Numero != ""
}

// Save valida e persiste o endereço do usuário, substituindo qualquer
// endereço anterior por inteiro.
func (s *Service) Save(ctx context.Context, userID string, address domain.Address) error {
	if userID == "" {
		return apperror.NewValidationError("Identificador de usuário é obrigatório para salvar endereço.")
	}
	if !s.IsValid(address) {
		return apperror.NewValidationError("O endereço está incompleto. Preencha CEP, estado, cidade, bairro, rua e número.")
	}

	if err := s.repo.Save(ctx, userID, address); err != nil {
		s.logger.Error("Falha ao salvar endereço.", err)
		return apperror.NewInternalError("Falha ao salvar o endereço.", err)
	}

	s.logger.Info("Endereço salvo.", map[string]interface{}{"user_id": userID, "cep": address.CEP})
	return nil
}

// Load recupera o endereço do usuário. O booleano indica presença.
func (s *Service) Load(ctx context.Context, userID string) (domain.Address, bool, error) {
	if userID == "" {
		return domain.Address{}, false, apperror.NewValidationError("Identificador de usuário é obrigatório.")
	}

	return s.repo.Load(ctx, userID)
}

// Remove apaga o endereço do usuário.
func (s *Service) Remove(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.NewValidationError("Identificador de usuário é obrigatório.")
	}

	if err := s.repo.Remove(ctx, userID); err != nil {
		s.logger.Error("Falha ao remover endereço.", err)
		return apperror.NewInternalError("Falha ao remover o endereço.", err)
	}

	return nil
}

// FormatCEP normaliza o CEP para o padrão brasileiro NNNNN-NNN: remove tudo
// que não é dígito, insere o hífen após o quinto dígito e trunca em nove
// caracteres.
func (s *Service) FormatCEP(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	cep := digits.String()
	if len(cep) > 5 {
		cep = cep[:5] + "-" + cep[5:]
	}
	if len(cep) > 9 {
		cep = cep[:9]
	}
	return cep
}

// CalculateShipping calcula o frete a partir do prefixo do CEP e do subtotal.
// Subtotal estritamente acima de R$ 200 tem frete grátis. Os três primeiros
// caracteres do CEP definem a faixa:
//
//	[10, 99]   → 12.90
//	[100, 199] → 18.50
//	[200, 299] → 25.90
//	qualquer outro prefixo (inclusive 0–9 e prefixos ilegíveis) → 19.90
//
// O prefixo 0–9 cair na faixa final é comportamento herdado do cálculo
// original e deve ser preservado.
func (s *Service) CalculateShipping(cep string, subtotal float64) float64 {
	if cep == "" {
		return 0
	}

	if subtotal > freteGratisAcimaDe {
		return 0 // Frete grátis para compras acima de R$ 200
	}

	prefix := cep
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	n, err := strconv.Atoi(prefix)
	if err != nil {
		return 19.90
	}

	switch {
	case n >= 10 && n <= 99:
		return 12.90
	case n >= 100 && n <= 199:
		return 18.50
	case n >= 200 && n <= 299:
		return 25.90
	default:
		return 19.90
	}
}

// FormatDisplay monta o texto de exibição do endereço completo.
// Endereço inválido resulta em string vazia.
func (s *Service) FormatDisplay(address domain.Address) string {
	if !s.IsValid(address) {
		return ""
	}

	formatted := fmt.Sprintf("%s, %s", address.Rua, address.Numero)

	if address.Complemento != "" {
		formatted += ", " + address.Complemento
	}

	formatted += fmt.Sprintf(" - %s, %s/%s - CEP %s", address.Bairro, address.Cidade, address.Estado, address.CEP)

	return formatted
}
