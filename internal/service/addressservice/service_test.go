package addressservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
	"goloja/internal/service/addressservice"
)

// MockAddressRepository é uma implementação mock da interface AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Save(ctx context.Context, userID string, address domain.Address) error {
	args := m.Called(ctx, userID, address)
	return args.Error(0)
}

func (m *MockAddressRepository) Load(ctx context.Context, userID string) (domain.Address, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Address), args.Bool(1), args.Error(2)
}

func (m *MockAddressRepository) Remove(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func validAddress() domain.Address {
	return domain.Address{
		CEP:    "01310-100",
		Estado: "SP",
		Cidade: "São Paulo",
		Bairro: "Bela Vista",
		Rua:    "Avenida Paulista",
		Numero: "1000",
	}
}

// TestIsValid_EnderecoCompleto testa que os seis campos obrigatórios bastam.
func TestIsValid_EnderecoCompleto(t *testing.T) {
	svc := addressservice.NewService(new(MockAddressRepository), logger.NewLogger("debug"))

	assert.True(t, svc.IsValid(validAddress()))
}

// TestIsValid_ComplementoEOpcional testa que o complemento não é exigido.
func TestIsValid_ComplementoEOpcional(t *testing.T) {
	svc := addressservice.NewService(new(MockAddressRepository), logger.NewLogger("debug"))

	addr := validAddress()
	addr.Complemento = ""
	assert.True(t, svc.IsValid(addr))

	addr.Numero = ""
	assert.False(t, svc.IsValid(addr))
}

// TestSave_EnderecoIncompleto testa a rejeição com erro de validação.
func TestSave_EnderecoIncompleto(t *testing.T) {
	mockRepo := new(MockAddressRepository)
	svc := addressservice.NewService(mockRepo, logger.NewLogger("debug"))

	addr := validAddress()
	addr.Cidade = ""

	err := svc.Save(context.Background(), "user-1", addr)

	assert.Error(t, err)
	var validation *apperror.ValidationError
	assert.True(t, errors.As(err, &validation))
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

// TestSave_SubstituiPorInteiro testa a persistência do endereço válido.
func TestSave_SubstituiPorInteiro(t *testing.T) {
	mockRepo := new(MockAddressRepository)
	svc := addressservice.NewService(mockRepo, logger.NewLogger("debug"))

	addr := validAddress()
	mockRepo.On("Save", mock.Anything, "user-1", addr).Return(nil)

	err := svc.Save(context.Background(), "user-1", addr)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestFormatCEP_Normalizacao testa a normalização para NNNNN-NNN.
func TestFormatCEP_Normalizacao(t *testing.T) {
	svc := addressservice.NewService(new(MockAddressRepository), logger.NewLogger("debug"))

	assert.Equal(t, "01310-100", svc.FormatCEP("01310100"))
	assert.Equal(t, "01310-100", svc.FormatCEP("01.310-100"))
	assert.Equal(t, "01310-100", svc.FormatCEP("013101009999")) // truncado em nove caracteres
	assert.Equal(t, "013", svc.FormatCEP("abc013"))
	assert.Equal(t, "", svc.FormatCEP("sem digitos"))
}

// TestCalculateShipping_TabelaDeFaixas testa cada faixa de prefixo de CEP,
// incluindo o prefixo baixo (005) que cai na faixa final.
func TestCalculateShipping_TabelaDeFaixas(t *testing.T) {
	svc := addressservice.NewService(new(MockAddressRepository), logger.NewLogger("debug"))

	tests := []struct {
		name     string
		cep      string
		subtotal float64
		want     float64
	}{
		{"faixa 010-099", "01310-100", 100, 12.90},
		{"faixa 100-199", "13083-970", 100, 18.50},
		{"faixa 200-299", "20040-020", 100, 25.90},
		{"faixa restante", "30130-010", 100, 19.90},
		{"prefixo baixo cai na faixa final", "00510-000", 100, 19.90},
		{"prefixo ilegível", "abc45-678", 100, 19.90},
		{"frete grátis acima de 200", "01310-100", 250, 0},
		{"exatamente 200 paga frete", "01310-100", 200, 12.90},
		{"cep vazio", "", 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.CalculateShipping(tt.cep, tt.subtotal)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

// TestFormatDisplay_ComESemComplemento testa o texto de exibição.
func TestFormatDisplay_ComESemComplemento(t *testing.T) {
	svc := addressservice.NewService(new(MockAddressRepository), logger.NewLogger("debug"))

	addr := validAddress()
	assert.Equal(t,
		"Avenida Paulista, 1000 - Bela Vista, São Paulo/SP - CEP 01310-100",
		svc.FormatDisplay(addr))

	addr.Complemento = "Apto 42"
	assert.Equal(t,
		"Avenida Paulista, 1000, Apto 42 - Bela Vista, São Paulo/SP - CEP 01310-100",
		svc.FormatDisplay(addr))

	addr.CEP = ""
	assert.Equal(t, "", svc.FormatDisplay(addr))
}

// TestLoad_Ausente testa o retorno de "não encontrado" sem erro.
func TestLoad_Ausente(t *testing.T) {
	mockRepo := new(MockAddressRepository)
	svc := addressservice.NewService(mockRepo, logger.NewLogger("debug"))

	mockRepo.On("Load", mock.Anything, "user-1").Return(domain.Address{}, false, nil)

	_, found, err := svc.Load(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.False(t, found)
}
