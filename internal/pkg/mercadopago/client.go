package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// defaultRedirectBase é o checkout hospedado do Mercado Pago para o Brasil.
const defaultRedirectBase = "https://www.mercadopago.com.br/checkout/v1/redirect"

// Item é uma linha de produto no formato do Mercado Pago.
type Item struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	CurrencyID  string  `json:"currency_id"`
	UnitPrice   float64 `json:"unit_price"`
	PictureURL  string  `json:"picture_url,omitempty"`
}

// Address é o endereço no formato do Mercado Pago.
type Address struct {
	ZipCode      string `json:"zip_code"`
	StreetName   string `json:"street_name"`
	StreetNumber string `json:"street_number"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	FederalUnit  string `json:"federal_unit,omitempty"`
}

// Payer identifica o comprador na preferência.
type Payer struct {
	Name    string  `json:"name,omitempty"`
	Email   string  `json:"email"`
	Address Address `json:"address"`
}

// Shipments carrega o custo de frete da preferência.
type Shipments struct {
	Cost            float64  `json:"cost"`
	Mode            string   `json:"mode"`
	ReceiverAddress *Address `json:"receiver_address,omitempty"`
}

// BackURLs são as URLs de retorno pós-pagamento.
type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// PreferenceRequest é o payload de criação de preferência.
type PreferenceRequest struct {
	Items             []Item    `json:"items"`
	Payer             Payer     `json:"payer"`
	Shipments         Shipments `json:"shipments"`
	BackURLs          BackURLs  `json:"back_urls"`
	AutoReturn        string    `json:"auto_return"`
	ExternalReference string    `json:"external_reference"`
}

// Preference é a resposta relevante da criação de preferência.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point,omitempty"`
}

// PreferenceCreator é o contrato que o orquestrador de checkout espera do
// provedor de pagamento.
type PreferenceCreator interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error)
	RedirectURL(preferenceID string) string
}

// Client é o cliente HTTP da API do Mercado Pago. As credenciais vêm
// exclusivamente da configuração, nunca do código.
type Client struct {
	baseURL       string
	redirectBase  string
	accessToken   string
	applicationID string
	http          *http.Client
	logger        logger.Logger
}

// NewClient cria o cliente do Mercado Pago.
func NewClient(baseURL, accessToken, applicationID string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		redirectBase:  defaultRedirectBase,
		accessToken:   accessToken,
		applicationID: applicationID,
		http:          &http.Client{Timeout: timeout},
		logger:        log,
	}
}

// CreatePreference cria uma preferência de pagamento. Qualquer falha (rede,
// status não-2xx ou resposta sem identificador) vira um ProviderError, que o
// orquestrador traduz em "aborta o checkout, preserva o carrinho".
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Preference{}, apperror.NewInternalError("Falha ao serializar a preferência.", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/preferences", bytes.NewReader(payload))
	if err != nil {
		return Preference{}, apperror.NewProviderError("Falha ao montar a requisição de preferência.", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	if c.applicationID != "" {
		httpReq.Header.Set("X-Application-ID", c.applicationID)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Preference{}, apperror.NewProviderError("Falha ao criar preferência de pagamento.", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Preference{}, apperror.NewProviderError("Falha ao ler a resposta do provedor.", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Provedor de pagamento recusou a preferência.", fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
		return Preference{}, apperror.NewProviderError(fmt.Sprintf("O provedor respondeu com status %d.", resp.StatusCode), nil)
	}

	var pref Preference
	if err := json.Unmarshal(body, &pref); err != nil {
		return Preference{}, apperror.NewProviderError("Resposta inválida do provedor.", err)
	}

	if pref.ID == "" {
		return Preference{}, apperror.NewProviderError("Resposta do provedor sem identificador de preferência.", nil)
	}

	c.logger.Info("Preferência de pagamento criada.", map[string]interface{}{"preference_id": pref.ID})
	return pref, nil
}

// RedirectURL monta a URL do checkout hospedado para uma preferência.
func (c *Client) RedirectURL(preferenceID string) string {
	return c.redirectBase + "?pref_id=" + url.QueryEscape(preferenceID)
}
