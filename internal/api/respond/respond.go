package respond

import (
	"encoding/json"
	"fmt"
	"net/http"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// Cabeçalho e cookie onde o storefront envia o identificador de sessão.
const (
	sessionHeader = "X-Session-ID"
	sessionCookie = "session_id"
)

// SessionID extrai o identificador de sessão da requisição: primeiro o
// cabeçalho, depois o cookie. Ausente, retorna vazio e cabe ao serviço
// rejeitar.
func SessionID(r *http.Request) string {
	if sid := r.Header.Get(sessionHeader); sid != "" {
		return sid
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// DecodeJSON decodifica o corpo da requisição em dst. Payload ilegível vira
// erro de validação, nunca erro interno.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}

// ServiceResponse processa o retorno da camada de serviço e envia a resposta
// padronizada: sucesso codifica data com o status dado; erro é traduzido pela
// taxonomia de erros para o status, categoria e mensagem corretos.
func ServiceResponse(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		log.Info("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				log.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		// Erros de cliente (4xx) não são falhas do servidor.
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}
