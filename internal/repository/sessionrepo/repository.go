package sessionrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"goloja/internal/domain"
	"goloja/internal/pkg/kvstore"
	"goloja/internal/pkg/logger"
)

// Chave da sessão de autenticação da API de pedidos, uma por sessão.
const sessionKeyFmt = "apiSession_%s"

// SessionRepository implementa domain.SessionRepository sobre o armazenamento
// chave-valor. Os três valores da sessão (access, refresh, expiração) são
// gravados como um único blob JSON: ou a sessão inteira existe, ou nada
// existe, sem estado parcial entre os tokens.
type SessionRepository struct {
	store  kvstore.Client
	logger logger.Logger
}

// NewSessionRepository cria e retorna uma nova instância do Repositório.
func NewSessionRepository(store kvstore.Client, log logger.Logger) *SessionRepository {
	return &SessionRepository{store: store, logger: log}
}

// Save grava a sessão completa de forma atômica.
func (r *SessionRepository) Save(ctx context.Context, sessionID string, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return r.store.Set(ctx, fmt.Sprintf(sessionKeyFmt, sessionID), data, 0)
}

// Load recupera a sessão. O booleano indica presença.
func (r *SessionRepository) Load(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	data, err := r.store.Get(ctx, fmt.Sprintf(sessionKeyFmt, sessionID))
	if err == kvstore.ErrNotFound {
		return domain.Session{}, false, nil
	}
	if err != nil {
		r.logger.Warn("Falha ao ler sessão do armazenamento.", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return domain.Session{}, false, nil
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		r.logger.Warn("Sessão persistida ilegível. Descartando.", map[string]interface{}{"session_id": sessionID})
		r.store.Delete(ctx, fmt.Sprintf(sessionKeyFmt, sessionID))
		return domain.Session{}, false, nil
	}

	return session, true, nil
}

// Clear remove a sessão por inteiro (os dois tokens e a expiração juntos).
func (r *SessionRepository) Clear(ctx context.Context, sessionID string) error {
	return r.store.Delete(ctx, fmt.Sprintf(sessionKeyFmt, sessionID))
}
