package addressrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"goloja/internal/domain"
	"goloja/internal/pkg/kvstore"
	"goloja/internal/pkg/logger"
)

// Chave do endereço, uma por usuário.
const addressKeyFmt = "userAddress_%s"

// AddressRepository implementa domain.AddressRepository sobre o armazenamento
// chave-valor. O endereço é sempre gravado por inteiro (substituição, nunca
// atualização parcial).
type AddressRepository struct {
	store  kvstore.Client
	logger logger.Logger
}

// NewAddressRepository cria e retorna uma nova instância do Repositório.
func NewAddressRepository(store kvstore.Client, log logger.Logger) *AddressRepository {
	return &AddressRepository{store: store, logger: log}
}

// Save serializa e grava o endereço do usuário.
func (r *AddressRepository) Save(ctx context.Context, userID string, address domain.Address) error {
	data, err := json.Marshal(address)
	if err != nil {
		return err
	}

	return r.store.Set(ctx, fmt.Sprintf(addressKeyFmt, userID), data, 0)
}

// Load recupera o endereço do usuário. O booleano indica presença.
func (r *AddressRepository) Load(ctx context.Context, userID string) (domain.Address, bool, error) {
	data, err := r.store.Get(ctx, fmt.Sprintf(addressKeyFmt, userID))
	if err == kvstore.ErrNotFound {
		return domain.Address{}, false, nil
	}
	if err != nil {
		r.logger.Warn("Falha ao ler endereço do armazenamento.", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return domain.Address{}, false, nil
	}

	var address domain.Address
	if err := json.Unmarshal([]byte(data), &address); err != nil {
		r.logger.Warn("Endereço persistido ilegível.", map[string]interface{}{"user_id": userID})
		return domain.Address{}, false, nil
	}

	return address, true, nil
}

// Remove apaga o endereço do usuário.
func (r *AddressRepository) Remove(ctx context.Context, userID string) error {
	return r.store.Delete(ctx, fmt.Sprintf(addressKeyFmt, userID))
}
