package domain

import "context"

// Address representa o endereço de entrega de um usuário.
// É válido quando os seis campos obrigatórios estão preenchidos; o
// complemento é opcional. O endereço é sempre substituído por inteiro,
// nunca atualizado parcialmente.
type Address struct {
	CEP         string `json:"cep"`
	Estado      string `json:"estado"`
	Cidade      string `json:"cidade"`
	Bairro      string `json:"bairro"`
	Rua         string `json:"rua"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento,omitempty"`
}

// AddressRepository define o contrato de persistência de endereços,
// um endereço por usuário.
type AddressRepository interface {
	Save(ctx context.Context, userID string, address Address) error
	Load(ctx context.Context, userID string) (Address, bool, error)
	Remove(ctx context.Context, userID string) error
}
