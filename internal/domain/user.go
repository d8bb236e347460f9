package domain

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

// Constantes para os papéis de usuário
const (
	RoleAdmin    UserRole = "admin"
	RoleCustomer UserRole = "customer"
)

// UserProfile é o perfil retornado pelo endpoint de userinfo do Google,
// acrescido do papel atribuído localmente.
type UserProfile struct {
	Sub        string   `json:"sub"`
	Name       string   `json:"name"`
	GivenName  string   `json:"given_name,omitempty"`
	FamilyName string   `json:"family_name,omitempty"`
	Email      string   `json:"email"`
	Picture    string   `json:"picture,omitempty"`
	Role       UserRole `json:"role,omitempty"`
}
