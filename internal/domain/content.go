package domain

// Contact são os dados de contato da loja servidos pela API de conteúdo.
type Contact struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Endereco string `json:"endereco,omitempty"`
	Horario  string `json:"horario,omitempty"`
}

// SocialLink é um link de rede social da loja.
type SocialLink struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
	URL  string `json:"url"`
	Icon string `json:"icon,omitempty"`
}

// Testimonial é um depoimento de cliente exibido na vitrine.
type Testimonial struct {
	ID       int64  `json:"id"`
	Nome     string `json:"nome"`
	Texto    string `json:"texto"`
	Nota     int    `json:"nota,omitempty"`
	Imagem   string `json:"imagem,omitempty"`
	Cidade   string `json:"cidade,omitempty"`
	Destaque bool   `json:"destaque,omitempty"`
}
