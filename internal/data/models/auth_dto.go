package models

// LoginRequest é o corpo de POST /auth/signin.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// JwtResponse é a resposta de sucesso do signin.
type JwtResponse struct {
	Token       string   `json:"token"`
	Type        string   `json:"type"`
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	RedirectURL string   `json:"redirectUrl,omitempty"`
}

// MessageResponse é o corpo {"message": "..."} usado pela API em erros e confirmações.
type MessageResponse struct {
	Message string `json:"message"`
}
