package models

import (
	"strings"
	"time"
)

// RolePrefix é o prefixo que o backend Spring adiciona aos perfis.
const RolePrefix = "ROLE_"

// Session é a sessão autenticada do operador do console.
// Token é a credencial bearer opaca; nunca deve ser logada.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeRole remove o prefixo ROLE_ e converte para maiúsculas.
func NormalizeRole(role string) string {
	r := strings.ToUpper(strings.TrimSpace(role))
	return strings.TrimPrefix(r, RolePrefix)
}

// NormalizeRoles aplica NormalizeRole, descartando vazios e duplicados.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]bool, len(roles))
	for _, r := range roles {
		n := NormalizeRole(r)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// HasRole informa se a sessão possui o perfil (comparação sem prefixo e sem caixa).
func (s Session) HasRole(role string) bool {
	want := NormalizeRole(role)
	if want == "" {
		return false
	}
	for _, r := range s.Roles {
		if NormalizeRole(r) == want {
			return true
		}
	}
	return false
}

// DisplayName é o nome exibido no cabeçalho do painel.
func (s Session) DisplayName() string {
	return s.Username
}

// Clone devolve uma cópia que não compartilha o slice de perfis.
func (s Session) Clone() Session {
	c := s
	if s.Roles != nil {
		c.Roles = append([]string(nil), s.Roles...)
	}
	return c
}

// DBSession é a linha persistida pelo backend gorm do SessionStore.
// Existe no máximo uma linha por Slot; o token fica selado (SealedToken).
type DBSession struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	Slot        string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	SealedToken string    `gorm:"type:text;not null"`
	UserID      int64     `gorm:"not null"`
	Username    string    `gorm:"type:varchar(50);not null"`
	Email       string    `gorm:"type:varchar(255)"`
	Roles       string    `gorm:"type:varchar(255)"` // CSV
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}

// TableName especifica o nome da tabela para GORM.
func (DBSession) TableName() string {
	return "admin_sessions"
}
