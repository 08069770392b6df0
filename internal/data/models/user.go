package models

import (
	"strings"
)

// DefaultRole é o perfil atribuído quando nenhum é informado.
const DefaultRole = "USER"

// UserRecord é um usuário como devolvido por GET /admin/users.
type UserRecord struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName,omitempty"`
	Roles    []string `json:"roles"`
	Active   bool     `json:"active"`
}

// RecordID implementa Identifiable.
func (u UserRecord) RecordID() int64 { return u.ID }

// StatusLabel devolve "Ativo" ou "Inativo".
func (u UserRecord) StatusLabel() string {
	if u.Active {
		return "Ativo"
	}
	return "Inativo"
}

// RolesLabel junta os perfis por ", " ou devolve DefaultRole quando não há nenhum.
func (u UserRecord) RolesLabel() string {
	if len(u.Roles) == 0 {
		return DefaultRole
	}
	return strings.Join(u.Roles, ", ")
}

// UserForm é o payload de criação/atualização (POST /admin/users, PUT /admin/users/{id}).
// Em atualizações, Password vazio é omitido do JSON.
type UserForm struct {
	Username string   `json:"username" validate:"required,min=3,max=50,username_chars"`
	Email    string   `json:"email" validate:"required,email,max=255"`
	FullName string   `json:"fullName" validate:"max=100"`
	Password string   `json:"password,omitempty"`
	Roles    []string `json:"roles" validate:"min=1,dive,required"`
	Active   bool     `json:"active"`
}

// FormFromRecord preenche um formulário de edição a partir de um registro (senha em branco).
func FormFromRecord(u UserRecord) UserForm {
	return UserForm{
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Roles:    append([]string(nil), u.Roles...),
		Active:   u.Active,
	}
}
