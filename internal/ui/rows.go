package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

const (
	UsersPlaceholder      = "Nenhum usuário encontrado."
	AccessLogsPlaceholder = "Nenhum registro encontrado."

	LogoutConfirmMessage = "Tem certeza que deseja sair?"

	displayTimeLayout = "02/01/2006 15:04:05"
	emptyCell         = "-"
)

var (
	UserHeaders      = []string{"ID", "Usuário", "Nome", "E-mail", "Perfis", "Status"}
	AccessLogHeaders = []string{"ID", "Usuário", "Data/Hora", "IP", "Ação", "Status"}
)

func orDash(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}

// UserRow monta as células de um usuário.
func UserRow(u models.UserRecord) []string {
	return []string{
		strconv.FormatInt(u.ID, 10),
		u.Username,
		orDash(u.FullName),
		u.Email,
		u.RolesLabel(),
		u.StatusLabel(),
	}
}

// AccessLogRow monta as células de um registro de acesso (hora local).
func AccessLogRow(a models.AccessLogRecord) []string {
	when := emptyCell
	if !a.Timestamp.IsZero() {
		when = a.Timestamp.In(time.Local).Format(displayTimeLayout)
	}
	return []string{
		strconv.FormatInt(a.ID, 10),
		orDash(a.Username),
		when,
		orDash(a.IPAddress),
		orDash(a.Action),
		orDash(a.Status),
	}
}

// ToggleLabel é o rótulo do botão de status.
func ToggleLabel(u models.UserRecord) string {
	if u.Active {
		return "desativar"
	}
	return "ativar"
}

// DeleteConfirmMessage usa o nome do usuário quando ele está na página carregada.
func DeleteConfirmMessage(username string) string {
	if username == "" {
		return "Tem certeza que deseja excluir o usuário?"
	}
	return fmt.Sprintf("Tem certeza que deseja excluir o usuário \"%s\"?", username)
}
