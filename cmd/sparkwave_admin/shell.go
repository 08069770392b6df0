package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/services"
	"github.com/sparkwave/painel_admin_go/internal/ui"
	"github.com/sparkwave/painel_admin_go/internal/utils"
)

const shellHelp = `Comandos:
  u                  lista de usuários
  l                  histórico de acessos
  dash               dashboard
  n / p              próxima / página anterior
  /termo             busca usuários (/ sozinho limpa a busca)
  f INICIO FIM       filtra o histórico (AAAA-MM-DD); f sozinho limpa
  e ID               mostra o formulário do usuário
  t ID               ativa/desativa o usuário
  d ID               exclui o usuário (pede confirmação)
  x csv|xlsx         exporta a página exibida
  s / n              confirma / cancela a ação pendente
  sair               encerra a sessão (pede confirmação)
  q                  fecha o console
`

// errQuit encerra o loop do shell sem erro.
var errQuit = errors.New("quit")

func runShell(cc *commandContext, _ []string) error {
	if err := cc.App.Panel.Start(cc.Ctx); err != nil {
		return err
	}
	if err := writef(cc.Out, "Digite ? para ajuda.\n"); err != nil {
		return err
	}

	for {
		line, err := prompt(cc, "> ")
		if err != nil {
			// fim da entrada
			return nil
		}
		if line == "" {
			continue
		}
		err = shellStep(cc, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if cc.App.Router.CurrentPageID() == ui.PageLogin {
			if reason := cc.App.Router.LoginReason(); reason != nil {
				_ = writef(cc.Out, "Faça login novamente com o comando login.\n")
				return reason
			}
			return nil
		}
		if err != nil {
			appLogger.Debugf("Comando do shell %q falhou: %v", line, err)
			// os demais erros já foram exibidos pelo Notifier do painel
			var ve *core.ValidationError
			if errors.As(err, &ve) || errors.Is(err, core.ErrInvalidInput) || errors.Is(err, core.ErrExport) {
				_ = writef(cc.Out, "%s\n", core.UserMessage(err))
			}
		}
	}
}

// shellStep interpreta uma linha do shell.
func shellStep(cc *commandContext, line string) error {
	panel := cc.App.Panel
	_, pending := panel.Confirmation().Pending()

	if strings.HasPrefix(line, "/") {
		return panel.SearchUsers(cc.Ctx, strings.TrimSpace(line[1:]))
	}

	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	switch verb {
	case "?", "ajuda":
		return writef(cc.Out, "%s", shellHelp)
	case "q":
		return errQuit
	case "u":
		return panel.ShowUsers(cc.Ctx)
	case "l":
		return panel.ShowAccessLogs(cc.Ctx)
	case "dash":
		_, err := panel.ShowDashboard(cc.Ctx)
		return err
	case "n", "nao", "não":
		if pending {
			panel.Cancel()
			return writef(cc.Out, "Operação cancelada.\n")
		}
		return changePage(cc, 1)
	case "p":
		return changePage(cc, -1)
	case "s", "sim", "y":
		if !pending {
			return writef(cc.Out, "Nenhuma ação aguardando confirmação.\n")
		}
		return panel.Confirm(cc.Ctx)
	case "f":
		var from, to string
		if len(fields) > 1 {
			from = fields[1]
		}
		if len(fields) > 2 {
			to = fields[2]
		}
		r, err := utils.ParseDateRange(from, to)
		if err != nil {
			return err
		}
		return panel.FilterAccessLogs(cc.Ctx, r)
	case "e", "t", "d":
		id, err := shellID(fields)
		if err != nil {
			return err
		}
		switch verb {
		case "e":
			err := panel.UserView().Invoke(cc.Ctx, id, ui.ActionEdit)
			if errors.Is(err, core.ErrNotFound) {
				return writef(cc.Out, "Usuário %d não está na página exibida.\n", id)
			}
			return err
		case "t":
			return panel.ToggleStatus(cc.Ctx, id)
		}
		panel.RequestDelete(cc.Ctx, id)
		return nil
	case "x":
		if len(fields) < 2 {
			return fmt.Errorf("%w: informe csv ou xlsx", core.ErrInvalidInput)
		}
		format, err := services.ParseExportFormat(fields[1])
		if err != nil {
			return err
		}
		return exportCurrent(cc, cc.App.Router.CurrentPageID(), format)
	case "sair", "logout":
		panel.RequestLogout()
		return nil
	}
	return writef(cc.Out, "Comando desconhecido. Digite ? para ajuda.\n")
}

func changePage(cc *commandContext, delta int) error {
	moved, err := cc.App.Panel.ChangePage(cc.Ctx, delta)
	if err != nil {
		return err
	}
	if !moved {
		return writef(cc.Out, "Não há mais páginas nessa direção.\n")
	}
	return nil
}

func shellID(fields []string) (int64, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: informe o id do usuário", core.ErrInvalidInput)
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id inválido: %s", core.ErrInvalidInput, fields[1])
	}
	return id, nil
}
