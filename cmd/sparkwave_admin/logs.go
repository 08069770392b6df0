package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/sparkwave/painel_admin_go/internal/core"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
	"github.com/sparkwave/painel_admin_go/internal/services"
	"github.com/sparkwave/painel_admin_go/internal/ui"
	"github.com/sparkwave/painel_admin_go/internal/utils"
)

// Nomes base dos arquivos gerados por export-page.
const (
	usersPageExportName = "usuarios_pagina"
	logsPageExportName  = "historico_pagina"
)

func runLogs(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	page := fs.Int("page", 1, "página (a partir de 1)")
	from := fs.String("from", "", "data inicial (AAAA-MM-DD)")
	to := fs.String("to", "", "data final (AAAA-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *page < 1 {
		return fmt.Errorf("%w: --page deve ser maior que zero", core.ErrInvalidInput)
	}
	r, err := utils.ParseDateRange(*from, *to)
	if err != nil {
		return err
	}
	return cc.App.Panel.ListAccessLogs(cc.Ctx, *page-1, r)
}

func runUserLogs(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-logs", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	id := fs.Int64("id", 0, "id do usuário")
	from := fs.String("from", "", "data inicial (AAAA-MM-DD)")
	to := fs.String("to", "", "data final (AAAA-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, err := utils.ParseDateRange(*from, *to)
	if err != nil {
		return err
	}
	records, err := cc.App.Logs.ListByUser(cc.Ctx, *id, r)
	if err != nil {
		return err
	}
	view := ui.NewListView[models.AccessLogRecord](ui.AccessLogHeaders, ui.AccessLogsPlaceholder, ui.AccessLogRow)
	view.Render(models.NewPageResult(records, 0, 1), nil)
	return view.Write(cc.Out)
}

func runExportUsers(cc *commandContext, _ []string) error {
	path, err := cc.App.Export.DownloadUsersCSV(cc.Ctx)
	if err != nil {
		return err
	}
	return writef(cc.Out, "Arquivo salvo em %s\n", path)
}

func runExportLogs(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("export-logs", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	from := fs.String("from", "", "data inicial (AAAA-MM-DD)")
	to := fs.String("to", "", "data final (AAAA-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, err := utils.ParseDateRange(*from, *to)
	if err != nil {
		return err
	}
	path, err := cc.App.Export.DownloadAccessLogsCSV(cc.Ctx, r)
	if err != nil {
		return err
	}
	return writef(cc.Out, "Arquivo salvo em %s\n", path)
}

func runExportPage(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("export-page", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	list := fs.String("list", "users", "lista a exportar: users ou logs")
	format := fs.String("format", "csv", "formato: csv ou xlsx")
	page := fs.Int("page", 1, "página (a partir de 1)")
	search := fs.String("search", "", "filtro da lista de usuários")
	from := fs.String("from", "", "data inicial do histórico (AAAA-MM-DD)")
	to := fs.String("to", "", "data final do histórico (AAAA-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := services.ParseExportFormat(*format)
	if err != nil {
		return err
	}
	if *page < 1 {
		return fmt.Errorf("%w: --page deve ser maior que zero", core.ErrInvalidInput)
	}

	switch strings.ToLower(strings.TrimSpace(*list)) {
	case "users":
		if err := cc.App.Panel.ListUsers(cc.Ctx, *page-1, strings.TrimSpace(*search)); err != nil {
			return err
		}
		return exportCurrent(cc, ui.PageUsers, f)
	case "logs":
		r, err := utils.ParseDateRange(*from, *to)
		if err != nil {
			return err
		}
		if err := cc.App.Panel.ListAccessLogs(cc.Ctx, *page-1, r); err != nil {
			return err
		}
		return exportCurrent(cc, ui.PageAccessLogs, f)
	}
	return fmt.Errorf("%w: lista desconhecida: %s", core.ErrInvalidInput, *list)
}

// exportCurrent grava a página exibida da lista indicada.
func exportCurrent(cc *commandContext, page ui.PageID, format services.ExportFormat) error {
	var (
		path string
		err  error
	)
	switch page {
	case ui.PageUsers:
		current, ok := cc.App.Panel.Users().Current()
		if !ok {
			return fmt.Errorf("%w: nenhuma página de usuários carregada", core.ErrExport)
		}
		path, err = services.ExportPage(cc.App.Export, current, ui.UserHeaders, ui.UserRow, usersPageExportName, "Usuarios", format)
	case ui.PageAccessLogs:
		current, ok := cc.App.Panel.AccessLogs().Current()
		if !ok {
			return fmt.Errorf("%w: nenhuma página do histórico carregada", core.ErrExport)
		}
		path, err = services.ExportPage(cc.App.Export, current, ui.AccessLogHeaders, ui.AccessLogRow, logsPageExportName, "Historico", format)
	default:
		return fmt.Errorf("%w: a tela atual não tem lista para exportar", core.ErrExport)
	}
	if err != nil {
		return err
	}
	return writef(cc.Out, "Arquivo salvo em %s\n", path)
}
