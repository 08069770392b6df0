package main

import (
	"io"
	"net/http"

	"gorm.io/gorm"

	"github.com/sparkwave/painel_admin_go/internal/api"
	"github.com/sparkwave/painel_admin_go/internal/auth"
	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data"
	"github.com/sparkwave/painel_admin_go/internal/services"
	"github.com/sparkwave/painel_admin_go/internal/ui"
)

// adminApp reúne os componentes montados para um processo do console.
type adminApp struct {
	cfg   *core.Config
	db    *gorm.DB
	Store auth.SessionStore

	Router *ui.Router
	Login  *ui.LoginScreen
	Panel  *ui.AdminPanel

	Auth      *auth.Authenticator
	Users     *services.UserService
	Logs      *services.AccessLogService
	Dashboard *services.DashboardService
	Export    *services.ExportService
}

// newAdminApp abre a base da sessão quando o backend exige e monta o restante.
// out recebe listas e tabelas; notices recebe as mensagens do Notifier.
func newAdminApp(cfg *core.Config, out, notices io.Writer) (*adminApp, error) {
	var db *gorm.DB
	if cfg.SessionBackend == "sqlite" || cfg.SessionBackend == "postgresql" {
		var err error
		db, err = data.InitializeDB(cfg)
		if err != nil {
			return nil, err
		}
		appLogger.Info("Banco de dados de sessão inicializado com sucesso.")
	}

	store, err := auth.NewSessionStore(cfg, db)
	if err != nil {
		_ = data.CloseDB(db)
		return nil, err
	}

	notifier := ui.NewWriterNotifier(notices)
	router := ui.NewRouter(notifier)
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	fetcher := api.NewFetcher(client, store, router)

	app := &adminApp{
		cfg:       cfg,
		db:        db,
		Store:     store,
		Router:    router,
		Auth:      auth.NewAuthenticator(cfg, store, router, client, fetcher),
		Users:     services.NewUserService(cfg, fetcher),
		Logs:      services.NewAccessLogService(cfg, fetcher),
		Dashboard: services.NewDashboardService(cfg, fetcher),
		Export:    services.NewExportService(cfg, fetcher),
	}
	app.Login = ui.NewLoginScreen(app.Auth, router, notifier)
	app.Panel = ui.NewAdminPanel(ui.PanelDeps{
		Gate:      auth.NewAuthGate(store, router, cfg.RequiredRole),
		Users:     app.Users,
		Logs:      app.Logs,
		Dashboard: app.Dashboard,
		Auth:      app.Auth,
		Router:    router,
		Notifier:  notifier,
		Out:       out,
		PageSize:  cfg.PageSize,
	})
	appLogger.Info("Todos os serviços foram inicializados.")
	return app, nil
}

// Close libera a conexão com o banco de dados da sessão, se houver.
func (a *adminApp) Close() {
	if a.db == nil {
		return
	}
	if err := data.CloseDB(a.db); err != nil {
		appLogger.Errorf("Erro ao fechar conexão com banco de dados: %v", err)
		return
	}
	appLogger.Info("Conexão com banco de dados fechada.")
}
