package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sparkwave/painel_admin_go/internal/auth"
	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
	"github.com/sparkwave/painel_admin_go/internal/pagination"
)

// Ações de linha da tabela de usuários.
const (
	ActionEdit   = "editar"
	ActionToggle = "status"
	ActionRemove = "excluir"
)

// UserAPI é o que o painel usa de services.UserService.
type UserAPI interface {
	List(ctx context.Context, req models.PageRequest) (models.PageResult[models.UserRecord], error)
	Get(ctx context.Context, id int64) (*models.UserRecord, error)
	Create(ctx context.Context, form models.UserForm) (*models.UserRecord, error)
	Update(ctx context.Context, id int64, form models.UserForm) (*models.UserRecord, error)
	SetStatus(ctx context.Context, id int64, active bool) (string, error)
	ResetPassword(ctx context.Context, id int64, password string) (string, error)
	Delete(ctx context.Context, id int64) (string, error)
}

// AccessLogAPI é o que o painel usa de services.AccessLogService.
type AccessLogAPI interface {
	List(ctx context.Context, req models.PageRequest) (models.PageResult[models.AccessLogRecord], error)
}

// DashboardAPI é o que o painel usa de services.DashboardService.
type DashboardAPI interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

// Gate é implementado por auth.AuthGate.
type Gate interface {
	Enforce(ctx context.Context) (models.Session, error)
}

// SessionCloser é implementado por auth.Authenticator.
type SessionCloser interface {
	Logout(ctx context.Context) error
}

// PanelDeps reúne as dependências do AdminPanel.
type PanelDeps struct {
	Gate      Gate
	Users     UserAPI
	Logs      AccessLogAPI
	Dashboard DashboardAPI
	Auth      SessionCloser
	Router    *Router
	Notifier  Notifier
	Out       io.Writer
	PageSize  int
}

// AdminPanel é o painel administrativo: listas de usuários e de acessos, dashboard e confirmações.
// Nada é carregado antes de Start passar pelo Gate.
type AdminPanel struct {
	deps PanelDeps

	users    *pagination.PagedListController[models.UserRecord]
	logs     *pagination.PagedListController[models.AccessLogRecord]
	userView *ListView[models.UserRecord]
	logView  *ListView[models.AccessLogRecord]
	confirm  *ConfirmationFlow

	outMu   sync.Mutex
	mu      sync.RWMutex
	session *models.Session
}

// NewAdminPanel monta o painel. Router, Notifier e Out são obrigatórios.
func NewAdminPanel(deps PanelDeps) *AdminPanel {
	if deps.Gate == nil || deps.Users == nil || deps.Logs == nil || deps.Dashboard == nil ||
		deps.Auth == nil || deps.Router == nil || deps.Notifier == nil || deps.Out == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewAdminPanel")
	}
	p := &AdminPanel{deps: deps}
	p.userView = NewListView[models.UserRecord](UserHeaders, UsersPlaceholder, UserRow)
	p.logView = NewListView[models.AccessLogRecord](AccessLogHeaders, AccessLogsPlaceholder, AccessLogRow)
	p.users = pagination.NewPagedListController[models.UserRecord]("usuarios", deps.PageSize, deps.Users.List, p.renderUsers, p.fail)
	p.logs = pagination.NewPagedListController[models.AccessLogRecord]("historico", deps.PageSize, deps.Logs.List, p.renderLogs, p.fail)
	p.confirm = NewConfirmationFlow(map[ActionKind]ConfirmHandler{
		ActionDelete: p.executeDelete,
		ActionLogout: p.executeLogout,
	})
	return p
}

// Attach roda o Gate e guarda a sessão aceita, sem carregar nenhuma lista.
func (p *AdminPanel) Attach(ctx context.Context) (models.Session, error) {
	s, err := p.deps.Gate.Enforce(ctx)
	if err != nil {
		return models.Session{}, err
	}
	p.mu.Lock()
	p.session = &s
	p.mu.Unlock()
	return s, nil
}

// Start roda o Gate e, se passar, abre a lista de usuários na página 0.
func (p *AdminPanel) Start(ctx context.Context) error {
	s, err := p.Attach(ctx)
	if err != nil {
		return err
	}
	appLogger.WithFields(logrus.Fields{"username": s.Username}).Info("Painel administrativo iniciado.")
	p.printf("Bem-vindo, %s\n", auth.DisplayName(s))
	p.deps.Router.NavigateTo(PageUsers)
	return p.users.Load(ctx, 0, pagination.Filters{})
}

// Session devolve a sessão aceita pelo Gate.
func (p *AdminPanel) Session() (models.Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.session == nil {
		return models.Session{}, false
	}
	return p.session.Clone(), true
}

func (p *AdminPanel) requireSession() error {
	if _, ok := p.Session(); !ok {
		return core.ErrUnauthorized
	}
	return nil
}

func (p *AdminPanel) Users() *pagination.PagedListController[models.UserRecord] { return p.users }

func (p *AdminPanel) AccessLogs() *pagination.PagedListController[models.AccessLogRecord] {
	return p.logs
}

func (p *AdminPanel) UserView() *ListView[models.UserRecord] { return p.userView }

func (p *AdminPanel) AccessLogView() *ListView[models.AccessLogRecord] { return p.logView }

func (p *AdminPanel) Confirmation() *ConfirmationFlow { return p.confirm }

// ShowUsers abre a lista de usuários mantendo a busca atual.
func (p *AdminPanel) ShowUsers(ctx context.Context) error {
	if err := p.requireSession(); err != nil {
		return err
	}
	p.deps.Router.NavigateTo(PageUsers)
	return p.users.Load(ctx, 0, p.users.Filters())
}

// ShowAccessLogs abre o histórico mantendo o filtro de datas atual.
func (p *AdminPanel) ShowAccessLogs(ctx context.Context) error {
	if err := p.requireSession(); err != nil {
		return err
	}
	p.deps.Router.NavigateTo(PageAccessLogs)
	return p.logs.Load(ctx, 0, p.logs.Filters())
}

// ListUsers carrega uma página específica de usuários com a busca dada.
func (p *AdminPanel) ListUsers(ctx context.Context, page int, term string) error {
	if err := p.requireSession(); err != nil {
		return err
	}
	p.deps.Router.NavigateTo(PageUsers)
	return p.users.Load(ctx, page, pagination.Filters{SearchTerm: term})
}

// ListAccessLogs carrega uma página específica do histórico com o intervalo dado.
func (p *AdminPanel) ListAccessLogs(ctx context.Context, page int, r *models.DateRange) error {
	if err := p.requireSession(); err != nil {
		return err
	}
	p.deps.Router.NavigateTo(PageAccessLogs)
	return p.logs.Load(ctx, page, pagination.Filters{DateRange: r})
}

// ChangePage move a lista ativa delta páginas. Fora dos limites não faz nada.
func (p *AdminPanel) ChangePage(ctx context.Context, delta int) (bool, error) {
	if err := p.requireSession(); err != nil {
		return false, err
	}
	if p.deps.Router.CurrentPageID() == PageAccessLogs {
		return p.logs.GoToPage(ctx, delta)
	}
	return p.users.GoToPage(ctx, delta)
}

// SearchUsers aplica a busca e volta à página 0.
func (p *AdminPanel) SearchUsers(ctx context.Context, term string) error {
	if err := p.requireSession(); err != nil {
		return err
	}
	p.deps.Router.NavigateTo(PageUsers)
	return p.users.Search(ctx, term)
}

// FilterAccessLogs aplica (ou remove, com nil) o filtro de datas e volta à página 0.
func (p *AdminPanel) FilterAccessLogs(ctx context.Context, r *models.DateRange) error {
	if err := p.requireSession(); err != nil {
		return err
	}
	p.deps.Router.NavigateTo(PageAccessLogs)
	return p.logs.FilterByDate(ctx, r)
}

// cachedUser procura o usuário na última página carregada.
func (p *AdminPanel) cachedUser(id int64) (models.UserRecord, bool) {
	page, ok := p.users.Current()
	if !ok {
		return models.UserRecord{}, false
	}
	for _, u := range page.Items {
		if u.ID == id {
			return u, true
		}
	}
	return models.UserRecord{}, false
}

// RequestDelete abre a confirmação de exclusão e devolve a mensagem exibida.
// O nome vem da página carregada ou do servidor; sem ele a mensagem fica genérica.
func (p *AdminPanel) RequestDelete(ctx context.Context, id int64) string {
	u, ok := p.cachedUser(id)
	if !ok {
		if fetched, err := p.deps.Users.Get(ctx, id); err == nil {
			u = *fetched
		} else {
			appLogger.Debugf("Usuário %d fora da página carregada: %v", id, err)
		}
	}
	msg := p.confirm.Request(PendingAction{Kind: ActionDelete, TargetID: id, Message: DeleteConfirmMessage(u.Username)})
	p.printf("%s (s/n)\n", msg)
	return msg
}

// RequestLogout abre a confirmação de saída.
func (p *AdminPanel) RequestLogout() string {
	msg := p.confirm.Request(PendingAction{Kind: ActionLogout, Message: LogoutConfirmMessage})
	p.printf("%s (s/n)\n", msg)
	return msg
}

// Confirm executa a ação pendente (no-op sem ação pendente).
func (p *AdminPanel) Confirm(ctx context.Context) error {
	_, err := p.confirm.Confirm(ctx)
	return err
}

// Cancel descarta a ação pendente.
func (p *AdminPanel) Cancel() {
	p.confirm.Cancel()
}

func (p *AdminPanel) executeDelete(ctx context.Context, action PendingAction) error {
	msg, err := p.deps.Users.Delete(ctx, action.TargetID)
	if err != nil {
		p.fail(err)
		return err
	}
	p.deps.Notifier.ShowMessage(msg, LevelSuccess)
	return p.users.Reload(ctx)
}

func (p *AdminPanel) executeLogout(ctx context.Context, _ PendingAction) error {
	err := p.deps.Auth.Logout(ctx)
	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()
	return err
}

// ToggleStatus inverte o status do usuário e recarrega a mesma página.
func (p *AdminPanel) ToggleStatus(ctx context.Context, id int64) error {
	if err := p.requireSession(); err != nil {
		return err
	}
	u, ok := p.cachedUser(id)
	if !ok {
		fetched, err := p.deps.Users.Get(ctx, id)
		if err != nil {
			p.fail(err)
			return err
		}
		u = *fetched
	}
	msg, err := p.deps.Users.SetStatus(ctx, id, !u.Active)
	if err != nil {
		p.fail(err)
		return err
	}
	p.deps.Notifier.ShowMessage(msg, LevelSuccess)
	return p.users.Reload(ctx)
}

// EditForm devolve o formulário preenchido do usuário (da página atual ou do servidor).
func (p *AdminPanel) EditForm(ctx context.Context, id int64) (models.UserForm, error) {
	if u, ok := p.cachedUser(id); ok {
		return models.FormFromRecord(u), nil
	}
	u, err := p.deps.Users.Get(ctx, id)
	if err != nil {
		p.fail(err)
		return models.UserForm{}, err
	}
	return models.FormFromRecord(*u), nil
}

// SaveUser cria (id == 0) ou atualiza um usuário e recarrega a mesma página.
// Erros de validação voltam sem notificação global: são exibidos junto aos campos.
func (p *AdminPanel) SaveUser(ctx context.Context, id int64, form models.UserForm) error {
	if err := p.requireSession(); err != nil {
		return err
	}
	var err error
	msg := "Usuário criado com sucesso!"
	if id == 0 {
		_, err = p.deps.Users.Create(ctx, form)
	} else {
		msg = "Usuário atualizado com sucesso!"
		_, err = p.deps.Users.Update(ctx, id, form)
	}
	if err != nil {
		if !errors.Is(err, core.ErrValidation) {
			p.fail(err)
		}
		return err
	}
	p.deps.Notifier.ShowMessage(msg, LevelSuccess)
	return p.users.Reload(ctx)
}

// ResetPassword redefine a senha de um usuário.
func (p *AdminPanel) ResetPassword(ctx context.Context, id int64, password string) error {
	if err := p.requireSession(); err != nil {
		return err
	}
	msg, err := p.deps.Users.ResetPassword(ctx, id, password)
	if err != nil {
		if !errors.Is(err, core.ErrValidation) {
			p.fail(err)
		}
		return err
	}
	p.deps.Notifier.ShowMessage(msg, LevelSuccess)
	return nil
}

// ShowDashboard busca e imprime as estatísticas.
func (p *AdminPanel) ShowDashboard(ctx context.Context) (*models.DashboardStats, error) {
	if err := p.requireSession(); err != nil {
		return nil, err
	}
	p.deps.Router.NavigateTo(PageDashboard)
	stats, err := p.deps.Dashboard.Stats(ctx)
	if err != nil {
		p.fail(err)
		return nil, err
	}
	p.outMu.Lock()
	defer p.outMu.Unlock()
	writeDashboard(p.deps.Out, stats, time.Now())
	return stats, nil
}

func writeDashboard(w io.Writer, s *models.DashboardStats, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Usuários\t%d\n", s.TotalUsers)
	fmt.Fprintf(tw, "Ativos\t%d (%s%%)\n", s.ActiveUsers, s.ActiveRate().String())
	fmt.Fprintf(tw, "Logins hoje\t%d\n", s.LoginsOn(now))
	fmt.Fprintf(tw, "Logins\t%d (sucesso %s%%)\n", s.TotalLogins, s.SuccessRate().String())
	fmt.Fprintf(tw, "Falhas de login\t%d\n", s.FailedLogins)
	for _, d := range s.DailySeries() {
		fmt.Fprintf(tw, "  %s\t%d\n", d.Label, d.Count)
	}
	for _, r := range s.RoleSeries() {
		fmt.Fprintf(tw, "  %s\t%d\n", r.Role, r.Count)
	}
	_ = tw.Flush()
}

func (p *AdminPanel) userBindings() []RowBinding[models.UserRecord] {
	return []RowBinding[models.UserRecord]{
		{Action: ActionEdit, Handler: func(ctx context.Context, id int64) error {
			form, err := p.EditForm(ctx, id)
			if err != nil {
				return err
			}
			p.printf("Editando %s <%s> perfis %v\n", form.Username, form.Email, form.Roles)
			return nil
		}},
		{Action: ActionToggle, Label: ToggleLabel, Handler: p.ToggleStatus},
		{Action: ActionRemove, Handler: func(ctx context.Context, id int64) error {
			p.RequestDelete(ctx, id)
			return nil
		}},
	}
}

func (p *AdminPanel) renderUsers(page models.PageResult[models.UserRecord]) {
	p.userView.Render(page, p.userBindings())
	p.outMu.Lock()
	defer p.outMu.Unlock()
	if err := p.userView.Write(p.deps.Out); err != nil {
		appLogger.Warnf("Falha ao desenhar lista de usuários: %v", err)
	}
}

func (p *AdminPanel) renderLogs(page models.PageResult[models.AccessLogRecord]) {
	p.logView.Render(page, nil)
	p.outMu.Lock()
	defer p.outMu.Unlock()
	if err := p.logView.Write(p.deps.Out); err != nil {
		appLogger.Warnf("Falha ao desenhar histórico: %v", err)
	}
}

// fail exibe o erro uma vez. Fim de sessão já foi tratado pelo Router.
func (p *AdminPanel) fail(err error) {
	if err == nil || errors.Is(err, core.ErrSessionExpired) || errors.Is(err, core.ErrUnauthorized) {
		return
	}
	p.deps.Notifier.ShowMessage(core.UserMessage(err), LevelError)
}

func (p *AdminPanel) printf(format string, args ...interface{}) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.deps.Out, format, args...)
}
