package ui

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
)

// PageID identifica cada tela do console.
type PageID int

const (
	PageNone PageID = iota
	PageLogin
	PageDashboard
	PageUsers
	PageAccessLogs
)

func (p PageID) String() string {
	switch p {
	case PageLogin:
		return "login"
	case PageDashboard:
		return "dashboard"
	case PageUsers:
		return "usuarios"
	case PageAccessLogs:
		return "historico"
	}
	return "nenhuma"
}

// Router guarda a tela ativa e implementa auth.Navigator.
type Router struct {
	notifier Notifier

	mu             sync.Mutex
	currentPageID  PageID
	previousPageID PageID
	loginReason    error
	listeners      []func(from, to PageID)
}

// NewRouter cria o Router. notifier pode ser nil.
func NewRouter(notifier Notifier) *Router {
	return &Router{notifier: notifier, currentPageID: PageNone}
}

// OnNavigate registra um callback chamado a cada troca de tela.
func (r *Router) OnNavigate(fn func(from, to PageID)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// NavigateTo muda a tela ativa.
func (r *Router) NavigateTo(id PageID) {
	r.mu.Lock()
	from := r.currentPageID
	r.previousPageID = from
	r.currentPageID = id
	if id != PageLogin {
		r.loginReason = nil
	}
	listeners := append([]func(from, to PageID){}, r.listeners...)
	r.mu.Unlock()

	appLogger.Debugf("Navegando de %v para %v", from, id)
	for _, fn := range listeners {
		fn(from, id)
	}
}

// NavigateBack volta para a tela anterior. Devolve false quando não há anterior.
func (r *Router) NavigateBack() bool {
	r.mu.Lock()
	prev := r.previousPageID
	r.mu.Unlock()
	if prev == PageNone {
		appLogger.Warn("Nenhuma tela anterior para voltar.")
		return false
	}
	r.NavigateTo(prev)
	r.mu.Lock()
	r.previousPageID = PageNone
	r.mu.Unlock()
	return true
}

// RedirectToLogin implementa auth.Navigator. reason nil indica logout voluntário.
func (r *Router) RedirectToLogin(reason error) {
	appLogger.WithFields(logrus.Fields{"reason": reason}).Info("Redirecionando para o login.")
	r.mu.Lock()
	r.loginReason = reason
	r.mu.Unlock()
	r.NavigateTo(PageLogin)
	if reason != nil && r.notifier != nil {
		r.notifier.ShowMessage(core.UserMessage(reason), LevelError)
	}
}

// CurrentPageID devolve a tela ativa.
func (r *Router) CurrentPageID() PageID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentPageID
}

// LoginReason é o motivo do último redirecionamento ao login (nil em logout voluntário).
func (r *Router) LoginReason() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loginReason
}
