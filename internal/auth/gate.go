package auth

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// AccessDeniedMessage é exibida quando a sessão não tem o perfil exigido.
const AccessDeniedMessage = "Acesso restrito a administradores."

// AuthGate bloqueia o acesso às telas protegidas até que haja uma sessão válida com o perfil exigido.
type AuthGate struct {
	store        SessionStore
	nav          Navigator
	requiredRole string
	now          func() time.Time
}

// NewAuthGate cria o gate. requiredRole vazio assume "ADMIN".
func NewAuthGate(store SessionStore, nav Navigator, requiredRole string) *AuthGate {
	if store == nil || nav == nil {
		appLogger.Fatalf("SessionStore e Navigator são obrigatórios para AuthGate")
	}
	if requiredRole == "" {
		requiredRole = "ADMIN"
	}
	return &AuthGate{store: store, nav: nav, requiredRole: models.NormalizeRole(requiredRole), now: time.Now}
}

// Enforce deve terminar antes de qualquer componente protegido ser inicializado.
// Sem sessão: redireciona e devolve ErrUnauthorized. Token JWT vencido: limpa a sessão,
// redireciona e devolve ErrSessionExpired. Sem o perfil: redireciona e devolve ErrPermissionDenied.
func (g *AuthGate) Enforce(ctx context.Context) (models.Session, error) {
	s, ok, err := g.store.Load(ctx)
	if err != nil {
		appLogger.Errorf("Falha ao carregar sessão: %v", err)
		g.nav.RedirectToLogin(core.ErrUnauthorized)
		return models.Session{}, core.WrapErrorf(core.ErrUnauthorized, "sessão indisponível: %v", err)
	}
	if !ok || s.Token == "" {
		appLogger.Debug("Nenhuma sessão ativa. Redirecionando para o login.")
		g.nav.RedirectToLogin(core.ErrUnauthorized)
		return models.Session{}, core.ErrUnauthorized
	}

	logCtx := appLogger.WithFields(logrus.Fields{"username": s.Username, "requiredRole": g.requiredRole})

	if claims, err := ParseTokenClaims(s.Token); err == nil && claims.ExpiredAt(g.now()) {
		logCtx.Infof("Token expirou em %s. Encerrando sessão local.", claims.ExpiresAt.Format(time.RFC3339))
		if err := g.store.Clear(ctx); err != nil {
			logCtx.Warnf("Falha ao limpar sessão expirada: %v", err)
		}
		g.nav.RedirectToLogin(core.ErrSessionExpired)
		return models.Session{}, core.ErrSessionExpired
	}

	if !s.HasRole(g.requiredRole) {
		logCtx.Warnf("Acesso negado: perfis %v", s.Roles)
		denied := core.NewPermissionError(AccessDeniedMessage)
		g.nav.RedirectToLogin(denied)
		return models.Session{}, denied
	}
	return s, nil
}

// DisplayName devolve o nome a exibir para a sessão; "Admin" quando ausente.
func DisplayName(s models.Session) string {
	if s.DisplayName() == "" {
		return "Admin"
	}
	return s.DisplayName()
}
