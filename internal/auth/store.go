package auth

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// SessionStore guarda a sessão do operador.
// Load depois de Save (e antes de Clear) devolve a mesma sessão; Save substitui o valor inteiro.
type SessionStore interface {
	Save(ctx context.Context, s models.Session) error
	// Load devolve ok=false quando não há sessão.
	Load(ctx context.Context) (s models.Session, ok bool, err error)
	Clear(ctx context.Context) error
}

// Navigator leva o operador de volta à tela de login.
// reason é nil em um logout voluntário.
type Navigator interface {
	RedirectToLogin(reason error)
}

// NavigatorFunc adapta uma função a Navigator.
type NavigatorFunc func(reason error)

// RedirectToLogin implementa Navigator.
func (f NavigatorFunc) RedirectToLogin(reason error) { f(reason) }

type quietRedirectKey struct{}

// WithoutRedirect marca ctx para que a camada HTTP não redirecione ao login quando a sessão
// faltar ou o servidor responder 401. Quem usa o marcador faz o redirecionamento sozinho.
func WithoutRedirect(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietRedirectKey{}, true)
}

// RedirectSuppressed informa se ctx foi marcado por WithoutRedirect.
func RedirectSuppressed(ctx context.Context) bool {
	quiet, _ := ctx.Value(quietRedirectKey{}).(bool)
	return quiet
}

// NewSessionStore escolhe o backend de acordo com APP_SESSION_BACKEND.
// db só é usado pelos backends sqlite/postgresql.
func NewSessionStore(cfg *core.Config, db *gorm.DB) (SessionStore, error) {
	switch cfg.SessionBackend {
	case "memory":
		return NewMemorySessionStore(), nil
	case "file", "sqlite", "postgresql":
	default:
		return nil, fmt.Errorf("%w: backend de sessão não suportado: %s", core.ErrConfiguration, cfg.SessionBackend)
	}

	sealer, err := NewTokenSealer(cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	if cfg.SessionBackend == "file" {
		return NewFileSessionStore(cfg.SessionFile, sealer), nil
	}
	if db == nil {
		return nil, fmt.Errorf("%w: backend %s requer conexão com banco de dados", core.ErrConfiguration, cfg.SessionBackend)
	}
	return NewGormSessionStore(db, sealer), nil
}

func validateSession(s models.Session) error {
	if s.Token == "" {
		return fmt.Errorf("%w: sessão sem token", core.ErrInvalidInput)
	}
	if s.Username == "" {
		return fmt.Errorf("%w: sessão sem nome de usuário", core.ErrInvalidInput)
	}
	return nil
}

// MemorySessionStore mantém a sessão apenas durante a vida do processo.
type MemorySessionStore struct {
	mu      sync.RWMutex
	session *models.Session
}

// NewMemorySessionStore cria um store vazio.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (m *MemorySessionStore) Save(_ context.Context, s models.Session) error {
	if err := validateSession(s); err != nil {
		return err
	}
	c := s.Clone()
	m.mu.Lock()
	m.session = &c
	m.mu.Unlock()
	appLogger.Debugf("Sessão em memória definida para usuário %s", s.Username)
	return nil
}

func (m *MemorySessionStore) Load(_ context.Context) (models.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return models.Session{}, false, nil
	}
	return m.session.Clone(), true, nil
}

func (m *MemorySessionStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	return nil
}
