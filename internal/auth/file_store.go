package auth

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// persistedSession é o formato gravado em APP_SESSION_FILE.
type persistedSession struct {
	SealedToken string    `json:"sealed_token"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
}

// FileSessionStore persiste a sessão em um arquivo JSON, sobrevivendo entre execuções do console.
type FileSessionStore struct {
	mu     sync.RWMutex
	path   string
	sealer *TokenSealer
}

// NewFileSessionStore cria o store; o arquivo só é criado no primeiro Save.
func NewFileSessionStore(path string, sealer *TokenSealer) *FileSessionStore {
	if sealer == nil {
		appLogger.Fatalf("TokenSealer não pode ser nil para FileSessionStore")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	return &FileSessionStore{path: absPath, sealer: sealer}
}

// Path devolve o caminho absoluto do arquivo de sessão.
func (f *FileSessionStore) Path() string { return f.path }

func (f *FileSessionStore) Save(_ context.Context, s models.Session) error {
	if err := validateSession(s); err != nil {
		return err
	}
	sealed, err := f.sealer.Seal(s.Token)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(persistedSession{
		SealedToken: sealed,
		UserID:      s.UserID,
		Username:    s.Username,
		Email:       s.Email,
		Roles:       s.Roles,
		CreatedAt:   s.CreatedAt,
	}, "", "  ")
	if err != nil {
		return core.WrapErrorf(core.ErrInternal, "erro ao serializar sessão")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return core.WrapErrorf(err, "erro ao criar diretório da sessão")
	}
	// Escrita atômica: leitores nunca veem um arquivo pela metade.
	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return core.WrapErrorf(err, "erro ao escrever arquivo de sessão temporário '%s'", tempPath)
	}
	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return core.WrapErrorf(err, "erro ao renomear arquivo de sessão para '%s'", f.path)
	}
	appLogger.Infof("Sessão de %s salva em %s", s.Username, f.path)
	return nil
}

func (f *FileSessionStore) Load(_ context.Context) (models.Session, bool, error) {
	f.mu.RLock()
	data, err := os.ReadFile(f.path)
	f.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Session{}, false, nil
		}
		return models.Session{}, false, core.WrapErrorf(err, "erro ao ler arquivo de sessão '%s'", f.path)
	}
	if len(data) == 0 {
		return models.Session{}, false, nil
	}

	var p persistedSession
	if err := json.Unmarshal(data, &p); err != nil {
		appLogger.Warnf("Arquivo de sessão '%s' corrompido: %v. Ignorando.", f.path, err)
		return models.Session{}, false, nil
	}
	token, err := f.sealer.Open(p.SealedToken)
	if err != nil {
		// SECRET_KEY trocada ou arquivo adulterado: equivale a não ter sessão.
		appLogger.Warnf("Token da sessão em '%s' não pôde ser aberto: %v", f.path, err)
		return models.Session{}, false, nil
	}
	return models.Session{
		Token:     token,
		UserID:    p.UserID,
		Username:  p.Username,
		Email:     p.Email,
		Roles:     p.Roles,
		CreatedAt: p.CreatedAt,
	}, true, nil
}

func (f *FileSessionStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return core.WrapErrorf(err, "erro ao remover arquivo de sessão '%s'", f.path)
	}
	appLogger.Debugf("Arquivo de sessão %s removido.", f.path)
	return nil
}
