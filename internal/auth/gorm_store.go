package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

const currentSlot = "current"

// GormSessionStore persiste a sessão na tabela admin_sessions (sqlite ou postgresql).
type GormSessionStore struct {
	mu     sync.RWMutex
	db     *gorm.DB
	sealer *TokenSealer
	slot   string
}

// NewGormSessionStore cria o store sobre uma conexão já migrada.
func NewGormSessionStore(db *gorm.DB, sealer *TokenSealer) *GormSessionStore {
	if db == nil || sealer == nil {
		appLogger.Fatalf("db e sealer são obrigatórios para GormSessionStore")
	}
	return &GormSessionStore{db: db, sealer: sealer, slot: currentSlot}
}

func (g *GormSessionStore) Save(ctx context.Context, s models.Session) error {
	if err := validateSession(s); err != nil {
		return err
	}
	sealed, err := g.sealer.Seal(s.Token)
	if err != nil {
		return err
	}
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := models.DBSession{
		ID:          uuid.NewString(),
		Slot:        g.slot,
		SealedToken: sealed,
		UserID:      s.UserID,
		Username:    s.Username,
		Email:       s.Email,
		Roles:       strings.Join(s.Roles, ","),
		CreatedAt:   createdAt,
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	err = data.WithTransaction(g.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("slot = ?", g.slot).Delete(&models.DBSession{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return core.NewDatabaseErrorDetail("salvando sessão", err)
	}
	appLogger.Infof("Sessão de %s salva no banco (id %s...)", s.Username, row.ID[:8])
	return nil
}

func (g *GormSessionStore) Load(ctx context.Context) (models.Session, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var row models.DBSession
	err := g.db.WithContext(ctx).Where("slot = ?", g.slot).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, core.NewDatabaseErrorDetail("carregando sessão", err)
	}
	token, err := g.sealer.Open(row.SealedToken)
	if err != nil {
		appLogger.Warnf("Token da sessão %s... não pôde ser aberto: %v", row.ID[:8], err)
		return models.Session{}, false, nil
	}
	var roles []string
	if row.Roles != "" {
		roles = strings.Split(row.Roles, ",")
	}
	return models.Session{
		Token:     token,
		UserID:    row.UserID,
		Username:  row.Username,
		Email:     row.Email,
		Roles:     roles,
		CreatedAt: row.CreatedAt,
	}, true, nil
}

func (g *GormSessionStore) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.db.WithContext(ctx).Where("slot = ?", g.slot).Delete(&models.DBSession{}).Error; err != nil {
		return core.NewDatabaseErrorDetail("removendo sessão", err)
	}
	return nil
}
