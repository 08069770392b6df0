package data

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// InitializeDB abre a base usada pelo backend persistente de sessão
// (APP_SESSION_BACKEND=sqlite|postgresql) e executa as migrações.
func InitializeDB(cfg *core.Config) (*gorm.DB, error) {
	appLogger.Infof("Inicializando banco de dados de sessão (%s)", cfg.SessionBackend)

	dialector, err := sessionDialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger(cfg.AppDebug)})
	if err != nil {
		appLogger.Errorf("Falha ao abrir o banco de sessão %s: %v", cfg.SessionBackend, err)
		return nil, core.NewDatabaseErrorDetail("abrindo conexão", err)
	}
	if err := Migrate(db); err != nil {
		_ = CloseDB(db)
		return nil, err
	}
	return db, nil
}

func sessionDialector(cfg *core.Config) (gorm.Dialector, error) {
	switch cfg.SessionBackend {
	case "postgresql":
		appLogger.WithFields(logrus.Fields{"host": cfg.DBHost, "port": cfg.DBPort, "db": cfg.DBName, "user": cfg.DBUser}).
			Info("Conectando ao PostgreSQL.")
		return postgres.Open(postgresDSN(cfg)), nil
	case "sqlite":
		appLogger.Infof("Usando SQLite em %s", cfg.DBName)
		return sqlite.Open(cfg.DBName), nil
	}
	return nil, fmt.Errorf("%w: backend de sessão sem banco de dados: %s", core.ErrConfiguration, cfg.SessionBackend)
}

func postgresDSN(cfg *core.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
}

// gormLogger encaminha o log do GORM para o logrus; SQL só aparece em modo debug.
func gormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(appLogger.WithFields(logrus.Fields{"component": "gorm"}), gormlogger.Config{
		SlowThreshold:             250 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// Migrate cria/atualiza as tabelas usadas pelo console.
func Migrate(db *gorm.DB) error {
	appLogger.Debug("Executando migrações automáticas do GORM...")
	if err := db.AutoMigrate(&models.DBSession{}); err != nil {
		appLogger.Errorf("Falha durante AutoMigrate: %v", err)
		return core.NewDatabaseErrorDetail("migrando esquema", err)
	}
	return nil
}

// CloseDB fecha a conexão com o banco de dados.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Errorf("Erro ao obter *sql.DB para fechar: %v", err)
		return err
	}
	appLogger.Debug("Fechando conexão com o banco de dados...")
	return sqlDB.Close()
}

// WithTransaction executa fn dentro de uma transação GORM.
// Commit se fn não retornar erro, rollback caso contrário.
func WithTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return core.NewDatabaseErrorDetail("iniciando transação", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("erro ao executar função (%v) e erro no rollback: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return core.NewDatabaseErrorDetail("commit da transação", err)
	}
	return nil
}
