package core

import (
	"fmt"
	"log" // Usado para logs iniciais antes que o logger da aplicação esteja configurado
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultSecretKey é recusada fora do modo debug.
const defaultSecretKey = "default_secret_key_please_change_this_in_production_12345"

// Config reúne as configurações do console administrativo.
type Config struct {
	AppName    string
	AppVersion string
	AppDebug   bool
	SecretKey  string

	// API remota
	APIURL       string
	AdminPath    string
	AuthPath     string
	HTTPTimeout  time.Duration
	PageSize     int
	RequiredRole string

	// Persistência da sessão
	SessionBackend string // file, sqlite, postgresql, memory
	SessionFile    string

	// Database (backends sqlite/postgresql da sessão)
	DBName     string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string

	// Logging
	LogDir         string
	LogLevel       string
	LogMaxBytes    int
	LogBackupCount int
	LogToConsole   bool

	// Export
	ExportDir         string
	ExportCSVEncoding string // utf-8 ou windows-1252 (utf8 e cp1252 também são aceitos)
}

// LoadConfig lê o .env (quando encontrado), monta a Config a partir do ambiente,
// valida e garante os diretórios de log, sessão e exportação.
func LoadConfig(envPath string) (*Config, error) {
	if found, err := findEnvFile(envPath); err != nil {
		log.Printf("Aviso: %v. Usando apenas variáveis de ambiente.", err)
	} else if err := godotenv.Load(found); err != nil {
		log.Printf("Aviso: .env '%s' não pôde ser lido: %v", found, err)
	} else {
		log.Printf("Configurações carregadas de %s", found)
	}

	cfg := configFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.prepareDirs(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// prepareDirs cria o diretório de log (obrigatório) e os de sessão e exportação.
func (c *Config) prepareDirs() error {
	if err := ensureDir(c.LogDir, true); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	switch c.SessionBackend {
	case "file":
		_ = ensureDir(filepath.Dir(c.SessionFile), false)
	case "sqlite":
		if err := ensureDir(filepath.Dir(c.DBName), true); err != nil {
			return fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
	}
	return ensureDir(c.ExportDir, false)
}

// configFromEnv lê as variáveis de ambiente já carregadas, sem tocar no sistema de arquivos.
func configFromEnv() *Config {
	cfg := &Config{}

	cfg.AppName = getEnv("APP_NAME", "SparkWave Painel Admin")
	cfg.AppVersion = getEnv("APP_VERSION", "1.0.0-go")
	cfg.AppDebug = getEnvAsBool("APP_DEBUG", false)
	cfg.SecretKey = getEnv("SECRET_KEY", defaultSecretKey)

	cfg.APIURL = strings.TrimRight(getEnv("APP_API_URL", "http://localhost:8080/api"), "/")
	cfg.AdminPath = normalizePath(getEnv("APP_ADMIN_PATH", "/admin"))
	cfg.AuthPath = normalizePath(getEnv("APP_AUTH_PATH", "/auth"))
	cfg.HTTPTimeout = getEnvAsDuration("APP_HTTP_TIMEOUT", 0)
	cfg.PageSize = getEnvAsInt("APP_PAGE_SIZE", 10)
	cfg.RequiredRole = strings.ToUpper(getEnv("APP_REQUIRED_ROLE", "ADMIN"))

	cfg.SessionBackend = strings.ToLower(getEnv("APP_SESSION_BACKEND", "file"))
	cfg.SessionFile = getEnv("APP_SESSION_FILE", "./app_data/session.json")

	cfg.DBName = getEnv("APP_DB_NAME", "./app_data/painel_admin.db")
	cfg.DBHost = getEnv("APP_DB_HOST", "localhost")
	cfg.DBPort = getEnvAsInt("APP_DB_PORT", 5432)
	cfg.DBUser = getEnv("APP_DB_USER", "user")
	cfg.DBPassword = getEnv("APP_DB_PASSWORD", "password")

	cfg.LogDir = getEnv("APP_LOG_DIR", "./app_logs")
	cfg.LogLevel = strings.ToUpper(getEnv("APP_LOG_LEVEL", "INFO"))
	cfg.LogMaxBytes = getEnvAsInt("APP_LOG_MAX_BYTES", 5*1024*1024) // 5MB
	cfg.LogBackupCount = getEnvAsInt("APP_LOG_BACKUP_COUNT", 7)
	cfg.LogToConsole = getEnvAsBool("APP_LOG_TO_CONSOLE", false)

	cfg.ExportDir = getEnv("APP_EXPORT_DIR", "./app_exports")
	cfg.ExportCSVEncoding = strings.ToLower(getEnv("APP_EXPORT_CSV_ENCODING", "utf-8"))
	if canonical := csvEncodingName(cfg.ExportCSVEncoding); canonical != "" {
		cfg.ExportCSVEncoding = canonical
	}

	return cfg
}

// Validate verifica as configurações críticas.
func (c *Config) Validate() error {
	if !c.AppDebug && c.SecretKey == defaultSecretKey {
		return fmt.Errorf("%w: SECRET_KEY não pode ser o valor padrão em ambiente de não depuração (APP_DEBUG=false)", ErrConfiguration)
	}
	if len(c.SecretKey) < 32 && !c.AppDebug {
		log.Printf("AVISO: SECRET_KEY tem menos de 32 caracteres (%d). Recomenda-se uma chave mais longa.", len(c.SecretKey))
	}
	if c.APIURL == "" {
		return fmt.Errorf("%w: APP_API_URL é obrigatória", ErrConfiguration)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: APP_PAGE_SIZE deve ser maior que zero (recebido %d)", ErrConfiguration, c.PageSize)
	}
	switch c.SessionBackend {
	case "file", "sqlite", "postgresql", "memory":
	default:
		return fmt.Errorf("%w: backend de sessão não suportado: %s", ErrConfiguration, c.SessionBackend)
	}
	if csvEncodingName(c.ExportCSVEncoding) == "" {
		return fmt.Errorf("%w: codificação de CSV não suportada: %s", ErrConfiguration, c.ExportCSVEncoding)
	}
	return nil
}

// csvEncodingName devolve o nome canônico da codificação (aceita utf8 e cp1252) ou "" se desconhecida.
func csvEncodingName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return "utf-8"
	case "windows-1252", "cp1252":
		return "windows-1252"
	}
	return ""
}

// AdminURL monta a URL absoluta de um recurso administrativo (ex: "/users").
func (c *Config) AdminURL(resource string) string {
	return c.APIURL + c.AdminPath + normalizePath(resource)
}

// AuthURL monta a URL absoluta de um endpoint de autenticação (ex: "/signin").
func (c *Config) AuthURL(endpoint string) string {
	return c.APIURL + c.AuthPath + normalizePath(endpoint)
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

// maxEnvSearchDepth limita a subida de diretórios procurando o .env.
const maxEnvSearchDepth = 5

// findEnvFile devolve envPath se existir; senão procura um .env a partir do CWD, subindo.
func findEnvFile(envPath string) (string, error) {
	if _, err := os.Stat(envPath); err == nil {
		return filepath.Abs(envPath)
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("diretório de trabalho indisponível: %w", err)
	}
	for depth := 0; depth < maxEnvSearchDepth; depth++ {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("nenhum .env em '%s' nem nos diretórios acima do atual", envPath)
}

// ensureDir cria dirPath se preciso. Falhas só viram erro quando critical; senão, um aviso.
func ensureDir(dirPath string, critical bool) error {
	err := os.MkdirAll(dirPath, 0o755)
	if err == nil {
		return nil
	}
	if critical {
		return fmt.Errorf("não foi possível criar o diretório '%s': %w", dirPath, err)
	}
	log.Printf("AVISO: não foi possível criar o diretório '%s': %v", dirPath, err)
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvAsInt, getEnvAsBool e getEnvAsDuration caem no fallback quando a variável
// está ausente ou não converte.
func getEnvAsInt(key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return b
}

// getEnvAsDuration lê segundos inteiros.
func getEnvAsDuration(key string, fallbackSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallbackSeconds)) * time.Second
}
