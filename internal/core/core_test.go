package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestErrorMatchesByStatus(t *testing.T) {
	forbidden := NewRequestError("excluir usuário", 403, "")
	assert.ErrorIs(t, forbidden, ErrRequest)
	assert.ErrorIs(t, forbidden, ErrPermissionDenied)
	assert.NotErrorIs(t, forbidden, ErrNotFound)
	assert.Equal(t, "Erro ao excluir usuário (HTTP 403)", forbidden.Error())

	missing := fmt.Errorf("buscando: %w", NewRequestError("", 404, "Usuário não encontrado."))
	assert.ErrorIs(t, missing, ErrNotFound)
	assert.Equal(t, "Usuário não encontrado.", UserMessage(missing))
}

func TestPermissionErrorMessage(t *testing.T) {
	err := NewPermissionError("Acesso restrito.")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, "Acesso restrito.", UserMessage(err))
	assert.Equal(t, ErrPermissionDenied.Error(), (&PermissionError{}).Error())
}

func TestValidationErrorFormatting(t *testing.T) {
	ve := NewValidationError("Dados inválidos.", map[string]string{"email": "inválido", "username": "curto"})
	assert.ErrorIs(t, ve, ErrValidation)
	assert.Equal(t, "Dados inválidos. (Detalhes: email: inválido, username: curto)", ve.Error())
	assert.Equal(t, "Dados inválidos.", UserMessage(ve))
}

func TestDatabaseErrorDetailUnwraps(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewDatabaseErrorDetail("salvando sessão", cause)
	assert.ErrorIs(t, err, ErrDatabase)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, NewDatabaseErrorDetail("x", nil), ErrDatabase)
}

func TestUserMessageSessionErrors(t *testing.T) {
	assert.Equal(t, "Sessão expirada", UserMessage(WrapErrorf(ErrSessionExpired, "GET /users")))
	assert.Equal(t, "Não autenticado", UserMessage(fmt.Errorf("x: %w", ErrUnauthorized)))
	assert.Empty(t, UserMessage(nil))
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_API_URL", "https://painel.example.com/api/")
	t.Setenv("APP_ADMIN_PATH", "admin/")
	t.Setenv("APP_SESSION_BACKEND", "MEMORY")
	t.Setenv("APP_HTTP_TIMEOUT", "15")
	t.Setenv("APP_EXPORT_CSV_ENCODING", "CP1252")

	cfg := configFromEnv()
	assert.Equal(t, "https://painel.example.com/api", cfg.APIURL)
	assert.Equal(t, "memory", cfg.SessionBackend)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "ADMIN", cfg.RequiredRole)
	assert.Equal(t, "15s", cfg.HTTPTimeout.String())
	assert.Equal(t, "windows-1252", cfg.ExportCSVEncoding)
	assert.Equal(t, "https://painel.example.com/api/admin/users", cfg.AdminURL("users"))
	assert.Equal(t, "https://painel.example.com/api/auth/signin", cfg.AuthURL("/signin"))
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SecretKey:         "uma-chave-de-teste-longa-o-bastante-123",
			APIURL:            "http://localhost:8080/api",
			PageSize:          10,
			SessionBackend:    "file",
			ExportCSVEncoding: "utf-8",
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"chave padrão fora do debug", func(c *Config) { c.SecretKey = defaultSecretKey }},
		{"sem URL", func(c *Config) { c.APIURL = "" }},
		{"página zero", func(c *Config) { c.PageSize = 0 }},
		{"backend desconhecido", func(c *Config) { c.SessionBackend = "redis" }},
		{"codificação desconhecida", func(c *Config) { c.ExportCSVEncoding = "latin-2" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrConfiguration)
		})
	}

	for _, enc := range []string{"utf8", "CP1252", "windows-1252"} {
		c := valid()
		c.ExportCSVEncoding = enc
		assert.NoError(t, c.Validate(), enc)
	}

	debug := valid()
	debug.AppDebug = true
	debug.SecretKey = defaultSecretKey
	assert.NoError(t, debug.Validate())
}
