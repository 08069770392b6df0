package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkwave/painel_admin_go/internal/core"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

const cliToken = "tok-cli"

// apiStub responde como a API administrativa com três usuários.
type apiStub struct {
	mu       sync.Mutex
	users    map[int64]models.UserRecord
	requests []string
}

func newAPIStub() *apiStub {
	s := &apiStub{users: map[int64]models.UserRecord{}}
	for i := int64(1); i <= 3; i++ {
		s.users[i] = models.UserRecord{ID: i, Username: fmt.Sprintf("user%02d", i), Email: fmt.Sprintf("u%d@x.com", i), Roles: []string{"USER"}, Active: true}
	}
	return s
}

func (s *apiStub) seen(prefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if strings.HasPrefix(r, prefix) {
			return true
		}
	}
	return false
}

func (s *apiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		line += "?" + r.URL.RawQuery
	}
	s.requests = append(s.requests, line)

	path := strings.TrimPrefix(r.URL.Path, "/api")
	if path == "/auth/signin" {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "admin" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		stubJSON(w, models.JwtResponse{Token: cliToken, Type: "Bearer", ID: 1, Username: "admin", Email: "admin@x.com", Roles: []string{"ROLE_ADMIN"}})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+cliToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case path == "/auth/signout":
		stubJSON(w, models.MessageResponse{Message: "ok"})
	case path == "/admin/users":
		search := r.URL.Query().Get("search")
		var ids []int64
		for id, u := range s.users {
			if search == "" || strings.Contains(u.Username, search) {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		content := []models.UserRecord{}
		for _, id := range ids {
			content = append(content, s.users[id])
		}
		stubJSON(w, map[string]interface{}{"content": content, "number": 0, "totalPages": 1})
	case strings.HasPrefix(path, "/admin/users/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(path, "/admin/users/"), 10, 64)
		u, ok := s.users[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method == http.MethodDelete {
			delete(s.users, id)
			stubJSON(w, models.MessageResponse{Message: "Usuário excluído com sucesso!"})
			return
		}
		stubJSON(w, u)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func stubJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type cliEnv struct {
	cfg  *core.Config
	stub *apiStub
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	stub := newAPIStub()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	return &cliEnv{
		stub: stub,
		cfg: &core.Config{
			AppName:           "SparkWave Painel Admin",
			SecretKey:         "chave-de-teste-com-mais-de-32-caracteres",
			APIURL:            srv.URL + "/api",
			AdminPath:         "/admin",
			AuthPath:          "/auth",
			PageSize:          10,
			RequiredRole:      "ADMIN",
			SessionBackend:    "file",
			SessionFile:       filepath.Join(dir, "session.json"),
			ExportDir:         filepath.Join(dir, "exports"),
			ExportCSVEncoding: "utf-8",
		},
	}
}

// run monta um processo novo do console e executa um comando.
func (e *cliEnv) run(t *testing.T, input string, name string, args ...string) (string, string, error) {
	t.Helper()
	out, notices := &bytes.Buffer{}, &bytes.Buffer{}
	app, err := newAdminApp(e.cfg, out, notices)
	require.NoError(t, err)
	defer app.Close()
	cc := &commandContext{Ctx: context.Background(), App: app, In: bufio.NewReader(strings.NewReader(input)), Out: out}
	err = dispatch(cc, name, args)
	return out.String(), notices.String(), err
}

func (e *cliEnv) login(t *testing.T) {
	t.Helper()
	_, _, err := e.run(t, "", "login", "--username", "admin", "--password", "secret")
	require.NoError(t, err)
}

func TestPrintUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))
	out := buf.String()
	assert.Contains(t, out, "Uso: sparkwave_admin <comando> [flags]")
	for name := range commands() {
		assert.Contains(t, out, "  "+name)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	env := newCLIEnv(t)
	_, _, err := env.run(t, "", "nao-existe")
	assert.ErrorIs(t, err, errUnknownCommand)
}

func TestLoginPersistsSessionForNextProcess(t *testing.T) {
	env := newCLIEnv(t)

	out, notices, err := env.run(t, "admin\nsecret\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Sessão aberta para admin (ADMIN).")
	assert.Contains(t, notices, "Login realizado com sucesso!")

	raw, err := os.ReadFile(env.cfg.SessionFile)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), cliToken)

	out, _, err = env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Usuário: admin")
	assert.Contains(t, out, "admin@x.com")
}

func TestLoginEmptyFieldsShowsFieldErrors(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "\n\n", "login")
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, out, "  password: ")
	assert.Contains(t, out, "  username: ")
	assert.False(t, env.stub.seen("POST /api/auth/signin"))
}

func TestProtectedCommandWithoutSession(t *testing.T) {
	env := newCLIEnv(t)
	_, notices, err := env.run(t, "", "users")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.Contains(t, notices, "Não autenticado")
	assert.False(t, env.stub.seen("GET /api/admin/users"))
}

func TestUsersCommandListsPage(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, _, err := env.run(t, "", "users", "--search", "user02")
	require.NoError(t, err)
	assert.Contains(t, out, "user02")
	assert.NotContains(t, out, "user01")
	assert.True(t, env.stub.seen("GET /api/admin/users?page=0&search=user02&size=10"))
}

func TestUserDeleteAsksForConfirmation(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, _, err := env.run(t, "n\n", "user-delete", "--id", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `Tem certeza que deseja excluir o usuário "user02"? (s/n)`)
	assert.Contains(t, out, "Operação cancelada.")
	assert.False(t, env.stub.seen("DELETE"))

	_, notices, err := env.run(t, "", "user-delete", "--id", "2", "--yes")
	require.NoError(t, err)
	assert.True(t, env.stub.seen("DELETE /api/admin/users/2"))
	assert.Contains(t, notices, "Usuário excluído com sucesso!")
}

func TestLogoutClearsPersistedSession(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	_, _, err := env.run(t, "s\n", "logout")
	require.NoError(t, err)
	assert.True(t, env.stub.seen("POST /api/auth/signout"))

	_, _, err = env.run(t, "", "whoami")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestExportPageWritesCSV(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, _, err := env.run(t, "", "export-page", "--list", "users", "--format", "csv")
	require.NoError(t, err)
	path := filepath.Join(env.cfg.ExportDir, usersPageExportName+".csv")
	assert.Contains(t, out, "Arquivo salvo em "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "3;user03;-;u3@x.com;USER;Ativo")
}

func TestExportPageRejectsUnknownFormat(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)
	_, _, err := env.run(t, "", "export-page", "--format", "pdf")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestShellSearchConfirmAndQuit(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, _, err := env.run(t, "/user03\nd 3\ns\nq\n", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Bem-vindo, admin")
	assert.Contains(t, out, `excluir o usuário "user03"`)
	assert.True(t, env.stub.seen("GET /api/admin/users?page=0&search=user03&size=10"))
	assert.True(t, env.stub.seen("DELETE /api/admin/users/3"))
}

func TestShellLogoutEndsLoop(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	// "u" depois do logout não deve ser lido
	_, _, err := env.run(t, "sair\ns\nu\n", "shell")
	require.NoError(t, err)
	assert.True(t, env.stub.seen("POST /api/auth/signout"))
}

func TestIsYes(t *testing.T) {
	for _, a := range []string{"s", "S", "sim", "y", " yes "} {
		assert.True(t, isYes(a), a)
	}
	for _, a := range []string{"", "n", "nao", "talvez"} {
		assert.False(t, isYes(a), a)
	}
}
