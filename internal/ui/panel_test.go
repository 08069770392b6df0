package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkwave/painel_admin_go/internal/api"
	"github.com/sparkwave/painel_admin_go/internal/auth"
	"github.com/sparkwave/painel_admin_go/internal/core"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
	"github.com/sparkwave/painel_admin_go/internal/services"
)

const testToken = "token-admin-123"

// fakeBackend imita a API administrativa com usuários em memória.
type fakeBackend struct {
	mu        sync.Mutex
	users     map[int64]*models.UserRecord
	requests  []string // "METODO caminho?query"
	auths     []string
	expireAll bool
	roles     []string
}

func newFakeBackend(n int) *fakeBackend {
	b := &fakeBackend{users: map[int64]*models.UserRecord{}, roles: []string{"ROLE_ADMIN"}}
	for i := 1; i <= n; i++ {
		b.users[int64(i)] = &models.UserRecord{
			ID: int64(i), Username: fmt.Sprintf("user%02d", i), Email: fmt.Sprintf("u%d@x.com", i),
			Roles: []string{"USER"}, Active: i%2 == 1,
		}
	}
	return b
}

// record registra o pedido e devolve o estado lido pelos handlers sem lock.
func (b *fakeBackend) record(r *http.Request) (expired bool, roles []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	line := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		line += "?" + r.URL.RawQuery
	}
	b.requests = append(b.requests, line)
	b.auths = append(b.auths, r.Header.Get("Authorization"))
	return b.expireAll, append([]string(nil), b.roles...)
}

func (b *fakeBackend) lastRequest(prefix string) (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if strings.HasPrefix(b.requests[i], prefix) {
			return b.requests[i], b.auths[i]
		}
	}
	return "", ""
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	expired, roles := b.record(r)
	path := strings.TrimPrefix(r.URL.Path, "/api")

	if path == "/auth/signin" {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "admin" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeTestJSON(w, 200, models.JwtResponse{Token: testToken, Type: "Bearer", ID: 1, Username: "admin", Roles: roles})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+testToken || expired {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if path == "/auth/signout" {
		writeTestJSON(w, 200, models.MessageResponse{Message: "Logout realizado."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case path == "/admin/users" && r.Method == http.MethodGet:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		search := r.URL.Query().Get("search")
		var ids []int64
		for id, u := range b.users {
			if search == "" || strings.Contains(u.Username, search) {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		total := (len(ids) + size - 1) / size
		content := []models.UserRecord{}
		for i := page * size; i < len(ids) && i < (page+1)*size; i++ {
			content = append(content, *b.users[ids[i]])
		}
		writeTestJSON(w, 200, map[string]interface{}{"content": content, "number": page, "totalPages": total})
	case strings.HasPrefix(path, "/admin/users/"):
		rest := strings.TrimPrefix(path, "/admin/users/")
		parts := strings.SplitN(rest, "/", 2)
		id, _ := strconv.ParseInt(parts[0], 10, 64)
		u, ok := b.users[id]
		if !ok {
			writeTestJSON(w, 404, models.MessageResponse{Message: "Usuário não encontrado."})
			return
		}
		switch {
		case len(parts) == 2 && parts[1] == "status":
			u.Active = r.URL.Query().Get("active") == "true"
			writeTestJSON(w, 200, models.MessageResponse{})
		case r.Method == http.MethodDelete:
			delete(b.users, id)
			writeTestJSON(w, 200, models.MessageResponse{Message: "Usuário excluído com sucesso!"})
		default:
			writeTestJSON(w, 200, u)
		}
	case path == "/admin/access-logs":
		writeTestJSON(w, 200, map[string]interface{}{"content": []interface{}{}, "number": 0, "totalPages": 0})
	case path == "/admin/dashboard/stats":
		writeTestJSON(w, 200, models.DashboardStats{TotalUsers: int64(len(b.users)), ActiveUsers: 1, TotalLogins: 4, SuccessfulLogins: 3})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeTestJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type messageLog struct {
	mu   sync.Mutex
	msgs []string
}

func (m *messageLog) ShowMessage(message string, level MessageLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, string(level)+": "+message)
}

func (m *messageLog) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.msgs...)
}

type harness struct {
	backend *fakeBackend
	store   *auth.MemorySessionStore
	router  *Router
	msgs    *messageLog
	out     *bytes.Buffer
	login   *LoginScreen
	panel   *AdminPanel
}

func newHarness(t *testing.T, users int) *harness {
	t.Helper()
	backend := newFakeBackend(users)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := &core.Config{APIURL: srv.URL + "/api", AdminPath: "/admin", AuthPath: "/auth", PageSize: 10}
	msgs := &messageLog{}
	router := NewRouter(msgs)
	store := auth.NewMemorySessionStore()
	fetcher := api.NewFetcher(srv.Client(), store, router)
	authn := auth.NewAuthenticator(cfg, store, router, srv.Client(), fetcher)
	out := &bytes.Buffer{}

	panel := NewAdminPanel(PanelDeps{
		Gate:      auth.NewAuthGate(store, router, "ADMIN"),
		Users:     services.NewUserService(cfg, fetcher),
		Logs:      services.NewAccessLogService(cfg, fetcher),
		Dashboard: services.NewDashboardService(cfg, fetcher),
		Auth:      authn,
		Router:    router,
		Notifier:  msgs,
		Out:       out,
		PageSize:  cfg.PageSize,
	})
	return &harness{
		backend: backend, store: store, router: router, msgs: msgs, out: out,
		login: NewLoginScreen(authn, router, msgs), panel: panel,
	}
}

func (h *harness) loginAndStart(t *testing.T) {
	t.Helper()
	_, err := h.login.Submit(context.Background(), "admin", "secret")
	require.NoError(t, err)
	require.NoError(t, h.panel.Start(context.Background()))
}

func TestPanel_LoginThenListCarriesBearer(t *testing.T) {
	h := newHarness(t, 3)
	h.loginAndStart(t)

	s, ok, err := h.store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, s.Roles, "ADMIN")

	req, authz := h.backend.lastRequest("GET /api/admin/users")
	assert.Equal(t, "GET /api/admin/users?page=0&size=10", req)
	assert.Equal(t, "Bearer "+testToken, authz)
	assert.Equal(t, PageUsers, h.router.CurrentPageID())
	assert.Equal(t, 3, h.panel.UserView().RowCount())
	assert.Contains(t, h.out.String(), "Bem-vindo, admin")
}

func TestPanel_StartWithoutSessionRedirects(t *testing.T) {
	h := newHarness(t, 3)

	err := h.panel.Start(context.Background())
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.Equal(t, PageLogin, h.router.CurrentPageID())
	req, _ := h.backend.lastRequest("GET /api/admin/users")
	assert.Empty(t, req)

	assert.ErrorIs(t, h.panel.ShowUsers(context.Background()), core.ErrUnauthorized)
}

func TestPanel_NonAdminDenied(t *testing.T) {
	h := newHarness(t, 3)
	h.backend.mu.Lock()
	h.backend.roles = []string{"ROLE_USER"}
	h.backend.mu.Unlock()
	_, err := h.login.Submit(context.Background(), "admin", "secret")
	require.NoError(t, err)

	err = h.panel.Start(context.Background())
	assert.ErrorIs(t, err, core.ErrPermissionDenied)
	assert.Equal(t, PageLogin, h.router.CurrentPageID())
	assert.Contains(t, h.msgs.all(), "error: "+auth.AccessDeniedMessage)
}

func TestPanel_LoginValidationShowsFieldErrors(t *testing.T) {
	h := newHarness(t, 1)
	state, err := h.login.Submit(context.Background(), " ", "")
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, state.FieldErrors, "username")
	assert.Contains(t, state.FieldErrors, "password")
	req, _ := h.backend.lastRequest("POST /api/auth/signin")
	assert.Empty(t, req)

	state, err = h.login.Submit(context.Background(), "admin", "errada")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	assert.Equal(t, "Usuário ou senha inválidos.", state.Error)
}

func TestPanel_DeleteReloadsSamePage(t *testing.T) {
	h := newHarness(t, 25)
	h.loginAndStart(t)

	moved, err := h.panel.ChangePage(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, moved)

	require.NoError(t, h.panel.UserView().Invoke(context.Background(), 12, ActionRemove))
	pending, ok := h.panel.Confirmation().Pending()
	require.True(t, ok)
	assert.Equal(t, `Tem certeza que deseja excluir o usuário "user12"?`, pending.Message)

	require.NoError(t, h.panel.Confirm(context.Background()))

	del, _ := h.backend.lastRequest("DELETE")
	assert.Equal(t, "DELETE /api/admin/users/12", del)
	req, _ := h.backend.lastRequest("GET /api/admin/users")
	assert.Equal(t, "GET /api/admin/users?page=1&size=10", req)
	assert.Equal(t, 1, h.panel.Users().Request().PageIndex)
	assert.Contains(t, h.msgs.all(), "success: Usuário excluído com sucesso!")
	assert.Equal(t, StateIdle, h.panel.Confirmation().State())
}

func TestPanel_DeleteOnlyRowOfLastPageStepsBack(t *testing.T) {
	h := newHarness(t, 21)
	h.loginAndStart(t)
	for i := 0; i < 2; i++ {
		moved, err := h.panel.ChangePage(context.Background(), 1)
		require.NoError(t, err)
		require.True(t, moved)
	}
	require.Equal(t, 1, h.panel.UserView().RowCount())

	require.NoError(t, h.panel.UserView().Invoke(context.Background(), 21, ActionRemove))
	require.NoError(t, h.panel.Confirm(context.Background()))

	req, _ := h.backend.lastRequest("GET /api/admin/users")
	assert.Equal(t, "GET /api/admin/users?page=1&size=10", req)
	cur, ok := h.panel.Users().Current()
	require.True(t, ok)
	assert.Equal(t, 1, cur.PageIndex)
	assert.Equal(t, 2, cur.TotalPages)
	assert.False(t, h.panel.UserView().PlaceholderShown())
}

func TestPanel_DeleteMessageWithoutCachedUser(t *testing.T) {
	h := newHarness(t, 2)
	h.loginAndStart(t)
	assert.Equal(t, "Tem certeza que deseja excluir o usuário?", h.panel.RequestDelete(context.Background(), 99))
	h.panel.Cancel()
	del, _ := h.backend.lastRequest("DELETE")
	assert.Empty(t, del)
}

func TestPanel_DeleteMessageLooksUpUserOutsidePage(t *testing.T) {
	h := newHarness(t, 12)
	h.loginAndStart(t)

	msg := h.panel.RequestDelete(context.Background(), 11)
	assert.Equal(t, `Tem certeza que deseja excluir o usuário "user11"?`, msg)
	get, _ := h.backend.lastRequest("GET /api/admin/users/11")
	assert.NotEmpty(t, get)
}

func TestPanel_ToggleInactiveUserActivates(t *testing.T) {
	h := newHarness(t, 3)
	h.loginAndStart(t)

	// user02 começa inativo
	assert.Equal(t, "Inativo", h.panel.UserView().Rows()[1].Cells[5])

	require.NoError(t, h.panel.UserView().Invoke(context.Background(), 2, ActionToggle))

	patch, _ := h.backend.lastRequest("PATCH")
	assert.Equal(t, "PATCH /api/admin/users/2/status?active=true", patch)
	assert.Equal(t, "Ativo", h.panel.UserView().Rows()[1].Cells[5])
	assert.Contains(t, h.msgs.all(), "success: Usuário ativado com sucesso!")
}

func TestPanel_SearchWithoutMatchesShowsPlaceholder(t *testing.T) {
	h := newHarness(t, 3)
	h.loginAndStart(t)

	require.NoError(t, h.panel.SearchUsers(context.Background(), "ninguem"))
	assert.True(t, h.panel.UserView().PlaceholderShown())
	assert.Equal(t, 1, h.panel.UserView().RowCount())
	assert.Contains(t, h.out.String(), UsersPlaceholder)
}

func TestPanel_ExpiredSessionMidUseRedirects(t *testing.T) {
	h := newHarness(t, 3)
	h.loginAndStart(t)
	h.backend.mu.Lock()
	h.backend.expireAll = true
	h.backend.mu.Unlock()

	err := h.panel.ShowAccessLogs(context.Background())
	assert.ErrorIs(t, err, core.ErrSessionExpired)
	_, ok, _ := h.store.Load(context.Background())
	assert.False(t, ok)
	assert.Equal(t, PageLogin, h.router.CurrentPageID())
	assert.Equal(t, []string{"error: Sessão expirada"}, filterErrors(h.msgs.all()))
}

func TestPanel_SessionClearedElsewhereRedirects(t *testing.T) {
	h := newHarness(t, 25)
	h.loginAndStart(t)
	// logout feito por outro processo que divide o mesmo store
	require.NoError(t, h.store.Clear(context.Background()))

	_, err := h.panel.ChangePage(context.Background(), 1)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.Equal(t, PageLogin, h.router.CurrentPageID())
	assert.ErrorIs(t, h.router.LoginReason(), core.ErrUnauthorized)
	assert.Equal(t, []string{"error: Não autenticado"}, filterErrors(h.msgs.all()))
	req, _ := h.backend.lastRequest("GET /api/admin/users?page=1")
	assert.Empty(t, req)
}

func TestPanel_LogoutWithRejectedTokenIsQuiet(t *testing.T) {
	h := newHarness(t, 1)
	h.loginAndStart(t)
	h.backend.mu.Lock()
	h.backend.expireAll = true
	h.backend.mu.Unlock()

	h.panel.RequestLogout()
	require.NoError(t, h.panel.Confirm(context.Background()))

	out, _ := h.backend.lastRequest("POST /api/auth/signout")
	assert.NotEmpty(t, out)
	assert.Equal(t, PageLogin, h.router.CurrentPageID())
	assert.NoError(t, h.router.LoginReason())
	assert.Empty(t, filterErrors(h.msgs.all()))
}

func filterErrors(msgs []string) []string {
	var out []string
	for _, m := range msgs {
		if strings.HasPrefix(m, "error:") {
			out = append(out, m)
		}
	}
	return out
}

func TestPanel_LogoutThroughConfirmation(t *testing.T) {
	h := newHarness(t, 1)
	h.loginAndStart(t)

	assert.Equal(t, LogoutConfirmMessage, h.panel.RequestLogout())
	require.NoError(t, h.panel.Confirm(context.Background()))

	out, authz := h.backend.lastRequest("POST /api/auth/signout")
	assert.NotEmpty(t, out)
	assert.Equal(t, "Bearer "+testToken, authz)
	_, ok, _ := h.store.Load(context.Background())
	assert.False(t, ok)
	assert.Equal(t, PageLogin, h.router.CurrentPageID())
	_, ok = h.panel.Session()
	assert.False(t, ok)
}

func TestPanel_Dashboard(t *testing.T) {
	h := newHarness(t, 4)
	h.loginAndStart(t)

	stats, err := h.panel.ShowDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalUsers)
	assert.Contains(t, h.out.String(), "Logins")
	assert.Contains(t, h.out.String(), "75")
}

func TestPanel_SaveUserValidationStaysLocal(t *testing.T) {
	h := newHarness(t, 1)
	h.loginAndStart(t)
	before := len(h.msgs.all())

	err := h.panel.SaveUser(context.Background(), 0, models.UserForm{Username: "x"})
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Len(t, h.msgs.all(), before)
}
