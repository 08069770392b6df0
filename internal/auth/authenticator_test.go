package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkwave/painel_admin_go/internal/core"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

type fakeRequester struct {
	calls  []string
	quiet  []bool
	status int
	err    error
}

func (f *fakeRequester) Request(ctx context.Context, method, url string, _ io.Reader, _ http.Header) (*http.Response, error) {
	f.calls = append(f.calls, method+" "+url)
	f.quiet = append(f.quiet, RedirectSuppressed(ctx))
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{StatusCode: f.status, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func newAuthenticator(t *testing.T, handler http.HandlerFunc) (*Authenticator, *MemorySessionStore, *navSpy, *fakeRequester) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &core.Config{APIURL: srv.URL + "/api", AuthPath: "/auth", AdminPath: "/admin"}
	store := NewMemorySessionStore()
	nav := &navSpy{}
	req := &fakeRequester{status: http.StatusOK}
	return NewAuthenticator(cfg, store, nav, srv.Client(), req), store, nav, req
}

func TestLogin_SavesSession(t *testing.T) {
	var got models.LoginRequest
	a, store, _, _ := newAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/signin", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(models.JwtResponse{
			Token: "jwt-1", Type: "Bearer", ID: 3, Username: "admin",
			Email: "a@x.com", Roles: []string{"ROLE_ADMIN", "ROLE_USER"}, RedirectURL: "/admin",
		})
	})

	res, err := a.Login(context.Background(), "  admin ", " senha ")
	require.NoError(t, err)
	assert.Equal(t, models.LoginRequest{Username: "admin", Password: "senha"}, got)
	assert.Equal(t, "/admin", res.RedirectURL)

	s, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "jwt-1", s.Token)
	assert.Equal(t, []string{"ADMIN", "USER"}, s.Roles)
	assert.Equal(t, int64(3), s.UserID)
}

func TestLogin_EmptyFieldsSkipNetwork(t *testing.T) {
	var hits int32
	a, _, _, _ := newAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	_, err := a.Login(context.Background(), "   ", "x")
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, "Por favor, informe seu usuário.", core.UserMessage(err))

	_, err = a.Login(context.Background(), "admin", "")
	assert.Equal(t, "Por favor, informe sua senha.", core.UserMessage(err))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestLogin_RejectedCredentials(t *testing.T) {
	a, store, _, _ := newAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := a.Login(context.Background(), "admin", "errada")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	assert.Equal(t, "Usuário ou senha inválidos.", core.UserMessage(err))
	_, ok, _ := store.Load(context.Background())
	assert.False(t, ok)
}

func TestLogin_ResponseWithoutToken(t *testing.T) {
	a, _, _, _ := newAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"username":"admin"}`))
	})
	_, err := a.Login(context.Background(), "admin", "senha")
	assert.ErrorIs(t, err, core.ErrInternal)
}

func TestLogin_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := &core.Config{APIURL: url + "/api", AuthPath: "/auth"}
	a := NewAuthenticator(cfg, NewMemorySessionStore(), &navSpy{}, nil, &fakeRequester{})

	_, err := a.Login(context.Background(), "admin", "senha")
	assert.ErrorIs(t, err, core.ErrNetwork)
	assert.Contains(t, err.Error(), ConnectionErrorMessage)
}

func TestLogout_AlwaysClearsLocalSession(t *testing.T) {
	for name, req := range map[string]*fakeRequester{
		"sucesso":    {status: http.StatusOK},
		"erro 500":   {status: http.StatusInternalServerError},
		"sem rede":   {err: errors.New("conexão recusada")},
		"sem sessão": {err: core.ErrUnauthorized},
		"token 401":  {err: core.ErrSessionExpired},
	} {
		t.Run(name, func(t *testing.T) {
			a, store, nav, _ := newAuthenticator(t, func(w http.ResponseWriter, r *http.Request) {})
			a.requester = req
			require.NoError(t, store.Save(context.Background(), sampleSession()))

			require.NoError(t, a.Logout(context.Background()))

			_, ok, _ := store.Load(context.Background())
			assert.False(t, ok)
			require.Len(t, nav.reasons, 1)
			assert.Nil(t, nav.reasons[0])
			require.Len(t, req.calls, 1)
			assert.True(t, strings.HasSuffix(req.calls[0], "/auth/signout"))
			assert.True(t, req.quiet[0], "signout não deve redirecionar por conta própria")
		})
	}
}
