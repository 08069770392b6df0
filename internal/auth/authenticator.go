package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
	"github.com/sparkwave/painel_admin_go/internal/utils"
)

// ConnectionErrorMessage é exibida quando o signin não chega ao servidor.
const ConnectionErrorMessage = "Erro de conexão. Verifique sua internet e tente novamente."

// Requester executa chamadas autenticadas (implementado por api.Fetcher).
type Requester interface {
	Request(ctx context.Context, method, url string, body io.Reader, header http.Header) (*http.Response, error)
}

// LoginResult é devolvido por um login bem-sucedido.
type LoginResult struct {
	Session     models.Session
	RedirectURL string
}

// Authenticator faz login e logout contra a API.
type Authenticator struct {
	cfg       *core.Config
	store     SessionStore
	nav       Navigator
	client    *http.Client
	requester Requester
}

// NewAuthenticator cria o Authenticator. client é usado no signin (sem token);
// requester no signout (com token).
func NewAuthenticator(cfg *core.Config, store SessionStore, nav Navigator, client *http.Client, requester Requester) *Authenticator {
	if cfg == nil || store == nil || nav == nil || requester == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewAuthenticator")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Authenticator{cfg: cfg, store: store, nav: nav, client: client, requester: requester}
}

// Login valida o formulário, chama POST /auth/signin e grava a sessão.
// Campos vazios geram *core.ValidationError sem chamada de rede.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	req := models.LoginRequest{Username: username, Password: password}
	if err := utils.ValidateLoginForm(&req); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logCtx := appLogger.WithFields(logrus.Fields{"username": req.Username, "requestId": requestID[:8]})
	logCtx.Info("Iniciando login.")

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, core.WrapErrorf(core.ErrInternal, "erro ao serializar login")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.AuthURL("/signin"), bytes.NewReader(payload))
	if err != nil {
		return nil, core.WrapErrorf(core.ErrInternal, "erro ao criar requisição de login: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		logCtx.Warnf("Falha de conexão no login: %v", err)
		return nil, fmt.Errorf("%w: %s", core.ErrNetwork, ConnectionErrorMessage)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		logCtx.Warnf("Login recusado (HTTP %d).", resp.StatusCode)
		return nil, core.ErrInvalidCredentials
	}

	var jwtResp models.JwtResponse
	if err := json.NewDecoder(resp.Body).Decode(&jwtResp); err != nil {
		return nil, core.WrapErrorf(core.ErrInternal, "resposta de login inválida: %v", err)
	}
	if jwtResp.Token == "" {
		return nil, core.WrapErrorf(core.ErrInternal, "resposta de login sem token")
	}

	username = jwtResp.Username
	if username == "" {
		username = req.Username
	}
	session := models.Session{
		Token:     jwtResp.Token,
		UserID:    jwtResp.ID,
		Username:  username,
		Email:     jwtResp.Email,
		Roles:     models.NormalizeRoles(jwtResp.Roles),
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.Save(ctx, session); err != nil {
		logCtx.Errorf("Falha ao salvar sessão: %v", err)
		return nil, err
	}

	logCtx.WithField("roles", session.Roles).Info("Login realizado com sucesso.")
	return &LoginResult{Session: session, RedirectURL: jwtResp.RedirectURL}, nil
}

// Logout avisa o servidor (melhor esforço) e sempre encerra a sessão local.
func (a *Authenticator) Logout(ctx context.Context) error {
	// o redirecionamento é feito uma única vez no fim, sempre como logout voluntário
	resp, err := a.requester.Request(WithoutRedirect(ctx), http.MethodPost, a.cfg.AuthURL("/signout"), nil, nil)
	switch {
	case err == nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			appLogger.Warnf("Signout respondeu HTTP %d; encerrando sessão local mesmo assim.", resp.StatusCode)
		}
	case errors.Is(err, core.ErrUnauthorized), errors.Is(err, core.ErrSessionExpired):
		appLogger.Debugf("Logout sem sessão válida no servidor: %v", err)
	default:
		appLogger.Warnf("Erro ao fazer logout no servidor: %v", err)
	}

	clearErr := a.store.Clear(ctx)
	if clearErr != nil {
		appLogger.Errorf("Falha ao limpar sessão local: %v", clearErr)
	} else {
		appLogger.Info("Sessão encerrada.")
	}
	a.nav.RedirectToLogin(nil)
	return clearErr
}
