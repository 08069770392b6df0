package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sparkwave/painel_admin_go/internal/auth"
	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
)

// Fetcher executa chamadas autenticadas à API administrativa.
//
// Cada chamada recebe "Authorization: Bearer <token>" da sessão atual. Um 401 em qualquer
// chamada encerra a sessão globalmente: o store é limpo, o Navigator redireciona para o
// login e a chamada falha com core.ErrSessionExpired sem que o corpo seja entregue.
// Sem sessão no store a chamada nem sai: redireciona com core.ErrUnauthorized.
// Um ctx marcado com auth.WithoutRedirect pula os redirecionamentos.
// Não há retentativas; cada chamada é uma única tentativa.
type Fetcher struct {
	client *http.Client
	store  auth.SessionStore
	nav    auth.Navigator
}

// NewFetcher cria o Fetcher. client nil usa um http.Client sem timeout.
func NewFetcher(client *http.Client, store auth.SessionStore, nav auth.Navigator) *Fetcher {
	if store == nil || nav == nil {
		appLogger.Fatalf("SessionStore e Navigator são obrigatórios para o Fetcher")
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{client: client, store: store, nav: nav}
}

// Request faz a chamada e devolve a resposta crua para 2xx/4xx/5xx (exceto 401).
// O chamador fecha resp.Body. Sem sessão, redireciona e falha com core.ErrUnauthorized sem tocar a rede.
func (f *Fetcher) Request(ctx context.Context, method, url string, body io.Reader, header http.Header) (*http.Response, error) {
	session, ok, err := f.store.Load(ctx)
	if err != nil {
		return nil, core.WrapErrorf(core.ErrUnauthorized, "falha ao ler sessão: %v", err)
	}
	if !ok || session.Token == "" {
		// a sessão sumiu depois do AuthGate (logout em outro processo, por exemplo)
		appLogger.Warnf("Requisição %s %s sem sessão ativa.", method, url)
		f.redirect(ctx, core.ErrUnauthorized)
		return nil, core.ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, core.WrapErrorf(core.ErrInternal, "erro ao criar requisição %s %s: %v", method, url, err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Authorization", "Bearer "+session.Token)
	requestID := req.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set("X-Request-ID", requestID)
	}

	logCtx := appLogger.WithFields(logrus.Fields{
		"method":    method,
		"url":       req.URL.Redacted(),
		"requestId": shortID(requestID),
	})
	logCtx.Debug("Enviando requisição autenticada.")

	resp, err := f.client.Do(req)
	if err != nil {
		logCtx.Warnf("Falha de comunicação: %v", err)
		return nil, fmt.Errorf("%w: %v", core.ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		logCtx.Warn("Servidor respondeu 401. Encerrando sessão.")
		if err := f.store.Clear(ctx); err != nil {
			logCtx.Errorf("Falha ao limpar sessão após 401: %v", err)
		}
		f.redirect(ctx, core.ErrSessionExpired)
		return nil, core.ErrSessionExpired
	}

	logCtx.WithField("status", resp.StatusCode).Debug("Resposta recebida.")
	return resp, nil
}

func (f *Fetcher) redirect(ctx context.Context, reason error) {
	if auth.RedirectSuppressed(ctx) {
		return
	}
	f.nav.RedirectToLogin(reason)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
