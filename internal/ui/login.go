package ui

import (
	"context"
	"errors"

	"github.com/sparkwave/painel_admin_go/internal/auth"
	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
)

// LoginAPI é implementado por auth.Authenticator.
type LoginAPI interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
}

// LoginState é o que a tela de login exibe depois de uma tentativa.
type LoginState struct {
	FieldErrors map[string]string // erros inline por campo (username, password)
	Error       string            // mensagem geral
	RedirectURL string
}

// LoginScreen trata o formulário de login.
type LoginScreen struct {
	api      LoginAPI
	router   *Router
	notifier Notifier
}

func NewLoginScreen(api LoginAPI, router *Router, notifier Notifier) *LoginScreen {
	if api == nil || router == nil {
		appLogger.Fatalf("Dependências nulas fornecidas para NewLoginScreen")
	}
	return &LoginScreen{api: api, router: router, notifier: notifier}
}

// Submit tenta o login. Em caso de sucesso, navega para a lista de usuários.
func (l *LoginScreen) Submit(ctx context.Context, username, password string) (LoginState, error) {
	res, err := l.api.Login(ctx, username, password)
	if err != nil {
		state := LoginState{Error: core.UserMessage(err)}
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			state.FieldErrors = ve.Fields
		}
		return state, err
	}
	if l.notifier != nil {
		l.notifier.ShowMessage("Login realizado com sucesso!", LevelSuccess)
	}
	l.router.NavigateTo(PageUsers)
	return LoginState{RedirectURL: res.RedirectURL}, nil
}
