package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
)

// ActionKind é o tipo de ação que exige confirmação.
type ActionKind string

const (
	ActionDelete ActionKind = "delete"
	ActionLogout ActionKind = "logout"
)

// PendingAction é a ação aguardando resposta do operador.
type PendingAction struct {
	Kind     ActionKind
	TargetID int64 // usado por ActionDelete
	Message  string
}

// FlowState é o estado da confirmação.
type FlowState int

const (
	StateIdle FlowState = iota
	StatePending
)

// Outcome é o desfecho da última ação pendente.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeExecuted
	OutcomeCancelled
)

// ConfirmHandler executa uma ação confirmada.
type ConfirmHandler func(ctx context.Context, action PendingAction) error

// ConfirmationFlow guarda no máximo uma ação pendente: um segundo Request substitui o primeiro.
type ConfirmationFlow struct {
	mu          sync.Mutex
	pending     *PendingAction
	lastOutcome Outcome
	handlers    map[ActionKind]ConfirmHandler
}

// NewConfirmationFlow cria o fluxo com um handler por tipo de ação.
func NewConfirmationFlow(handlers map[ActionKind]ConfirmHandler) *ConfirmationFlow {
	h := make(map[ActionKind]ConfirmHandler, len(handlers))
	for k, v := range handlers {
		h[k] = v
	}
	return &ConfirmationFlow{handlers: h}
}

// Request coloca a ação como pendente e devolve a mensagem a exibir.
func (f *ConfirmationFlow) Request(action PendingAction) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != nil {
		appLogger.Debugf("Ação pendente %s substituída por %s.", f.pending.Kind, action.Kind)
	}
	a := action
	f.pending = &a
	return a.Message
}

// Confirm executa a ação pendente e volta a IDLE.
// Sem ação pendente não faz nada e devolve executed=false.
func (f *ConfirmationFlow) Confirm(ctx context.Context) (executed bool, err error) {
	f.mu.Lock()
	if f.pending == nil {
		f.mu.Unlock()
		return false, nil
	}
	action := *f.pending
	f.pending = nil
	f.lastOutcome = OutcomeExecuted
	handler := f.handlers[action.Kind]
	f.mu.Unlock()

	logCtx := appLogger.WithFields(logrus.Fields{"action": action.Kind, "target": action.TargetID})
	if handler == nil {
		logCtx.Error("Nenhum handler registrado para a ação confirmada.")
		return true, fmt.Errorf("%w: ação sem handler: %s", core.ErrInternal, action.Kind)
	}
	logCtx.Info("Ação confirmada.")
	return true, handler(ctx, action)
}

// Cancel descarta a ação pendente sem efeitos colaterais.
func (f *ConfirmationFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return
	}
	f.pending = nil
	f.lastOutcome = OutcomeCancelled
}

// State devolve IDLE ou PENDING.
func (f *ConfirmationFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != nil {
		return StatePending
	}
	return StateIdle
}

// Pending devolve a ação pendente, se houver.
func (f *ConfirmationFlow) Pending() (PendingAction, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return PendingAction{}, false
	}
	return *f.pending, true
}

// LastOutcome devolve o desfecho da última ação resolvida.
func (f *ConfirmationFlow) LastOutcome() Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOutcome
}
