package ui

import (
	"fmt"
	"io"
	"sync"

	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
)

// MessageLevel é o tipo da mensagem global: info, success ou error.
type MessageLevel string

const (
	LevelInfo    MessageLevel = "info"
	LevelSuccess MessageLevel = "success"
	LevelError   MessageLevel = "error"
)

// Notifier exibe mensagens únicas e não bloqueantes ao operador.
type Notifier interface {
	ShowMessage(message string, level MessageLevel)
}

// WriterNotifier escreve as mensagens em um io.Writer (o terminal do console).
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) ShowMessage(message string, level MessageLevel) {
	if message == "" {
		return
	}
	prefix := "[i]"
	switch level {
	case LevelSuccess:
		prefix = "[ok]"
	case LevelError:
		prefix = "[erro]"
		appLogger.Warnf("Mensagem de erro exibida: %s", message)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", prefix, message)
}
