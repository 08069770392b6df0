package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log" // Usado antes que o logger da aplicação esteja configurado
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	// public: roda sem passar pelo AuthGate
	public bool
	run    commandFn
}

type commandContext struct {
	Ctx context.Context
	App *adminApp
	In  *bufio.Reader
	Out io.Writer
}

var errUnknownCommand = errors.New("comando desconhecido")

func main() {
	if len(os.Args) < 2 {
		_ = printUsage(os.Stdout)
		os.Exit(2)
	}
	cmdName := os.Args[1]
	if _, ok := commands()[cmdName]; !ok {
		_ = writef(os.Stderr, "comando desconhecido %q\n\n", cmdName)
		_ = printUsage(os.Stdout)
		os.Exit(2)
	}

	// --- 1. Carregar Configurações ---
	cfg, err := core.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Erro CRÍTICO ao carregar configuração: %v", err)
	}

	// --- 2. Configurar Logger ---
	if err := appLogger.SetupLogger(cfg); err != nil {
		log.Fatalf("Erro CRÍTICO ao configurar logger: %v", err)
	}
	appLogger.Infof("Iniciando %s v%s (comando %s)", cfg.AppName, cfg.AppVersion, cmdName)
	appLogger.Debugf("Modo Debug: %t", cfg.AppDebug)

	// --- 3. Banco de dados da sessão e serviços ---
	app, err := newAdminApp(cfg, os.Stdout, os.Stderr)
	if err != nil {
		appLogger.Errorf("Falha ao inicializar o console: %v", err)
		_ = writef(os.Stderr, "%s\n", core.UserMessage(err))
		os.Exit(1)
	}

	cmdCtx := &commandContext{
		Ctx: context.Background(),
		App: app,
		In:  bufio.NewReader(os.Stdin),
		Out: os.Stdout,
	}
	runErr := dispatch(cmdCtx, cmdName, os.Args[2:])
	app.Close()
	if runErr != nil {
		appLogger.WithFields(logrus.Fields{"command": cmdName}).Errorf("Comando falhou: %v", runErr)
		os.Exit(1)
	}
	appLogger.Info("Comando concluído.")
}

// dispatch roda o comando. Todo comando não público passa antes pelo AuthGate.
func dispatch(cc *commandContext, name string, args []string) error {
	cmd, ok := commands()[name]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	if !cmd.public {
		if _, err := cc.App.Panel.Attach(cc.Ctx); err != nil {
			return err
		}
	}
	return cmd.run(cc, args)
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Autentica no painel (--username, --password ou prompt)",
			public:      true,
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Encerra a sessão após confirmação (--yes pula a pergunta)",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Mostra o usuário da sessão atual",
			run:         runWhoAmI,
		},
		"dashboard": {
			name:        "dashboard",
			description: "Mostra as estatísticas do painel",
			run:         runDashboard,
		},
		"users": {
			name:        "users",
			description: "Lista usuários (--page, --search)",
			run:         runUsers,
		},
		"user-create": {
			name:        "user-create",
			description: "Cria um usuário",
			run:         runUserCreate,
		},
		"user-update": {
			name:        "user-update",
			description: "Atualiza um usuário (--id e os campos alterados)",
			run:         runUserUpdate,
		},
		"user-status": {
			name:        "user-status",
			description: "Ativa ou desativa um usuário (--id, --active)",
			run:         runUserStatus,
		},
		"user-delete": {
			name:        "user-delete",
			description: "Exclui um usuário após confirmação (--id, --yes)",
			run:         runUserDelete,
		},
		"user-reset-password": {
			name:        "user-reset-password",
			description: "Redefine a senha de um usuário (--id, --password ou prompt)",
			run:         runUserResetPassword,
		},
		"user-logs": {
			name:        "user-logs",
			description: "Lista os acessos de um usuário (--id, --from, --to)",
			run:         runUserLogs,
		},
		"logs": {
			name:        "logs",
			description: "Lista o histórico de acessos (--page, --from, --to)",
			run:         runLogs,
		},
		"export-users": {
			name:        "export-users",
			description: "Baixa o CSV de usuários gerado pelo servidor",
			run:         runExportUsers,
		},
		"export-logs": {
			name:        "export-logs",
			description: "Baixa o CSV do histórico de acessos (--from, --to)",
			run:         runExportLogs,
		},
		"export-page": {
			name:        "export-page",
			description: "Exporta a página listada para CSV ou XLSX (--list, --format)",
			run:         runExportPage,
		},
		"shell": {
			name:        "shell",
			description: "Abre o painel interativo",
			run:         runShell,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Uso: sparkwave_admin <comando> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Comandos disponíveis:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-24s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...interface{}) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

// prompt lê uma linha da entrada padrão depois de exibir label.
func prompt(cc *commandContext, label string) (string, error) {
	if err := writef(cc.Out, "%s", label); err != nil {
		return "", err
	}
	line, err := cc.In.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("%w: leitura interrompida", core.ErrInvalidInput)
	}
	return strings.TrimSpace(line), nil
}

// isYes aceita "s", "sim", "y" e "yes".
func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}
