package main

import (
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/sparkwave/painel_admin_go/internal/auth"
	"github.com/sparkwave/painel_admin_go/internal/core"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

func runLogin(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	username := fs.String("username", "", "nome de usuário")
	password := fs.String("password", "", "senha (pedida no prompt quando omitida)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *username == "" {
		if *username, err = prompt(cc, "Usuário: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = prompt(cc, "Senha: "); err != nil {
			return err
		}
	}

	state, err := cc.App.Login.Submit(cc.Ctx, *username, *password)
	if err != nil {
		if len(state.FieldErrors) > 0 {
			return writeFieldErrors(cc, state.FieldErrors, err)
		}
		_ = writef(cc.Out, "%s\n", state.Error)
		return err
	}
	s, _, err := cc.App.Store.Load(cc.Ctx)
	if err != nil {
		return err
	}
	return writef(cc.Out, "Sessão aberta para %s (%s).\n", auth.DisplayName(s), strings.Join(s.Roles, ", "))
}

func runLogout(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	yes := fs.Bool("yes", false, "não pedir confirmação")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cc.App.Panel.RequestLogout()
	return confirmPending(cc, *yes)
}

func runWhoAmI(cc *commandContext, _ []string) error {
	s, ok := cc.App.Panel.Session()
	if !ok {
		return core.ErrUnauthorized
	}
	if err := writef(cc.Out, "Usuário: %s\n", auth.DisplayName(s)); err != nil {
		return err
	}
	if s.Email != "" {
		if err := writef(cc.Out, "Email:   %s\n", s.Email); err != nil {
			return err
		}
	}
	return writef(cc.Out, "Perfis:  %s\n", strings.Join(s.Roles, ", "))
}

func runDashboard(cc *commandContext, _ []string) error {
	_, err := cc.App.Panel.ShowDashboard(cc.Ctx)
	return err
}

func runUsers(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	page := fs.Int("page", 1, "página (a partir de 1)")
	search := fs.String("search", "", "filtro por nome ou email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *page < 1 {
		return fmt.Errorf("%w: --page deve ser maior que zero", core.ErrInvalidInput)
	}
	return cc.App.Panel.ListUsers(cc.Ctx, *page-1, strings.TrimSpace(*search))
}

// userFlags registra os campos do formulário de usuário num FlagSet.
type userFlags struct {
	username, email, name, password, roles *string
	active                                 *bool
}

func bindUserFlags(fs *flag.FlagSet) userFlags {
	return userFlags{
		username: fs.String("username", "", "nome de usuário"),
		email:    fs.String("email", "", "email"),
		name:     fs.String("name", "", "nome completo"),
		password: fs.String("password", "", "senha"),
		roles:    fs.String("roles", "", "perfis separados por vírgula (ex: ADMIN,USER)"),
		active:   fs.Bool("active", true, "usuário ativo"),
	}
}

// apply copia para form apenas as flags informadas na linha de comando.
func (f userFlags) apply(fs *flag.FlagSet, form *models.UserForm) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "username":
			form.Username = *f.username
		case "email":
			form.Email = *f.email
		case "name":
			form.FullName = *f.name
		case "password":
			form.Password = *f.password
		case "roles":
			form.Roles = splitRoles(*f.roles)
		case "active":
			form.Active = *f.active
		}
	})
}

func splitRoles(raw string) []string {
	var roles []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return models.NormalizeRoles(roles)
}

func runUserCreate(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-create", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	f := bindUserFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	form := models.UserForm{Active: true}
	f.apply(fs, &form)
	return saveUser(cc, 0, form)
}

func runUserUpdate(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-update", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	id := fs.Int64("id", 0, "id do usuário")
	f := bindUserFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: --id é obrigatório", core.ErrInvalidInput)
	}
	form, err := cc.App.Panel.EditForm(cc.Ctx, *id)
	if err != nil {
		return err
	}
	f.apply(fs, &form)
	return saveUser(cc, *id, form)
}

func saveUser(cc *commandContext, id int64, form models.UserForm) error {
	err := cc.App.Panel.SaveUser(cc.Ctx, id, form)
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return writeFieldErrors(cc, ve.Fields, err)
	}
	return err
}

func runUserStatus(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-status", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	id := fs.Int64("id", 0, "id do usuário")
	active := fs.Bool("active", true, "novo status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: --id é obrigatório", core.ErrInvalidInput)
	}
	msg, err := cc.App.Users.SetStatus(cc.Ctx, *id, *active)
	if err != nil {
		return err
	}
	return writef(cc.Out, "%s\n", msg)
}

func runUserDelete(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-delete", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	id := fs.Int64("id", 0, "id do usuário")
	yes := fs.Bool("yes", false, "não pedir confirmação")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: --id é obrigatório", core.ErrInvalidInput)
	}
	cc.App.Panel.RequestDelete(cc.Ctx, *id)
	return confirmPending(cc, *yes)
}

func runUserResetPassword(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-reset-password", flag.ContinueOnError)
	fs.SetOutput(cc.Out)
	id := fs.Int64("id", 0, "id do usuário")
	password := fs.String("password", "", "nova senha (pedida no prompt quando omitida)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: --id é obrigatório", core.ErrInvalidInput)
	}
	if *password == "" {
		var err error
		if *password, err = prompt(cc, "Nova senha: "); err != nil {
			return err
		}
	}
	return cc.App.Panel.ResetPassword(cc.Ctx, *id, *password)
}

// confirmPending executa ou cancela a ação pendente do painel.
// Com skip, executa direto; senão lê a resposta (s/n).
func confirmPending(cc *commandContext, skip bool) error {
	if !skip {
		answer, err := prompt(cc, "> ")
		if err != nil {
			cc.App.Panel.Cancel()
			return err
		}
		if !isYes(answer) {
			cc.App.Panel.Cancel()
			return writef(cc.Out, "Operação cancelada.\n")
		}
	}
	return cc.App.Panel.Confirm(cc.Ctx)
}

func writeFieldErrors(cc *commandContext, fields map[string]string, err error) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if werr := writef(cc.Out, "%s\n", core.UserMessage(err)); werr != nil {
		return werr
	}
	for _, k := range keys {
		if werr := writef(cc.Out, "  %s: %s\n", k, fields[k]); werr != nil {
			return werr
		}
	}
	return err
}
