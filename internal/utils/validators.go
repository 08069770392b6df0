package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/sparkwave/painel_admin_go/internal/core"
	"github.com/sparkwave/painel_admin_go/internal/data/models"
)

// Mensagens do formulário de login.
const (
	MsgUsernameRequired = "Por favor, informe seu usuário."
	MsgPasswordRequired = "Por favor, informe sua senha."
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator devolve o validador compartilhado com as tags customizadas registradas.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Usa o nome JSON do campo nas mensagens.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
			return usernameRegex.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateLoginForm apara os campos e verifica que ambos foram informados.
// Nenhuma chamada de rede deve ser feita se retornar erro.
func ValidateLoginForm(req *models.LoginRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)

	err := structValidator().Struct(req)
	if err == nil {
		return nil
	}
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Field() {
			case "username":
				fields["username"] = MsgUsernameRequired
			case "password":
				fields["password"] = MsgPasswordRequired
			}
		}
	}
	msg := MsgUsernameRequired
	if _, ok := fields["username"]; !ok {
		msg = MsgPasswordRequired
	}
	return &core.ValidationError{Message: msg, Fields: fields, Underlying: err}
}

// ValidateUserForm normaliza e valida o formulário de usuário.
// Na criação a senha é obrigatória; sem perfis, assume models.DefaultRole.
func ValidateUserForm(form *models.UserForm, isCreate bool) error {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	form.FullName = SanitizeInput(form.FullName)
	form.Roles = models.NormalizeRoles(form.Roles)
	if len(form.Roles) == 0 {
		form.Roles = []string{models.DefaultRole}
	}

	fields := map[string]string{}
	if err := structValidator().Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return core.WrapErrorf(core.ErrInternal, "falha ao validar formulário: %v", err)
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	if isCreate && form.Password == "" {
		fields["password"] = "Senha é obrigatória."
	}
	if len(fields) == 0 {
		return nil
	}
	return core.NewValidationError("Verifique os campos do formulário.", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório."
	case "email":
		return "Formato de e-mail inválido."
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Informe ao menos %s item(ns).", fe.Param())
		}
		return fmt.Sprintf("Mínimo de %s caracteres.", fe.Param())
	case "max":
		return fmt.Sprintf("Máximo de %s caracteres.", fe.Param())
	case "username_chars":
		return "Use apenas letras, números, _ ou -."
	}
	return "Valor inválido."
}

// SanitizeInput remove caracteres de controle e colapsa espaços em sequência.
func SanitizeInput(inputStr string) string {
	if inputStr == "" {
		return ""
	}
	var sb strings.Builder
	lastWasSpace := false
	for _, r := range inputStr {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				sb.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			sb.WriteRune(r)
			lastWasSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

var dayLayouts = []string{"2006-01-02", "02/01/2006"}

// ParseDay interpreta uma data (AAAA-MM-DD ou DD/MM/AAAA) no fuso local.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dayLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: data inválida '%s' (use AAAA-MM-DD ou DD/MM/AAAA)", core.ErrInvalidInput, s)
}

// ParseDateRange monta um intervalo a partir de duas datas; ambas vazias devolvem nil.
// Como no painel web, o filtro só se aplica quando as duas datas são informadas.
func ParseDateRange(from, to string) (*models.DateRange, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, core.NewValidationError("Informe a data inicial e a data final.", map[string]string{"dateRange": "incompleto"})
	}
	start, err := ParseDay(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDay(to)
	if err != nil {
		return nil, err
	}
	r := &models.DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return nil, &core.ValidationError{Message: err.Error(), Fields: map[string]string{"dateRange": "invertido"}}
	}
	return r, nil
}
