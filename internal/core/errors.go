package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Erros sentinela do console administrativo.
// Verificados com errors.Is(err, ErrUnauthorized), etc.
var (
	// --- Gerais ---
	ErrInternal      = errors.New("erro interno da aplicação")
	ErrConfiguration = errors.New("erro de configuração da aplicação")

	// --- Autenticação e Sessão ---
	ErrUnauthorized       = errors.New("Não autenticado")
	ErrSessionExpired     = errors.New("Sessão expirada")
	ErrInvalidCredentials = errors.New("Usuário ou senha inválidos.")
	ErrPermissionDenied   = errors.New("permissão negada")

	// --- Comunicação com a API ---
	ErrRequest  = errors.New("requisição rejeitada pelo servidor")
	ErrNetwork  = errors.New("falha de comunicação com o servidor")
	ErrNotFound = errors.New("registro não encontrado")

	// --- Persistência local ---
	ErrDatabase = errors.New("erro na operação com o banco de dados")

	// --- Validação e Entrada ---
	ErrValidation   = errors.New("erro de validação nos dados fornecidos")
	ErrInvalidInput = errors.New("entrada de dados inválida ou mal formatada")

	// --- Específicos ---
	ErrExport = errors.New("falha ao exportar dados")
)

// ValidationError contém detalhes sobre os campos que falharam na validação.
type ValidationError struct {
	// Message é uma mensagem geral sobre a falha de validação.
	Message string
	// Fields mapeia nomes de campos para suas respectivas mensagens de erro.
	Fields map[string]string
	// Underlying é o erro original (opcional).
	Underlying error
}

// NewValidationError cria uma nova instância de ValidationError.
func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{
		Message: message,
		Fields:  fields,
	}
}

// Error implementa a interface error.
func (ve *ValidationError) Error() string {
	var sb strings.Builder
	if ve.Message != "" {
		sb.WriteString(ve.Message)
	} else {
		sb.WriteString("Erro de validação")
	}

	if len(ve.Fields) > 0 {
		keys := make([]string, 0, len(ve.Fields))
		for field := range ve.Fields {
			keys = append(keys, field)
		}
		sort.Strings(keys)
		fieldErrors := make([]string, 0, len(keys))
		for _, field := range keys {
			fieldErrors = append(fieldErrors, fmt.Sprintf("%s: %s", field, ve.Fields[field]))
		}
		sb.WriteString(" (Detalhes: ")
		sb.WriteString(strings.Join(fieldErrors, ", "))
		sb.WriteString(")")
	}
	if ve.Underlying != nil {
		sb.WriteString(fmt.Sprintf(" | Erro original: %v", ve.Underlying))
	}
	return sb.String()
}

// Unwrap retorna o erro encapsulado.
func (ve *ValidationError) Unwrap() error {
	return ve.Underlying
}

// Is faz `errors.Is(err, ErrValidation)` valer para qualquer *ValidationError.
func (ve *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RequestError representa uma resposta não-2xx da API administrativa.
// Message vem do campo "message" do corpo quando o servidor o envia.
type RequestError struct {
	Operation  string
	StatusCode int
	Message    string
}

// NewRequestError cria um RequestError.
func NewRequestError(operation string, statusCode int, message string) *RequestError {
	return &RequestError{Operation: operation, StatusCode: statusCode, Message: message}
}

// Error implementa a interface error.
func (re *RequestError) Error() string {
	if re.Message != "" {
		return re.Message
	}
	if re.Operation != "" {
		return fmt.Sprintf("Erro ao %s (HTTP %d)", re.Operation, re.StatusCode)
	}
	return fmt.Sprintf("Erro na requisição (HTTP %d)", re.StatusCode)
}

// Is: todo RequestError é um ErrRequest; 403 também casa com ErrPermissionDenied e 404 com ErrNotFound.
func (re *RequestError) Is(target error) bool {
	switch target {
	case ErrRequest:
		return true
	case ErrPermissionDenied:
		return re.StatusCode == 403
	case ErrNotFound:
		return re.StatusCode == 404
	}
	return false
}

// PermissionError é uma recusa por falta de perfil; Error() já é a mensagem para o operador.
type PermissionError struct {
	Message string
}

// NewPermissionError cria um PermissionError.
func NewPermissionError(message string) *PermissionError {
	return &PermissionError{Message: message}
}

func (pe *PermissionError) Error() string {
	if pe.Message == "" {
		return ErrPermissionDenied.Error()
	}
	return pe.Message
}

// Is: um PermissionError é sempre um ErrPermissionDenied.
func (pe *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// DatabaseErrorDetail carrega informações sobre um erro do armazenamento local de sessão.
type DatabaseErrorDetail struct {
	// Operation descreve a operação (ex: "salvando sessão").
	Operation string
	Err       error
}

// NewDatabaseErrorDetail cria um novo DatabaseErrorDetail.
func NewDatabaseErrorDetail(operation string, originalErr error) *DatabaseErrorDetail {
	if originalErr == nil {
		originalErr = ErrDatabase
	}
	return &DatabaseErrorDetail{Operation: operation, Err: originalErr}
}

// Error implementa a interface error.
func (de *DatabaseErrorDetail) Error() string {
	return fmt.Sprintf("erro de banco de dados durante %s: %v", de.Operation, de.Err)
}

// Unwrap retorna o erro original do driver.
func (de *DatabaseErrorDetail) Unwrap() error {
	return de.Err
}

// Is: um DatabaseErrorDetail é sempre um ErrDatabase.
func (de *DatabaseErrorDetail) Is(target error) bool {
	if target == ErrDatabase {
		return true
	}
	return errors.Is(de.Err, target)
}

// --- Funções Helper ---

// WrapErrorf envolve um erro existente com uma mensagem formatada, preservando-o para errors.Is/As.
func WrapErrorf(originalErr error, format string, args ...interface{}) error {
	if originalErr == nil {
		return fmt.Errorf(format, args...)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), originalErr)
}

// UserMessage extrai a mensagem a ser exibida ao operador.
// Para RequestError/ValidationError usa a mensagem própria; para os demais usa err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Error()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve.Message != "" {
			return ve.Message
		}
		return ve.Error()
	}
	switch {
	case errors.Is(err, ErrSessionExpired):
		return ErrSessionExpired.Error()
	case errors.Is(err, ErrUnauthorized):
		return ErrUnauthorized.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials.Error()
	}
	return err.Error()
}
