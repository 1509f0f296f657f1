package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados do GoUsers.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "DUPLICATE_CPF", "NOT_FOUND", "INTERNAL_ERROR")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// Códigos de condição expostos ao cliente no campo "category".
const (
	CodeInvalidUserData      = "INVALID_USER_DATA"
	CodeInvalidNameLength    = "INVALID_NAME_LENGTH"
	CodeInvalidPasswordLen   = "INVALID_PASSWORD_LENGTH"
	CodeInvalidCpfFormat     = "INVALID_CPF_FORMAT"
	CodeDuplicateCpf         = "DUPLICATE_CPF"
	CodeDuplicateEmail       = "DUPLICATE_EMAIL"
	CodeInvalidActiveValue   = "INVALID_ACTIVE_VALUE"
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
)

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
// Code identifica a condição violada; Field é preenchido quando a falha é de um campo específico.
type ValidationError struct {
	Code  string
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string {
	if e.Code == "" {
		return "VALIDATION_ERROR"
	}
	return e.Code
}
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error   { return nil }

// Is compara pelo código, para que errors.Is(err, ErrInvalidCpfFormat) funcione
// independente da mensagem.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code != "" && t.Code == e.Code
}

// NewValidationError cria um novo erro de validação genérico.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (recurso duplicado).
type ConflictError struct {
	Code string
	Msg  string
}

func (e *ConflictError) Error() string { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string {
	if e.Code == "" {
		return "CONFLICT"
	}
	return e.Code
}
func (e *ConflictError) HTTPStatus() int { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error   { return nil }

func (e *ConflictError) Is(target error) bool {
	t, ok := target.(*ConflictError)
	return ok && t.Code != "" && t.Code == e.Code
}

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// UnauthorizedError representa credenciais ausentes, inválidas ou token rejeitado.
type UnauthorizedError struct {
	Code string
	Msg  string
}

func (e *UnauthorizedError) Error() string { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string {
	if e.Code == "" {
		return "UNAUTHORIZED"
	}
	return e.Code
}
func (e *UnauthorizedError) HTTPStatus() int { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error   { return nil }

func (e *UnauthorizedError) Is(target error) bool {
	t, ok := target.(*UnauthorizedError)
	return ok && t.Code != "" && t.Code == e.Code
}

// NewUnauthorizedError cria um novo erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Erros de Usuário (taxonomia do pipeline de validação e do login) ---

// Sentinelas para uso com errors.Is. A comparação é feita apenas pelo Code.
var (
	ErrInvalidUserData       = &ValidationError{Code: CodeInvalidUserData}
	ErrInvalidNameLength     = &ValidationError{Code: CodeInvalidNameLength}
	ErrInvalidPasswordLength = &ValidationError{Code: CodeInvalidPasswordLen}
	ErrInvalidCpfFormat      = &ValidationError{Code: CodeInvalidCpfFormat}
	ErrInvalidActiveValue    = &ValidationError{Code: CodeInvalidActiveValue}
	ErrDuplicateCpf          = &ConflictError{Code: CodeDuplicateCpf}
	ErrDuplicateEmail        = &ConflictError{Code: CodeDuplicateEmail}
	ErrAuthenticationFailed  = &UnauthorizedError{Code: CodeAuthenticationFailed}
)

// NewInvalidUserDataError indica violação do schema declarado no DTO.
func NewInvalidUserDataError(detail string) AppError {
	msg := "Dados de usuário inválidos."
	if detail != "" {
		msg = fmt.Sprintf("Dados de usuário inválidos: %s", detail)
	}
	return &ValidationError{Code: CodeInvalidUserData, Msg: msg}
}

// NewInvalidNameLengthError nomeia o campo que não atingiu o tamanho mínimo.
func NewInvalidNameLengthError(field string) AppError {
	return &ValidationError{
		Code:  CodeInvalidNameLength,
		Field: field,
		Msg:   fmt.Sprintf("O campo '%s' deve ter pelo menos 3 caracteres.", field),
	}
}

func NewInvalidPasswordLengthError() AppError {
	return &ValidationError{
		Code:  CodeInvalidPasswordLen,
		Field: "password",
		Msg:   "A senha deve ter no mínimo 6 caracteres.",
	}
}

// NewInvalidCpfFormatError cobre tanto CPF ausente quanto CPF fora do formato 000.000.000-00.
func NewInvalidCpfFormatError(msg string) AppError {
	return &ValidationError{Code: CodeInvalidCpfFormat, Field: "cpf", Msg: msg}
}

func NewInvalidActiveValueError() AppError {
	return &ValidationError{
		Code:  CodeInvalidActiveValue,
		Field: "active",
		Msg:   "O campo 'active' deve conter somente valores 'true' ou 'false'.",
	}
}

func NewDuplicateCpfError() AppError {
	return &ConflictError{Code: CodeDuplicateCpf, Msg: "CPF duplicado. Um usuário com o mesmo CPF já existe."}
}

func NewDuplicateEmailError() AppError {
	return &ConflictError{Code: CodeDuplicateEmail, Msg: "Email duplicado. Já existe um usuário com o mesmo email."}
}

// NewAuthenticationFailedError não distingue email desconhecido de senha incorreta.
func NewAuthenticationFailedError() AppError {
	return &UnauthorizedError{Code: CodeAuthenticationFailed, Msg: "Usuário não encontrado ou senha incorreta."}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// IsNotFound informa se algum erro da cadeia é um NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		// O erro é tipado (ValidationError, NotFoundError, etc.)
		if appErr.HTTPStatus() >= http.StatusInternalServerError {
			// Não vazamos detalhes de infraestrutura para o cliente.
			return appErr.HTTPStatus(), appErr.Category(), "Ocorreu um erro interno."
		}
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado (e.g., erro simples de pacote Go que não implementa AppError)
	// Tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
