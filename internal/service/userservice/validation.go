package userservice

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"gousers/internal/domain"
	apperror "gousers/internal/errors"
	"gousers/internal/pkg/validation"
)

const (
	minNameLength     = 3
	minPasswordLength = 6
	cpfDigits         = 11
)

// cpfPattern é o formato de exibição/entrada aceito: 000.000.000-00.
var cpfPattern = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)

// validateForCreate executa o pipeline completo, na ordem fixa abaixo,
// e retorna na primeira violação. A ordem define qual erro uma requisição
// com vários problemas recebe e não deve ser alterada.
func (s *UserService) validateForCreate(ctx context.Context, dto domain.UserDTO) error {
	// 1. Schema declarado no DTO
	if err := s.validateUserDTO(dto); err != nil {
		return err
	}

	// 2-3. Tamanho dos nomes
	if err := validateNameLength(dto.FirstName, "firstName"); err != nil {
		return err
	}
	if err := validateNameLength(dto.LastName, "lastName"); err != nil {
		return err
	}

	// 4. Tamanho da senha
	if err := validatePasswordLength(dto.Password); err != nil {
		return err
	}

	// 5. Unicidade do CPF (antes da checagem de formato)
	if err := s.validateUniqueCPF(ctx, dto.CPF); err != nil {
		return err
	}

	// 6-7. Presença e formato do CPF
	if dto.CPF == "" {
		return apperror.NewInvalidCpfFormatError("CPF inválido")
	}
	if err := validateCPFFormat(dto.CPF); err != nil {
		return err
	}

	// 8. Unicidade do email
	if err := s.validateUniqueEmail(ctx, dto.Email); err != nil {
		return err
	}

	// 9. Presença do active
	return validateActiveValue(dto.Active)
}

// validateUserDTO aplica as tags `validate` do DTO, ignorando os campos informados.
func (s *UserService) validateUserDTO(dto domain.UserDTO, except ...string) error {
	var err error
	if len(except) > 0 {
		err = s.validator.StructExcept(dto, except...)
	} else {
		err = s.validator.Struct(dto)
	}
	if err != nil {
		return apperror.NewInvalidUserDataError(validation.Summary(err))
	}
	return nil
}

// validateNameLength ignora valor ausente; só falha para nome presente e curto.
func validateNameLength(name, field string) error {
	if name != "" && utf8.RuneCountInString(name) < minNameLength {
		return apperror.NewInvalidNameLengthError(field)
	}
	return nil
}

// validatePasswordLength ignora valor ausente; só falha para senha presente e curta.
func validatePasswordLength(password string) error {
	if password != "" && utf8.RuneCountInString(password) < minPasswordLength {
		return apperror.NewInvalidPasswordLengthError()
	}
	return nil
}

func (s *UserService) validateUniqueCPF(ctx context.Context, cpf string) error {
	exists, err := s.repo.ExistsByCPF(ctx, cpf)
	if err != nil {
		return apperror.NewInternalError("Falha ao verificar unicidade do CPF.", err)
	}
	if exists {
		return apperror.NewDuplicateCpfError()
	}
	return nil
}

func validateCPFFormat(cpf string) error {
	if !IsCPFInFormat(cpf) {
		return apperror.NewInvalidCpfFormatError("O CPF não está no formato correto (000.000.000-00).")
	}
	return nil
}

func (s *UserService) validateUniqueEmail(ctx context.Context, email string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return apperror.NewInternalError("Falha ao verificar unicidade do email.", err)
	}
	if exists {
		return apperror.NewDuplicateEmailError()
	}
	return nil
}

func validateActiveValue(active *bool) error {
	if active == nil {
		return apperror.NewInvalidActiveValueError()
	}
	return nil
}

// IsCPFInFormat exige as duas condições: exatamente 11 dígitos depois de
// remover tudo que não é dígito, e a string original no formato 000.000.000-00.
func IsCPFInFormat(cpf string) bool {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, cpf)

	if len(digits) != cpfDigits {
		return false
	}

	return cpfPattern.MatchString(cpf)
}
