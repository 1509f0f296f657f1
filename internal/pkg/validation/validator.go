package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator executa a validação estrutural (tags `validate`) dos DTOs e entidades.
type Validator struct {
	v *validator.Validate
}

// New configura o validator para reportar os nomes de campo da tag json.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Struct valida todos os campos declarados.
func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

// StructExcept valida o struct ignorando os campos informados (nome do campo Go).
func (v *Validator) StructExcept(s interface{}, fields ...string) error {
	return v.v.StructExcept(s, fields...)
}

// ToDetails converte erros do validator em mapa campo -> mensagem.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// Summary gera uma linha estável ("campo: mensagem; ...") para mensagens de erro.
func Summary(err error) string {
	details := ToDetails(err)
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, details[k]))
	}
	return strings.Join(parts, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	case "datetime":
		return "must match datetime format: " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}
