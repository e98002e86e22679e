// Package validation checks request bodies against their `validate` struct
// tags and turns failures into an ordered list of field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation is a single failed constraint on a request field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// requiredMessages holds the message reported when a required field is absent.
var requiredMessages = map[string]string{
	"nome":              "Informe o nome",
	"descricao":         "Informe a descrição",
	"preco":             "Informe o preço",
	"quantidadeEstoque": "Informe o estoque",
}

// Validator wraps a go-playground validator configured for the API's inputs.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Validator{validate: v}
}

// Struct validates s and returns every violation in field declaration order.
// A nil result means s is valid.
func (v *Validator) Struct(s interface{}) []Violation {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []Violation{{Field: "", Message: err.Error()}}
	}

	violations := make([]Violation, 0, len(validationErrors))
	for _, e := range validationErrors {
		violations = append(violations, Violation{
			Field:   e.Field(),
			Message: message(e),
		})
	}
	return violations
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		if msg, ok := requiredMessages[e.Field()]; ok {
			return msg
		}
		return fmt.Sprintf("Informe o campo %s", e.Field())
	case "notblank":
		if msg, ok := requiredMessages[e.Field()]; ok {
			return msg
		}
		return fmt.Sprintf("O campo %s não pode ficar em branco", e.Field())
	case "min", "max":
		return "Informe no mínimo 3 caracteres e no máximo 100"
	case "gte":
		if e.Field() == "preco" {
			return "O preço deve ser maior ou igual a zero"
		}
		return fmt.Sprintf("O campo %s deve ser maior ou igual a %s", e.Field(), e.Param())
	case "gt":
		if e.Field() == "quantidadeEstoque" {
			return "O estoque não pode ser negativo"
		}
		return fmt.Sprintf("O campo %s deve ser maior que %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}
