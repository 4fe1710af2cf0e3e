package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"mercadito/internal/core/apperror"
	"mercadito/internal/schema"
)

var (
	lettersRe = regexp.MustCompile(`^[A-Za-zÁÉÍÓÚáéíóúÑñÜü ]+$`)
	digitsRe  = regexp.MustCompile(`^[0-9]+$`)
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const passwordSpecials = "@$!%*?&"

// validateField checks one submitted value against its descriptor.
// Checks run in a fixed order and stop at the first violation, so the
// user always sees a single, specific message.
func validateField(f schema.Field, value string, isEdit bool) error {
	value = strings.TrimSpace(value)

	if value == "" {
		if f.KeepCurrentWhenEmpty && isEdit {
			return nil
		}
		if f.Required {
			return apperror.NewValidation(
				fmt.Sprintf("El campo %s es obligatorio.", f.Label)).
				WithDetail("field", f.Name)
		}
		return nil
	}

	if f.MaxLength > 0 && len([]rune(value)) > f.MaxLength {
		return apperror.NewValidation(
			fmt.Sprintf("El campo %s no puede superar %d caracteres.", f.Label, f.MaxLength)).
			WithDetail("field", f.Name)
	}

	if err := validatePattern(f, value); err != nil {
		return err
	}

	if len(f.Enum) > 0 {
		for _, v := range f.Enum {
			if v == value {
				return nil
			}
		}
		return apperror.NewValidation(
			fmt.Sprintf("Valor no permitido para %s: %s", f.Label, value)).
			WithDetail("field", f.Name)
	}
	return nil
}

func validatePattern(f schema.Field, value string) error {
	fail := func(fallback string) error {
		msg := f.Message
		if msg == "" {
			msg = fallback
		}
		return apperror.NewValidation(msg).WithDetail("field", f.Name)
	}

	switch f.Pattern {
	case schema.PatternLetters:
		if !lettersRe.MatchString(value) {
			return fail(fmt.Sprintf("El campo %s solo puede contener letras.", f.Label))
		}
	case schema.PatternDigits:
		if !digitsRe.MatchString(value) {
			return fail(fmt.Sprintf("El campo %s solo puede contener dígitos.", f.Label))
		}
		if f.PatternLen > 0 && len(value) != f.PatternLen {
			return fail(fmt.Sprintf("El campo %s debe contener exactamente %d dígitos.", f.Label, f.PatternLen))
		}
	case schema.PatternEmail:
		if !emailRe.MatchString(value) {
			return fail("Debe ingresar un correo válido.")
		}
	case schema.PatternPassword:
		if !validPassword(value) {
			return fail("La contraseña debe tener al menos 8 caracteres, una mayúscula, un número y un carácter especial (@$!%*?&).")
		}
	}
	return nil
}

// validPassword enforces the password policy: at least 8 characters
// with an uppercase letter, a digit and one of @$!%*?&.
func validPassword(s string) bool {
	if len([]rune(s)) < 8 {
		return false
	}
	var upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && digit && special
}
