// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a field's JSON name to its messages, in check order.
type FieldErrors map[string][]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(fe[f], "; "))
	}
	return strings.Join(parts, ", ")
}

// First returns the first message for field, or "".
func (fe FieldErrors) First(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// FormField is the pseudo field for errors not tied to one input.
const FormField = "_form"

// Validator implements form validation with lazy initialization.
type Validator struct {
	once     sync.Once
	validate *validator.Validate
	msgs     messages
}

// New returns a validator producing messages for locale ("en", "pt-BR").
func New(locale string) *Validator {
	return &Validator{msgs: messagesFor(locale)}
}

// Validate checks form and returns nil when it is valid.
func (v *Validator) Validate(form any) FieldErrors {
	v.lazyinit()

	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{FormField: {v.msgs.unknown}}
	}

	out := FieldErrors{}
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], v.describe(fe)...)
	}
	return out
}

func (v *Validator) describe(fe validator.FieldError) []string {
	switch fe.Tag() {
	case "required":
		return []string{v.msgs.required}
	case "email":
		return []string{v.msgs.email}
	case "min":
		return []string{fmt.Sprintf(v.msgs.min, fe.Param())}
	case "max":
		return []string{fmt.Sprintf(v.msgs.max, fe.Param())}
	case "eqfield":
		return []string{v.msgs.mismatch}
	case "strongpassword":
		s, _ := fe.Value().(string)
		return v.msgs.weakness(s)
	default:
		return []string{v.msgs.unknown}
	}
}

// lazyinit performs one-time initialization of the validator.
func (v *Validator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.RegisterTagNameFunc(jsonName)
		_ = v.validate.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return len(passwordWeaknesses(fl.Field().String())) == 0
		})
	})
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

type weakness int

const (
	noUpper weakness = iota
	noLower
	noDigit
	noSpecial
)

// passwordWeaknesses lists the character classes s is missing.
func passwordWeaknesses(s string) []weakness {
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	var out []weakness
	if !upper {
		out = append(out, noUpper)
	}
	if !lower {
		out = append(out, noLower)
	}
	if !digit {
		out = append(out, noDigit)
	}
	if !special {
		out = append(out, noSpecial)
	}
	return out
}
