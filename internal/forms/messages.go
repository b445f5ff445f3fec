// Copyright (c) 2025 EduAutismo
// Licensed under the MIT License. See LICENSE file in the project root for details.

package forms

import "strings"

type messages struct {
	required string
	email    string
	min      string
	max      string
	mismatch string
	unknown  string
	classes  map[weakness]string
}

func (m messages) weakness(password string) []string {
	var out []string
	for _, w := range passwordWeaknesses(password) {
		out = append(out, m.classes[w])
	}
	return out
}

var english = messages{
	required: "This field is required",
	email:    "Please enter a valid email",
	min:      "Must have at least %s characters",
	max:      "Must have at most %s characters",
	mismatch: "Passwords do not match",
	unknown:  "Unknown validation error",
	classes: map[weakness]string{
		noUpper:   "Password must contain at least one uppercase letter",
		noLower:   "Password must contain at least one lowercase letter",
		noDigit:   "Password must contain at least one number",
		noSpecial: "Password must contain at least one special character",
	},
}

var portuguese = messages{
	required: "Campo obrigatório",
	email:    "Por favor, insira um email válido",
	min:      "Deve ter no mínimo %s caracteres",
	max:      "Deve ter no máximo %s caracteres",
	mismatch: "As senhas não coincidem",
	unknown:  "Erro de validação desconhecido",
	classes: map[weakness]string{
		noUpper:   "A senha deve conter pelo menos uma letra maiúscula",
		noLower:   "A senha deve conter pelo menos uma letra minúscula",
		noDigit:   "A senha deve conter pelo menos um número",
		noSpecial: "A senha deve conter pelo menos um caractere especial",
	},
}

func messagesFor(locale string) messages {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "pt") {
		return portuguese
	}
	return english
}
