package errors

import "strings"

// Operation names the user action an error message is phrased for.
type Operation string

const (
	OpLogin          Operation = "login"
	OpRegister       Operation = "register"
	OpForgotPassword Operation = "forgot_password"
	OpResetPassword  Operation = "reset_password"
	OpMe             Operation = "me"
	OpHealth         Operation = "health"
)

type key struct {
	kind Kind
	op   Operation
}

// Catalog maps kinds to localized messages.
type Catalog struct {
	locale   string
	messages map[key]string
	fallback map[Operation]string
}

var catalogs = map[string]*Catalog{
	"en": {
		locale: "en",
		messages: map[key]string{
			{InvalidCredentials, ""}:   "Incorrect email or password",
			{InvalidCredentials, OpMe}: "Your session is no longer valid. Please log in again",
			{ValidationFailed, ""}:     "Invalid data. Please check and try again",
			{Conflict, ""}:             "This email is already registered",
			{ServerUnavailable, ""}:    "Server error. Please try again later",
			{NetworkUnreachable, ""}:   "No connection to the server. Check your internet connection",
			{InvalidResetToken, ""}:    "Invalid or expired reset token",
			{Canceled, ""}:             "Request cancelled",
		},
		fallback: map[Operation]string{
			OpLogin:          "Could not log in. Please try again",
			OpRegister:       "Could not create the account. Please try again",
			OpForgotPassword: "Could not send the recovery email",
			OpResetPassword:  "Could not reset the password",
			OpMe:             "Could not load your profile",
			OpHealth:         "Could not reach the server",
		},
	},
	"pt-br": {
		locale: "pt-BR",
		messages: map[key]string{
			{InvalidCredentials, ""}:   "E-mail ou senha incorretos",
			{InvalidCredentials, OpMe}: "Sua sessão não é mais válida. Faça login novamente",
			{ValidationFailed, ""}:     "Dados inválidos. Verifique e tente novamente",
			{Conflict, ""}:             "E-mail já cadastrado",
			{ServerUnavailable, ""}:    "Erro no servidor. Tente novamente mais tarde",
			{NetworkUnreachable, ""}:   "Sem conexão com o servidor. Verifique sua internet",
			{InvalidResetToken, ""}:    "Token inválido ou expirado",
			{Canceled, ""}:             "Solicitação cancelada",
		},
		fallback: map[Operation]string{
			OpLogin:          "Erro ao fazer login. Tente novamente",
			OpRegister:       "Erro ao criar conta. Tente novamente",
			OpForgotPassword: "Erro ao enviar e-mail de recuperação",
			OpResetPassword:  "Erro ao redefinir senha",
			OpMe:             "Erro ao carregar o perfil",
			OpHealth:         "Não foi possível contatar o servidor",
		},
	},
}

// CatalogFor returns the catalog for locale ("pt-BR", "pt", "en"...). Unknown locales get English.
func CatalogFor(locale string) *Catalog {
	l := strings.ToLower(strings.TrimSpace(locale))
	if c, ok := catalogs[l]; ok {
		return c
	}
	if strings.HasPrefix(l, "pt") {
		return catalogs["pt-br"]
	}
	return catalogs["en"]
}

// Locale returns the canonical locale tag of the catalog.
func (c *Catalog) Locale() string { return c.locale }

// Message returns the message for kind in the context of op.
func (c *Catalog) Message(kind Kind, op Operation) string {
	if m, ok := c.messages[key{kind, op}]; ok {
		return m
	}
	if m, ok := c.messages[key{kind, ""}]; ok {
		return m
	}
	return c.fallback[op]
}

// Errorf builds an *E of kind with the localized message for op, wrapping cause.
func (c *Catalog) Errorf(kind Kind, op Operation, cause error) *E {
	return Wrap(kind, c.Message(kind, op), cause)
}
