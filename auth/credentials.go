package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Credentials as submitted on the login form. The remote API calls the password "senha".
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// Validate runs the client side checks that must pass before anything is sent to the API.
// It returns nil or a *ValidationError.
func (c Credentials) Validate() error {
	fields := map[string]string{}

	email := strings.TrimSpace(c.Email)
	switch {
	case email == "":
		fields[FieldEmail] = "O email é obrigatório"
	case !emailPattern.MatchString(email):
		fields[FieldEmail] = "Formato de email inválido"
	}

	switch {
	case c.Password == "":
		fields[FieldPassword] = "A senha é obrigatória"
	case utf8.RuneCountInString(c.Password) < minPasswordLength:
		fields[FieldPassword] = "A senha deve ter pelo menos 6 caracteres"
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
