package form

import (
	"strings"

	"eventplanner/local-app/internal/model"
)

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var loginMessages = map[string]string{
	"username.required": "El nombre de usuario es obligatorio",
	"password.required": "La contraseña es obligatoria",
}

var registerMessages = map[string]string{
	"fullName.required":        "El nombre es obligatorio",
	"username.required":        "El nombre de usuario es obligatorio",
	"email.required":           "El email es obligatorio",
	"email.email":              "El email no es válido",
	"phone.required":           "El teléfono es obligatorio",
	"password.required":        "La contraseña es obligatoria",
	"password.min":             "Mínimo 6 caracteres",
	"confirmPassword.required": "Por favor, confirma la contraseña",
	"confirmPassword.eqfield":  "Las contraseñas no coinciden",
}

// ValidateLogin checks the login fields and returns the trimmed username.
func ValidateLogin(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	c := newCollector("username", "password")
	if err := c.check(loginInput{Username: username, Password: password}, loginMessages); err != nil {
		return "", err
	}
	if err := c.err(); err != nil {
		return "", err
	}
	return username, nil
}

// ValidateRegister checks the sign-up fields. Text fields other than the
// passwords are returned trimmed.
func ValidateRegister(data model.RegisterData) (model.RegisterData, error) {
	data.FullName = strings.TrimSpace(data.FullName)
	data.Username = strings.TrimSpace(data.Username)
	data.Email = strings.TrimSpace(data.Email)
	data.Phone = strings.TrimSpace(data.Phone)

	c := newCollector("fullName", "username", "email", "phone", "password", "confirmPassword")
	if err := c.check(data, registerMessages); err != nil {
		return model.RegisterData{}, err
	}
	if err := c.err(); err != nil {
		return model.RegisterData{}, err
	}
	return data, nil
}
