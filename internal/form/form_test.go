package form

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/local-app/internal/model"
)

func validRegister() model.RegisterData {
	return model.RegisterData{
		FullName:        "Lucía Fernández",
		Username:        "lucia",
		Email:           "lucia@email.com",
		Phone:           "611223344",
		Password:        "secreto",
		ConfirmPassword: "secreto",
	}
}

func requireValidation(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	return ve
}

func TestValidateLogin(t *testing.T) {
	username, err := ValidateLogin("  admin ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "admin", username)

	ve := requireValidation(t, func() error { _, err := ValidateLogin(" ", ""); return err }())
	assert.Equal(t, []FieldError{
		{Field: "username", Message: "El nombre de usuario es obligatorio"},
		{Field: "password", Message: "La contraseña es obligatoria"},
	}, ve.Fields)
}

func TestValidateRegisterShortPassword(t *testing.T) {
	data := validRegister()
	data.Password = "abc"
	data.ConfirmPassword = "abc"

	_, err := ValidateRegister(data)
	ve := requireValidation(t, err)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "Mínimo 6 caracteres", ve.Message("password"))
}

func TestValidateRegisterMessages(t *testing.T) {
	_, err := ValidateRegister(model.RegisterData{})
	ve := requireValidation(t, err)
	assert.Equal(t, []FieldError{
		{Field: "fullName", Message: "El nombre es obligatorio"},
		{Field: "username", Message: "El nombre de usuario es obligatorio"},
		{Field: "email", Message: "El email es obligatorio"},
		{Field: "phone", Message: "El teléfono es obligatorio"},
		{Field: "password", Message: "La contraseña es obligatoria"},
		{Field: "confirmPassword", Message: "Por favor, confirma la contraseña"},
	}, ve.Fields)

	data := validRegister()
	data.ConfirmPassword = "otra-cosa"
	data.Email = "no-es-un-email"
	_, err = ValidateRegister(data)
	ve = requireValidation(t, err)
	assert.Equal(t, "Las contraseñas no coinciden", ve.Message("confirmPassword"))
	assert.Equal(t, "El email no es válido", ve.Message("email"))
	assert.Empty(t, ve.Message("password"))
}

func TestValidateRegisterTrims(t *testing.T) {
	data := validRegister()
	data.Username = "  lucia  "
	got, err := ValidateRegister(data)
	require.NoError(t, err)
	assert.Equal(t, "lucia", got.Username)
	assert.Equal(t, "secreto", got.Password)
}

func TestEventFormParse(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 30, 45, 0, time.Local)
	f := NewEventForm()
	assert.Equal(t, "10", f.MaxAttendees)

	f.Title = "Concierto"
	f.Description = "Jazz"
	f.Date = "2026-05-10T12:30"
	f.Location = "Gijón"

	data, err := f.Parse(now)
	require.NoError(t, err)
	assert.Equal(t, 10, data.MaxAttendees)
	assert.True(t, data.Date.Equal(time.Date(2026, 5, 10, 12, 30, 0, 0, time.Local)))

	f.Date = "2026-05-11T09:00:00"
	data, err = f.Parse(now)
	require.NoError(t, err)
	assert.Equal(t, 9, data.Date.Hour())
}

func TestEventFormRejectsPastDate(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 30, 0, 0, time.Local)
	f := EventForm{Title: "t", Description: "d", Date: "2026-05-10T12:29", Location: "l", MaxAttendees: "5"}

	_, err := f.Parse(now)
	ve := requireValidation(t, err)
	assert.Equal(t, []FieldError{{Field: "date", Message: "No se pueden crear eventos en el pasado"}}, ve.Fields)
}

func TestEventFormMessages(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)

	_, err := EventForm{}.Parse(now)
	ve := requireValidation(t, err)
	assert.Equal(t, []FieldError{
		{Field: "title", Message: "El título es obligatorio"},
		{Field: "description", Message: "La descripción es obligatoria"},
		{Field: "date", Message: "La fecha es obligatoria"},
		{Field: "location", Message: "La ubicación es obligatoria"},
		{Field: "maxAttendees", Message: "El número es obligatorio"},
	}, ve.Fields)

	base := EventForm{Title: "t", Description: "d", Date: "2027-01-01T10:00", Location: "l"}
	for input, want := range map[string]string{
		"0":   "Debe ser al menos 1",
		"-4":  "Debe ser al menos 1",
		"abc": "El número es obligatorio",
		"2.5": "El número es obligatorio",
	} {
		f := base
		f.MaxAttendees = input
		_, err := f.Parse(now)
		ve := requireValidation(t, err)
		assert.Equal(t, want, ve.Message("maxAttendees"), input)
	}

	f := base
	f.MaxAttendees = "3"
	f.Date = "mañana"
	_, err = f.Parse(now)
	ve = requireValidation(t, err)
	assert.Contains(t, ve.Message("date"), "Formato de fecha no válido")
}

func TestEditEventFormPrefill(t *testing.T) {
	ev := model.Event{
		Title:        "Maratón",
		Description:  "Carrera",
		Date:         time.Date(2030, 11, 20, 9, 0, 30, 0, time.Local),
		Location:     "Plaza Mayor",
		MaxAttendees: 500,
	}
	f := EditEventForm(ev)
	assert.Equal(t, "2030-11-20T09:00", f.Date)
	assert.Equal(t, "500", f.MaxAttendees)
}
