// Package form validates user input before it reaches the backend.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidationFailed matches every *ValidationError with errors.Is.
var ErrValidationFailed = errors.New("validation failed")

// FieldError is a single rejected field and the message shown under it.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists the rejected fields in form order, one message per field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// Message returns the message for field, or "" when it passed.
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// collector accumulates the first failure of each field.
type collector struct {
	order    []string
	messages map[string]string
}

func newCollector(order ...string) *collector {
	return &collector{order: order, messages: map[string]string{}}
}

func (c *collector) add(field, msg string) {
	if _, seen := c.messages[field]; !seen {
		c.messages[field] = msg
	}
}

func (c *collector) has(field string) bool {
	_, ok := c.messages[field]
	return ok
}

// check runs struct validation and translates each failure through messages,
// keyed "field.tag".
func (c *collector) check(s interface{}, messages map[string]string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("Valor no válido (%s)", fe.Tag())
		}
		c.add(fe.Field(), msg)
	}
	return nil
}

func (c *collector) err() error {
	if len(c.messages) == 0 {
		return nil
	}
	index := make(map[string]int, len(c.order))
	for i, f := range c.order {
		index[f] = i
	}
	out := make([]FieldError, 0, len(c.messages))
	for f, m := range c.messages {
		out = append(out, FieldError{Field: f, Message: m})
	}
	sort.Slice(out, func(i, j int) bool { return index[out[i].Field] < index[out[j].Field] })
	return &ValidationError{Fields: out}
}
