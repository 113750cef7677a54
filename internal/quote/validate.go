package quote

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is returned when a record fails input validation.
var ErrValidation = errors.New("invalid quote")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the fields a user must supply when adding a quote.
// Whitespace-only values count as empty.
func Validate(r Record) error {
	trimmed := r
	trimmed.Text = strings.TrimSpace(r.Text)
	trimmed.Category = strings.TrimSpace(r.Category)

	err := validatorInstance().Struct(trimmed)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		missing := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			missing = append(missing, strings.ToLower(fe.Field()))
		}
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, " and "))
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
