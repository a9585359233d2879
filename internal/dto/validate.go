package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

// validate is the single validator instance for inbound payloads. Validation
// runs once per operation at the service boundary; callers never re-implement
// field checks.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a payload's struct tags and converts failures into the
// application's validation error, naming every offending field.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(fields, "; "))
}
