package otpauth

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("invalid otpauth URI")
	ErrInvalidScheme   = fmt.Errorf("%w: must start with otpauth://", ErrValidation)
	ErrUnsupportedType = fmt.Errorf("%w: unsupported type", ErrValidation)
	ErrMissingSecret   = fmt.Errorf("%w: missing secret", ErrValidation)
	ErrInvalidSecret   = fmt.Errorf("%w: secret is not valid Base32", ErrValidation)
)
