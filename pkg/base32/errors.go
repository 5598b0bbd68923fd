package base32

import (
	"errors"
	"fmt"
)

var (
	ErrDecode           = errors.New("invalid base32 input")
	ErrInvalidCharacter = fmt.Errorf("%w: character outside alphabet", ErrDecode)
	ErrInvalidPadding   = fmt.Errorf("%w: non-zero trailing bits", ErrDecode)
)
