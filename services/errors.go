package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// storageError wraps a database error with the failed operation; record-not-found
// is mapped to ErrNotFound so callers can check a single sentinel.
func storageError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validID reports whether id can be a primary key. Anything else is treated as
// missing so malformed ids never reach a uuid column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isDuplicateKey reports a unique index violation. It relies on the dialector
// translating driver errors (gorm.Config.TranslateError).
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
