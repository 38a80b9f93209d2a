package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 400
	ErrUnauthorized      = errors.New("unauthorized")       // 401
	ErrProductsNotFound  = errors.New("products not found") // 404
	ErrDataIntegrity     = errors.New("data integrity")     // 400
	ErrDatabaseOperation = errors.New("database operation") // 500
)

// ProductsNotFoundError lists the requested product ids that do not exist.
type ProductsNotFoundError struct {
	IDs []uint
}

func (e *ProductsNotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}
	return "products not found: " + strings.Join(ids, ", ")
}

func (e *ProductsNotFoundError) Is(target error) bool {
	return target == ErrProductsNotFound
}

func isIntegrity(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}

// classify maps a storage error onto ErrDataIntegrity or ErrDatabaseOperation.
// Errors that already carry a service sentinel pass through.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrProductsNotFound),
		errors.Is(err, ErrDataIntegrity),
		errors.Is(err, ErrDatabaseOperation),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound):
		return err
	case isIntegrity(err):
		return fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	default:
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
}
