package repository

import (
	"errors"
	"fmt"

	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// translate maps driver errors onto the service sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return services.ErrDuplicate
		case checkViolation:
			return fmt.Errorf("%w: %s", services.ErrInvalidInput, pgErr.ConstraintName)
		}
	}
	return err
}

// affected reports ErrNotFound when a targeted write touched no rows.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}
