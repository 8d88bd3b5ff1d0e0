package controllers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/adamanr/ems_service/internal/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	CodeDigits     = 6
	DefaultCodeTTL = 10 * time.Minute

	ConstraintAccountEmail      = "uk_accounts_email"
	ConstraintDepartmentName    = "uk_departments_owner_name"
	ConstraintAccountDepartment = "fk_accounts_department"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isConstraintViolation(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == code && pgErr.ConstraintName == constraint
}

func isUniqueViolation(err error, constraint string) bool {
	return isConstraintViolation(err, pgUniqueViolation, constraint)
}

func isForeignKeyViolation(err error, constraint string) bool {
	return isConstraintViolation(err, pgForeignKeyViolation, constraint)
}

// internal logs an unexpected failure and wraps it so callers see kind Internal.
func internal(logger *slog.Logger, msg string, err error) error {
	logger.Error(msg, slog.String("error", err.Error()))
	return fmt.Errorf("%s: %w", strings.ToLower(msg), err)
}

// generateCode returns a numeric one-time code of CodeDigits digits.
func generateCode() (string, error) {
	var sb strings.Builder
	sb.Grow(CodeDigits)

	for i := 0; i < CodeDigits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}

	return sb.String(), nil
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// validateStruct runs the struct tags and turns failures into ErrInvalidInput.
func (d *Dependens) validateStruct(v any) error {
	err := d.Validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.ErrInvalidInput, "%s", err.Error())
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}

	return apperr.Wrap(apperr.ErrInvalidInput, "%s", strings.Join(fields, ", "))
}

func (d *Dependens) bcryptCost() int {
	if d.Config != nil && d.Config.Security.BcryptCost != 0 {
		return d.Config.Security.BcryptCost
	}

	return bcrypt.DefaultCost
}
