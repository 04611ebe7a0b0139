package user

import (
	"errors"
	"strings"

	usererrors "leavedesk/internal/user/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// MapRepositoryError translates driver-level failures on the users table
// into domain errors. Unique violations can still slip past the
// pre-insert lookups under concurrency, so the constraint is the backstop.
func MapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usererrors.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "uq_users_username":
				return usererrors.ErrUsernameTaken
			case "uq_users_email":
				return usererrors.ErrEmailTaken
			}
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_users_username") {
		return usererrors.ErrUsernameTaken
	}
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_users_email") {
		return usererrors.ErrEmailTaken
	}

	return err
}
