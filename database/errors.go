package database

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/tokengate/errors"
)

var (
	connectionMarkers = []string{
		"connection refused", "connection reset", "connection closed", "connection lost",
		"broken pipe", "i/o timeout", "no route to host", "network is unreachable",
		"driver: bad connection", "invalid connection",
	}
	transientMarkers = []string{
		"deadlock", "lock timeout", "database is locked", "too many connections",
		"connection pool exhausted",
	}
	duplicateMarkers = []string{"unique constraint", "duplicate key"}
)

func messageHas(err error, markers []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsConnectionError reports a lost or refused connection.
func IsConnectionError(err error) bool {
	return messageHas(err, connectionMarkers)
}

// IsRetryableError reports errors worth retrying: connection failures,
// lock contention and pool exhaustion.
func IsRetryableError(err error) bool {
	return IsConnectionError(err) || messageHas(err, transientMarkers)
}

// IsNotFoundError reports gorm.ErrRecordNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports a unique or primary key violation. Drivers that
// gorm cannot translate are matched on their message.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || messageHas(err, duplicateMarkers)
}

// FromDatabase maps a driver error on resource to an AppError. The driver
// message stays in the cause and never reaches the client.
func FromDatabase(err error, resource string) *apperrors.AppError {
	switch {
	case err == nil:
		return nil
	case IsNotFoundError(err):
		return apperrors.NotFound(resource, "").WithCause(err)
	case IsDuplicateError(err):
		return apperrors.AlreadyExists(resource).WithCause(err)
	case IsRetryableError(err):
		return apperrors.New(apperrors.ErrCodeDatabaseError,
			"Database is temporarily unavailable. Please try again.", http.StatusServiceUnavailable).WithCause(err)
	default:
		return apperrors.DatabaseError(err)
	}
}
