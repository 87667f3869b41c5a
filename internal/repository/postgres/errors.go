package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/lib/pq"
)

// postgres error codes mapped onto domain errors
const (
	pqUniqueViolation  = "23505"
	pqCheckViolation   = "23514"
	pqNotNullViolation = "23502"
	pqLockNotAvailable = "55P03"
)

func translateError(err error, entity string, id string) error {
	if err == nil {
		return nil
	}

	details := map[string]any{"entity": entity}
	if id != "" {
		details["id"] = id
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		details["constraint"] = pqErr.Constraint
		switch pqErr.Code {
		case pqUniqueViolation:
			return ierr.WithError(err).
				WithHintf("%s already exists", entity).
				WithReportableDetails(details).
				Mark(ierr.ErrAlreadyExists)
		case pqCheckViolation, pqNotNullViolation:
			return ierr.NewRecordInvalid(entity, id, pqErr.Column, pqErr.Message)
		case pqLockNotAvailable:
			return ierr.WithError(err).
				WithHintf("%s is locked by another transaction", entity).
				WithReportableDetails(details).
				Mark(ierr.ErrDatabase)
		}
	}

	return ierr.WithError(err).
		WithHintf("Failed to access %s", entity).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}
